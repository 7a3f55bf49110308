package httpx

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-git/go-billy/v5"
)

// contentTypes covers page assets the mime package does not know about.
// Anything else is left to http.ServeContent.
var contentTypes = map[string]string{
	".wasm":   "application/wasm",
	".dll":    "application/octet-stream",
	".pdb":    "application/octet-stream",
	".dat":    "application/octet-stream",
	".blat":   "application/octet-stream",
	".webcil": "application/octet-stream",
}

// NewHandler serves GET and HEAD requests from root and answers every
// other method with 501. Each request is logged to logger.
func NewHandler(root billy.Filesystem, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	files := withContentType(fileHandler{
		root: root,
		dirs: http.FileServer(billyFS{fs: root}),
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Get("/*", files.ServeHTTP)
	r.Head("/*", files.ServeHTTP)
	r.MethodNotAllowed(unsupportedMethod)
	return r
}

// fileHandler writes regular files itself and hands directories to dirs,
// which redirects, picks the index page or renders a listing.
type fileHandler struct {
	root billy.Filesystem
	dirs http.Handler
}

func (h fileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)
	fi, err := h.root.Stat(name)
	if err != nil {
		fileError(w, err)
		return
	}
	if fi.IsDir() {
		h.dirs.ServeHTTP(w, r)
		return
	}
	if strings.HasSuffix(r.URL.Path, "/") {
		http.NotFound(w, r)
		return
	}
	f, err := h.root.Open(name)
	if err != nil {
		fileError(w, err)
		return
	}
	defer f.Close()
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

func fileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
		http.Error(w, "404 page not found", http.StatusNotFound)
	case errors.Is(err, fs.ErrPermission):
		http.Error(w, "403 Forbidden", http.StatusForbidden)
	default:
		http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
	}
}

func withContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct, ok := contentTypes[path.Ext(r.URL.Path)]; ok {
			w.Header().Set("Content-Type", ct)
		}
		next.ServeHTTP(w, r)
	})
}

func unsupportedMethod(w http.ResponseWriter, r *http.Request) {
	http.Error(w, fmt.Sprintf("Unsupported method (%q)", r.Method), http.StatusNotImplemented)
}
