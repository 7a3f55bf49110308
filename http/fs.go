package httpx

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
)

const (
	indexPage    = "/index.html"
	altIndexPage = "/index.htm"
)

var errIsDir = errors.New("is a directory")

// billyFS exposes a billy.Filesystem as an http.FileSystem. It only
// sees directory requests, so the index.html name it is asked for is
// always the index lookup, and a missing index.html is answered with
// index.htm when that exists.
type billyFS struct {
	fs billy.Filesystem
}

func (b billyFS) Open(name string) (http.File, error) {
	name = path.Clean("/" + name)
	fi, err := b.fs.Stat(name)
	if err != nil && errors.Is(err, fs.ErrNotExist) && strings.HasSuffix(name, indexPage) {
		alt := strings.TrimSuffix(name, indexPage) + altIndexPage
		if altInfo, altErr := b.fs.Stat(alt); altErr == nil && !altInfo.IsDir() {
			name, fi, err = alt, altInfo, nil
		}
	}
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return &dirFile{fs: b.fs, name: name, info: fi}, nil
	}
	f, err := b.fs.Open(name)
	if err != nil {
		return nil, err
	}
	return &file{File: f, info: fi}, nil
}

type file struct {
	billy.File
	info os.FileInfo
}

func (f *file) Stat() (fs.FileInfo, error) {
	return f.info, nil
}

func (f *file) Readdir(count int) ([]fs.FileInfo, error) {
	return nil, &fs.PathError{Op: "readdir", Path: f.Name(), Err: errors.New("not a directory")}
}

// dirFile is never backed by an open descriptor; listings come from ReadDir.
type dirFile struct {
	fs      billy.Filesystem
	name    string
	info    os.FileInfo
	entries []os.FileInfo
	read    bool
}

func (d *dirFile) Close() error { return nil }

func (d *dirFile) Read(p []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: errIsDir}
}

func (d *dirFile) Seek(offset int64, whence int) (int64, error) {
	if offset == 0 && whence == io.SeekStart {
		d.entries, d.read = nil, false
		return 0, nil
	}
	return 0, &fs.PathError{Op: "seek", Path: d.name, Err: errIsDir}
}

func (d *dirFile) Stat() (fs.FileInfo, error) {
	return d.info, nil
}

func (d *dirFile) Readdir(count int) ([]fs.FileInfo, error) {
	if !d.read {
		entries, err := d.fs.ReadDir(d.name)
		if err != nil {
			return nil, err
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		d.entries, d.read = entries, true
	}
	if count <= 0 {
		rest := d.entries
		d.entries = nil
		return rest, nil
	}
	if len(d.entries) == 0 {
		return nil, io.EOF
	}
	n := min(count, len(d.entries))
	batch := d.entries[:n]
	d.entries = d.entries[n:]
	return batch, nil
}
