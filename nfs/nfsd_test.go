package nfs

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	gonfs "github.com/willscott/go-nfs"

	"wwwroot-server/docroot"
)

func openRoot(t *testing.T) billy.Filesystem {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	root, err := docroot.Open(dir)
	if err != nil {
		t.Fatalf("docroot.Open error: %v", err)
	}
	return root
}

func TestHandlerMountsReadOnlyRoot(t *testing.T) {
	h := newHandler(openRoot(t))
	status, fs, _ := h.Mount(context.Background(), nil, gonfs.MountRequest{})
	if status != gonfs.MountStatusOk {
		t.Fatalf("mount status=%v", status)
	}
	if _, err := fs.Stat("index.html"); err != nil {
		t.Fatalf("Stat through mount: %v", err)
	}
	if _, err := fs.Create("new.html"); !errors.Is(err, billy.ErrReadOnly) {
		t.Fatalf("mounted root is writable: %v", err)
	}
	if h.Change(fs) != nil {
		t.Fatalf("mounted root allows attribute changes")
	}
}

func TestServeAndClose(t *testing.T) {
	srv, err := Listen("127.0.0.1:0", openRoot(t), nil)
	if err != nil {
		t.Fatalf("Listen error: %v", err)
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve() }()

	c, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	c.Close()

	srv.Close()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after Close")
	}
}
