// Package docroot locates and opens the directory served to clients.
//
// The document root is an explicit value: a read-only billy.Filesystem
// bound to a directory. Nothing in this package changes the process
// working directory.
package docroot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// DefaultDir is the subdirectory, next to the executable, served by default.
const DefaultDir = "wwwroot"

// ErrNotDir is returned by Open when the root exists but is not a directory.
var ErrNotDir = errors.New("document root is not a directory")

// ExecutableDir returns the directory holding the running executable,
// with symlinks resolved.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// Resolve returns dir as an absolute path. A relative dir is joined to base.
func Resolve(base, dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	return filepath.Abs(dir)
}

// Default returns DefaultDir resolved against ExecutableDir.
func Default() (string, error) {
	base, err := ExecutableDir()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	return Resolve(base, DefaultDir)
}

// Open returns a read-only filesystem rooted at path. Symlinks inside the
// tree are resolved as if path were "/", so nothing outside it is reachable.
func Open(path string) (billy.Filesystem, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotDir)
	}
	// Request paths are relative to the root even when they spell out
	// the root's own absolute path.
	return ReadOnly(osfs.New(path, osfs.WithBoundOS(), osfs.WithDeduplicatePath(false))), nil
}
