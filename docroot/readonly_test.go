package docroot

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/google/go-cmp/cmp"
)

func newReadOnly(t *testing.T) billy.Filesystem {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.txt", "sub/b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fs, err := Open(dir)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	return fs
}

func TestReadOnlyRefusesWrites(t *testing.T) {
	fs := newReadOnly(t)

	checks := map[string]error{}
	_, checks["Create"] = fs.Create("new.txt")
	_, checks["OpenFile(O_WRONLY)"] = fs.OpenFile("a.txt", os.O_WRONLY, 0)
	_, checks["OpenFile(O_RDWR)"] = fs.OpenFile("a.txt", os.O_RDWR, 0)
	_, checks["OpenFile(O_CREATE)"] = fs.OpenFile("c.txt", os.O_RDONLY|os.O_CREATE, 0o644)
	checks["Rename"] = fs.Rename("a.txt", "z.txt")
	checks["Remove"] = fs.Remove("a.txt")
	_, checks["TempFile"] = fs.TempFile("", "tmp")
	checks["MkdirAll"] = fs.MkdirAll("newdir", 0o755)
	checks["Symlink"] = fs.Symlink("a.txt", "link")

	for op, err := range checks {
		if !errors.Is(err, billy.ErrReadOnly) {
			t.Fatalf("%s: expected ErrReadOnly, got %v", op, err)
		}
	}
	if _, err := fs.Stat("a.txt"); err != nil {
		t.Fatalf("a.txt changed: %v", err)
	}
	if _, err := fs.Stat("new.txt"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("new.txt was created: %v", err)
	}
}

func TestReadOnlyAllowsReads(t *testing.T) {
	fs := newReadOnly(t)

	f, err := fs.OpenFile("a.txt", os.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("OpenFile(O_RDONLY) error: %v", err)
	}
	f.Close()

	infos, err := fs.ReadDir("/")
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	var names []string
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	sort.Strings(names)
	if diff := cmp.Diff([]string{"a.txt", "sub"}, names); diff != "" {
		t.Fatalf("ReadDir mismatch (-want +got):\n%s", diff)
	}
}

func TestReadOnlyChroot(t *testing.T) {
	fs := newReadOnly(t)
	sub, err := fs.Chroot("sub")
	if err != nil {
		t.Fatalf("Chroot error: %v", err)
	}
	if _, err := sub.Stat("b.txt"); err != nil {
		t.Fatalf("Stat in chroot error: %v", err)
	}
	if _, err := sub.Create("c.txt"); !errors.Is(err, billy.ErrReadOnly) {
		t.Fatalf("chroot lost read-only: %v", err)
	}
}

func TestReadOnlyCapabilities(t *testing.T) {
	fs := newReadOnly(t)
	if billy.CapabilityCheck(fs, billy.WriteCapability) {
		t.Fatalf("read-only filesystem reports write capability")
	}
	if !billy.CapabilityCheck(fs, billy.ReadCapability) {
		t.Fatalf("read-only filesystem lost read capability")
	}
	if ReadOnly(fs) != fs {
		t.Fatalf("ReadOnly wrapped twice")
	}
}
