package redirect

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// Table is the set of real (non-intercepted) filesystem primitives the
// translator needs. Decoupling the translator from the lookup mechanism
// keeps the decision logic testable against an in-memory filesystem; the
// preload library supplies an implementation backed by the resolved libc
// symbols, everything running in-process uses OsTable.
type Table interface {
	// Exists reports whether path refers to an entry of any type.
	// When followSymlinks is false a dangling symlink still exists.
	Exists(path string, followSymlinks bool) bool
	// WorkingDir returns the process's current working directory.
	WorkingDir() (string, error)
	// HandlePath returns the directory behind an open descriptor.
	HandlePath(fd int) (string, error)
}

// OsTable implements Table against an afero filesystem, by default the
// host filesystem. Directory handles are recovered through /proc.
type OsTable struct {
	fs afero.Fs
}

// NewOsTable returns a Table over the host filesystem.
func NewOsTable() *OsTable {
	return &OsTable{fs: afero.NewOsFs()}
}

// NewFsTable returns a Table over an arbitrary afero filesystem. Used by
// tests to run the translator against afero.NewMemMapFs.
func NewFsTable(fs afero.Fs) *OsTable {
	return &OsTable{fs: fs}
}

// Exists implements Table
func (t *OsTable) Exists(path string, followSymlinks bool) bool {
	if !followSymlinks {
		if lstater, ok := t.fs.(afero.Lstater); ok {
			_, _, err := lstater.LstatIfPossible(path)
			return err == nil
		}
	}
	_, err := t.fs.Stat(path)
	return err == nil
}

// WorkingDir implements Table
func (t *OsTable) WorkingDir() (string, error) {
	return os.Getwd()
}

// HandlePath implements Table
func (t *OsTable) HandlePath(fd int) (string, error) {
	return os.Readlink(fmt.Sprintf("/proc/self/fd/%d", fd))
}
