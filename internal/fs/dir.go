package fs

import (
	"context"
	"os"
	"path"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/acheronfail/fakeroot/internal/logging"
)

var (
	dirLogger = logging.GetLogger().WithPrefix("dir")
)

// Dir represents a directory in the effective tree. path is the
// host-absolute name; whether its contents come from the real or the
// shadow tree is decided per child, per operation.
type Dir struct {
	fs   *ViewFS
	path string
}

// Attr implements the Node interface, returning directory attributes.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	dirLogger.Trace("getting attributes for directory: %q", d.path)

	eff := d.fs.effective(d.path, true)
	info, err := os.Stat(eff)
	if err != nil {
		if d.path == "/" {
			// the host root always exists; don't fail the mount root
			a.Mode = os.ModeDir | 0o755
			a.Uid = d.fs.uid
			a.Gid = d.fs.gid
			return nil
		}
		return ToFuseError(NewError(OpGetattr, d.path, err))
	}

	a.Mode = info.Mode()
	a.Mtime = info.ModTime()
	a.Uid = d.fs.uid
	a.Gid = d.fs.gid
	return nil
}

// Lookup implements the NodeStringLookuper interface, finding a child node.
func (d *Dir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	childPath := path.Join(d.path, name)
	dirLogger.Debug("looking up %q in %q", name, d.path)

	eff := d.fs.effective(childPath, false)
	info, err := os.Lstat(eff)
	if err != nil {
		dirLogger.Trace("lookup miss: %q (effective %q)", childPath, eff)
		return nil, ToFuseError(NewError(OpLookup, childPath, err))
	}

	if info.IsDir() {
		return &Dir{fs: d.fs, path: childPath}, nil
	}
	return &File{fs: d.fs, path: childPath}, nil
}

// ReadDirAll implements the HandleReadDirAller interface, listing
// directory contents. With directory interception on, a shadowed
// directory lists exactly the shadow entries; otherwise the real
// directory is listed even when individual files inside it redirect.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	target := d.fs.listPath(d.path)
	dirLogger.Debug("reading directory %q (listing %q)", d.path, target)

	dirEntries, err := os.ReadDir(target)
	if err != nil {
		return nil, ToFuseError(NewError(OpReadDir, d.path, err))
	}

	entries := []fuse.Dirent{
		{Name: ".", Type: fuse.DT_Dir},
		{Name: "..", Type: fuse.DT_Dir},
	}
	for _, entry := range dirEntries {
		dt := fuse.DT_File
		switch {
		case entry.IsDir():
			dt = fuse.DT_Dir
		case entry.Type()&os.ModeSymlink != 0:
			dt = fuse.DT_Link
		}
		entries = append(entries, fuse.Dirent{Name: entry.Name(), Type: dt})
	}

	dirLogger.Debug("directory %q contains %d entries", d.path, len(entries))
	return entries, nil
}
