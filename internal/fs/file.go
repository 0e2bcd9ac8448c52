package fs

import (
	"context"
	"io"
	"os"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/acheronfail/fakeroot/internal/logging"
)

var (
	fileLogger = logging.GetLogger().WithPrefix("file")
)

// File represents a file in the effective tree.
type File struct {
	fs   *ViewFS
	path string
}

// Attr implements the Node interface, returning the file's attributes.
func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	eff := f.fs.effective(f.path, true)
	fileLogger.Trace("getting attributes for %q (effective %q)", f.path, eff)

	info, err := os.Stat(eff)
	if err != nil {
		return ToFuseError(NewError(OpGetattr, f.path, err))
	}

	a.Mode = info.Mode()
	a.Size = safeInt64ToUint64(info.Size())
	a.Mtime = info.ModTime()
	a.Atime = info.ModTime()
	a.Ctime = info.ModTime()
	a.Uid = f.fs.uid
	a.Gid = f.fs.gid
	a.BlockSize = 4096
	a.Blocks = safeInt64ToUint64((info.Size() + 511) / 512)
	return nil
}

// Open implements the NodeOpener interface, opening the effective file.
// The view is diagnostic, so writes are refused.
func (f *File) Open(_ context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	if req.Flags&(fuse.OpenWriteOnly|fuse.OpenReadWrite) != 0 {
		fileLogger.Debug("refusing write access to %q", f.path)
		return nil, syscall.EROFS
	}

	eff := f.fs.effective(f.path, true)
	fileLogger.Debug("opening %q (effective %q)", f.path, eff)

	file, err := os.Open(eff)
	if err != nil {
		return nil, ToFuseError(NewError(OpOpen, f.path, err))
	}

	resp.Flags |= fuse.OpenDirectIO
	return &FileHandle{file: file, path: f.path}, nil
}

// FileHandle manages an open descriptor onto the effective file.
type FileHandle struct {
	file *os.File
	path string // for logging
}

// Read implements the HandleReader interface.
func (fh *FileHandle) Read(_ context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	fileLogger.Trace("reading %d bytes from %q at offset %d", req.Size, fh.path, req.Offset)

	resp.Data = make([]byte, req.Size)
	n, err := fh.file.ReadAt(resp.Data, req.Offset)
	if err != nil && err != io.EOF {
		fileLogger.Error("read failed on %q: %v", fh.path, err)
		return ToFuseError(NewError(OpRead, fh.path, err))
	}
	resp.Data = resp.Data[:n]
	return nil
}

// Release implements the HandleReleaser interface, closing the handle.
func (fh *FileHandle) Release(_ context.Context, _ *fuse.ReleaseRequest) error {
	fileLogger.Trace("closing %q", fh.path)
	return fh.file.Close()
}
