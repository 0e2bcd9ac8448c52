package fs

import (
	fusefs "bazil.org/fuse/fs"
)

// Compile-time checks that the view types satisfy the FUSE interfaces
// they are served through.
var (
	_ fusefs.FS = (*ViewFS)(nil)

	_ fusefs.Node               = (*Dir)(nil)
	_ fusefs.NodeStringLookuper = (*Dir)(nil)
	_ fusefs.HandleReadDirAller = (*Dir)(nil)

	_ fusefs.Node       = (*File)(nil)
	_ fusefs.NodeOpener = (*File)(nil)

	_ fusefs.Handle         = (*FileHandle)(nil)
	_ fusefs.HandleReader   = (*FileHandle)(nil)
	_ fusefs.HandleReleaser = (*FileHandle)(nil)
)
