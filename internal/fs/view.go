// Package fs presents the effective tree, the real filesystem with the
// shadow tree overlaid, as a read-only FUSE filesystem. Every path is
// resolved through the same translator the preload hooks use, so the
// mount shows exactly what a wrapped process would see. Unlike the
// preload mechanism it also works for statically linked binaries.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/acheronfail/fakeroot/internal/config"
	"github.com/acheronfail/fakeroot/internal/logging"
	"github.com/acheronfail/fakeroot/internal/redirect"
)

var (
	viewLogger = logging.GetLogger().WithPrefix("view")
)

// Options configures a view mount.
type Options struct {
	// Root is the absolute path of the shadow tree.
	Root string
	// InterceptDirs mirrors the directory-listing flag: when set,
	// listings of shadowed directories come from the shadow tree.
	InterceptDirs bool
	// RedirectMissing mirrors the fake-nonexistent flag.
	RedirectMissing bool
	// AllowOther permits other users to read the mount.
	AllowOther bool
}

// ViewFS is the FUSE filesystem serving the effective tree.
type ViewFS struct {
	opts       Options
	translator *redirect.Translator
	conn       *fuse.Conn
	served     chan struct{}
	uid        uint32
	gid        uint32
}

// NewViewFS builds a view over the given shadow root.
func NewViewFS(opts Options) (*ViewFS, error) {
	viewLogger.Debug("creating view: root=%q dirs=%v missing=%v",
		opts.Root, opts.InterceptDirs, opts.RedirectMissing)

	if !filepath.IsAbs(opts.Root) {
		return nil, fmt.Errorf("shadow root must be absolute: %q", opts.Root)
	}
	if _, err := os.ReadDir(opts.Root); err != nil {
		return nil, fmt.Errorf("shadow root not readable: %w", err)
	}

	cfg := &config.Configuration{
		Root:            filepath.Clean(opts.Root),
		InterceptDirs:   opts.InterceptDirs,
		RedirectMissing: opts.RedirectMissing,
	}
	translator := redirect.NewTranslator(cfg, redirect.NewOsTable(), redirect.NewGuard())

	return &ViewFS{
		opts:       opts,
		translator: translator,
		uid:        safeIntToUint32(os.Getuid()),
		gid:        safeIntToUint32(os.Getgid()),
	}, nil
}

// Root implements the fusefs.FS interface, returning the root directory node.
func (v *ViewFS) Root() (fusefs.Node, error) {
	viewLogger.Trace("getting root directory node")
	return &Dir{fs: v, path: "/"}, nil
}

// effective resolves a host path to the path that actually serves it.
func (v *ViewFS) effective(path string, followSymlinks bool) string {
	return v.translator.Translate(path, redirect.NoDirHandle, followSymlinks).Path
}

// listPath resolves the directory a listing should come from. Listings
// only follow the shadow tree when directory interception is on; file
// content redirection alone leaves them untouched.
func (v *ViewFS) listPath(path string) string {
	if !v.opts.InterceptDirs {
		return path
	}
	return v.effective(path, true)
}

// Mount mounts the view at the given mount point and serves it until
// Unmount or an unmount from outside.
func (v *ViewFS) Mount(mountPoint string) error {
	viewLogger.Info("mounting view at %s", mountPoint)

	mountOpts := []fuse.MountOption{
		fuse.FSName("fakeroot"),
		fuse.Subtype("fakeroot"),
		fuse.ReadOnly(),
		fuse.DefaultPermissions(),
	}
	if v.opts.AllowOther {
		mountOpts = append(mountOpts, fuse.AllowOther())
	}

	c, err := fuse.Mount(mountPoint, mountOpts...)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	v.conn = c
	v.served = make(chan struct{})

	go func() {
		defer close(v.served)
		if err := fusefs.Serve(c, v); err != nil {
			viewLogger.Error("FUSE server error: %v", err)
		}
	}()

	if err := waitForMount(mountPoint); err != nil {
		c.Close()
		return fmt.Errorf("mount point failed to initialize: %w", err)
	}

	viewLogger.Info("view mounted")
	return nil
}

// Wait blocks until the mounted view stops serving, typically after an
// Unmount or an external umount.
func (v *ViewFS) Wait() {
	if v.served != nil {
		<-v.served
	}
}

// Unmount cleanly unmounts the view.
func (v *ViewFS) Unmount(mountPoint string) error {
	viewLogger.Info("unmounting view from %s", mountPoint)
	if v.conn == nil {
		return nil
	}
	if err := fuse.Unmount(mountPoint); err != nil {
		viewLogger.Error("unmount failed: %v", err)
		return err
	}
	return nil
}

func waitForMount(mountPoint string) error {
	for i := 0; i < 30; i++ {
		info, err := os.Stat(mountPoint)
		if err == nil && info.IsDir() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("mount point not available after 3 seconds")
}

func safeInt64ToUint64(n int64) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}

func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	return uint32(n)
}
