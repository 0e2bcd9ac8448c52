package redirect

import (
	"runtime"
	"sync"

	"golang.org/x/sys/unix"
)

// Guard is the per-thread reentrancy flag. The translator's existence
// check calls back into a stat primitive; when that primitive is hooked,
// the hook consults the guard and, finding it set, skips translation and
// delegates straight to the real implementation. Without this the first
// existence check would recurse without bound.
//
// The flag is per OS thread, not per process: host threads make
// filesystem calls concurrently and must not observe each other's spans.
type Guard struct {
	// keyed by thread id; presence means the flag is set. A thread only
	// ever stores or deletes its own key, so the map sees no contended
	// writes to the same entry.
	active sync.Map
}

// NewGuard returns a Guard with no flags set.
func NewGuard() *Guard {
	return &Guard{}
}

// Active reports whether the calling thread is inside a Do span.
func (g *Guard) Active() bool {
	_, ok := g.active.Load(unix.Gettid())
	return ok
}

// Do runs fn with the calling thread's flag set, restoring the previous
// state afterward so nested spans unwind correctly. The goroutine is
// pinned to its OS thread for the duration: the flag must be observed by
// whatever the thread calls into, not by a migrated goroutine.
func (g *Guard) Do(fn func()) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	tid := unix.Gettid()
	_, nested := g.active.Load(tid)
	g.active.Store(tid, true)
	defer func() {
		if !nested {
			g.active.Delete(tid)
		}
	}()

	fn()
}
