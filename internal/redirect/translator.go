// Package redirect implements the path-redirection engine: given a path
// the host process asked for, decide whether to serve it from the shadow
// tree instead, and produce the effective path to hand to the real
// filesystem primitive.
package redirect

import (
	"github.com/acheronfail/fakeroot/internal/config"
	"github.com/acheronfail/fakeroot/internal/logging"

	"golang.org/x/sys/unix"
)

var (
	trLogger = logging.GetLogger().WithPrefix("translate")
)

// NoDirHandle marks a call that carries no directory handle; relative
// paths then resolve against the working directory, matching AT_FDCWD.
const NoDirHandle = unix.AT_FDCWD

// Decision is the transient outcome of translating one path: either the
// original path unchanged, or the shadow candidate it redirects to.
type Decision struct {
	// Path is the effective path the caller should use.
	Path string
	// Redirected is true when Path points into the shadow tree.
	Redirected bool
}

// Translator decides, per call, whether and how to rewrite a path into
// the shadow tree. It is stateless apart from the immutable settings and
// safe for concurrent use from any number of threads.
type Translator struct {
	root    string // "" means redirection is disabled
	missing bool   // redirect even when the shadow entry is absent
	table   Table
	guard   *Guard
	logger  *logging.Logger
}

// NewTranslator builds a Translator over the given configuration and
// capability table. The guard is shared with the hook layer so the
// translator's own filesystem checks are recognized as internal.
func NewTranslator(cfg *config.Configuration, table Table, guard *Guard) *Translator {
	return &Translator{
		root:    cfg.Root,
		missing: cfg.RedirectMissing,
		table:   table,
		guard:   guard,
		logger:  trLogger,
	}
}

// Guard returns the reentrancy guard this translator checks in on.
func (t *Translator) Guard() *Guard {
	return t.guard
}

// Translate maps one requested path to its effective path.
//
// dirfd carries the directory handle for *at-style calls, or NoDirHandle.
// followSymlinks mirrors the calling primitive's symlink semantics and
// only affects the existence check on the shadow candidate.
//
// Every failure inside translation falls open to "unchanged": the wrapped
// process must never behave worse than an unwrapped one.
func (t *Translator) Translate(path string, dirfd int, followSymlinks bool) Decision {
	unchanged := Decision{Path: path}

	if t.root == "" || path == "" {
		return unchanged
	}

	base := ""
	if !isAbs(path) {
		var err error
		if dirfd != NoDirHandle {
			base, err = t.table.HandlePath(dirfd)
			if err != nil {
				t.logger.Debug("cannot resolve dir handle %d: %v", dirfd, err)
				return unchanged
			}
			// A handle already inside the shadow tree means this call
			// descends from an earlier redirection; touching it again
			// would double-prefix.
			if ResolveHostPath(base, "/").Within(t.root) {
				return unchanged
			}
		} else {
			base, err = t.table.WorkingDir()
			if err != nil {
				t.logger.Debug("cannot resolve working directory: %v", err)
				return unchanged
			}
		}
	}

	hp := ResolveHostPath(path, base)

	// Already-redirected paths stay put, whatever call they arrive on.
	// This is what makes redirection idempotent under stat-then-open
	// sequences and any depth of internal re-entry.
	if hp.Within(t.root) {
		return unchanged
	}

	candidate := hp.Shadow(t.root)

	if t.missing {
		t.logger.Debug("redirect (unconditional): %q -> %q", path, candidate)
		return Decision{Path: candidate, Redirected: true}
	}

	// The existence probe may itself enter a hooked stat primitive;
	// the guard marks the span so the hook passes it straight through.
	exists := false
	t.guard.Do(func() {
		exists = t.table.Exists(candidate, followSymlinks)
	})
	if !exists {
		t.logger.Trace("no shadow entry for %q, passing through", path)
		return unchanged
	}

	t.logger.Debug("redirect: %q -> %q", path, candidate)
	return Decision{Path: candidate, Redirected: true}
}

func isAbs(path string) bool {
	return len(path) > 0 && path[0] == '/'
}
