package redirect

import (
	"path/filepath"
	"strings"

	"github.com/acheronfail/fakeroot/internal/logging"
)

var (
	pathLogger = logging.GetLogger().WithPrefix("path")
)

// HostPath is a path as the host process names it, resolved to a
// canonical absolute form. "." and ".." segments are folded away at
// construction so a traversal can neither escape the shadow tree nor
// dodge the redirection decision.
type HostPath struct {
	// always absolute and cleaned
	path string
}

// ResolveHostPath builds a HostPath from a raw path and the directory it
// is relative to. base is ignored for absolute paths. An empty raw path
// resolves to base itself.
func ResolveHostPath(raw, base string) HostPath {
	resolved := raw
	if !filepath.IsAbs(raw) {
		resolved = filepath.Join(base, raw)
	}
	cleaned := filepath.Clean(resolved)
	if !filepath.IsAbs(cleaned) {
		// base was relative or empty; anchor at / rather than guessing
		cleaned = filepath.Clean("/" + cleaned)
	}
	pathLogger.Trace("resolving host path: %q + %q -> %q", base, raw, cleaned)
	return HostPath{path: cleaned}
}

// String returns the canonical absolute path
func (hp HostPath) String() string {
	return hp.path
}

// IsFSRoot returns true for the filesystem root "/"
func (hp HostPath) IsFSRoot() bool {
	return hp.path == "/"
}

// Within reports whether the path is root itself or lies below it.
func (hp HostPath) Within(root string) bool {
	if root == "" {
		return false
	}
	if hp.path == root {
		return true
	}
	return strings.HasPrefix(hp.path, strings.TrimSuffix(root, "/")+"/")
}

// Shadow returns the candidate path for this host path inside the given
// shadow root: root joined with the absolute host path.
func (hp HostPath) Shadow(root string) string {
	candidate := filepath.Join(root, hp.path)
	pathLogger.Trace("shadow candidate: %q + %q -> %q", root, hp.path, candidate)
	return candidate
}
