// Package config captures the redirection settings from the process
// environment, exactly once per process.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/acheronfail/fakeroot/internal/logging"
)

// Environment variables consumed by the redirection layer. The launcher
// sets these before exec'ing the target; anything else (a plain shell,
// a test harness) may set them directly.
const (
	// EnvRoot is the absolute path of the shadow directory tree.
	// Unset means redirection is disabled entirely.
	EnvRoot = "FAKE_ROOT"
	// EnvDirs enables interception of the directory-open primitive.
	EnvDirs = "FAKE_ROOT_DIRS"
	// EnvMissing makes redirection apply even when the shadow path does
	// not exist, instead of falling back to the real path.
	EnvMissing = "FAKE_ROOT_MISSING"
	// EnvDebug enables decision logging to stderr.
	EnvDebug = "FAKE_ROOT_DEBUG"
	// EnvLib points the launcher at the preload shared object.
	EnvLib = "FAKE_ROOT_LIB"
)

var (
	logger = logging.GetLogger().WithPrefix("config")

	snapshot *Configuration
	once     sync.Once
)

// Configuration is the immutable snapshot of the redirection settings.
// It is populated on the first call to Get and shared read-only by all
// threads for the remainder of the process.
type Configuration struct {
	// Root is the cleaned, absolute path of the fake root, or "" when
	// redirection is disabled.
	Root string
	// InterceptDirs enables interception of opendir.
	InterceptDirs bool
	// RedirectMissing redirects even when the shadow path is absent.
	RedirectMissing bool
	// Debug enables decision logging.
	Debug bool
}

// Disabled reports whether redirection is a no-op for this process.
func (c *Configuration) Disabled() bool {
	return c.Root == ""
}

// Get returns the process-wide configuration snapshot, reading the
// environment on the first call. It never fails: a missing or unusable
// environment yields a disabled configuration, so a misconfigured host
// process runs exactly as if the layer were not loaded.
func Get() *Configuration {
	once.Do(func() {
		snapshot = FromEnviron(os.Getenv)
		if snapshot.Debug {
			logging.GetLogger().SetLevel(logging.LevelDebug)
			logger.Debug("captured configuration: root=%q dirs=%v missing=%v",
				snapshot.Root, snapshot.InterceptDirs, snapshot.RedirectMissing)
		}
	})
	return snapshot
}

// FromEnviron builds a Configuration from the given environment lookup.
// Split out from Get so the parsing rules are testable without touching
// the process environment or the snapshot.
func FromEnviron(getenv func(string) string) *Configuration {
	cfg := &Configuration{
		InterceptDirs:   truthy(getenv(EnvDirs)),
		RedirectMissing: truthy(getenv(EnvMissing)),
		Debug:           truthy(getenv(EnvDebug)),
	}

	root := getenv(EnvRoot)
	if root == "" {
		return cfg
	}
	root = filepath.Clean(root)
	if !filepath.IsAbs(root) {
		// A relative fake root would redirect to a different tree
		// depending on the process's working directory. Refuse it and
		// degrade to passthrough.
		logger.Warn("%s is not absolute, redirection disabled: %q", EnvRoot, root)
		return cfg
	}
	cfg.Root = root
	return cfg
}

// truthy parses a boolean environment value. Malformed values count as
// unset so a typo never enables behavior the user didn't ask for.
func truthy(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
