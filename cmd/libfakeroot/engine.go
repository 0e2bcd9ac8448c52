package main

import (
	"sync"

	"github.com/acheronfail/fakeroot/internal/config"
	"github.com/acheronfail/fakeroot/internal/logging"
	"github.com/acheronfail/fakeroot/internal/redirect"
)

// The engine is assembled lazily on the first hooked call rather than in
// an init function: library constructors run while the dynamic linker
// still holds internal locks, and the less that happens there the
// better. sync.Once gives every concurrent first caller the same fully
// built translator.
var (
	engineOnce sync.Once

	cfg        *config.Configuration
	guard      *redirect.Guard
	translator *redirect.Translator
	hookLogger *logging.Logger
)

func engine() *redirect.Translator {
	engineOnce.Do(func() {
		cfg = config.Get()
		guard = redirect.NewGuard()
		translator = redirect.NewTranslator(cfg, libcTable{}, guard)
		hookLogger = logging.GetLogger().WithPrefix("hook")
		if cfg.Disabled() {
			hookLogger.Debug("no %s configured, passing all calls through", config.EnvRoot)
		} else {
			hookLogger.Debug("interception active: root=%q", cfg.Root)
		}
	})
	return translator
}

// effectivePath translates one requested path. ok is false when the
// caller must forward the original arguments untouched: redirection
// disabled, no shadow entry, or the calling thread is already inside
// the translator (the guard breaks that recursion).
func effectivePath(path string, dirfd int, followSymlinks bool) (effective string, ok bool) {
	tr := engine()
	if guard.Active() {
		return "", false
	}
	d := tr.Translate(path, dirfd, followSymlinks)
	if !d.Redirected {
		return "", false
	}
	return d.Path, true
}

// interceptDirs reports whether opendir is part of the intercepted set
// for this process.
func interceptDirs() bool {
	engine()
	return cfg.InterceptDirs
}
