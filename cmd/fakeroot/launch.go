package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/acheronfail/fakeroot/internal/config"
	"github.com/acheronfail/fakeroot/internal/profile"
)

// libraryName is the shared object the launcher looks for next to its
// own binary when neither --lib nor FAKE_ROOT_LIB names one.
const libraryName = "libfakeroot.so"

// settings is the resolved launch configuration: profile values first,
// then flags on top.
type settings struct {
	Root            string
	InterceptDirs   bool
	RedirectMissing bool
	Debug           bool
	Lib             string
	Extra           map[string]string
}

func runLaunch(cmd *cobra.Command, args []string) error {
	if file, _ := cmd.Flags().GetString("env-file"); file != "" {
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("loading env file: %w", err)
		}
	}

	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	if s.Root == "" {
		return fmt.Errorf("no shadow root: pass --root or a --profile that sets one")
	}
	if !filepath.IsAbs(s.Root) {
		return fmt.Errorf("shadow root must be absolute: %q", s.Root)
	}

	lib, err := findLibrary(s.Lib, os.Getenv(config.EnvLib), executableDir(), fileExists)
	if err != nil {
		return err
	}

	target, err := exec.LookPath(args[0])
	if err != nil {
		return fmt.Errorf("command not found: %w", err)
	}

	env := buildEnviron(os.Environ(), s, lib)
	logger.Debug("exec %s root=%q lib=%q", target, s.Root, lib)
	return unix.Exec(target, args, env)
}

// resolveSettings merges the selected profile (if any) with the command
// line. Flags the user actually passed win over profile values.
func resolveSettings(cmd *cobra.Command) (settings, error) {
	var s settings

	if name, _ := cmd.Flags().GetString("profile"); name != "" {
		path, err := profile.DefaultPath()
		if err != nil {
			return s, err
		}
		mgr, err := profile.NewManager(path)
		if err != nil {
			return s, err
		}
		p, err := mgr.Get(name)
		if err != nil {
			return s, err
		}
		s.Root = p.Root
		s.InterceptDirs = p.InterceptDirs
		s.RedirectMissing = p.RedirectMissing
		s.Debug = p.Debug
		s.Extra = p.Env
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		s.Root, _ = flags.GetString("root")
	}
	if flags.Changed("dirs") {
		s.InterceptDirs, _ = flags.GetBool("dirs")
	}
	if flags.Changed("missing") {
		s.RedirectMissing, _ = flags.GetBool("missing")
	}
	if flags.Changed("debug") {
		s.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("lib") {
		s.Lib, _ = flags.GetString("lib")
	}
	if s.Root != "" {
		s.Root = filepath.Clean(s.Root)
	}
	return s, nil
}

// findLibrary picks the preload shared object: the --lib flag, then
// FAKE_ROOT_LIB, then libfakeroot.so next to the launcher binary.
func findLibrary(flagLib, envLib, exeDir string, exists func(string) bool) (string, error) {
	if flagLib != "" {
		if !exists(flagLib) {
			return "", fmt.Errorf("preload library not found: %q", flagLib)
		}
		return flagLib, nil
	}
	if envLib != "" {
		if !exists(envLib) {
			return "", fmt.Errorf("preload library not found (%s): %q", config.EnvLib, envLib)
		}
		return envLib, nil
	}
	if exeDir != "" {
		candidate := filepath.Join(exeDir, libraryName)
		if exists(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("cannot locate %s: pass --lib or set %s", libraryName, config.EnvLib)
}

// buildEnviron returns a copy of base with the FAKE_ROOT contract, the
// profile's extra variables and the preload library applied. The library
// is appended to any preload list already present.
func buildEnviron(base []string, s settings, lib string) []string {
	env := make([]string, len(base))
	copy(env, base)

	env = setEnv(env, config.EnvRoot, s.Root)
	if s.InterceptDirs {
		env = setEnv(env, config.EnvDirs, "1")
	}
	if s.RedirectMissing {
		env = setEnv(env, config.EnvMissing, "1")
	}
	if s.Debug {
		env = setEnv(env, config.EnvDebug, "1")
	}

	keys := make([]string, 0, len(s.Extra))
	for k := range s.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = setEnv(env, k, s.Extra[k])
	}

	preload := lib
	if existing := lookupEnv(env, "LD_PRELOAD"); existing != "" {
		preload = existing + ":" + lib
	}
	return setEnv(env, "LD_PRELOAD", preload)
}

// setEnv replaces key in env or appends it.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}

func lookupEnv(env []string, key string) string {
	prefix := key + "="
	for _, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			return strings.TrimPrefix(kv, prefix)
		}
	}
	return ""
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Dir(exe)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
