// Package profile stores named launcher configurations so a user can
// write `fakeroot --profile build -- make` instead of repeating flags.
package profile

import (
	"os"
	"path/filepath"
)

// Profile is one named launcher configuration.
type Profile struct {
	// Root is the shadow tree for this profile.
	Root string `yaml:"root"`
	// InterceptDirs enables directory-listing interception.
	InterceptDirs bool `yaml:"intercept_dirs,omitempty"`
	// RedirectMissing redirects even when the shadow entry is absent.
	RedirectMissing bool `yaml:"redirect_missing,omitempty"`
	// Debug enables decision logging in the wrapped process.
	Debug bool `yaml:"debug,omitempty"`
	// Env holds extra environment variables for the wrapped process.
	Env map[string]string `yaml:"env,omitempty"`
}

// File is the on-disk profile collection.
type File struct {
	// Named profiles
	Profiles map[string]Profile `yaml:"profiles"`

	// Version for future compatibility
	Version int `yaml:"version"`
}

// DefaultPath returns the conventional profile file location,
// $XDG_CONFIG_HOME/fakeroot/profiles.yaml or its ~/.config equivalent.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "fakeroot", "profiles.yaml"), nil
}
