package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEnvironSetsContract(t *testing.T) {
	s := settings{
		Root:            "/tmp/shadow",
		InterceptDirs:   true,
		RedirectMissing: true,
		Debug:           true,
	}
	env := buildEnviron([]string{"HOME=/home/user"}, s, "/opt/libfakeroot.so")

	assert.Equal(t, "/tmp/shadow", lookupEnv(env, "FAKE_ROOT"))
	assert.Equal(t, "1", lookupEnv(env, "FAKE_ROOT_DIRS"))
	assert.Equal(t, "1", lookupEnv(env, "FAKE_ROOT_MISSING"))
	assert.Equal(t, "1", lookupEnv(env, "FAKE_ROOT_DEBUG"))
	assert.Equal(t, "/opt/libfakeroot.so", lookupEnv(env, "LD_PRELOAD"))
	assert.Equal(t, "/home/user", lookupEnv(env, "HOME"))
}

func TestBuildEnvironLeavesFlagsUnsetWhenOff(t *testing.T) {
	env := buildEnviron(nil, settings{Root: "/tmp/shadow"}, "/opt/libfakeroot.so")

	assert.Equal(t, "", lookupEnv(env, "FAKE_ROOT_DIRS"))
	assert.Equal(t, "", lookupEnv(env, "FAKE_ROOT_MISSING"))
	assert.Equal(t, "", lookupEnv(env, "FAKE_ROOT_DEBUG"))
}

func TestBuildEnvironAppendsToExistingPreload(t *testing.T) {
	base := []string{"LD_PRELOAD=/usr/lib/other.so"}
	env := buildEnviron(base, settings{Root: "/tmp/shadow"}, "/opt/libfakeroot.so")

	assert.Equal(t, "/usr/lib/other.so:/opt/libfakeroot.so", lookupEnv(env, "LD_PRELOAD"))
}

func TestBuildEnvironAppliesProfileExtras(t *testing.T) {
	s := settings{
		Root:  "/tmp/shadow",
		Extra: map[string]string{"TZ": "UTC", "LANG": "C"},
	}
	env := buildEnviron([]string{"LANG=en_US.UTF-8"}, s, "/opt/libfakeroot.so")

	assert.Equal(t, "UTC", lookupEnv(env, "TZ"))
	assert.Equal(t, "C", lookupEnv(env, "LANG"))
}

func TestSetEnvReplacesInPlace(t *testing.T) {
	env := []string{"A=1", "B=2"}
	env = setEnv(env, "A", "3")

	assert.Equal(t, []string{"A=3", "B=2"}, env)
}

func TestFindLibraryOrder(t *testing.T) {
	present := map[string]bool{
		"/flag/lib.so":           true,
		"/env/lib.so":            true,
		"/exe/" + libraryName:    true,
		"/exe/missing-sibling/x": false,
	}
	exists := func(path string) bool { return present[path] }

	lib, err := findLibrary("/flag/lib.so", "/env/lib.so", "/exe", exists)
	require.NoError(t, err)
	assert.Equal(t, "/flag/lib.so", lib)

	lib, err = findLibrary("", "/env/lib.so", "/exe", exists)
	require.NoError(t, err)
	assert.Equal(t, "/env/lib.so", lib)

	lib, err = findLibrary("", "", "/exe", exists)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/exe", libraryName), lib)

	_, err = findLibrary("", "", "/nowhere", exists)
	assert.Error(t, err)

	_, err = findLibrary("/flag/absent.so", "", "/exe", exists)
	assert.Error(t, err)
}
