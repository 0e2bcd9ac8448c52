package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string {
		return vars[key]
	}
}

func TestFromEnvironDisabledWithoutRoot(t *testing.T) {
	cfg := FromEnviron(env(map[string]string{}))
	assert.True(t, cfg.Disabled())
	assert.Empty(t, cfg.Root)
}

func TestFromEnvironRejectsRelativeRoot(t *testing.T) {
	cfg := FromEnviron(env(map[string]string{
		EnvRoot: "tmp/root",
	}))
	assert.True(t, cfg.Disabled(), "relative root must disable redirection")
}

func TestFromEnvironCleansRoot(t *testing.T) {
	cfg := FromEnviron(env(map[string]string{
		EnvRoot: "/tmp/root/./sub/..//",
	}))
	assert.False(t, cfg.Disabled())
	assert.Equal(t, "/tmp/root", cfg.Root)
}

func TestFromEnvironFlags(t *testing.T) {
	cfg := FromEnviron(env(map[string]string{
		EnvRoot:    "/tmp/root",
		EnvDirs:    "true",
		EnvMissing: "1",
		EnvDebug:   "YES",
	}))
	assert.True(t, cfg.InterceptDirs)
	assert.True(t, cfg.RedirectMissing)
	assert.True(t, cfg.Debug)
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "one", input: "1", want: true},
		{name: "true", input: "true", want: true},
		{name: "mixed case", input: "True", want: true},
		{name: "yes", input: "yes", want: true},
		{name: "on", input: "on", want: true},
		{name: "padded", input: " true ", want: true},
		{name: "empty", input: "", want: false},
		{name: "zero", input: "0", want: false},
		{name: "false", input: "false", want: false},
		{name: "malformed counts as unset", input: "maybe", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truthy(tt.input))
		})
	}
}
