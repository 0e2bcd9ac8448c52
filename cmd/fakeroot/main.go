// fakeroot wraps a command so that its filesystem calls are redirected
// into a shadow tree. It sets the FAKE_ROOT environment contract,
// prepends the preload shared object to LD_PRELOAD and execs the target:
//
//	fakeroot --root /tmp/shadow -- cat /etc/hosts
//
// The mount subcommand serves the same effective tree as a read-only
// FUSE filesystem instead, which also covers statically linked binaries.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/acheronfail/fakeroot/internal/logging"
)

var (
	logger = logging.GetLogger()
)

var rootCmd = &cobra.Command{
	Use:   "fakeroot [flags] -- command [args...]",
	Short: "Run a command with its filesystem calls redirected into a shadow tree",
	Long: `fakeroot runs a command under a preload library that redirects a fixed
set of libc filesystem calls into a shadow directory tree. Paths that
exist under the shadow root are served from there; everything else
reaches the real filesystem untouched.`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runLaunch,
}

func init() {
	rootCmd.Flags().StringP("root", "r", "", "Absolute path of the shadow tree (required unless --profile supplies one)")
	rootCmd.Flags().Bool("dirs", false, "Also intercept directory listings")
	rootCmd.Flags().Bool("missing", false, "Redirect even when the shadow entry does not exist")
	rootCmd.Flags().BoolP("debug", "d", false, "Log every redirection decision to stderr")
	rootCmd.Flags().String("lib", "", "Path to the preload shared object (default: next to this binary)")
	rootCmd.Flags().String("env-file", "", "Load additional environment variables from this file")
	rootCmd.Flags().StringP("profile", "p", "", "Apply a named profile from the profile store")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
