package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/acheronfail/fakeroot/internal/fs"
)

var mountCmd = &cobra.Command{
	Use:   "mount --root DIR MOUNTPOINT",
	Short: "Serve the effective tree as a read-only FUSE filesystem",
	Long: `mount presents the filesystem a wrapped command would see: every path
is resolved against the shadow tree first, with fall-through to the real
filesystem. Useful for inspecting a shadow root, and for statically
linked binaries the preload library cannot reach.`,
	Args: cobra.ExactArgs(1),
	RunE: runMount,
}

func init() {
	mountCmd.Flags().StringP("root", "r", "", "Absolute path of the shadow tree (required)")
	mountCmd.Flags().Bool("dirs", false, "Serve directory listings from the shadow tree")
	mountCmd.Flags().Bool("missing", false, "Resolve into the shadow tree even for entries it does not hold")
	mountCmd.Flags().Bool("allow-other", false, "Allow other users to read the mount")
	_ = mountCmd.MarkFlagRequired("root")
	rootCmd.AddCommand(mountCmd)
}

func runMount(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	dirs, _ := cmd.Flags().GetBool("dirs")
	missing, _ := cmd.Flags().GetBool("missing")
	allowOther, _ := cmd.Flags().GetBool("allow-other")
	mountPoint := filepath.Clean(args[0])

	view, err := fs.NewViewFS(fs.Options{
		Root:            root,
		InterceptDirs:   dirs,
		RedirectMissing: missing,
		AllowOther:      allowOther,
	})
	if err != nil {
		return fmt.Errorf("creating view: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Mounting effective tree at %s", mountPoint)
	if err := view.Mount(mountPoint); err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	logger.Info("Filesystem mounted and ready")

	go func() {
		sig := <-sigChan
		logger.Info("Received signal %v", sig)
		if err := view.Unmount(mountPoint); err != nil {
			logger.Error("Unmount error: %v", err)
		}
	}()

	view.Wait()
	logger.Info("Clean shutdown complete")
	return nil
}
