package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/acheronfail/fakeroot/internal/profile"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the stored launch profiles",
	Args:  cobra.NoArgs,
	RunE:  runProfilesList,
}

var profilesSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Save the given flags as a named profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesSave,
}

func init() {
	profilesSaveCmd.Flags().StringP("root", "r", "", "Absolute path of the shadow tree (required)")
	profilesSaveCmd.Flags().Bool("dirs", false, "Also intercept directory listings")
	profilesSaveCmd.Flags().Bool("missing", false, "Redirect even when the shadow entry does not exist")
	profilesSaveCmd.Flags().BoolP("debug", "d", false, "Log every redirection decision to stderr")
	_ = profilesSaveCmd.MarkFlagRequired("root")
	profilesCmd.AddCommand(profilesSaveCmd)
	rootCmd.AddCommand(profilesCmd)
}

func openProfileStore() (*profile.Manager, error) {
	path, err := profile.DefaultPath()
	if err != nil {
		return nil, err
	}
	return profile.NewManager(path)
}

func runProfilesList(cmd *cobra.Command, _ []string) error {
	mgr, err := openProfileStore()
	if err != nil {
		return err
	}
	file, err := mgr.Load()
	if err != nil {
		return err
	}
	if len(file.Profiles) == 0 {
		cmd.Println("no profiles")
		return nil
	}

	names := make([]string, 0, len(file.Profiles))
	for name := range file.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := file.Profiles[name]
		extras := ""
		if p.InterceptDirs {
			extras += " dirs"
		}
		if p.RedirectMissing {
			extras += " missing"
		}
		if p.Debug {
			extras += " debug"
		}
		cmd.Printf("%s\troot=%s%s\n", name, p.Root, extras)
	}
	return nil
}

func runProfilesSave(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	dirs, _ := cmd.Flags().GetBool("dirs")
	missing, _ := cmd.Flags().GetBool("missing")
	debug, _ := cmd.Flags().GetBool("debug")

	mgr, err := openProfileStore()
	if err != nil {
		return err
	}
	file, err := mgr.Load()
	if err != nil {
		return err
	}
	file.Profiles[args[0]] = profile.Profile{
		Root:            root,
		InterceptDirs:   dirs,
		RedirectMissing: missing,
		Debug:           debug,
	}
	if err := mgr.Save(file); err != nil {
		return fmt.Errorf("saving profiles: %w", err)
	}
	cmd.Printf("saved profile %q\n", args[0])
	return nil
}
