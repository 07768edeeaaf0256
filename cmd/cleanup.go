package cmd

import (
	"github.com/spf13/cobra"

	"github.com/example/sharesheet/internal/share"
	"github.com/example/sharesheet/pkg/ui"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete every staged file, including leftovers from earlier runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr := share.NewManager(cfg.ManagerOptions(cliLogger())...)
		if err := mgr.CleanupAll(); err != nil {
			return err
		}
		ui.Success("Removed staging directory %s", mgr.Dir())
		return nil
	},
}

var canShareCmd = &cobra.Command{
	Use:   "can-share",
	Short: "Report whether sharing works on this machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := cliLogger()
		p, err := newPresenter(logger)
		if err != nil {
			return err
		}
		s := share.NewSharer(share.NewManager(cfg.ManagerOptions(logger)...), p, share.WithSharerLogger(logger))
		defer s.Close(cmd.Context())

		if s.CanShare(nil) {
			ui.Success("Sharing is available")
		} else {
			ui.Warn("Sharing is not available: no clipboard or opener found")
		}
		return nil
	},
}

func init() {
	canShareCmd.Flags().StringVarP(&presenterFlag, "presenter", "p", "", "presenter to check: auto, terminal or system")
	rootCmd.AddCommand(cleanupCmd, canShareCmd)
}
