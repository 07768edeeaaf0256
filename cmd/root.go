package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/example/sharesheet/gui"
	"github.com/example/sharesheet/internal/share"
	"github.com/example/sharesheet/pkg/ui"
)

var (
	assetsFS fs.FS
	cfg      *share.Config
)

var rootCmd = &cobra.Command{
	Use:   "sharesheet",
	Short: "Sharesheet hands text, links and files to the desktop share targets",
	Long: heredoc.Doc(`
		Sharesheet hands text, links and files to the desktop's share targets.

		Run without a subcommand to open the window. Files shared from the
		window or the command line are staged in a private temporary directory
		and deleted as soon as the share completes.
	`),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A .env in the working directory may set BEAVER_SHARE_* values; it never
		// overrides variables already in the environment.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		c, err := share.GetConfig()
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closer := gui.NewLogger(cfg.Level())
		defer closer.Close()
		return gui.Run(assetsFS, cfg, logger)
	},
}

func Execute(assets fs.FS) {
	assetsFS = assets
	if err := rootCmd.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}
