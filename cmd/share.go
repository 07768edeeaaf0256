package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/example/sharesheet/internal/share"
)

var (
	titleFlag   string
	textFlag    string
	nameFlag    string
	verboseFlag bool
)

var shareCmd = &cobra.Command{
	Use:   "share",
	Short: "Share text, a link or a file",
	Example: heredoc.Doc(`
		$ sharesheet share text "See you at 10"
		$ sharesheet share url https://go.dev --text "Worth a read"
		$ sharesheet share file ./report.pdf --title "Q3 report"
		$ sharesheet share data ./photo.jpg --name holiday.jpg
	`),
}

var shareTextCmd = &cobra.Command{
	Use:   "text <text>...",
	Short: "Share a piece of text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		return runShare(cmd.Context(), func(ctx context.Context, s *share.Sharer) error {
			return s.ShareText(ctx, text, titleFlag)
		})
	},
}

var shareURLCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Share a link, optionally with text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShare(cmd.Context(), func(ctx context.Context, s *share.Sharer) error {
			return s.Share(ctx, share.Options{Title: titleFlag, Text: textFlag, URL: args[0]})
		})
	},
}

var shareFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Share a file in place",
	Long: heredoc.Doc(`
		Share a file in place. The file is handed to the share target as is;
		it is not copied and never deleted.
	`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShare(cmd.Context(), func(ctx context.Context, s *share.Sharer) error {
			return s.ShareFile(ctx, args[0], titleFlag)
		})
	},
}

var shareDataCmd = &cobra.Command{
	Use:   "data <path>",
	Short: "Share a copy of a file through the staging area",
	Long: heredoc.Doc(`
		Share a copy of a file. The content is encoded the way the window sends
		it, staged under a random name and deleted once the share completes.
		--name sets the name the share target sees.
	`),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readBase64(args[0], cfg.MaxPayloadSize)
		if err != nil {
			return err
		}
		name := nameFlag
		if name == "" {
			name = filepath.Base(args[0])
		}
		return runShare(cmd.Context(), func(ctx context.Context, s *share.Sharer) error {
			return s.ShareData(ctx, data, name, titleFlag)
		})
	},
}

// readBase64 reads path behind a progress bar and returns it base64 encoded.
func readBase64(path string, max int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return "", &share.Error{Op: "read", Name: path, Err: share.ErrIsDir}
	}
	if max > 0 && info.Size() > max {
		return "", &share.Error{Op: "read", Name: path, Err: share.ErrTooLarge}
	}

	var buf bytes.Buffer
	bar := progressbar.DefaultBytes(info.Size(), "reading")
	if _, err := io.Copy(io.MultiWriter(&buf, bar), f); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func init() {
	shareCmd.PersistentFlags().StringVarP(&titleFlag, "title", "t", "", "title shown by the share target")
	shareCmd.PersistentFlags().StringVarP(&presenterFlag, "presenter", "p", "", "presenter to use: auto, terminal or system")
	shareCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log staging details to stderr")
	shareURLCmd.Flags().StringVar(&textFlag, "text", "", "text to send along with the link")
	shareDataCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "file name the share target sees")

	shareCmd.AddCommand(shareTextCmd, shareURLCmd, shareFileCmd, shareDataCmd)
	rootCmd.AddCommand(shareCmd)
}
