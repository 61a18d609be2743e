package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tonimelisma/gopener/internal/classify"
	"github.com/tonimelisma/gopener/internal/upload"
)

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file and convert it to a Google document",
		Long: fmt.Sprintf(`Upload a local office file to Google Drive. Drive converts it into the
matching Google Docs, Sheets or Slides document.

Supported extensions: %v

Examples:
  gopener upload report.docx
  gopener upload budget.xlsx --folder 1AbCdEfG --open`, classify.SupportedExtensions()),
		Args: cobra.ExactArgs(1),
		RunE: runUpload,
	}

	cmd.Flags().String("folder", "", "destination folder ID (default: [upload] default_folder_id, else My Drive)")
	cmd.Flags().Bool("open", false, "open the converted document in the browser")

	return cmd
}

func runUpload(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())
	logger := cc.Logger

	folderID, err := cmd.Flags().GetString("folder")
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("folder") {
		folderID = cc.Cfg.Upload.DefaultFolderID
	}

	open, err := cmd.Flags().GetBool("open")
	if err != nil {
		return err
	}

	sess, err := NewSession(cc)
	if err != nil {
		return err
	}

	ctx, stop := interruptContext(cmd.Context(), logger)
	defer stop()

	us := sess.Uploader.NewSession(args[0], folderID, func(p upload.Progress) {
		logger.Debug("upload progress",
			slog.Int64("bytes_uploaded", p.BytesUploaded),
			slog.Int64("total_bytes", p.TotalBytes),
		)
	})

	live := !cc.Flags.Quiet && !cc.Flags.JSON && isTerminal(os.Stderr)
	done := make(chan struct{})

	var res *upload.Result

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(done)

		var runErr error
		res, runErr = us.Run(gctx)

		return runErr
	})

	if live {
		g.Go(func() error {
			renderProgress(done, us.Progress, os.Stderr, progressInterval)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if cc.Flags.JSON {
		if err := printJSON(os.Stdout, res); err != nil {
			return err
		}
	} else {
		fmt.Printf("Uploaded %s as %s\n", res.Name, res.FileType)
		fmt.Printf("ID:   %s\n", res.FileID)
		fmt.Printf("Link: %s\n", res.WebViewLink)
	}

	if open {
		browser.Stdout = os.Stderr

		if err := browser.OpenURL(res.WebViewLink); err != nil {
			logger.Warn("failed to open browser", slog.String("error", err.Error()))
			cc.Statusf("Could not open a browser; the link is above.\n")
		}
	}

	return nil
}
