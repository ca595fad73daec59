package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shareit/pkg/client"
	"shareit/pkg/ui"
)

var uploadNoClipboard bool

var uploadCmd = &cobra.Command{
	Use:   "upload FILE...",
	Short: "Upload files and print their share links",
	Long: `Upload one or more files. Each successful upload prints its share link and
copies it to the clipboard. Files larger than 100 MiB are rejected locally.

Examples:
  shareit upload report.pdf
  shareit upload --server https://files.example.com a.txt b.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadNoClipboard, "no-clipboard", false, "Do not copy links to the clipboard")
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	c := newClient()
	session := client.NewSession()
	failed := 0

	for _, path := range args {
		if err := uploadOne(ctx, cmd, c, session, path); err != nil {
			failed++
			fmt.Fprintln(cmd.ErrOrStderr(), ui.FormatError(err.Error()))
		}
		if ctx.Err() != nil {
			break
		}
	}

	if session.Len() > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprint(cmd.OutOrStdout(), renderHistory(session.Entries()))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(args))
	}
	return nil
}

func uploadOne(ctx context.Context, cmd *cobra.Command, c *client.Client, session *client.Session, path string) error {
	attempt := client.NewAttempt()
	if err := attempt.Select(); err != nil {
		return err
	}

	stat, err := os.Stat(path)
	if err != nil {
		_ = attempt.Reset()
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := attempt.Choose(filepath.Base(path), stat.Size()); err != nil {
		if errors.Is(err, client.ErrFileTooLarge) {
			return fmt.Errorf("%s is too large to share (%s, limit %s)", filepath.Base(path),
				humanize.IBytes(uint64(stat.Size())), humanize.IBytes(uint64(client.MaxFileSize)))
		}
		return err
	}
	if err := attempt.Start(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.FormatRocket(fmt.Sprintf("Uploading %s (%s)", filepath.Base(path), humanize.IBytes(uint64(stat.Size())))))

	result, err := c.Upload(ctx, path, func(pct int) {
		_ = attempt.Progress(pct)
		fmt.Fprintf(out, "\r%s", ui.RenderProgress(pct))
	})
	fmt.Fprintln(out)

	if err != nil {
		_ = attempt.Fail(err)
		return fmt.Errorf("upload of %s failed: %w", filepath.Base(path), err)
	}
	_ = attempt.Succeed(result.URL)
	session.Add(result)

	fmt.Fprintln(out, ui.FormatSuccess("Uploaded "+result.Name))
	fmt.Fprintln(out, ui.FormatLink(attempt.Link()))
	copyLink(cmd, attempt.Link())

	return attempt.Reset()
}

func copyLink(cmd *cobra.Command, link string) {
	if uploadNoClipboard {
		return
	}
	if err := clipboard.WriteAll(link); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.FormatWarning("Clipboard access failed, please copy the link manually"))
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatMuted("(copied to clipboard)"))
}

func renderHistory(entries []client.Entry) string {
	table := ui.NewTable(
		ui.TableColumn{Header: "FILE"},
		ui.TableColumn{Header: "SIZE", Align: "right"},
		ui.TableColumn{Header: "LINK"},
	)
	for _, entry := range entries {
		table.AddRow(entry.Name, humanize.IBytes(uint64(entry.Size)), entry.URL)
	}
	return table.Render()
}
