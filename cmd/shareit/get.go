package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shareit/pkg/client"
	"shareit/pkg/naming"
	"shareit/pkg/ui"
)

var getOutput string

var getCmd = &cobra.Command{
	Use:   "get LINK",
	Short: "Download a shared file",
	Long: `Download a shared file by its share link or stored name. The file is saved
under its original name unless --output is given; "-" writes to stdout.

Examples:
  shareit get http://localhost:5000/uploads/1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed-a.txt
  shareit get 1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed-a.txt -o copy.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "", "Output file path, or - for stdout")
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	c := newClient()
	link := args[0]

	if getOutput == "-" {
		_, err := c.Get(ctx, link, cmd.OutOrStdout())
		return err
	}

	target := getOutput
	if target == "" {
		target = outputName(client.StoredName(link))
	}

	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}

	n, err := c.Get(ctx, link, file)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(target)
		if client.IsNotFound(err) {
			return errors.New("file not found on server")
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatSuccess(fmt.Sprintf("Saved %s (%s)", target, humanize.IBytes(uint64(n)))))
	return nil
}

// outputName prefers the original upload name recovered from the stored name.
func outputName(stored string) string {
	if original := naming.Original(stored); original != "" {
		return original
	}
	return naming.Sanitize(stored)
}
