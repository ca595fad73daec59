package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shareit/pkg/ui"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the server is reachable and show its status",
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func runPing(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	c := newClient()
	welcome, err := c.Ping(ctx)
	if err != nil {
		return fmt.Errorf("server %s unreachable: %w", c.BaseURL(), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.FormatSuccess(welcome))

	status, err := c.Status(ctx)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.FormatWarning("Status unavailable: "+err.Error()))
		return nil
	}

	fmt.Fprintln(out, ui.RenderKeyValue("Server", c.BaseURL()))
	fmt.Fprintln(out, ui.RenderKeyValue("Version", status.Version))
	fmt.Fprintln(out, ui.RenderKeyValue("Uptime", status.Uptime))
	fmt.Fprintln(out, ui.RenderKeyValue("Storage", fmt.Sprintf("%s used, %s free of %s",
		humanize.IBytes(status.Storage.Used),
		humanize.IBytes(status.Storage.Available),
		humanize.IBytes(status.Storage.Total))))
	return nil
}
