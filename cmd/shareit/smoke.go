package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shareit/pkg/client"
	"shareit/pkg/ui"
)

var smokeCfg client.SmokeConfig

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Run end-to-end checks against a live server",
	Long: `Upload random files, fetch them back and compare bytes, check that
concurrent uploads with the same name get distinct links, and check that
unknown names return 404. Uploaded files are left on the server.`,
	Args: cobra.NoArgs,
	RunE: runSmoke,
}

func init() {
	smokeCmd.Flags().IntVar(&smokeCfg.FileSize, "size", 1024, "Test file size in bytes")
	smokeCmd.Flags().IntVar(&smokeCfg.Parallel, "parallel", 10, "Number of concurrent same-name uploads")
	smokeCmd.Flags().StringVar(&smokeCfg.Name, "name", "smoke.bin", "Original file name used for every upload")
}

func runSmoke(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	report, err := client.NewSmoke(newClient(), smokeCfg).Run(ctx)

	out := cmd.OutOrStdout()
	for _, step := range report.Steps {
		if step.Err != nil {
			fmt.Fprintln(out, ui.FormatError(fmt.Sprintf("%s (%.2fs): %v", step.Name, step.Duration.Seconds(), step.Err)))
			continue
		}
		fmt.Fprintln(out, ui.FormatSuccess(fmt.Sprintf("%s (%.2fs)", step.Name, step.Duration.Seconds())))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.RenderKeyValue("Uploads", fmt.Sprint(report.Uploads)))
	fmt.Fprintln(out, ui.RenderKeyValue("Downloads", fmt.Sprint(report.Downloads)))
	fmt.Fprintln(out, ui.RenderKeyValue("Info requests", fmt.Sprint(report.Infos)))
	fmt.Fprintln(out, ui.RenderKeyValue("Bytes moved", humanize.IBytes(uint64(report.Bytes))))
	if seconds := report.Duration.Seconds(); seconds > 0 {
		fmt.Fprintln(out, ui.RenderKeyValue("Throughput", humanize.IBytes(uint64(float64(report.Bytes)/seconds))+"/s"))
	}

	return err
}
