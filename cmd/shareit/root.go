package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shareit/pkg/client"
	"shareit/pkg/ui"
)

var serverURL string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shareit",
	Short: "Share files through a ShareIt server",
	Long: ui.StylePrimary.Render("shareit") + " uploads files to a ShareIt server and prints shareable links.\n\n" +
		"The server address comes from --server, then $" + client.ServerEnv + ", then " + client.DefaultServerURL + ".",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer(), "ShareIt server base URL")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(smokeCmd)
}

func defaultServer() string {
	if env := os.Getenv(client.ServerEnv); env != "" {
		return env
	}
	return client.DefaultServerURL
}

func newClient() *client.Client {
	return client.New(serverURL)
}

// signalContext is cancelled on Ctrl-C so in-flight transfers abort cleanly.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}
