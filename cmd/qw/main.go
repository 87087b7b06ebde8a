package main

import (
	"os"

	"github.com/alfredjeanlab/quotewidget/internal/client"
	"github.com/alfredjeanlab/quotewidget/internal/ui"
	"github.com/spf13/cobra"
)

var (
	httpURL    string
	authToken  string
	jsonOutput bool
	noColor    bool

	widgetClient client.WidgetClient
)

func defaultHTTPURL() string {
	if s := os.Getenv("QW_HTTP_URL"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

var rootCmd = &cobra.Command{
	Use:          "qw <command>",
	Short:        "Quote widget service and CLI client",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor || !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		widgetClient = client.NewHTTPClient(httpURL, authToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if widgetClient != nil {
			widgetClient.Close()
		}
	},
}

// localPreRun is used by commands that never talk to a server.
func localPreRun(cmd *cobra.Command, args []string) error {
	if noColor || !ui.ShouldUseColor() {
		ui.ForceNoColor()
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "HTTP server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", os.Getenv("QW_AUTH_TOKEN"), "bearer token for the server")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colour output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "widgets", Title: "Widgets:"},
		&cobra.Group{ID: "settings", Title: "Settings:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false

	// Widgets
	rootCmd.AddCommand(widgetCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(watchCmd)

	// Settings
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(defaultsCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(backupCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
