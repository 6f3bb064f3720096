// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "github-social-card",
	Short: "Renders social card images for GitHub repositories.",
	Long: `github-social-card fetches a repository's metadata from GitHub, fills it into
an HTML template and screenshots the result with a headless browser.
Run "serve" to expose cards over HTTP or "render" to write a single card to disk.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	addCardFlags(rootCmd.PersistentFlags())
}
