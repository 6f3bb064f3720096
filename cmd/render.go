package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render OWNER/REPO",
	Short: "Renders one repository card to a file",
	Long:  `Renders the social card of OWNER/REPO and writes the PNG (or, with --html, the populated template) to a file.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)

		owner, repo, err := splitFullName(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		htmlOnly, _ := cmd.Flags().GetBool("html")
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = repo + ".png"
			if htmlOnly {
				output = repo + ".html"
			}
		}

		generator, err := newCardGenerator(cmd, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set up card generator: %v\n", err)
			os.Exit(1)
		}

		var data []byte
		if htmlOnly {
			var html string
			html, err = generator.GenerateHTML(ctx, owner, repo)
			data = []byte(html)
		} else {
			data, err = generator.Generate(ctx, owner, repo)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate card: %v\n", err)
			os.Exit(1)
		}

		if err := os.WriteFile(output, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", output, err)
			os.Exit(1)
		}
		fmt.Println(output)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringP("output", "o", "", "Output file (default: REPO.png, or REPO.html with --html)")
	renderCmd.Flags().Bool("html", false, "Write the populated HTML instead of rendering it")
}

// splitFullName splits an "owner/repo" argument into its two segments.
func splitFullName(fullName string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.Trim(fullName, "/"), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("expected OWNER/REPO, got %q", fullName)
	}
	return owner, repo, nil
}
