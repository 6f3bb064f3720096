package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/naka-gawa/github-social-card/internal/card"
	"github.com/naka-gawa/github-social-card/internal/gateway"
	"github.com/naka-gawa/github-social-card/internal/render"
	"github.com/naka-gawa/github-social-card/internal/usecase"
)

const (
	sourceREST    = "rest"
	sourceGraphQL = "graphql"
)

// addCardFlags registers the flags shared by every command that builds cards.
func addCardFlags(fs *pflag.FlagSet) {
	fs.String("template", card.DefaultTemplatePath, "Card template, relative to the working directory")
	fs.String("source", sourceREST, "Metadata source: rest or graphql (graphql needs GITHUB_TOKEN)")
	fs.String("api-url", "", "GitHub Enterprise base URL, e.g. https://ghe.example.com/ (REST uses /api/v3/, GraphQL /api/graphql; default: github.com)")
	fs.String("chrome-bin", "", "Browser executable (default: look up or download Chromium)")
	fs.Duration("settle", render.DefaultSettle, "Network idle time to wait for before the screenshot")
	fs.Duration("render-timeout", 0, "Abort a render after this long (0 disables)")
	fs.Bool("no-sandbox", false, "Run the browser without its sandbox (needed when running as root in containers)")
}

// newLogger returns a logger that discards output unless --verbose is set.
func newLogger(cmd *cobra.Command) *log.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
	if verbose {
		logger.SetOutput(os.Stderr) // If verbose, log to standard error.
	}
	return logger
}

// newFetcher picks the metadata gateway named by --source.
func newFetcher(cmd *cobra.Command, logger *log.Logger) (gateway.Fetcher, error) {
	source, _ := cmd.Flags().GetString("source")
	apiURL, _ := cmd.Flags().GetString("api-url")
	token := os.Getenv("GITHUB_TOKEN")

	switch source {
	case sourceREST:
		g, err := gateway.NewGitHubGateway(token, apiURL, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	case sourceGraphQL:
		g, err := gateway.NewGraphQLGateway(token, apiURL, logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown --source %q, want %q or %q", source, sourceREST, sourceGraphQL)
	}
}

// newCardGenerator wires the use case from the persistent flags.
func newCardGenerator(cmd *cobra.Command, logger *log.Logger) (*usecase.CardGenerator, error) {
	fetcher, err := newFetcher(cmd, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub gateway: %w", err)
	}

	templatePath, _ := cmd.Flags().GetString("template")
	templates, err := card.NewTemplateStore(templatePath)
	if err != nil {
		return nil, err
	}
	logger.Printf("Using template %s", templates.Path())

	bin, _ := cmd.Flags().GetString("chrome-bin")
	settle, _ := cmd.Flags().GetDuration("settle")
	timeout, _ := cmd.Flags().GetDuration("render-timeout")
	noSandbox, _ := cmd.Flags().GetBool("no-sandbox")
	renderer := render.NewBrowserRenderer(render.Options{
		Bin:       bin,
		Settle:    settle,
		Timeout:   timeout,
		NoSandbox: noSandbox,
	}, logger)

	return usecase.NewCardGenerator(fetcher, templates, renderer, logger), nil
}
