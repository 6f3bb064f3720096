package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-social-card/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves repository cards at GET /{owner}/{repo}",
	Long:  `Starts an HTTP server that answers GET /{owner}/{repo} with the PNG social card of that repository.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := newLogger(cmd)
		port, _ := cmd.Flags().GetInt("port")
		grace, _ := cmd.Flags().GetDuration("shutdown-grace")

		generator, err := newCardGenerator(cmd, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set up card generator: %v\n", err)
			os.Exit(1)
		}

		addr := ":" + strconv.Itoa(port)
		fmt.Fprintln(os.Stderr, addr)
		if err := server.New(generator, logger).ListenAndServe(ctx, addr, grace); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 3000, "Port to listen on")
	serveCmd.Flags().Duration("shutdown-grace", 10*time.Second, "Time allowed for in-flight requests on shutdown")
}
