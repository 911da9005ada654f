package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scrumhand/scrumhand/config"
	mcpadapter "github.com/scrumhand/scrumhand/pkg/adapters/mcp"
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start the MCP server",
	Long: `Exposes the assistants over the Model Context Protocol. By default the
server speaks stdio; pass --sse with a port to serve SSE over HTTP instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)

		cfg, err := config.Load()
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		service, cleanup, err := buildService(cmd.Context(), cfg, logger)
		if err != nil {
			fmt.Printf("Error initializing service: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		server := mcpadapter.NewServer(service)

		ssePort, _ := cmd.Flags().GetInt("sse")
		if ssePort > 0 {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := server.ServeSSE(ctx, ssePort); err != nil {
				fmt.Printf("MCP server error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		if err := server.ServeStdio(); err != nil {
			fmt.Printf("MCP server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveMCPCmd)
	serveMCPCmd.Flags().Int("sse", 0, "Serve SSE over HTTP on the given port instead of stdio")
}
