package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scrumhand/scrumhand/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "scrumhand",
	Short: "Scrumhand is a safety-gated scrum assistant for JIRA and Azure DevOps",
	Long: `Scrumhand runs tool-calling assistants for JIRA and Azure DevOps behind
a safety-moderated turn controller. It can serve an HTTP API, speak the
Model Context Protocol, or run an interactive chat in the terminal.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	levelStr, _ := cmd.Flags().GetString("log-level")
	jsonMode, _ := cmd.Flags().GetBool("log-json")

	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	if jsonMode {
		return logging.NewJSON(level)
	}
	return logging.New(level)
}
