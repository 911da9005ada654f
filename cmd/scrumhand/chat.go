package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scrumhand/scrumhand/config"
	"github.com/scrumhand/scrumhand/internal/presentation/tui"
	"github.com/scrumhand/scrumhand/pkg/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with an assistant in the terminal",
	Long: `Starts an interactive conversation. Markdown replies are rendered when
stdout is a terminal. Type 'exit' or 'quit' to leave.`,
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

		agentID, _ := cmd.Flags().GetString("agent")
		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		interactive := term.IsTerminal(int(os.Stdout.Fd()))
		render := func(s string) string { return s }
		if interactive {
			tui.PrintBanner()
			fmt.Printf("Session: %s (resume with --session)\n\n", sessionID)

			markdown := tui.NewRenderer()
			render = func(s string) string {
				if out, err := markdown(s); err == nil {
					return out
				}
				return s
			}
		}

		reader := bufio.NewReader(os.Stdin)

		for {
			fmt.Print("> ")
			text, err := reader.ReadString('\n')
			if err != nil {
				fmt.Println()
				return
			}
			input := strings.TrimSpace(text)
			if input == "" {
				continue
			}
			if input == "exit" || input == "quit" {
				fmt.Println("Bye!")
				return
			}

			messages, err := service.Turn(cmd.Context(), agentID, sessionID, input, 0)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}

			for _, msg := range messages {
				if msg.Role != domain.RoleAssistant {
					continue
				}
				for _, call := range msg.ToolCalls {
					if interactive {
						fmt.Printf("  · %s\n", call.Name)
					}
				}
				if msg.Content != "" {
					fmt.Print(render(msg.Content))
					if !interactive {
						fmt.Println()
					}
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("agent", "a", "", "Agent to talk to (defaults to the JIRA assistant)")
	chatCmd.Flags().StringP("session", "s", "", "Session ID to resume")
}
