// Package mcp exposes the assistant service as an MCP server so other
// agent hosts can drive conversations over the Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/scrumhand/scrumhand"
	"github.com/scrumhand/scrumhand/pkg/domain"
)

// ChatResponse is the structured result of the chat tool.
type ChatResponse struct {
	SessionID string           `json:"session_id" jsonschema_description:"The session the turn ran in"`
	Messages  []domain.Message `json:"messages" jsonschema_description:"Messages appended by the turn"`
}

// Server wraps the assistant service and exposes it as an MCP Server.
type Server struct {
	service   *scrumhand.Service
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(service *scrumhand.Service) *Server {
	s := &Server{
		service:   service,
		mcpServer: server.NewMCPServer("scrumhand-mcp", strings.TrimSpace(scrumhand.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: chat
	chatTool := mcp.NewTool("chat",
		mcp.WithDescription("Send a message to an assistant and get the resulting messages, including tool activity."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation session ID. Reuse it to continue a conversation.")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user message")),
		mcp.WithString("agent_id", mcp.Description("Agent to talk to (defaults to the JIRA assistant)")),
		mcp.WithNumber("max_steps", mcp.Description("Step budget override for new sessions")),
		mcp.WithOutputSchema[ChatResponse](),
	)
	s.mcpServer.AddTool(chatTool, mcp.NewStructuredToolHandler(s.handleChat))

	// TOOL: list_agents
	s.mcpServer.AddTool(mcp.NewTool("list_agents",
		mcp.WithDescription("List the configured assistants."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(s.agentsJSON()), nil
	})

	// TOOL: get_session
	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Get the full transcript of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session ID")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := request.GetString("session_id", "")
		state, err := s.service.History(ctx, sessionID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(state)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	// TOOL: delete_session
	s.mcpServer.AddTool(mcp.NewTool("delete_session",
		mcp.WithDescription("Delete a session and its transcript."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("The session ID")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID := request.GetString("session_id", "")
		if err := s.service.DeleteSession(ctx, sessionID); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
		}
		return mcp.NewToolResultText("deleted"), nil
	})
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ChatResponse, error) {
	sessionID, _ := args["session_id"].(string)
	message, _ := args["message"].(string)
	agentID, _ := args["agent_id"].(string)

	maxSteps := 0
	if v, ok := args["max_steps"].(float64); ok {
		maxSteps = int(v)
	}

	if sessionID == "" {
		return ChatResponse{}, fmt.Errorf("session_id is required")
	}

	messages, err := s.service.Turn(ctx, agentID, sessionID, message, maxSteps)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("turn failed: %w", err)
	}

	return ChatResponse{SessionID: sessionID, Messages: messages}, nil
}

func (s *Server) agentsJSON() string {
	type agentInfo struct {
		ID          string `json:"id"`
		Description string `json:"description"`
	}
	agents := s.service.Agents()
	out := make([]agentInfo, 0, len(agents))
	for _, a := range agents {
		out = append(out, agentInfo{ID: a.ID, Description: a.Description})
	}
	jsonBytes, _ := json.Marshal(out)
	return string(jsonBytes)
}

func (s *Server) registerResources() {
	// EXPOSE: scrumhand://agents
	s.mcpServer.AddResource(mcp.NewResource("scrumhand://agents", "Configured Assistants",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "scrumhand://agents",
				MIMEType: "application/json",
				Text:     s.agentsJSON(),
			},
		}, nil
	})
}
