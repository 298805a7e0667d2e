package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is announced to MCP clients.
var Version = "dev"

const streamsURI = "storefront://streams"

// ModalResponse is the structured output of render_action.
type ModalResponse struct {
	Session domain.Session `json:"session" jsonschema_description:"The modal session after opening"`
	View    *domain.View   `json:"view,omitempty" jsonschema_description:"The form surface of the action"`
}

// SubmitResponse is the structured output of submit_action.
type SubmitResponse struct {
	Dispatched bool           `json:"dispatched" jsonschema_description:"Whether a backend call was made"`
	Notice     *domain.Notice `json:"notice,omitempty" jsonschema_description:"The final notice of the call"`
}

// Actions lists the registered actions.
type Actions interface {
	IDs() []domain.ActionID
}

// Notices resolves the notice of a tracked call.
type Notices interface {
	Get(id string) (domain.Notice, bool)
}

// Entities is the read side of the entity cache.
type Entities interface {
	Streams() []domain.Stream
}

// Server exposes the modal engine as an MCP Server.
type Server struct {
	engine    ports.ModalEngine
	actions   Actions
	notices   Notices
	entities  Entities
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.ModalEngine, actions Actions, notices Notices, entities Entities, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		actions:   actions,
		notices:   notices,
		entities:  entities,
		logger:    logger,
		mcpServer: server.NewMCPServer("storefront-mcp", strings.TrimSpace(Version)),
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
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_actions",
		mcp.WithDescription("List the modal actions the storefront supports."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.actions.IDs())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	renderTool := mcp.NewTool("render_action",
		mcp.WithDescription("Open the modal for an action and return its form. Replaces any open modal."),
		mcp.WithString("action_id", mcp.Required(), mcp.Description("The action to open, e.g. createStream")),
		mcp.WithString("title", mcp.Description("Modal title (optional)")),
		mcp.WithString("context", mcp.Description("JSON object with the opener's data, e.g. {\"product_id\":\"p1\"}")),
		mcp.WithOutputSchema[ModalResponse](),
	)
	s.mcpServer.AddTool(renderTool, mcp.NewStructuredToolHandler(s.handleRender))

	submitTool := mcp.NewTool("submit_action",
		mcp.WithDescription("Open an action, fill its form and press the primary button. Waits for the backend call to settle."),
		mcp.WithString("action_id", mcp.Required(), mcp.Description("The action to submit")),
		mcp.WithString("form", mcp.Description("JSON object mapping field names to values")),
		mcp.WithString("context", mcp.Description("JSON object with the opener's data")),
		mcp.WithOutputSchema[SubmitResponse](),
	)
	s.mcpServer.AddTool(submitTool, mcp.NewStructuredToolHandler(s.handleSubmit))
}

func (s *Server) open(ctx context.Context, args map[string]interface{}) error {
	actionID, _ := args["action_id"].(string)
	title, _ := args["title"].(string)
	if actionID == "" {
		return errors.New("action_id is required")
	}

	req := domain.OpenRequest{ActionID: domain.ActionID(actionID), Title: title}
	if ctxStr, ok := args["context"].(string); ok && ctxStr != "" {
		if err := json.Unmarshal([]byte(ctxStr), &req.Context); err != nil {
			return fmt.Errorf("context must be a JSON object: %w", err)
		}
	}
	if _, err := s.engine.Open(ctx, req); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleRender(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ModalResponse, error) {
	if err := s.open(ctx, args); err != nil {
		return ModalResponse{}, fmt.Errorf("render failed: %w", err)
	}
	view, err := s.engine.Render()
	if err != nil {
		return ModalResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return ModalResponse{Session: s.engine.State(), View: &view}, nil
}

func (s *Server) handleSubmit(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SubmitResponse, error) {
	if err := s.open(ctx, args); err != nil {
		return SubmitResponse{}, fmt.Errorf("submit failed: %w", err)
	}

	form := map[string]any{}
	if formStr, ok := args["form"].(string); ok && formStr != "" {
		if err := json.Unmarshal([]byte(formStr), &form); err != nil {
			s.engine.Close()
			return SubmitResponse{}, fmt.Errorf("form must be a JSON object: %w", err)
		}
	}
	view, err := s.engine.Render()
	if err == nil {
		err = view.SetAll(form)
	}
	if err != nil {
		s.engine.Close()
		return SubmitResponse{}, fmt.Errorf("submit failed: %w", err)
	}

	ticket, err := s.engine.Submit(ctx)
	if err != nil {
		s.logger.Debug("MCP Submit: rejected", "err", err)
		return SubmitResponse{}, fmt.Errorf("submit failed: %s", domain.NoticeOf(err, err.Error()))
	}
	if ticket == nil {
		s.engine.Close()
		return SubmitResponse{Dispatched: false}, nil
	}

	if err := ticket.Wait(ctx); err != nil && ctx.Err() != nil {
		return SubmitResponse{}, fmt.Errorf("submit interrupted: %w", ctx.Err())
	}
	resp := SubmitResponse{Dispatched: true}
	if n, ok := s.notices.Get(ticket.ID()); ok {
		resp.Notice = &n
	}
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(streamsURI, "Cached sales streams",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.entities.Streams())
		if err != nil {
			return nil, fmt.Errorf("failed to encode streams: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      streamsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
