// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"nutriplan/internal/config"
	"nutriplan/internal/llm"
	"nutriplan/internal/planparse"
	"nutriplan/internal/storage"
)

// Completer produces one assistant message for a system+user prompt
// pair. Satisfied by *llm.Client; stubbed in tests.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// toolHandler processes one MCP tool call.
type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type PlanServer struct {
	httpServer *http.Server
	tools      map[string]toolHandler
	storage    *storage.SQLiteStorage
	completer  Completer
	codec      planparse.Codec
	upgrader   websocket.Upgrader
	log        zerolog.Logger
}

func NewPlanServer(cfg *config.Config, log zerolog.Logger) (*PlanServer, error) {
	stor, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	codec, err := planparse.ForProtocol(planparse.Protocol(cfg.Protocol))
	if err != nil {
		stor.Close()
		return nil, err
	}

	planServer := &PlanServer{
		storage: stor,
		codec:   codec,
		completer: llm.NewClient(llm.Options{
			GatewayURL: cfg.Gateway.URL,
			APIKey:     cfg.Gateway.APIKey,
			Model:      cfg.Gateway.Model,
			MaxRetries: cfg.Gateway.MaxRetries,
			Timeout:    cfg.Gateway.Timeout(),
			Logger:     log,
		}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The tool surface sits behind the proxy, not on the open web.
				return true
			},
		},
		log: log,
	}

	planServer.registerTools()

	mux := http.NewServeMux()
	mux.HandleFunc("/", planServer.handleHTTP)
	mux.HandleFunc("/chat", planServer.handleChat)
	mux.HandleFunc("/health", planServer.handleHealth)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	planServer.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	return planServer, nil
}

func (s *PlanServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	result, err := handler(r.Context(), &request)
	if err != nil {
		if err == storage.ErrNotFound {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *PlanServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *PlanServer) Start(ctx context.Context) error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("starting meal plan server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *PlanServer) Stop() error {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}

func (s *PlanServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
