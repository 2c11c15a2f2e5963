// Package httpapi exposes the command endpoint over plain HTTP and mounts
// the tool-protocol handler. It is one of the transport adapters feeding
// the ingress normalizer.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/keshon/server-banker/internal/command"
	"github.com/keshon/server-banker/internal/dispatch"
	"github.com/keshon/server-banker/internal/event"
	"github.com/keshon/server-banker/internal/ledger"
	"github.com/keshon/server-banker/internal/respond"
)

// CommandRequest is the wire shape of POST /command. The server id comes
// from the HTTP transport's configured namespace, not from the client.
type CommandRequest struct {
	Channel    string `json:"channel"`
	User       string `json:"user"`
	EventInput string `json:"event_input"`
	EventType  string `json:"event_type"`
}

// Server serves the HTTP transport.
type Server struct {
	dispatcher *dispatch.Dispatcher
	ledger     *ledger.Ledger
	registry   *command.Registry
	serverID   string
	toolHTTP   http.Handler
	verbose    bool
}

// New creates an HTTP transport adapter. toolHandler, when non-nil, is
// mounted at /mcp.
func New(d *dispatch.Dispatcher, led *ledger.Ledger, reg *command.Registry, serverID string, toolHandler http.Handler, verbose bool) *Server {
	return &Server{
		dispatcher: d,
		ledger:     led,
		registry:   reg,
		serverID:   serverID,
		toolHTTP:   toolHandler,
		verbose:    verbose,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /command", s.handleCommand)
	mux.HandleFunc("GET /healthcheck", s.handleHealthcheck)
	mux.HandleFunc("GET /api_doc", s.handleAPIDoc)
	if s.toolHTTP != nil {
		mux.Handle("/mcp", s.toolHTTP)
	}
	return mux
}

// Run starts the HTTP server and blocks until it exits or ctx is
// cancelled.
func (s *Server) Run(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("[INFO] Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	log.Printf("[INFO] HTTP server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server exited: %w", err)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintln(w, "server-banker is at your service")
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, event.ErrMalformedPayload)
		return
	}

	typ, err := event.ParseType(req.EventType)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	ev, err := event.Normalize(event.Payload{
		ServerID:  s.serverID,
		ChannelID: req.Channel,
		UserID:    req.User,
		RawInput:  req.EventInput,
	}, typ, event.SourceHTTP)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if s.verbose {
		log.Printf("[DEBUG] HTTP command from %s: %q", ev.UserID, ev.RawInput)
	}

	env := respond.Format(s.dispatcher.Dispatch(r.Context(), ev))
	s.writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.ledger.Ping(ctx); err != nil {
		log.Printf("[ERR] Healthcheck failed: %v", err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	fmt.Fprintln(w, "OK")
}

// apiDoc is the self-description returned by GET /api_doc.
type apiDoc struct {
	Routes   []routeDoc   `json:"routes"`
	Commands []commandDoc `json:"commands"`
}

type routeDoc struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	About  string `json:"about"`
}

type commandDoc struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases,omitempty"`
	Category    string   `json:"category"`
}

func (s *Server) handleAPIDoc(w http.ResponseWriter, _ *http.Request) {
	doc := apiDoc{
		Routes: []routeDoc{
			{Method: "POST", Path: "/command", About: "submit a command or echo event"},
			{Method: "GET", Path: "/healthcheck", About: "dispatcher and store health"},
			{Method: "GET", Path: "/api_doc", About: "this document"},
		},
	}
	if s.toolHTTP != nil {
		doc.Routes = append(doc.Routes, routeDoc{Method: "POST", Path: "/mcp", About: "tool-invocation protocol endpoint"})
	}
	for _, cmd := range s.registry.All() {
		doc.Commands = append(doc.Commands, commandDoc{
			Name:        cmd.Name(),
			Description: cmd.Description(),
			Aliases:     cmd.Aliases(),
			Category:    cmd.Category(),
		})
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERR] Failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	env := respond.Format(command.Result{Err: err})
	s.writeJSON(w, status, env)
}
