// Package gateway implements the HTTP Gateway (spec.md §4.F): the single
// net/http surface exposing the RPC Dispatcher over POST /api/invoke and the
// Event Bus over a GET /api/events Server-Sent-Events stream, alongside the
// board UI's static assets.
//
// Grounded on original_source/src-tauri/src/web.rs's axum router (route
// shape, asset-serving precedence, SSE reformatting) and debug-log gating.
// No router library appears anywhere in the example corpus, so this is built
// on net/http's Go 1.22+ pattern-based ServeMux alone (see DESIGN.md).
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/Vg34100/agent-board/internal/dispatcher"
	"github.com/Vg34100/agent-board/internal/domain"
)

// Gateway serves Agent Board's HTTP API and static assets.
type Gateway struct {
	dispatcher *dispatcher.Dispatcher
	bus        domain.EventBus
	logger     domain.Logger
	debug      bool
	logAllow   []string
	assets     func() http.Handler
}

// New constructs a Gateway. logAllow extends the built-in request-log
// suppression list (see log.go).
func New(d *dispatcher.Dispatcher, bus domain.EventBus, logger domain.Logger, debug bool, logAllow []string) *Gateway {
	return &Gateway{
		dispatcher: d,
		bus:        bus,
		logger:     logger,
		debug:      debug,
		logAllow:   logAllow,
		assets:     func() http.Handler { return staticHandler(assetFS()) },
	}
}

// Handler builds the Gateway's route table.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", g.handleHealth)
	mux.HandleFunc("POST /api/invoke", g.handleInvoke)
	mux.HandleFunc("GET /api/events", g.sseHandler)
	mux.Handle("/", g.assets())

	return g.loggingMiddleware(mux)
}

func (g *Gateway) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.debugLog(r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// invokeResponse is the invoke envelope (spec.md §4.F/§8): {ok:true,data:...}
// on success, {ok:false,error:...} otherwise.
type invokeResponse struct {
	Ok    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func (g *Gateway) handleInvoke(w http.ResponseWriter, r *http.Request) {
	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, invokeResponse{Ok: false, Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	args, err := parseRequestArgs(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, invokeResponse{Ok: false, Error: err.Error()})
		return
	}

	result, err := g.dispatcher.Dispatch(r.Context(), req.Cmd, args)
	if err != nil {
		writeJSON(w, statusForError(err), invokeResponse{Ok: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, invokeResponse{Ok: true, Data: result})
}

func statusForError(err error) int {
	switch {
	case isNotFoundErr(err):
		return http.StatusNotFound
	case isBadRequestErr(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isNotFoundErr(err error) bool {
	for _, sentinel := range []error{
		domain.ErrProjectNotFound, domain.ErrTaskNotFound, domain.ErrProcessNotFound,
		domain.ErrWorktreeNotFound, domain.ErrUnknownCommand,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func isBadRequestErr(err error) bool {
	for _, sentinel := range []error{
		domain.ErrMissingArgument, domain.ErrEmptyTitle, domain.ErrEmptyMessage,
		domain.ErrInvalidStatus, domain.ErrInvalidProfile,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe binds the Gateway, preferring preferredPort and falling
// back to an OS-assigned port if it's unavailable, blocking until ctx is
// canceled.
func (g *Gateway) ListenAndServe(ctx context.Context, preferredPort int) error {
	addr := ":" + strconv.Itoa(preferredPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		g.logger.Warn("gateway", "preferred port unavailable, falling back to an OS-assigned port", "port", preferredPort, "error", err)
		listener, err = net.Listen("tcp", ":0")
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	server := &http.Server{Handler: g.Handler()}
	g.logger.Info("gateway", "listening", "addr", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(listener) }()

	select {
	case <-ctx.Done():
		return server.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
