package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"medvault/internal/config"
	"medvault/internal/domain"
	"medvault/internal/httputil"
)

// Channel serves one RPC channel
type Channel func(ctx context.Context, args Args) (interface{}, error)

type rpcRequest struct {
	Args Args `json:"args"`
}

// Dispatcher routes POST /rpc/{channel} calls to registered channels.
// Channels are registered at startup; the map is read-only afterwards.
type Dispatcher struct {
	channels map[string]Channel
	logger   *slog.Logger
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		channels: make(map[string]Channel),
		logger:   logger,
	}
}

// Register adds a channel. Registering a name twice is a programming error.
func (d *Dispatcher) Register(name string, ch Channel) {
	if _, dup := d.channels[name]; dup {
		panic(fmt.Sprintf("handler: channel %q registered twice", name))
	}
	d.channels[name] = ch
}

// Routes mounts the RPC endpoints on mux
func (d *Dispatcher) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", d.HealthCheck)
	mux.HandleFunc("GET /rpc", d.List)
	mux.HandleFunc("POST /rpc/{channel}", d.Call)
}

// Channels returns the registered channel names, sorted
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for name := range d.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call invokes a channel
// POST /rpc/{channel}
func (d *Dispatcher) Call(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("channel")
	ch, ok := d.channels[name]
	if !ok {
		d.handleError(w, r, name, fmt.Errorf("%w: unknown channel %q", domain.ErrNotFound, name))
		return
	}

	// An empty body is a call without arguments
	var req rpcRequest
	if err := httputil.ParseJSON(w, r, &req, config.MaxRequestBytes); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrValidation, tooLarge.Limit)
		} else {
			err = fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		d.handleError(w, r, name, err)
		return
	}

	result, err := ch(r.Context(), req.Args)
	if err != nil {
		d.handleError(w, r, name, err)
		return
	}

	httputil.RespondResult(w, result)
}

// List returns the registered channel names
// GET /rpc
func (d *Dispatcher) List(w http.ResponseWriter, r *http.Request) {
	httputil.RespondResult(w, d.Channels())
}

// HealthCheck is a simple liveness endpoint
// GET /health
func (d *Dispatcher) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
