// Package http exposes a local observer API over a running session:
// snapshot reads, an SSE update stream, and command injection. It is a
// read-mostly surface for dashboards and tooling; the session stays the
// single writer.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/syncroot/roomsync/internal/logging"
	"github.com/syncroot/roomsync/pkg/domain"
	"github.com/syncroot/roomsync/pkg/session"
)

// maxCommandBody bounds injected command payloads.
const maxCommandBody = 1 << 20

// Server serves the observer API for one session.
type Server[S any] struct {
	sync    *session.Synchronizer[S]
	logger  *slog.Logger
	metrics http.Handler
}

// Option configures the Server.
type Option[S any] func(*Server[S])

// WithLogger configures a request logger.
func WithLogger[S any](logger *slog.Logger) Option[S] {
	return func(s *Server[S]) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts a handler at /metrics.
func WithMetricsHandler[S any](h http.Handler) Option[S] {
	return func(s *Server[S]) {
		s.metrics = h
	}
}

// NewHandler builds the router over a session.
func NewHandler[S any](sync *session.Synchronizer[S], opts ...Option[S]) http.Handler {
	s := &Server[S]{
		sync:   sync,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Get("/session", s.sessionInfo)
	r.Get("/snapshot", s.snapshot)
	r.Get("/events", s.events)
	r.Post("/commands", s.command)
	r.Post("/save", s.save)
	r.Post("/load", s.load)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

func (s *Server[S]) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server[S]) sessionInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"phase":   string(s.sync.Phase()),
		"version": s.sync.Version(),
	})
}

func (s *Server[S]) snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"version":  s.sync.Version(),
		"snapshot": s.sync.Snapshot(),
	})
}

// events streams each published snapshot as an SSE data frame.
func (s *Server[S]) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("events: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub, cancel := s.sync.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("events: client disconnected")
			return
		case snap, ok := <-sub:
			if !ok {
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				s.logger.Error("events: snapshot encode failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// commandRequest is the POST /commands body.
type commandRequest struct {
	Kind  string          `json:"kind"`
	Topic string          `json:"topic,omitempty"`
	Class string          `json:"class,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (s *Server[S]) command(w http.ResponseWriter, r *http.Request) {
	var body commandRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxCommandBody)).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("command: invalid request body", "err", err)
		return
	}
	if body.Kind == "" {
		http.Error(w, "Missing command kind", http.StatusBadRequest)
		return
	}

	cmd := domain.Command{
		Kind:  body.Kind,
		Topic: body.Topic,
		Class: domain.DeliveryBestEffort,
	}
	if body.Class == string(domain.DeliveryReliable) {
		cmd.Class = domain.DeliveryReliable
	}
	if len(body.Data) > 0 {
		cmd.Args = body.Data
	}

	if err := s.sync.Send(r.Context(), cmd); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNotConnected) {
			status = http.StatusConflict
		}
		http.Error(w, fmt.Sprintf("Send error: %v", err), status)
		s.logger.Warn("command: send failed", "err", err, "kind", body.Kind)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server[S]) save(w http.ResponseWriter, r *http.Request) {
	blob, err := s.sync.RequestSave(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrNotConnected):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrAckTimeout):
			status = http.StatusGatewayTimeout
		}
		http.Error(w, fmt.Sprintf("Save error: %v", err), status)
		s.logger.Warn("save failed", "err", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(blob)
}

func (s *Server[S]) load(w http.ResponseWriter, r *http.Request) {
	blob, err := io.ReadAll(io.LimitReader(r.Body, maxCommandBody))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	if err := s.sync.RequestLoad(r.Context(), blob); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrDecode):
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrNotConnected):
			status = http.StatusConflict
		}
		http.Error(w, fmt.Sprintf("Load error: %v", err), status)
		s.logger.Warn("load failed", "err", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}
