package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/bdobrica/karsb/common/version"
	"github.com/bdobrica/karsb/internal/karsb/chat"
	"github.com/bdobrica/karsb/internal/karsb/dataset"
)

// maxChatBody bounds POST /chat bodies. Messages themselves are capped at
// chat.MaxMessageLen characters.
const maxChatBody = 16 << 10

// Backend is what the HTTP server needs from App.
type Backend interface {
	Ask(ctx context.Context, sender, channel, text string) (chat.Response, error)
	Status(ctx context.Context) Status
}

// Status is the runtime snapshot served on /status.
type Status struct {
	StartedAt       time.Time
	Uptime          time.Duration
	QueriesAnswered int64
	QueriesRecorded int64
	Cache           dataset.Stats
	ActiveSenders   int
	AuditLog        bool
	Matrix          bool
}

// Server exposes /health, /status and /chat.
type Server struct {
	addr    string
	backend Backend
	server  *http.Server
	mux     *http.ServeMux
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

type statusResponse struct {
	Status          string        `json:"status"`
	Version         string        `json:"version"`
	Commit          string        `json:"commit"`
	BuildTime       string        `json:"build_time"`
	StartedAt       time.Time     `json:"started_at"`
	UptimeSecs      float64       `json:"uptime_seconds"`
	QueriesAnswered int64         `json:"queries_answered"`
	QueriesRecorded int64         `json:"queries_recorded"`
	ActiveSenders   int           `json:"active_senders"`
	Cache           dataset.Stats `json:"cache"`
	AuditLog        bool          `json:"audit_log"`
	Matrix          bool          `json:"matrix"`
}

type chatRequest struct {
	Text *string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates the HTTP server without starting it.
func NewServer(addr string, backend Backend) *Server {
	mux := http.NewServeMux()
	s := &Server{addr: addr, backend: backend, mux: mux}
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /chat", s.handleChat)
	return s
}

// ServeHTTP lets tests drive the server with httptest.NewRecorder.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start listens in the background and returns once the port is open. The
// server shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("http server: listen %s: %w", s.addr, err)
	}

	s.server = &http.Server{
		Handler:      s,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("http server listening", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop shuts the server down, waiting up to five seconds for open requests.
func (s *Server) Stop() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		slog.Warn("http server shutdown error", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version.Version,
		Commit:  version.GitCommit,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.backend.Status(r.Context())
	writeJSON(w, http.StatusOK, statusResponse{
		Status:          "ok",
		Version:         version.Version,
		Commit:          version.GitCommit,
		BuildTime:       version.BuildTime,
		StartedAt:       st.StartedAt,
		UptimeSecs:      st.Uptime.Seconds(),
		QueriesAnswered: st.QueriesAnswered,
		QueriesRecorded: st.QueriesRecorded,
		ActiveSenders:   st.ActiveSenders,
		Cache:           st.Cache,
		AuditLog:        st.AuditLog,
		Matrix:          st.Matrix,
	})
}

// handleChat answers {"text": "..."} with the chat Response JSON. The sender
// used for rate limiting is the client IP.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBody)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Text == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: `missing "text" field`})
		return
	}

	resp, err := s.backend.Ask(r.Context(), clientIP(r), ChannelHTTP, *req.Text)
	if errors.Is(err, ErrRateLimited) {
		w.Header().Set("Retry-After", "60")
		writeJSON(w, http.StatusTooManyRequests, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("http: failed to encode JSON response", "err", err)
	}
}
