package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"volnudge/internal/domain"
	"volnudge/internal/logging"
	"volnudge/internal/ratelimit"
	"volnudge/internal/usecase"
)

// Server is a primary adapter that exposes the remote control over HTTP.
// It depends on the use case (primary port).
type Server struct {
	usecase usecase.RemoteControl
	limiter *ratelimit.RateLimiter
	server  *http.Server
}

// NewServer creates the HTTP server bound to addr. rateLimit caps requests
// per second from a single client address.
func NewServer(uc usecase.RemoteControl, addr string, rateLimit int) *Server {
	mux := http.NewServeMux()
	srv := &Server{
		usecase: uc,
		limiter: ratelimit.NewRateLimiter(rateLimit, ratelimit.DefaultWindowSize),
	}
	mux.HandleFunc("/api/connect", srv.handleConnect)
	mux.HandleFunc("/api/ping", srv.handlePing)
	mux.HandleFunc("/api/disconnect", srv.handleDisconnect)
	mux.HandleFunc("/api/volume", srv.handleVolume)
	mux.HandleFunc("/api/shutdown", srv.handleShutdown)
	mux.HandleFunc("/api/restart", srv.handleRestart)

	srv.server = &http.Server{
		Addr:              addr,
		Handler:           loggingMiddleware(srv.limit(mux)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start blocks and serves HTTP traffic.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type connectPayload struct {
	Password string `json:"password"`
}

type tokenPayload struct {
	Token string `json:"token"`
}

type volumePayload struct {
	Token string   `json:"token"`
	Delta *float64 `json:"delta"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req connectPayload
	if !decode(w, r, &req) {
		return
	}

	token, err := s.usecase.Connect(req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tokenPayload{Token: token})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	s.handleToken(w, r, s.usecase.Ping)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.handleToken(w, r, s.usecase.Disconnect)
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	s.handleToken(w, r, s.usecase.Shutdown)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.handleToken(w, r, s.usecase.Restart)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request, call func(string) error) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req tokenPayload
	if !decode(w, r, &req) {
		return
	}
	if err := call(req.Token); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req volumePayload
	if !decode(w, r, &req) {
		return
	}
	if req.Delta == nil {
		http.Error(w, "delta is required", http.StatusBadRequest)
		return
	}
	if err := s.usecase.ChangeVolume(req.Token, *req.Delta); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientKey(r)) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 4096)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadPassword), errors.Is(err, domain.ErrInvalidToken):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrAlreadyConnected):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrPowerDisabled):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Errorf("encode JSON: %v", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.Infof("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
