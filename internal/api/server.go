package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ajitpratap0/jogadas-api/internal/metrics"
	"github.com/ajitpratap0/jogadas-api/internal/store"
)

// Response messages. They are part of the public contract and never carry
// store error details.
const (
	msgNotFound     = "Variável não encontrada"
	msgUpdateFailed = "Falha ao atualizar jogadas"
	msgBadRequest   = "Requisição inválida"
	msgLiveness     = "API de jogadas rodando"
)

const maxBodyBytes = 1 << 20

// requestIDHeader carries the per-request correlation ID.
const requestIDHeader = "X-Request-ID"

// Server is the HTTP front of the counter store.
type Server struct {
	store        store.CounterStore
	metrics      *metrics.Metrics
	logger       *slog.Logger
	queryTimeout time.Duration
}

// NewServer creates a new Server with the given dependencies.
// The store is owned by the caller, which closes it after shutdown.
func NewServer(st store.CounterStore, m *metrics.Metrics, logger *slog.Logger, queryTimeout time.Duration) *Server {
	return &Server{
		store:        st,
		metrics:      m,
		logger:       logger,
		queryTimeout: queryTimeout,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Liveness only: the store is not probed.
	mux.HandleFunc("GET /{$}", s.handleLiveness)

	mux.HandleFunc("POST /incrementar-jogadas", s.handleIncrement)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return s.withRequestID(mux)
}

// --- middleware ---

// withRequestID propagates or assigns X-Request-ID and logs each request.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r.WithContext(withRequestID(r.Context(), id)))

		s.logger.Debug("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation ID attached to ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// --- handlers ---

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, msgLiveness)
}

// incrementRequest is the body accepted by POST /incrementar-jogadas.
type incrementRequest struct {
	NomeVariavel string `json:"nomeVariavel"`
}

// incrementResponse is returned by POST /incrementar-jogadas on success.
type incrementResponse struct {
	Sucesso bool  `json:"sucesso"`
	Jogadas int64 `json:"jogadas"`
}

func (s *Server) handleIncrement(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req incrementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.metrics.Inc(metrics.OutcomeInvalid)
		s.writeError(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	// A missing name is a lookup miss; there is nothing to send to the store.
	if req.NomeVariavel == "" {
		s.metrics.Inc(metrics.OutcomeNotFound)
		s.writeError(w, http.StatusNotFound, msgNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.queryTimeout)
	defer cancel()

	start := time.Now()
	value, err := s.store.Increment(ctx, req.NomeVariavel)
	s.metrics.ObserveStore(time.Since(start))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.Inc(metrics.OutcomeNotFound)
			s.writeError(w, http.StatusNotFound, msgNotFound)
			return
		}
		s.metrics.Inc(metrics.OutcomeError)
		s.logger.Error("failed to increment counter",
			"request_id", RequestID(r.Context()),
			"nome", req.NomeVariavel,
			"error", err,
		)
		s.writeError(w, http.StatusInternalServerError, msgUpdateFailed)
		return
	}

	s.metrics.Inc(metrics.OutcomeOK)
	s.writeJSON(w, http.StatusOK, incrementResponse{Sucesso: true, Jogadas: value})
}

// --- helpers ---

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"erro": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
