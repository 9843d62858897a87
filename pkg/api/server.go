package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"cross-chain-flow/pkg/client"
	"cross-chain-flow/pkg/parser"
	"cross-chain-flow/pkg/quote"
	"cross-chain-flow/pkg/types"
)

const (
	maxBodySize = 1 << 20

	actionTestIntegrations = "test-integrations"
	actionIntegrationTest  = "integration-test"
)

// Quoter runs the quote pipeline
type Quoter interface {
	Quote(ctx context.Context, req *types.SwapRequest) (*types.QuoteResponse, error)
}

// StatusLookup resolves swap status by transaction hash
type StatusLookup interface {
	GetStatus(ctx context.Context, txHash string) (*types.SwapStatus, error)
}

// TokenLister lists tokens across providers
type TokenLister interface {
	List(ctx context.Context) ([]types.ProviderTokens, error)
}

// IntegrationRunner produces an integration test report
type IntegrationRunner interface {
	Run(ctx context.Context) (*types.TestReport, error)
}

// Server exposes the quote, status and token operations over HTTP
type Server struct {
	quoter      Quoter
	status      StatusLookup
	tokens      TokenLister
	integration IntegrationRunner
	gatherer    prometheus.Gatherer
	logger      zerolog.Logger
}

// Deps are the collaborators a Server dispatches to
type Deps struct {
	Quoter      Quoter
	Status      StatusLookup
	Tokens      TokenLister
	Integration IntegrationRunner
	Gatherer    prometheus.Gatherer
	Logger      zerolog.Logger
}

// NewServer creates a new HTTP server
func NewServer(deps Deps) *Server {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		quoter:      deps.Quoter,
		status:      deps.Status,
		tokens:      deps.Tokens,
		integration: deps.Integration,
		gatherer:    gatherer,
		logger:      deps.Logger.With().Str("component", "api").Logger(),
	}
}

// Handler returns the routed handler wrapped in the CORS and request-id middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /quote", s.handleQuote)
	mux.HandleFunc("POST /{$}", s.handleQuote)
	mux.HandleFunc("GET /status/{hash}", s.handleStatus)
	mux.HandleFunc("GET /tokens", s.handleTokens)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	return s.withRequestID(withCORS(mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// quoteBody is either a swap request or an action envelope
type quoteBody struct {
	Action string `json:"action"`
	types.SwapRequest
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var body quoteBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Failed to parse request body: "+err.Error())
		return
	}

	if body.Action == actionTestIntegrations {
		s.handleIntegrationTest(w, r)
		return
	}
	if body.Action != "" {
		writeJSONError(w, http.StatusBadRequest, "unknown_action", fmt.Sprintf("Unknown action %q", body.Action))
		return
	}

	req := body.SwapRequest
	resp, err := s.quoter.Quote(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIntegrationTest(w http.ResponseWriter, r *http.Request) {
	if s.integration == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_configured", "Integration testing is not configured")
		return
	}

	report, err := s.integration.Run(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"action": actionIntegrationTest,
		"report": report,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	hash := strings.TrimSpace(r.PathValue("hash"))
	if hash == "" {
		writeJSONError(w, http.StatusBadRequest, "missing_hash", "Transaction hash is required")
		return
	}

	status, err := s.status.GetStatus(r.Context(), hash)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.tokens.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Token listing failed")
		writeJSONError(w, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"providers": tokens})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// writeError maps pipeline errors onto HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := s.logger.With().Str("request_id", w.Header().Get(requestIDHeader)).Str("path", r.URL.Path).Logger()

	var validation *parser.RequestValidationError
	var upstream *client.UpstreamError
	switch {
	case errors.As(err, &validation):
		logger.Warn().Err(err).Msg("Rejected request")
		writeJSONError(w, http.StatusBadRequest, "invalid_request", validation.Error())
	case errors.As(err, &upstream):
		logger.Error().Err(err).Msg("Upstream failure")
		writeJSONError(w, http.StatusBadGateway, "upstream_error", err.Error())
	default:
		logger.Error().Err(err).Msg("Request failed")
		writeJSONError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

const requestIDHeader = "X-Request-Id"

// withRequestID tags every request with an id, reusing the caller's when present
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(quote.WithRequestID(r.Context(), id)))
		s.logger.Debug().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, errorCode, message string) {
	writeJSON(w, status, map[string]string{
		"error":   errorCode,
		"message": message,
	})
}
