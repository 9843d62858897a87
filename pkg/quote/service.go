package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cross-chain-flow/pkg/integration"
	"cross-chain-flow/pkg/metrics"
	"cross-chain-flow/pkg/parser"
	"cross-chain-flow/pkg/route"
	"cross-chain-flow/pkg/types"
)

// DefaultTTL is the quote lifetime in seconds when the upstream payload has none
const DefaultTTL = 900

// Fetcher returns the raw multi-provider quote for a request
type Fetcher interface {
	FetchQuote(ctx context.Context, req *types.SwapRequest) (*types.RawQuote, error)
}

// Service runs the quote pipeline: fetch, normalize, validate, filter, rank
type Service struct {
	fetcher    Fetcher
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	defaultTTL int
	debug      bool
}

// Options configures a Service
type Options struct {
	DefaultTTL int
	Debug      bool
	Metrics    *metrics.Metrics
	Logger     zerolog.Logger
}

// NewService creates a quote service on top of fetcher
func NewService(fetcher Fetcher, opts Options) *Service {
	ttl := opts.DefaultTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New(nil)
	}
	return &Service{
		fetcher:    fetcher,
		metrics:    m,
		logger:     opts.Logger.With().Str("component", "quote").Logger(),
		defaultTTL: ttl,
		debug:      opts.Debug,
	}
}

// run tracks the stage of one pipeline invocation
type run struct {
	svc     *Service
	logger  zerolog.Logger
	stage   Stage
	entered time.Time
}

func (r *run) enter(next Stage) {
	if !r.stage.CanTransition(next) {
		r.logger.Error().Str("from", string(r.stage)).Str("to", string(next)).Msg("Unexpected stage transition")
	}
	now := time.Now()
	r.svc.metrics.StageDuration.WithLabelValues(string(r.stage)).Observe(now.Sub(r.entered).Seconds())
	r.logger.Debug().Str("from", string(r.stage)).Str("to", string(next)).Msg("Stage transition")

	r.stage = next
	r.entered = now
	if next.Terminal() {
		r.svc.metrics.Requests.WithLabelValues(string(next)).Inc()
	}
}

// Quote validates req and runs it through the pipeline. Request validation failures
// return a *parser.RequestValidationError, a failed fetch returns the fetcher's error.
// An empty route list is not an error.
func (s *Service) Quote(ctx context.Context, req *types.SwapRequest) (*types.QuoteResponse, error) {
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	r := &run{
		svc:     s,
		logger:  s.logger.With().Str("request_id", requestID).Logger(),
		stage:   StageReceived,
		entered: time.Now(),
	}

	if err := parser.ValidateSwapRequest(req); err != nil {
		r.enter(StageFetchFailed)
		return nil, err
	}

	r.logger.Info().
		Str("from", req.FromAsset).
		Str("to", req.ToAsset).
		Str("amount", req.Amount).
		Msg("Quote requested")

	r.enter(StageFetching)
	raw, err := s.fetcher.FetchQuote(ctx, req)
	if err != nil {
		r.enter(StageFetchFailed)
		s.metrics.UpstreamErrors.Inc()
		r.logger.Error().Err(err).Msg("Quote fetch failed")
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}
	r.enter(StageFetched)

	for _, pe := range raw.ProviderErrors {
		kind := route.Classify(pe.Provider)
		s.metrics.ProviderErrors.WithLabelValues(string(kind)).Inc()
		r.logger.Warn().
			Str("provider", pe.Provider).
			Str("code", pe.ErrorCode).
			Str("message", pe.Message).
			Msg("Provider returned an error")
	}

	r.enter(StageNormalizing)
	normalized := make([]types.Route, 0, len(raw.Routes))
	for i, rr := range raw.Routes {
		if s.debug {
			r.logger.Debug().Int("index", i).Interface("route", rr).Msg("Raw route")
		}
		nr := route.Normalize(rr, req.Recipient)
		s.metrics.RoutesSeen.WithLabelValues(string(nr.Provider)).Inc()
		normalized = append(normalized, nr)
	}

	r.enter(StageValidating)
	for i, nr := range normalized {
		annotated, result := route.Annotate(nr)
		if !result.IsValid {
			r.logger.Debug().
				Str("provider", nr.ProviderLabel).
				Strs("errors", result.Errors).
				Msg("Route failed validation")
		}
		normalized[i] = annotated
	}
	status := integration.ComputeIntegrationStatus(normalized, raw.ProviderErrors)

	r.enter(StageFiltering)
	kept, dropped := route.Filter(normalized, req)
	for _, d := range dropped {
		s.metrics.RoutesDropped.WithLabelValues(string(d.Route.Provider)).Inc()
		r.logger.Warn().Str("provider", d.Route.ProviderLabel).Str("reason", d.Reason).Msg("Route dropped")
	}
	for _, k := range kept {
		if route.MissingRequiredMemo(k) {
			r.logger.Warn().Str("provider", k.ProviderLabel).Msg("Route kept without required memo")
		}
	}

	r.enter(StageRanking)
	ranked := route.Rank(kept)

	resp := &types.QuoteResponse{
		Routes:            ranked,
		BestRoute:         route.Best(ranked),
		IntegrationStatus: status,
		ProviderErrors:    raw.ProviderErrors,
	}
	if len(ranked) > 0 {
		resp.ExpiresIn = s.defaultTTL
		if raw.TTL != nil {
			resp.ExpiresIn = *raw.TTL
		}
	}

	r.enter(StageResponded)
	r.logger.Info().
		Int("routes", len(ranked)).
		Int("dropped", len(dropped)).
		Int("provider_errors", len(raw.ProviderErrors)).
		Msg("Quote ready")

	return resp, nil
}

type requestIDKey struct{}

// WithRequestID attaches a request id that Quote uses instead of generating one
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}
