package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"cross-chain-flow/pkg/probe"
	"cross-chain-flow/pkg/types"
)

// maxResponseSize caps how much of an upstream body is read
const maxResponseSize = 8 << 20

// Options configures an AggregatorClient
type Options struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration // per upstream call
	RateLimit float64       // requests per second, 0 disables limiting
	Debug     bool          // log raw upstream payloads
	Logger    zerolog.Logger
}

// AggregatorClient talks to the multi-provider quoting API
type AggregatorClient struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	debug      bool
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewAggregatorClient creates a new aggregator API client
func NewAggregatorClient(opts Options) *AggregatorClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &AggregatorClient{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		timeout: timeout,
		debug:   opts.Debug,
		httpClient: &http.Client{
			// Backstop for callers that pass a context without deadline
			Timeout: timeout + 5*time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  opts.Logger.With().Str("component", "aggregator").Logger(),
	}
}

// quoteRequest is the aggregator's quote body. All providers are requested at once.
type quoteRequest struct {
	SellAsset          string   `json:"sellAsset"`
	BuyAsset           string   `json:"buyAsset"`
	SellAmount         string   `json:"sellAmount"`
	DestinationAddress string   `json:"destinationAddress"`
	Providers          []string `json:"providers"`
	IncludeTx          bool     `json:"includeTx"`
}

// quoteEnvelope keeps every field untyped so one oddly shaped field cannot fail the decode
type quoteEnvelope struct {
	Routes         any `json:"routes"`
	ProviderErrors any `json:"providerErrors"`
	TTL            any `json:"ttl"`
	Message        any `json:"message"`
	Error          any `json:"error"`
}

// FetchQuote requests routes from every provider in one call.
//
// A non-2xx response whose JSON body still carries routes or a providerErrors array is
// returned as a partial result. UpstreamError is returned only when nothing usable came back.
func (c *AggregatorClient) FetchQuote(ctx context.Context, req *types.SwapRequest) (*types.RawQuote, error) {
	providers := make([]string, len(types.Providers))
	for i, p := range types.Providers {
		providers[i] = string(p)
	}

	body := quoteRequest{
		SellAsset:          req.FromAsset,
		BuyAsset:           req.ToAsset,
		SellAmount:         req.Amount,
		DestinationAddress: req.Recipient,
		Providers:          providers,
		IncludeTx:          true,
	}

	status, respBody, err := c.do(ctx, http.MethodPost, "/quote", body)
	if err != nil {
		return nil, &UpstreamError{Message: "request failed", Err: err}
	}

	if c.debug {
		c.logger.Debug().Int("status", status).RawJSON("payload", safeRaw(respBody)).Msg("Raw quote payload")
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, &UpstreamError{StatusCode: status, Message: "empty response body"}
	}

	var env quoteEnvelope
	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return nil, &UpstreamError{StatusCode: status, Message: truncate(string(respBody)), Err: err}
	}

	quote := c.toRawQuote(&env)

	ok := status >= 200 && status < 300
	if !ok {
		// Partial failure: one provider down but others answered
		if len(quote.Routes) > 0 || quote.ProviderErrors != nil {
			c.logger.Warn().
				Int("status", status).
				Int("routes", len(quote.Routes)).
				Int("provider_errors", len(quote.ProviderErrors)).
				Msg("Aggregator returned non-success status with usable payload")
			return quote, nil
		}
		return nil, &UpstreamError{StatusCode: status, Message: errorMessage(&env, respBody)}
	}

	return quote, nil
}

// GetStatus looks up the execution status of a swap by its inbound transaction hash
func (c *AggregatorClient) GetStatus(ctx context.Context, txHash string) (*types.SwapStatus, error) {
	status, respBody, err := c.do(ctx, http.MethodPost, "/track", map[string]string{"hash": txHash})
	if err != nil {
		return nil, &UpstreamError{Message: "request failed", Err: err}
	}

	notFound := &types.SwapStatus{
		Status:  types.StatusNotFound,
		Message: fmt.Sprintf("transaction %s not found", txHash),
		TxHash:  txHash,
	}

	if status == http.StatusNotFound || len(bytes.TrimSpace(respBody)) == 0 {
		return notFound, nil
	}

	var payload map[string]any
	dec := json.NewDecoder(bytes.NewReader(respBody))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, &UpstreamError{StatusCode: status, Message: truncate(string(respBody)), Err: err}
	}

	if status < 200 || status >= 300 {
		return nil, &UpstreamError{StatusCode: status, Message: probe.String(firstOf(payload, "message", "error"))}
	}

	return toSwapStatus(payload, txHash, notFound), nil
}

// GetTokens retrieves the token list a single provider supports
func (c *AggregatorClient) GetTokens(ctx context.Context, provider types.ProviderKind) ([]types.Token, error) {
	path := "/tokens?provider=" + url.QueryEscape(string(provider))
	status, respBody, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, &UpstreamError{Message: "request failed", Err: err}
	}

	if status != http.StatusOK {
		return nil, &UpstreamError{StatusCode: status, Message: truncate(string(respBody))}
	}

	var resp struct {
		Provider string        `json:"provider"`
		Tokens   []types.Token `json:"tokens"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode token list for %s: %w", provider, err)
	}

	return resp.Tokens, nil
}

// do runs one rate-limited, time-bounded call and returns the status and raw body
func (c *AggregatorClient) do(ctx context.Context, method, path string, body any) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Aggregator call finished")

	return resp.StatusCode, respBody, nil
}

// toRawQuote keeps the object-shaped routes and drops anything else. A lone object where
// an array was expected is treated as a one-element array.
func (c *AggregatorClient) toRawQuote(env *quoteEnvelope) *types.RawQuote {
	routes := asList(env.Routes)
	quote := &types.RawQuote{Routes: make([]types.RawRoute, 0, len(routes))}
	for i, r := range routes {
		m, ok := r.(map[string]any)
		if !ok {
			c.logger.Warn().Int("index", i).Str("route", truncate(probe.String(r))).Msg("Skipping malformed route")
			continue
		}
		quote.Routes = append(quote.Routes, m)
	}

	if env.ProviderErrors != nil {
		errs := asList(env.ProviderErrors)
		if errs == nil {
			errs = []any{env.ProviderErrors}
		}
		quote.ProviderErrors = make([]types.ProviderError, 0, len(errs))
		for _, pe := range errs {
			if pe == nil {
				continue
			}
			quote.ProviderErrors = append(quote.ProviderErrors, toProviderError(pe))
		}
	}

	if ttl, ok := probe.Float(env.TTL); ok && ttl > 0 {
		seconds := int(ttl)
		quote.TTL = &seconds
	}

	return quote
}

func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		return []any{t}
	default:
		return nil
	}
}

func toProviderError(v any) types.ProviderError {
	m, ok := v.(map[string]any)
	if !ok {
		return types.ProviderError{Message: probe.String(v)}
	}
	return types.ProviderError{
		Provider:  probe.String(firstOf(m, "provider", "providers")),
		ErrorCode: probe.String(firstOf(m, "errorCode", "code")),
		Message:   probe.String(firstOf(m, "message", "error")),
	}
}

func toSwapStatus(payload map[string]any, txHash string, notFound *types.SwapStatus) *types.SwapStatus {
	state := probe.String(firstOf(payload, "trackingStatus", "status"))
	if state == "" || strings.EqualFold(state, "not_found") || strings.EqualFold(state, "unknown") {
		return notFound
	}

	s := &types.SwapStatus{
		Status:     strings.ToLower(state),
		ObservedIn: probe.String(firstOf(payload, "chainId", "observedIn")),
		TxHash:     probe.StringAt(payload, "hash"),
		InAmount:   probe.String(firstOf(payload, "fromAmount", "inAmount")),
		OutAmount:  probe.String(firstOf(payload, "toAmount", "outAmount")),
		Timestamp:  probe.String(firstOf(payload, "finalisedAt", "startedAt", "timestamp")),
	}
	if s.TxHash == "" {
		s.TxHash = txHash
	}

	if v, ok := probe.FirstTruthy(payload, probe.At("meta", "provider"), probe.At("legs", 0, "provider"), probe.At("provider")); ok {
		s.Provider = probe.String(v)
	}
	if v, ok := probe.FirstTruthy(payload, probe.At("legs", -1, "hash"), probe.At("finalTxHash")); ok {
		s.FinalTxHash = probe.String(v)
	}
	if v, ok := probe.FirstTruthy(payload, probe.At("legs", -1, "explorerUrl"), probe.At("meta", "explorerUrl"), probe.At("finalTxExplorerUrl")); ok {
		s.FinalTxExplorerURL = probe.String(v)
	}

	return s
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := probe.Lookup(m, k); ok && probe.Truthy(v) {
			return v
		}
	}
	return nil
}

func errorMessage(env *quoteEnvelope, body []byte) string {
	if msg := probe.String(env.Message); msg != "" {
		return msg
	}
	if msg := probe.String(env.Error); msg != "" {
		return msg
	}
	return truncate(string(body))
}

func truncate(s string) string {
	const limit = 512
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

func safeRaw(b []byte) []byte {
	if json.Valid(b) {
		return b
	}
	quoted, _ := json.Marshal(string(b))
	return quoted
}
