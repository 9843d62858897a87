package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cross-chain-flow/pkg/client"
	"cross-chain-flow/pkg/metrics"
	"cross-chain-flow/pkg/parser"
	"cross-chain-flow/pkg/types"
)

type fakeQuoter struct {
	resp *types.QuoteResponse
	err  error
	got  *types.SwapRequest
}

func (f *fakeQuoter) Quote(_ context.Context, req *types.SwapRequest) (*types.QuoteResponse, error) {
	f.got = req
	return f.resp, f.err
}

type fakeStatus struct {
	status *types.SwapStatus
	err    error
}

func (f *fakeStatus) GetStatus(_ context.Context, hash string) (*types.SwapStatus, error) {
	if f.status != nil {
		s := *f.status
		s.TxHash = hash
		return &s, f.err
	}
	return nil, f.err
}

type fakeTokens struct {
	list []types.ProviderTokens
	err  error
}

func (f *fakeTokens) List(context.Context) ([]types.ProviderTokens, error) {
	return f.list, f.err
}

type fakeRunner struct {
	report *types.TestReport
	err    error
}

func (f *fakeRunner) Run(context.Context) (*types.TestReport, error) {
	return f.report, f.err
}

func newTestServer(deps Deps) *httptest.Server {
	deps.Logger = zerolog.Nop()
	return httptest.NewServer(NewServer(deps).Handler())
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHandleQuote(t *testing.T) {
	route := types.Route{Provider: types.ProviderThorchain, DepositAddress: "bc1qdeposit", ExpectedOutput: "1", Fees: []types.Fee{}, Warnings: []string{}}
	quoter := &fakeQuoter{resp: &types.QuoteResponse{Routes: []types.Route{route}, ExpiresIn: 900, BestRoute: &route}}
	srv := newTestServer(Deps{Quoter: quoter})
	defer srv.Close()

	for _, path := range []string{"/quote", "/"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Post(srv.URL+path, "application/json",
				strings.NewReader(`{"fromAsset":"BTC.BTC","toAsset":"ETH.ETH","amount":"0.1","recipient":"0xabc"}`))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
			assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

			body := decodeBody(t, resp)
			assert.Equal(t, float64(900), body["expiresIn"])
			assert.Len(t, body["routes"], 1)
			best := body["bestRoute"].(map[string]any)
			assert.Equal(t, "THORCHAIN", best["provider"])

			require.NotNil(t, quoter.got)
			assert.Equal(t, "BTC.BTC", quoter.got.FromAsset)
			assert.Equal(t, "0xabc", quoter.got.Recipient)
		})
	}
}

func TestHandleQuote_NoRoutes(t *testing.T) {
	quoter := &fakeQuoter{resp: &types.QuoteResponse{Routes: []types.Route{}}}
	srv := newTestServer(Deps{Quoter: quoter})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/quote", "application/json", strings.NewReader(`{"fromAsset":"BTC.BTC"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, []any{}, body["routes"])
	assert.Equal(t, float64(0), body["expiresIn"])
	assert.Contains(t, body, "bestRoute")
	assert.Nil(t, body["bestRoute"])
}

func TestHandleQuote_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"validation", `{}`, &parser.RequestValidationError{Field: "fromAsset", Message: "is required"}, http.StatusBadRequest, "invalid_request"},
		{"wrapped upstream", `{}`, fmtWrap(&client.UpstreamError{StatusCode: 500, Message: "boom"}), http.StatusBadGateway, "upstream_error"},
		{"internal", `{}`, errors.New("unexpected"), http.StatusInternalServerError, "internal_error"},
		{"bad json", `{`, nil, http.StatusBadRequest, "invalid_json"},
		{"unknown action", `{"action":"nope"}`, nil, http.StatusBadRequest, "unknown_action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(Deps{Quoter: &fakeQuoter{err: tt.err}})
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/quote", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, tt.wantError, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func fmtWrap(err error) error {
	return fmt.Errorf("failed to fetch quote: %w", err)
}

func TestHandleQuote_UpstreamMessageAppended(t *testing.T) {
	srv := newTestServer(Deps{Quoter: &fakeQuoter{err: &client.UpstreamError{StatusCode: 503, Message: "maintenance"}}})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/quote", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Contains(t, body["message"], "maintenance")
}

func TestHandleIntegrationTest(t *testing.T) {
	report := &types.TestReport{
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Summary:   types.TestSummary{TotalTests: 2, Passed: 1, Failed: 1, SuccessRate: 50},
	}
	quoter := &fakeQuoter{}
	srv := newTestServer(Deps{Quoter: quoter, Integration: &fakeRunner{report: report}})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/", "application/json", strings.NewReader(`{"action":"test-integrations"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "integration-test", body["action"])
	summary := body["report"].(map[string]any)["summary"].(map[string]any)
	assert.Equal(t, float64(50), summary["successRate"])
	assert.Nil(t, quoter.got)
}

func TestHandleStatus(t *testing.T) {
	srv := newTestServer(Deps{Status: &fakeStatus{status: &types.SwapStatus{Status: "completed", Provider: "THORCHAIN"}}})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status/ABC123")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "completed", body["status"])
	assert.Equal(t, "ABC123", body["txHash"])
}

func TestHandleStatus_NotFound(t *testing.T) {
	srv := newTestServer(Deps{Status: &fakeStatus{status: &types.SwapStatus{Status: types.StatusNotFound, Message: "transaction not found"}}})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status/deadbeef")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "not_found", body["status"])
	assert.Equal(t, "transaction not found", body["message"])
}

func TestHandleStatus_Upstream(t *testing.T) {
	srv := newTestServer(Deps{Status: &fakeStatus{err: &client.UpstreamError{Message: "request failed"}}})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status/abc")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()
}

func TestHandleTokens(t *testing.T) {
	list := []types.ProviderTokens{
		{Provider: types.ProviderThorchain, Tokens: []types.Token{{Chain: "BTC", Ticker: "BTC", Identifier: "BTC.BTC"}}},
		{Provider: types.ProviderChainflip, Tokens: []types.Token{}, Error: "timeout"},
	}
	srv := newTestServer(Deps{Tokens: &fakeTokens{list: list}})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/tokens")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["providers"], 2)

	failing := newTestServer(Deps{Tokens: &fakeTokens{err: errors.New("all token list requests failed")}})
	defer failing.Close()
	resp, err = http.Get(failing.URL + "/tokens")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()
}

func TestOptionsShortCircuits(t *testing.T) {
	quoter := &fakeQuoter{}
	srv := newTestServer(Deps{Quoter: quoter})
	defer srv.Close()

	for _, path := range []string{"/quote", "/status/abc"} {
		req, err := http.NewRequest(http.MethodOptions, srv.URL+path, nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, int64(0), resp.ContentLength)
		resp.Body.Close()
	}
	assert.Nil(t, quoter.got)
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(Deps{})
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "req-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, "req-42", resp.Header.Get(requestIDHeader))

	body := decodeBody(t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.UpstreamErrors.Inc()

	srv := newTestServer(Deps{Gatherer: reg})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "xflow_upstream_errors_total 1")
}
