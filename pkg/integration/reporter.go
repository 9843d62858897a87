package integration

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"cross-chain-flow/pkg/route"
	"cross-chain-flow/pkg/types"
)

// DefaultTestRecipient is a well-known Ethereum address used when none is configured
const DefaultTestRecipient = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

// PassingScore is the minimum score for a route to pass
const PassingScore = 70

// Score deductions
const (
	penaltyDepositAddress = 30
	penaltyOutput         = 25
	penaltyRequiredMemo   = 25
	penaltyOptionalMemo   = 5
	penaltyFees           = 15
	penaltyEstimatedTime  = 10
)

// Fetcher is the part of the aggregator client the reporter needs
type Fetcher interface {
	FetchQuote(ctx context.Context, req *types.SwapRequest) (*types.RawQuote, error)
}

// RouteScore is the rubric outcome for a single route
type RouteScore struct {
	Provider types.ProviderKind `json:"provider"`
	Score    int                `json:"score"`
	Passed   bool               `json:"passed"`
	Issues   []string           `json:"issues"`
}

// DefaultTestRequest is the canned swap used for integration runs: a small BTC to ETH swap
func DefaultTestRequest(recipient string) types.SwapRequest {
	if recipient == "" {
		recipient = DefaultTestRecipient
	}
	return types.SwapRequest{
		FromAsset: "BTC.BTC",
		ToAsset:   "ETH.ETH",
		Amount:    "0.001",
		Recipient: recipient,
	}
}

// Reporter runs the canned request through fetch, normalize and filter and scores
// every surviving route
type Reporter struct {
	fetcher Fetcher
	request types.SwapRequest
	logger  zerolog.Logger
	now     func() time.Time
}

// NewReporter creates a reporter that sends DefaultTestRequest(recipient)
func NewReporter(fetcher Fetcher, recipient string, logger zerolog.Logger) *Reporter {
	return &Reporter{
		fetcher: fetcher,
		request: DefaultTestRequest(recipient),
		logger:  logger.With().Str("component", "integration").Logger(),
		now:     time.Now,
	}
}

// Run performs one integration pass. Only a failed upstream fetch is an error;
// every route-level problem ends up in the report.
func (r *Reporter) Run(ctx context.Context) (*types.TestReport, error) {
	req := r.request
	r.logger.Info().
		Str("from", req.FromAsset).
		Str("to", req.ToAsset).
		Str("amount", req.Amount).
		Msg("Running integration test")

	raw, err := r.fetcher.FetchQuote(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("integration quote failed: %w", err)
	}

	normalized := make([]types.Route, 0, len(raw.Routes))
	for _, rr := range raw.Routes {
		normalized = append(normalized, route.Normalize(rr, req.Recipient))
	}

	kept, dropped := route.Filter(normalized, &req)
	for _, d := range dropped {
		r.logger.Debug().Str("provider", d.Route.ProviderLabel).Str("reason", d.Reason).Msg("Route filtered during integration test")
	}

	report := &types.TestReport{
		Timestamp:      r.now().UTC(),
		Providers:      make(map[types.ProviderKind]*types.ProviderTestResult, len(types.Providers)),
		TestParameters: req,
	}
	for _, kind := range types.Providers {
		report.Providers[kind] = &types.ProviderTestResult{Issues: []string{}}
	}

	for _, rt := range kept {
		score := ScoreRoute(rt)
		report.Summary.TotalTests++

		result, ok := report.Providers[rt.Provider]
		if !ok {
			continue
		}
		if score.Passed {
			report.Summary.Passed++
			result.Passed++
		} else {
			report.Summary.Failed++
			result.Failed++
		}
		result.Issues = appendUnique(result.Issues, score.Issues...)
	}

	for kind, result := range report.Providers {
		if result.Passed+result.Failed == 0 {
			result.Issues = appendUnique(result.Issues, "no routes returned")
		}
		for _, pe := range raw.ProviderErrors {
			if route.Classify(pe.Provider) == kind {
				result.Issues = appendUnique(result.Issues, describeProviderError(pe))
			}
		}
	}

	if report.Summary.TotalTests > 0 {
		rate := float64(report.Summary.Passed) / float64(report.Summary.TotalTests) * 100
		report.Summary.SuccessRate = math.Round(rate*100) / 100
	}

	r.logger.Info().
		Int("total", report.Summary.TotalTests).
		Int("passed", report.Summary.Passed).
		Int("failed", report.Summary.Failed).
		Float64("success_rate", report.Summary.SuccessRate).
		Msg("Integration test finished")

	return report, nil
}

// ScoreRoute applies the weighted rubric to one route. A route passes with a score of
// at least PassingScore.
func ScoreRoute(r types.Route) RouteScore {
	s := RouteScore{Provider: r.Provider, Score: 100, Issues: []string{}}

	deduct := func(points int, issue string) {
		s.Score -= points
		s.Issues = append(s.Issues, issue)
	}

	if strings.TrimSpace(r.DepositAddress) == "" {
		deduct(penaltyDepositAddress, "missing deposit address")
	}
	if !route.ParseAmount(r.ExpectedOutput).IsPositive() {
		deduct(penaltyOutput, fmt.Sprintf("invalid expected output %q", r.ExpectedOutput))
	}
	if r.Memo == "" {
		if r.Provider.RequiresMemo() {
			deduct(penaltyRequiredMemo, "missing required memo")
		} else {
			deduct(penaltyOptionalMemo, "missing memo")
		}
	}
	if !validFees(r.Fees) {
		deduct(penaltyFees, "missing or invalid fees")
	}
	if strings.TrimSpace(r.EstimatedTime) == "" {
		deduct(penaltyEstimatedTime, "missing estimated time")
	}

	s.Passed = s.Score >= PassingScore
	return s
}

func validFees(fees []types.Fee) bool {
	if fees == nil {
		return false
	}
	for _, f := range fees {
		if _, err := decimal.NewFromString(strings.TrimSpace(f.Amount)); err != nil {
			return false
		}
	}
	return true
}
