package types

import "time"

// ProviderKind identifies a liquidity provider the engine knows how to validate
type ProviderKind string

const (
	ProviderThorchain ProviderKind = "THORCHAIN"
	ProviderMayachain ProviderKind = "MAYACHAIN"
	ProviderChainflip ProviderKind = "CHAINFLIP"

	// ProviderUnknown marks a route whose provider label could not be classified
	ProviderUnknown ProviderKind = "Unknown"
)

// Providers lists every supported provider in the order they are requested upstream
var Providers = []ProviderKind{ProviderThorchain, ProviderMayachain, ProviderChainflip}

// Known reports whether p is one of the supported providers
func (p ProviderKind) Known() bool {
	switch p {
	case ProviderThorchain, ProviderMayachain, ProviderChainflip:
		return true
	default:
		return false
	}
}

// RequiresMemo reports whether deposits for this provider need a memo to be routed
func (p ProviderKind) RequiresMemo() bool {
	switch p {
	case ProviderThorchain, ProviderMayachain:
		return true
	default:
		return false
	}
}

// SwapRequest represents a user's swap request. Assets are chain-qualified,
// e.g. "BTC.BTC" or "ETH.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48".
type SwapRequest struct {
	FromAsset string `json:"fromAsset"`
	ToAsset   string `json:"toAsset"`
	Amount    string `json:"amount"`
	Recipient string `json:"recipient"`
}

// RawRoute is a provider route exactly as decoded from the aggregator
type RawRoute = map[string]any

// ProviderError is a per-provider failure reported by the aggregator alongside
// otherwise usable routes
type ProviderError struct {
	Provider  string `json:"provider,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
	Message   string `json:"message,omitempty"`
}

// RawQuote is the aggregator payload before normalization
type RawQuote struct {
	Routes         []RawRoute      `json:"routes,omitempty"`
	ProviderErrors []ProviderError `json:"providerErrors,omitempty"`
	TTL            *int            `json:"ttl,omitempty"`
}

// Fee is a single fee line of a route
type Fee struct {
	Type     string `json:"type,omitempty"`
	Amount   string `json:"amount"`
	Asset    string `json:"asset,omitempty"`
	Chain    string `json:"chain,omitempty"`
	Protocol string `json:"protocol,omitempty"`
}

// Route is the canonical shape every provider route is normalized into
type Route struct {
	Provider                  ProviderKind `json:"provider"`
	DepositAddress            string       `json:"depositAddress"`
	Memo                      string       `json:"memo"`
	ExpectedOutput            string       `json:"expectedOutput"`
	ExpectedOutputMaxSlippage string       `json:"expectedOutputMaxSlippage"`
	Fees                      []Fee        `json:"fees"`
	EstimatedTime             string       `json:"estimatedTime"`
	PriceImpact               float64      `json:"priceImpact"`
	Warnings                  []string     `json:"warnings"`
	TotalFees                 float64      `json:"totalFees"`

	// ProviderLabel is the label the aggregator used before classification
	ProviderLabel string `json:"-"`
	// Meta holds provider-specific metadata consulted during validation
	Meta map[string]any `json:"-"`
}

// WithWarnings returns a copy of r with msgs appended to its warnings
func (r Route) WithWarnings(msgs ...string) Route {
	if len(msgs) == 0 {
		return r
	}
	warnings := make([]string, 0, len(r.Warnings)+len(msgs))
	warnings = append(warnings, r.Warnings...)
	r.Warnings = append(warnings, msgs...)
	return r
}

// ValidationResult is the outcome of checking one route against its provider's rules
type ValidationResult struct {
	IsValid        bool     `json:"isValid"`
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings"`
	RequiredFields []string `json:"requiredFields"`
}

// ProviderStatus is the live health snapshot of a single provider
type ProviderStatus struct {
	Available  bool     `json:"available"`
	Functional bool     `json:"functional"`
	Issues     []string `json:"issues"`
}

// IntegrationStatus maps each provider to its snapshot
type IntegrationStatus map[ProviderKind]ProviderStatus

// QuoteResponse is the result of one quote pipeline run
type QuoteResponse struct {
	Routes            []Route           `json:"routes"`
	ExpiresIn         int               `json:"expiresIn"`
	BestRoute         *Route            `json:"bestRoute"`
	IntegrationStatus IntegrationStatus `json:"integrationStatus,omitempty"`
	ProviderErrors    []ProviderError   `json:"providerErrors,omitempty"`
}

// TestSummary aggregates pass/fail counts of an integration run
type TestSummary struct {
	TotalTests  int     `json:"totalTests"`
	Passed      int     `json:"passed"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"successRate"`
}

// ProviderTestResult aggregates pass/fail counts for a single provider
type ProviderTestResult struct {
	Passed int      `json:"passed"`
	Failed int      `json:"failed"`
	Issues []string `json:"issues"`
}

// TestReport is produced by an integration run
type TestReport struct {
	Timestamp      time.Time                           `json:"timestamp"`
	Summary        TestSummary                         `json:"summary"`
	Providers      map[ProviderKind]*ProviderTestResult `json:"providers"`
	TestParameters SwapRequest                         `json:"testParameters"`
}

// SwapStatus represents the current status of a swap
type SwapStatus struct {
	Status             string `json:"status"`
	Message            string `json:"message,omitempty"`
	ObservedIn         string `json:"observedIn,omitempty"`
	TxHash             string `json:"txHash,omitempty"`
	FinalTxHash        string `json:"finalTxHash,omitempty"`
	FinalTxExplorerURL string `json:"finalTxExplorerUrl,omitempty"`
	InAmount           string `json:"inAmount,omitempty"`
	OutAmount          string `json:"outAmount,omitempty"`
	Provider           string `json:"provider,omitempty"`
	Timestamp          string `json:"timestamp,omitempty"`
}

// StatusNotFound is reported when the aggregator has no record of a transaction
const StatusNotFound = "not_found"

// Token is one asset a provider can swap
type Token struct {
	Chain      string `json:"chain"`
	Ticker     string `json:"ticker"`
	Identifier string `json:"identifier"`
	Decimals   int    `json:"decimals"`
	Address    string `json:"address,omitempty"`
	Name       string `json:"name,omitempty"`
}

// ProviderTokens is the result of one provider's token list call
type ProviderTokens struct {
	Provider ProviderKind `json:"provider"`
	Tokens   []Token      `json:"tokens"`
	Error    string       `json:"error,omitempty"`
}
