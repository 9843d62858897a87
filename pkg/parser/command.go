package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"cross-chain-flow/pkg/types"
)

// RequestValidationError is returned when a swap request is missing fields or malformed
type RequestValidationError struct {
	Field   string
	Message string
}

func (e *RequestValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsRequestValidation returns true if err is (or wraps) a RequestValidationError
func IsRequestValidation(err error) bool {
	var target *RequestValidationError
	return errors.As(err, &target)
}

// Asset is a parsed chain-qualified asset identifier
type Asset struct {
	Chain    string
	Symbol   string
	Contract string
}

// String renders the asset back into CHAIN.SYMBOL[-CONTRACT] form
func (a Asset) String() string {
	s := a.Chain + "." + a.Symbol
	if a.Contract != "" {
		s += "-" + a.Contract
	}
	return s
}

// ParseAsset splits "<CHAIN>.<SYMBOL>[-<CONTRACT>]". An identifier without a dot
// is treated as a bare chain name.
func ParseAsset(identifier string) Asset {
	identifier = strings.TrimSpace(identifier)
	chain, rest, found := strings.Cut(identifier, ".")
	if !found {
		return Asset{Chain: strings.ToUpper(identifier)}
	}

	symbol, contract, _ := strings.Cut(rest, "-")
	return Asset{
		Chain:    strings.ToUpper(chain),
		Symbol:   strings.ToUpper(symbol),
		Contract: contract,
	}
}

// ChainOf returns the chain part of a chain-qualified asset identifier
func ChainOf(identifier string) string {
	return ParseAsset(identifier).Chain
}

var (
	commandPattern = regexp.MustCompile(`(?i)^(\d+\.?\d*)\s+(\S+)\s+TO\s+(\S+)$`)
	swapPrefix     = regexp.MustCompile(`(?i)^SWAP\s+`)
)

// ParseSwapCommand parses a natural language swap command
// Examples:
//   - "swap 0.01 BTC to ETH"
//   - "1.5 ETH.ETH to BTC.BTC"
//   - "100 ETH.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48 to THOR.RUNE"
func ParseSwapCommand(command string) (*types.SwapRequest, error) {
	command = strings.TrimSpace(command)

	// Match case-insensitively on the original text so contract addresses keep their case
	command = swapPrefix.ReplaceAllString(command, "")

	matches := commandPattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, &RequestValidationError{
			Message: "invalid swap command format. Expected: 'swap <amount> <asset> to <asset>' (e.g., 'swap 0.01 BTC.BTC to ETH.ETH')",
		}
	}

	return &types.SwapRequest{
		Amount:    matches[1],
		FromAsset: NormalizeAsset(matches[2]),
		ToAsset:   NormalizeAsset(matches[3]),
	}, nil
}

// ValidateSwapRequest validates that a swap request has all required fields
func ValidateSwapRequest(req *types.SwapRequest) error {
	if req == nil {
		return &RequestValidationError{Message: "request body is required"}
	}
	if strings.TrimSpace(req.FromAsset) == "" {
		return &RequestValidationError{Field: "fromAsset", Message: "is required"}
	}
	if strings.TrimSpace(req.ToAsset) == "" {
		return &RequestValidationError{Field: "toAsset", Message: "is required"}
	}
	if strings.TrimSpace(req.Amount) == "" {
		return &RequestValidationError{Field: "amount", Message: "is required"}
	}
	if strings.TrimSpace(req.Recipient) == "" {
		return &RequestValidationError{Field: "recipient", Message: "is required"}
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		return &RequestValidationError{Field: "amount", Message: fmt.Sprintf("must be a positive number, got %q", req.Amount)}
	}

	if parsed := ParseAsset(req.FromAsset); parsed.Chain == "" || parsed.Symbol == "" {
		return &RequestValidationError{Field: "fromAsset", Message: fmt.Sprintf("expected <CHAIN>.<SYMBOL>, got %q", req.FromAsset)}
	}
	if parsed := ParseAsset(req.ToAsset); parsed.Chain == "" || parsed.Symbol == "" {
		return &RequestValidationError{Field: "toAsset", Message: fmt.Sprintf("expected <CHAIN>.<SYMBOL>, got %q", req.ToAsset)}
	}

	return nil
}

// NormalizeAsset expands common bare symbols to their chain-qualified identifier
func NormalizeAsset(asset string) string {
	asset = strings.TrimSpace(asset)
	if strings.Contains(asset, ".") {
		parsed := ParseAsset(asset)
		return parsed.String()
	}

	aliases := map[string]string{
		"BTC":   "BTC.BTC",
		"ETH":   "ETH.ETH",
		"SOL":   "SOL.SOL",
		"RUNE":  "THOR.RUNE",
		"CACAO": "MAYA.CACAO",
		"LTC":   "LTC.LTC",
		"DOGE":  "DOGE.DOGE",
		"BCH":   "BCH.BCH",
		"DASH":  "DASH.DASH",
		"ATOM":  "GAIA.ATOM",
		"AVAX":  "AVAX.AVAX",
		"BNB":   "BSC.BNB",
		"DOT":   "DOT.DOT",
		"ZEC":   "ZEC.ZEC",
	}

	symbol := strings.ToUpper(asset)
	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}

	return symbol
}
