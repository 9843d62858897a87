package route

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"cross-chain-flow/pkg/probe"
	"cross-chain-flow/pkg/types"
)

// DestinationPlaceholder is the token aggregators leave in memos for the recipient address
const DestinationPlaceholder = "{destinationAddress}"

// DefaultEstimatedTime is reported when a route carries no usable timing information
const DefaultEstimatedTime = "5-10 min"

// Field locations, in priority order. Each list is the full set of shapes seen from
// the aggregator for that field.
var (
	depositAddressFields = []probe.Extractor{
		probe.At("transaction", "from"),
		probe.At("transaction", "depositAddress"),
		probe.At("inboundAddress"),
		probe.At("targetAddress"),
		probe.At("depositAddress"),
		probe.At("meta", "chainflip", "depositAddress"),
		probe.At("meta", "mayachain", "depositAddress"),
	}

	memoFields = []probe.Extractor{
		probe.At("transaction", "memo"),
		probe.At("memo"),
		probe.At("meta", "memo"),
	}

	expectedOutputFields = []probe.Extractor{
		probe.At("expectedBuyAmount"),
		probe.At("expectedOutput"),
		probe.At("expectedAmountOut"),
		probe.At("expectedOutputAmount"),
		probe.At("buyAmount"),
		probe.At("outputAmount"),
		probe.At("amountOut"),
		probe.At("outAmount"),
		probe.At("toAmount"),
		probe.At("quote", "expectedAmountOut"),
		probe.At("quote", "buyAmount"),
		probe.At("meta", "expectedOutput"),
		probe.At("meta", "buyAmount"),
		probe.At("legs", -1, "buyAmount"),
		probe.At("steps", -1, "outputAmount"),
	}

	maxSlippageOutputFields = []probe.Extractor{
		probe.At("expectedBuyAmountMaxSlippage"),
		probe.At("expectedOutputMaxSlippage"),
		probe.At("minAmountOut"),
		probe.At("quote", "minAmountOut"),
		probe.At("meta", "minAmountOut"),
	}

	feeFields = []probe.Extractor{
		probe.At("fees"),
		probe.At("meta", "fees"),
		probe.At("quote", "fees"),
		probe.At("feeBreakdown"),
	}

	estimatedTimeFields = []probe.Extractor{
		probe.At("estimatedTime"),
		probe.At("meta", "estimatedTime"),
		probe.At("quote", "estimatedTime"),
	}

	priceImpactFields = []probe.Extractor{
		probe.At("meta", "priceImpact"),
		probe.At("priceImpact"),
		probe.At("slippage"),
		func(root any) (any, bool) {
			v, ok := probe.Lookup(root, "totalSlippageBps")
			if !ok {
				return nil, false
			}
			bps, ok := probe.Float(v)
			if !ok {
				return nil, false
			}
			return bps / 100, true
		},
	}
)

// Normalize maps a raw provider route onto the canonical Route. It never fails:
// every field falls back to a default when the payload does not carry it.
func Normalize(raw types.RawRoute, recipient string) types.Route {
	label := ResolveProviderLabel(raw)
	fees := resolveFees(raw)
	expected := resolveExpectedOutput(raw)

	r := types.Route{
		Provider:                  Classify(label),
		ProviderLabel:             label,
		DepositAddress:            resolveDepositAddress(raw),
		Memo:                      SubstituteRecipient(resolveMemo(raw), recipient),
		ExpectedOutput:            expected,
		ExpectedOutputMaxSlippage: expected,
		Fees:                      fees,
		TotalFees:                 TotalFees(fees),
		EstimatedTime:             resolveEstimatedTime(raw),
		PriceImpact:               resolvePriceImpact(raw),
		Warnings:                  []string{},
	}

	if v, ok := probe.First(raw, maxSlippageOutputFields...); ok {
		if s := probe.String(v); s != "" {
			r.ExpectedOutputMaxSlippage = s
		}
	}

	if meta, ok := raw["meta"].(map[string]any); ok {
		r.Meta = meta
	}

	return r
}

// SubstituteRecipient replaces the first destination placeholder in memo with
// recipient. A memo without the placeholder is returned unchanged.
func SubstituteRecipient(memo, recipient string) string {
	if !strings.Contains(memo, DestinationPlaceholder) {
		return memo
	}
	return strings.Replace(memo, DestinationPlaceholder, recipient, 1)
}

// TotalFees sums the numeric amount of every fee; non-numeric amounts count as zero
func TotalFees(fees []types.Fee) float64 {
	total := decimal.Zero
	for _, f := range fees {
		total = total.Add(ParseAmount(f.Amount))
	}
	return total.InexactFloat64()
}

// ParseAmount parses a decimal amount string, treating anything unparseable as zero
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func resolveDepositAddress(raw types.RawRoute) string {
	v, ok := probe.FirstTruthy(raw, depositAddressFields...)
	if !ok {
		return ""
	}
	return probe.String(v)
}

func resolveMemo(raw types.RawRoute) string {
	v, ok := probe.FirstTruthy(raw, memoFields...)
	if !ok {
		return ""
	}
	return probe.String(v)
}

func resolveExpectedOutput(raw types.RawRoute) string {
	v, ok := probe.First(raw, expectedOutputFields...)
	if !ok {
		return "0"
	}
	if s := probe.String(v); s != "" {
		return s
	}
	return "0"
}

func resolveFees(raw types.RawRoute) []types.Fee {
	var scalar any
	for _, extract := range feeFields {
		v, ok := extract(raw)
		if !ok {
			continue
		}
		if list, isList := v.([]any); isList {
			return toFees(list)
		}
		if scalar == nil {
			scalar = v
		}
	}

	if scalar != nil {
		return toFees([]any{scalar})
	}
	return []types.Fee{}
}

func toFees(list []any) []types.Fee {
	fees := make([]types.Fee, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			if item != nil {
				fees = append(fees, types.Fee{Amount: probe.String(item)})
			}
			continue
		}
		fees = append(fees, types.Fee{
			Type:     probe.StringAt(m, "type"),
			Amount:   probe.StringAt(m, "amount"),
			Asset:    probe.StringAt(m, "asset"),
			Chain:    probe.StringAt(m, "chain"),
			Protocol: probe.StringAt(m, "protocol"),
		})
	}
	return fees
}

func resolveEstimatedTime(raw types.RawRoute) string {
	v, ok := probe.First(raw, estimatedTimeFields...)
	if !ok {
		return DefaultEstimatedTime
	}

	if m, isMap := v.(map[string]any); isMap {
		if total, ok := probe.Lookup(m, "total"); ok {
			if seconds, ok := probe.Float(total); ok {
				return formatMinutes(seconds)
			}
		}

		var sum float64
		for _, leg := range []string{"inbound", "swap", "outbound"} {
			if part, ok := probe.Lookup(m, leg); ok {
				if seconds, ok := probe.Float(part); ok {
					sum += seconds
				}
			}
		}
		return formatMinutes(sum)
	}

	if seconds, ok := probe.Float(v); ok {
		return formatMinutes(seconds)
	}
	return DefaultEstimatedTime
}

func formatMinutes(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return DefaultEstimatedTime
	}
	return decimal.NewFromFloat(math.Ceil(seconds/60)).String() + " min"
}

// resolvePriceImpact takes the first location holding a non-zero number, so a zero or
// garbage value in a preferred field does not hide a later one
func resolvePriceImpact(raw types.RawRoute) float64 {
	for _, extract := range priceImpactFields {
		v, ok := extract(raw)
		if !ok || !probe.Truthy(v) {
			continue
		}
		impact, ok := probe.Float(v)
		if !ok || impact == 0 || math.IsNaN(impact) || math.IsInf(impact, 0) {
			continue
		}
		return impact
	}
	return 0
}
