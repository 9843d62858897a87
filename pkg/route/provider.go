package route

import (
	"strings"

	"cross-chain-flow/pkg/probe"
	"cross-chain-flow/pkg/types"
)

var providerLabel = []probe.Extractor{
	probe.At("providers", 0),
	probe.At("provider"),
	probe.At("meta", "provider"),
}

// ResolveProviderLabel returns the raw provider label of a route, or "" if it has none
func ResolveProviderLabel(raw types.RawRoute) string {
	v, ok := probe.FirstTruthy(raw, providerLabel...)
	if !ok {
		return ""
	}
	return probe.String(v)
}

// Classify maps a provider label onto a ProviderKind by case-insensitive substring.
// MAYA is checked before THOR so labels naming both resolve to MAYACHAIN.
func Classify(label string) types.ProviderKind {
	upper := strings.ToUpper(label)
	switch {
	case upper == "":
		return types.ProviderUnknown
	case strings.Contains(upper, "MAYA"):
		return types.ProviderMayachain
	case strings.Contains(upper, "THOR"):
		return types.ProviderThorchain
	case strings.Contains(upper, "CHAINFLIP"), strings.Contains(upper, "FLIP"):
		return types.ProviderChainflip
	default:
		return types.ProviderUnknown
	}
}
