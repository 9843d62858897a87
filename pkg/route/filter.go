package route

import (
	"fmt"

	"cross-chain-flow/pkg/address"
	"cross-chain-flow/pkg/parser"
	"cross-chain-flow/pkg/types"
)

const minFilterDepositAddressLength = 5

// Dropped records a route removed by Filter and why
type Dropped struct {
	Route  types.Route
	Reason string
}

// Filter keeps routes that can actually be executed: a known provider, a plausible
// deposit address and a positive expected output. Memo requirements are left to the
// validator; a memo-less THORChain or MayaChain route is kept and only carries the
// validator's warnings.
//
// When the recipient does not look valid for the destination chain, every kept route
// gets a warning instead of being rejected. Chains without a known address format are
// not checked.
func Filter(routes []types.Route, req *types.SwapRequest) ([]types.Route, []Dropped) {
	kept := make([]types.Route, 0, len(routes))
	var dropped []Dropped

	for _, r := range routes {
		if reason, ok := usable(r); !ok {
			dropped = append(dropped, Dropped{Route: r, Reason: reason})
			continue
		}
		kept = append(kept, r)
	}

	if req == nil || len(kept) == 0 {
		return kept, dropped
	}

	chain := parser.ChainOf(req.ToAsset)
	if address.Supported(chain) && !address.IsValidAddress(req.Recipient, chain) {
		warning := fmt.Sprintf("recipient %q does not look like a valid %s address", req.Recipient, chain)
		for i := range kept {
			kept[i] = kept[i].WithWarnings(warning)
		}
	}

	return kept, dropped
}

// MissingRequiredMemo reports whether r belongs to a memo-routed provider but has no memo
func MissingRequiredMemo(r types.Route) bool {
	return r.Provider.RequiresMemo() && r.Memo == ""
}

func usable(r types.Route) (string, bool) {
	if !r.Provider.Known() {
		return fmt.Sprintf("unknown provider %q", r.ProviderLabel), false
	}
	if len(r.DepositAddress) <= minFilterDepositAddressLength {
		return fmt.Sprintf("deposit address %q is missing or too short", r.DepositAddress), false
	}
	if !ParseAmount(r.ExpectedOutput).IsPositive() {
		return fmt.Sprintf("expected output %q is not positive", r.ExpectedOutput), false
	}
	return "", true
}
