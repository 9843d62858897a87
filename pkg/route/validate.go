package route

import (
	"fmt"
	"strings"

	"cross-chain-flow/pkg/probe"
	"cross-chain-flow/pkg/types"
)

const (
	minDepositAddressLength = 20
	minMemoLength           = 10

	// maxBrokerCommissionBps is 5%
	maxBrokerCommissionBps = 500
)

// ErrorPrefix marks validator errors once they are folded into a route's warnings
const ErrorPrefix = "validation error: "

// Validator checks a normalized route against one provider's invariants
type Validator interface {
	Validate(r types.Route) types.ValidationResult
}

// ValidatorFor returns the validator for a provider kind
func ValidatorFor(kind types.ProviderKind) Validator {
	switch kind {
	case types.ProviderThorchain, types.ProviderMayachain:
		return memoProtocolValidator{kind: kind}
	case types.ProviderChainflip:
		return chainflipValidator{}
	default:
		return unknownValidator{}
	}
}

// Validate runs the validator matching the route's provider
func Validate(r types.Route) types.ValidationResult {
	return ValidatorFor(r.Provider).Validate(r)
}

// Annotate returns a copy of r with its validation errors and warnings appended to
// Warnings. The route is never dropped or restructured here.
func Annotate(r types.Route) (types.Route, types.ValidationResult) {
	result := Validate(r)

	msgs := make([]string, 0, len(result.Errors)+len(result.Warnings))
	for _, e := range result.Errors {
		msgs = append(msgs, ErrorPrefix+e)
	}
	msgs = append(msgs, result.Warnings...)

	return r.WithWarnings(msgs...), result
}

type resultBuilder struct {
	types.ValidationResult
}

func newResult(required ...string) *resultBuilder {
	return &resultBuilder{types.ValidationResult{
		Errors:         []string{},
		Warnings:       []string{},
		RequiredFields: required,
	}}
}

func (b *resultBuilder) errorf(format string, args ...any) {
	b.Errors = append(b.Errors, fmt.Sprintf(format, args...))
}

func (b *resultBuilder) warnf(format string, args ...any) {
	b.Warnings = append(b.Warnings, fmt.Sprintf(format, args...))
}

func (b *resultBuilder) done() types.ValidationResult {
	b.IsValid = len(b.Errors) == 0
	return b.ValidationResult
}

// memoProtocolValidator covers THORChain and MayaChain, which route deposits by memo
type memoProtocolValidator struct {
	kind types.ProviderKind
}

func (v memoProtocolValidator) Validate(r types.Route) types.ValidationResult {
	b := newResult("depositAddress", "memo", "expectedOutput")

	if len(r.DepositAddress) <= minDepositAddressLength {
		b.errorf("%s deposit address is missing or too short (%d chars)", v.kind, len(r.DepositAddress))
	}

	if len(r.Memo) <= minMemoLength {
		b.errorf("%s requires a memo, got %q", v.kind, r.Memo)
	}
	if r.Memo != "" && !strings.Contains(r.Memo, ":") {
		b.warnf("%s memo %q has no ':' separator and may not encode a destination", v.kind, r.Memo)
	}

	if !ParseAmount(r.ExpectedOutput).IsPositive() {
		b.errorf("%s expected output must be positive, got %q", v.kind, r.ExpectedOutput)
	}

	return b.done()
}

type chainflipValidator struct{}

func (chainflipValidator) Validate(r types.Route) types.ValidationResult {
	b := newResult("depositAddress", "expectedOutput")

	if len(r.DepositAddress) <= minDepositAddressLength {
		b.errorf("CHAINFLIP deposit address is missing or too short (%d chars)", len(r.DepositAddress))
	}

	if r.Memo == "" {
		b.warnf("CHAINFLIP route has no memo; deposit channel is identified by address only")
	}

	if bps, ok := brokerCommissionBps(r.Meta); ok && bps > maxBrokerCommissionBps {
		b.warnf("CHAINFLIP broker commission %.2f%% exceeds 5%%", bps/100)
	}

	if channel, ok := probe.FirstTruthy(r.Meta,
		probe.At("chainflip", "depositChannelId"),
		probe.At("chainflip", "channelId"),
		probe.At("chainflip", "depositChannel", "id"),
	); ok {
		if id := probe.String(channel); !strings.HasPrefix(id, "0x") {
			b.warnf("CHAINFLIP deposit channel metadata %q is missing 0x prefix", id)
		}
	}

	return b.done()
}

// brokerCommissionBps reads the broker commission from Chainflip metadata. Percent
// values are converted to basis points.
func brokerCommissionBps(meta map[string]any) (float64, bool) {
	if v, ok := probe.First(meta,
		probe.At("chainflip", "brokerCommissionBps"),
		probe.At("brokerCommissionBps"),
	); ok {
		return probe.Float(v)
	}
	if v, ok := probe.First(meta,
		probe.At("chainflip", "brokerCommission"),
		probe.At("brokerCommission"),
	); ok {
		pct, ok := probe.Float(v)
		return pct * 100, ok
	}
	return 0, false
}

type unknownValidator struct{}

func (unknownValidator) Validate(r types.Route) types.ValidationResult {
	b := newResult()
	label := r.ProviderLabel
	if label == "" {
		label = "<none>"
	}
	b.errorf("unknown provider %q: no validation rules, route cannot be trusted", label)
	return b.done()
}
