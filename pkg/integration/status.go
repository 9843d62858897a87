package integration

import (
	"fmt"

	"cross-chain-flow/pkg/route"
	"cross-chain-flow/pkg/types"
)

// minFunctionalDepositLength is the shortest deposit address treated as real
const minFunctionalDepositLength = 10

// ComputeIntegrationStatus derives a per-provider health snapshot from one set of
// normalized routes and the provider errors that came back with them
func ComputeIntegrationStatus(routes []types.Route, providerErrors []types.ProviderError) types.IntegrationStatus {
	status := make(types.IntegrationStatus, len(types.Providers))
	for _, kind := range types.Providers {
		status[kind] = types.ProviderStatus{Issues: []string{}}
	}

	for _, r := range routes {
		s, ok := status[r.Provider]
		if !ok {
			continue
		}
		s.Available = true

		problems := functionalProblems(r)
		if len(problems) == 0 {
			s.Functional = true
		} else {
			s.Issues = appendUnique(s.Issues, problems...)
		}
		status[r.Provider] = s
	}

	for _, kind := range types.Providers {
		s := status[kind]
		if !s.Available {
			s.Issues = appendUnique(s.Issues, "no routes returned")
		}
		status[kind] = s
	}

	for _, pe := range providerErrors {
		kind := route.Classify(pe.Provider)
		s, ok := status[kind]
		if !ok {
			continue
		}
		s.Issues = appendUnique(s.Issues, describeProviderError(pe))
		status[kind] = s
	}

	return status
}

func functionalProblems(r types.Route) []string {
	var problems []string
	if len(r.DepositAddress) <= minFunctionalDepositLength {
		problems = append(problems, "deposit address missing or too short")
	}
	if !route.ParseAmount(r.ExpectedOutput).IsPositive() {
		problems = append(problems, fmt.Sprintf("expected output %q is not positive", r.ExpectedOutput))
	}
	if r.Provider.RequiresMemo() && r.Memo == "" {
		problems = append(problems, "memo missing")
	}
	return problems
}

func describeProviderError(pe types.ProviderError) string {
	switch {
	case pe.ErrorCode != "" && pe.Message != "":
		return fmt.Sprintf("provider error %s: %s", pe.ErrorCode, pe.Message)
	case pe.Message != "":
		return "provider error: " + pe.Message
	case pe.ErrorCode != "":
		return "provider error: " + pe.ErrorCode
	default:
		return "provider error"
	}
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
