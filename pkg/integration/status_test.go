package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cross-chain-flow/pkg/types"
)

func TestComputeIntegrationStatus(t *testing.T) {
	routes := []types.Route{
		{Provider: types.ProviderThorchain, DepositAddress: btcDeposit, Memo: "=:ETH.ETH:0xabc", ExpectedOutput: "0.03"},
		{Provider: types.ProviderMayachain, DepositAddress: btcDeposit, ExpectedOutput: "0.03"},
		{Provider: types.ProviderUnknown, ProviderLabel: "ONEINCH", DepositAddress: btcDeposit, ExpectedOutput: "1"},
	}
	errs := []types.ProviderError{{Provider: "chainflip", ErrorCode: "quote_failed", Message: "no liquidity"}}

	status := ComputeIntegrationStatus(routes, errs)

	assert.Len(t, status, len(types.Providers))

	thor := status[types.ProviderThorchain]
	assert.True(t, thor.Available)
	assert.True(t, thor.Functional)
	assert.Empty(t, thor.Issues)

	maya := status[types.ProviderMayachain]
	assert.True(t, maya.Available)
	assert.False(t, maya.Functional)
	assert.Equal(t, []string{"memo missing"}, maya.Issues)

	flip := status[types.ProviderChainflip]
	assert.False(t, flip.Available)
	assert.False(t, flip.Functional)
	assert.Equal(t, []string{"no routes returned", "provider error quote_failed: no liquidity"}, flip.Issues)
}

func TestComputeIntegrationStatus_OneGoodRouteIsEnough(t *testing.T) {
	routes := []types.Route{
		{Provider: types.ProviderChainflip, DepositAddress: "short", ExpectedOutput: "0"},
		{Provider: types.ProviderChainflip, DepositAddress: btcDeposit, ExpectedOutput: "2"},
	}

	status := ComputeIntegrationStatus(routes, nil)

	flip := status[types.ProviderChainflip]
	assert.True(t, flip.Functional)
	assert.Contains(t, flip.Issues, "deposit address missing or too short")
	assert.Contains(t, flip.Issues, `expected output "0" is not positive`)
}

func TestComputeIntegrationStatus_Empty(t *testing.T) {
	status := ComputeIntegrationStatus(nil, nil)
	for _, kind := range types.Providers {
		assert.False(t, status[kind].Available)
		assert.Equal(t, []string{"no routes returned"}, status[kind].Issues)
	}
}

func TestDescribeProviderError(t *testing.T) {
	assert.Equal(t, "provider error E: m", describeProviderError(types.ProviderError{ErrorCode: "E", Message: "m"}))
	assert.Equal(t, "provider error: m", describeProviderError(types.ProviderError{Message: "m"}))
	assert.Equal(t, "provider error: E", describeProviderError(types.ProviderError{ErrorCode: "E"}))
	assert.Equal(t, "provider error", describeProviderError(types.ProviderError{}))
}
