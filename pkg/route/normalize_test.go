package route

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cross-chain-flow/pkg/types"
)

const (
	btcDeposit = "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh"
	ethRecip   = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
)

func rawRoute(t *testing.T, raw string) types.RawRoute {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	require.NoError(t, dec.Decode(&out))
	return out
}

func TestNormalize_ThorchainScenario(t *testing.T) {
	raw := rawRoute(t, `{
		"transaction": {"from": "`+btcDeposit+`", "memo": "SWAP:ETH.ETH:0xabc"},
		"provider": "ThorChain_v2",
		"expectedBuyAmount": "1.23"
	}`)

	r := Normalize(raw, ethRecip)

	assert.Equal(t, types.ProviderThorchain, r.Provider)
	assert.Equal(t, "ThorChain_v2", r.ProviderLabel)
	assert.Equal(t, btcDeposit, r.DepositAddress)
	assert.Equal(t, "SWAP:ETH.ETH:0xabc", r.Memo)
	assert.Equal(t, "1.23", r.ExpectedOutput)
	assert.Equal(t, "1.23", r.ExpectedOutputMaxSlippage)
	assert.Equal(t, DefaultEstimatedTime, r.EstimatedTime)
	assert.NotNil(t, r.Fees)
	assert.NotNil(t, r.Warnings)

	result := Validate(r)
	assert.True(t, result.IsValid, "errors: %v", result.Errors)
}

func TestNormalize_ProviderResolution(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantKind  types.ProviderKind
		wantLabel string
	}{
		{"providers array wins", `{"providers":["MAYACHAIN"],"provider":"THORCHAIN"}`, types.ProviderMayachain, "MAYACHAIN"},
		{"provider field", `{"provider":"thorchain-streaming"}`, types.ProviderThorchain, "thorchain-streaming"},
		{"meta provider", `{"meta":{"provider":"Chainflip"}}`, types.ProviderChainflip, "Chainflip"},
		{"flip substring", `{"provider":"FLIP_BOOST"}`, types.ProviderChainflip, "FLIP_BOOST"},
		{"maya before thor", `{"provider":"MAYA_THOR_BRIDGE"}`, types.ProviderMayachain, "MAYA_THOR_BRIDGE"},
		{"empty providers falls through", `{"providers":[],"provider":"MAYA"}`, types.ProviderMayachain, "MAYA"},
		{"unrecognized label", `{"provider":"ONEINCH"}`, types.ProviderUnknown, "ONEINCH"},
		{"absent", `{}`, types.ProviderUnknown, ""},
		{"null provider", `{"provider":null}`, types.ProviderUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Normalize(rawRoute(t, tt.raw), ethRecip)
			assert.Equal(t, tt.wantKind, r.Provider)
			assert.NotEmpty(t, r.Provider)
			assert.Equal(t, tt.wantLabel, r.ProviderLabel)
		})
	}
}

func TestNormalize_DepositAddressProbeOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"transaction.from", `{"transaction":{"from":"A","depositAddress":"B"},"inboundAddress":"C"}`, "A"},
		{"transaction.depositAddress", `{"transaction":{"depositAddress":"B"},"inboundAddress":"C"}`, "B"},
		{"empty values skipped", `{"transaction":{"from":""},"inboundAddress":"C"}`, "C"},
		{"targetAddress", `{"targetAddress":"D","depositAddress":"E"}`, "D"},
		{"depositAddress", `{"depositAddress":"E"}`, "E"},
		{"chainflip meta", `{"meta":{"chainflip":{"depositAddress":"F"},"mayachain":{"depositAddress":"G"}}}`, "F"},
		{"mayachain meta", `{"meta":{"mayachain":{"depositAddress":"G"}}}`, "G"},
		{"none", `{"memo":"x"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(rawRoute(t, tt.raw), ethRecip).DepositAddress)
		})
	}
}

func TestNormalize_Memo(t *testing.T) {
	r := Normalize(rawRoute(t, `{"memo":"=:ETH.ETH:{destinationAddress}:0/1/0"}`), ethRecip)
	assert.Equal(t, "=:ETH.ETH:"+ethRecip+":0/1/0", r.Memo)

	r = Normalize(rawRoute(t, `{"meta":{"memo":"=:e:{destinationAddress}:{destinationAddress}"}}`), ethRecip)
	assert.Equal(t, "=:e:"+ethRecip+":{destinationAddress}", r.Memo, "only the first placeholder is replaced")

	r = Normalize(rawRoute(t, `{"transaction":{"memo":""},"memo":"fallback"}`), ethRecip)
	assert.Equal(t, "fallback", r.Memo)

	r = Normalize(rawRoute(t, `{}`), ethRecip)
	assert.Equal(t, "", r.Memo)
}

func TestSubstituteRecipient_Idempotent(t *testing.T) {
	memos := []string{
		"=:ETH.ETH:{destinationAddress}",
		"SWAP:BTC.BTC:bc1q",
		"",
	}
	for _, memo := range memos {
		once := SubstituteRecipient(memo, ethRecip)
		if !strings.Contains(once, DestinationPlaceholder) {
			assert.Equal(t, once, SubstituteRecipient(once, ethRecip))
		}
	}
}

func TestNormalize_ExpectedOutput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"expectedBuyAmount number", `{"expectedBuyAmount":0.0312}`, "0.0312"},
		{"priority over buyAmount", `{"buyAmount":"9","expectedOutput":"2"}`, "2"},
		{"zero is defined and wins", `{"expectedBuyAmount":"0","buyAmount":"5"}`, "0"},
		{"outAmount", `{"outAmount":"7"}`, "7"},
		{"nested quote", `{"quote":{"expectedAmountOut":"3.5"}}`, "3.5"},
		{"meta", `{"meta":{"buyAmount":"4"}}`, "4"},
		{"last leg", `{"legs":[{"buyAmount":"1"},{"buyAmount":"1.9"}]}`, "1.9"},
		{"last step", `{"steps":[{"outputAmount":"8"}]}`, "8"},
		{"missing defaults to zero", `{}`, "0"},
		{"null skipped", `{"expectedBuyAmount":null,"toAmount":"6"}`, "6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(rawRoute(t, tt.raw), ethRecip).ExpectedOutput)
		})
	}

	r := Normalize(rawRoute(t, `{"expectedBuyAmount":"2","expectedBuyAmountMaxSlippage":"1.98"}`), ethRecip)
	assert.Equal(t, "1.98", r.ExpectedOutputMaxSlippage)
}

func TestNormalize_FeesAlwaysArray(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantLen   int
		wantTotal float64
	}{
		{"array", `{"fees":[{"type":"inbound","amount":"0.1","asset":"BTC.BTC"},{"type":"outbound","amount":0.2}]}`, 2, 0.3},
		{"missing", `{}`, 0, 0},
		{"null", `{"fees":null}`, 0, 0},
		{"scalar wrapped", `{"fees":"0.5"}`, 1, 0.5},
		{"object wrapped", `{"fees":{"type":"network","amount":"1"}}`, 1, 1},
		{"later array preferred over scalar", `{"fees":"3","meta":{"fees":[{"amount":"2"}]}}`, 1, 2},
		{"non numeric counts as zero", `{"fees":[{"amount":"n/a"},{"amount":"1.5"}]}`, 2, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Normalize(rawRoute(t, tt.raw), ethRecip)
			require.NotNil(t, r.Fees)
			assert.Len(t, r.Fees, tt.wantLen)
			assert.InDelta(t, tt.wantTotal, r.TotalFees, 1e-9)

			encoded, err := json.Marshal(r)
			require.NoError(t, err)
			assert.Contains(t, string(encoded), `"fees":[`)
		})
	}

	r := Normalize(rawRoute(t, `{"fees":[{"type":"inbound","amount":"0.1","asset":"BTC.BTC","chain":"BTC","protocol":"THORCHAIN"}]}`), ethRecip)
	assert.Equal(t, types.Fee{Type: "inbound", Amount: "0.1", Asset: "BTC.BTC", Chain: "BTC", Protocol: "THORCHAIN"}, r.Fees[0])
}

func TestNormalize_EstimatedTime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"seconds", `{"estimatedTime":600}`, "10 min"},
		{"seconds rounded up", `{"estimatedTime":61}`, "2 min"},
		{"total object", `{"estimatedTime":{"total":1800,"inbound":1}}`, "30 min"},
		{"legs summed", `{"estimatedTime":{"inbound":600,"swap":6,"outbound":114}}`, "12 min"},
		{"zero legs fallback", `{"estimatedTime":{"inbound":0,"swap":0}}`, DefaultEstimatedTime},
		{"text fallback", `{"estimatedTime":"soon"}`, DefaultEstimatedTime},
		{"missing", `{}`, DefaultEstimatedTime},
		{"meta", `{"meta":{"estimatedTime":120}}`, "2 min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(rawRoute(t, tt.raw), ethRecip).EstimatedTime)
		})
	}
}

func TestNormalize_PriceImpact(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"meta first", `{"meta":{"priceImpact":0.5},"priceImpact":2}`, 0.5},
		{"top level", `{"priceImpact":"1.25"}`, 1.25},
		{"slippage", `{"slippage":3}`, 3},
		{"bps", `{"totalSlippageBps":150}`, 1.5},
		{"missing", `{}`, 0},
		{"garbage", `{"priceImpact":"high"}`, 0},
		{"zero meta falls through", `{"meta":{"priceImpact":0},"priceImpact":2}`, 2},
		{"garbage meta falls through", `{"meta":{"priceImpact":"n/a"},"slippage":"0.8"}`, 0.8},
		{"zero everywhere but bps", `{"priceImpact":"0","slippage":0,"totalSlippageBps":25}`, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Normalize(rawRoute(t, tt.raw), ethRecip).PriceImpact, 1e-9)
		})
	}
}
