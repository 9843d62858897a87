package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		chain   string
		want    bool
	}{
		{"btc bech32", "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh", "BTC", true},
		{"btc legacy", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", "BTC", true},
		{"btc given evm address", "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", "BTC", false},
		{"eth checksum", "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", "ETH", true},
		{"eth lowercase chain", "0x742d35cc6634c0532925a3b844bc454e4438f44e", "eth", true},
		{"eth without prefix", "742d35Cc6634C0532925a3b844Bc454e4438f44e", "ETH", false},
		{"eth too short", "0x742d35Cc", "ETH", false},
		{"arbitrum shares evm syntax", "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", "ARB", true},
		{"solana", "So11111111111111111111111111111111111111112", "SOL", true},
		{"solana garbage", "not-a-key", "SOL", false},
		{"thorchain", "thor1dheycdevq39qlkxs2a6wuuzyn4aqxhve4qxtxt", "THOR", true},
		{"thorchain given maya", "maya1dheycdevq39qlkxs2a6wuuzyn4aqxhve4qxtxt", "THOR", false},
		{"unknown chain accepted", "anything", "XRD", true},
		{"empty address rejected", "", "XRD", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidAddress(tt.address, tt.chain))
		})
	}
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("btc"))
	assert.True(t, Supported("SOL"))
	assert.False(t, Supported("XRD"))
}
