package address

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// Validator checks address syntax for one family of chains
type Validator interface {
	IsValidSyntax(address string) bool
}

type regexValidator struct {
	patterns []*regexp.Regexp
}

func (v regexValidator) IsValidSyntax(address string) bool {
	for _, p := range v.patterns {
		if p.MatchString(address) {
			return true
		}
	}
	return false
}

type evmValidator struct{}

func (evmValidator) IsValidSyntax(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

type solanaValidator struct{}

func (solanaValidator) IsValidSyntax(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}

func bech32(hrp string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + hrp + `1[02-9ac-hj-np-z]{38,87}$`)
}

var (
	bitcoin = regexValidator{patterns: []*regexp.Regexp{
		regexp.MustCompile(`^[13][a-km-zA-HJ-NP-Z1-9]{25,34}$`),
		bech32("bc"),
	}}
	litecoin = regexValidator{patterns: []*regexp.Regexp{
		regexp.MustCompile(`^[LM3][a-km-zA-HJ-NP-Z1-9]{26,33}$`),
		bech32("ltc"),
	}}
	dogecoin = regexValidator{patterns: []*regexp.Regexp{
		regexp.MustCompile(`^[DA9][a-km-zA-HJ-NP-Z1-9]{25,34}$`),
	}}
	bitcoinCash = regexValidator{patterns: []*regexp.Regexp{
		regexp.MustCompile(`^(bitcoincash:)?[qp][02-9ac-hj-np-z]{41}$`),
		regexp.MustCompile(`^[13][a-km-zA-HJ-NP-Z1-9]{25,34}$`),
	}}
	dash = regexValidator{patterns: []*regexp.Regexp{
		regexp.MustCompile(`^[X7][a-km-zA-HJ-NP-Z1-9]{33}$`),
	}}
	zcash = regexValidator{patterns: []*regexp.Regexp{
		regexp.MustCompile(`^t[13][a-km-zA-HJ-NP-Z1-9]{33}$`),
	}}
	polkadot = regexValidator{patterns: []*regexp.Regexp{
		regexp.MustCompile(`^1[a-km-zA-HJ-NP-Z1-9]{46,47}$`),
	}}
)

// validators maps a chain prefix as used in asset identifiers to its address syntax
var validators = map[string]Validator{
	"BTC":  bitcoin,
	"LTC":  litecoin,
	"DOGE": dogecoin,
	"BCH":  bitcoinCash,
	"DASH": dash,
	"ZEC":  zcash,
	"DOT":  polkadot,
	"ETH":  evmValidator{},
	"ARB":  evmValidator{},
	"AVAX": evmValidator{},
	"BASE": evmValidator{},
	"BSC":  evmValidator{},
	"OP":   evmValidator{},
	"POL":  evmValidator{},
	"SOL":  solanaValidator{},
	"THOR": regexValidator{patterns: []*regexp.Regexp{bech32("thor")}},
	"MAYA": regexValidator{patterns: []*regexp.Regexp{bech32("maya")}},
	"GAIA": regexValidator{patterns: []*regexp.Regexp{bech32("cosmos")}},
	"KUJI": regexValidator{patterns: []*regexp.Regexp{bech32("kujira")}},
}

// IsValidAddress reports whether address is syntactically valid on chain.
// Chains without a known format are accepted.
func IsValidAddress(address, chain string) bool {
	address = strings.TrimSpace(address)
	if address == "" {
		return false
	}

	v, ok := validators[strings.ToUpper(strings.TrimSpace(chain))]
	if !ok {
		return true
	}
	return v.IsValidSyntax(address)
}

// Supported reports whether chain has a known address format
func Supported(chain string) bool {
	_, ok := validators[strings.ToUpper(strings.TrimSpace(chain))]
	return ok
}
