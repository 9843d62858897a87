package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cross-chain-flow/pkg/types"
)

var (
	filterProvider string
	filterChain    string
	filterSymbol   string
)

var tokensCmd = &cobra.Command{
	Use:     "list-tokens",
	Aliases: []string{"tokens", "ls"},
	Short:   "List tokens supported by each provider",
	Long: `List the tokens THORChain, MayaChain and Chainflip can swap. Every provider is
queried concurrently; a provider that fails is reported without hiding the others.

Examples:
  xflow list-tokens
  xflow list-tokens --provider CHAINFLIP
  xflow list-tokens --chain ETH --symbol USDC`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&filterProvider, "provider", "", "Filter by provider")
	tokensCmd.Flags().StringVar(&filterChain, "chain", "", "Filter by chain")
	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
}

func runListTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching supported tokens..."
		s.Start()
	}

	results, err := a.lister.List(context.Background())
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	filtered := filterTokens(results)

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(filtered, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayTokens(filtered)
	}
}

func filterTokens(results []types.ProviderTokens) []types.ProviderTokens {
	out := make([]types.ProviderTokens, 0, len(results))
	for _, r := range results {
		if filterProvider != "" && !strings.EqualFold(string(r.Provider), filterProvider) {
			continue
		}

		tokens := make([]types.Token, 0, len(r.Tokens))
		for _, token := range r.Tokens {
			if filterChain != "" && !strings.EqualFold(token.Chain, filterChain) {
				continue
			}
			if filterSymbol != "" && !strings.Contains(strings.ToUpper(token.Ticker), strings.ToUpper(filterSymbol)) {
				continue
			}
			tokens = append(tokens, token)
		}
		r.Tokens = tokens
		out = append(out, r)
	}
	return out
}

func displayTokens(results []types.ProviderTokens) {
	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                            SUPPORTED TOKENS")
	fmt.Println(strings.Repeat("=", 90))

	total := 0
	for _, r := range results {
		color.Cyan("\n%s", r.Provider)
		fmt.Println(strings.Repeat("-", 90))

		if r.Error != "" {
			color.Red("  unavailable: %s", r.Error)
			continue
		}
		if len(r.Tokens) == 0 {
			fmt.Println("  No tokens found matching the criteria.")
			continue
		}

		tokens := append([]types.Token(nil), r.Tokens...)
		sort.Slice(tokens, func(i, j int) bool { return tokens[i].Identifier < tokens[j].Identifier })

		for _, token := range tokens {
			address := token.Address

			// Truncate address if too long
			if len(address) > 40 {
				address = address[:37] + "..."
			}

			fmt.Printf("  %-24s  %2d decimals  %s\n",
				color.YellowString(token.Identifier),
				token.Decimals,
				color.HiBlackString(address))
		}
		total += len(tokens)
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens across %d providers\n\n", total, len(results))
}
