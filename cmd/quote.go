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

	"cross-chain-flow/pkg/parser"
	"cross-chain-flow/pkg/route"
	"cross-chain-flow/pkg/types"
)

var recipientAddr string

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <source-asset> to <dest-asset>",
	Short: "Fetch and rank cross-chain swap routes",
	Long: `Ask the aggregator for routes from every supported provider, normalize and
validate them, and print them ranked by expected output.

Assets are chain-qualified (BTC.BTC, ETH.USDC-0xA0B8...). Common tickers such as
BTC, ETH, RUNE or CACAO are expanded automatically.

Examples:
  xflow quote 0.01 BTC to ETH --recipient 0x742d35Cc6634C0532925a3b844Bc454e4438f44e
  xflow quote 100 ETH.USDC-0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48 to BTC.BTC --recipient bc1q...
  xflow quote 1 RUNE to ETH.ETH --recipient 0x... --json`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().StringVar(&recipientAddr, "recipient", "", "Recipient address on the destination chain (REQUIRED)")
}

func runQuote(cmd *cobra.Command, args []string) {
	// Parse the command
	swapReq, err := parser.ParseSwapCommand(strings.Join(args, " "))
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	swapReq.Recipient = recipientAddr

	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching routes..."
		s.Start()
	}

	resp, err := a.quotes.Quote(context.Background(), swapReq)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayQuote(resp, swapReq)
}

func displayQuote(resp *types.QuoteResponse, swapReq *types.SwapRequest) {
	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("                                  SWAP ROUTES")
	fmt.Println(strings.Repeat("=", 90))

	fmt.Printf("\n  Swap:      %s %s -> %s\n", swapReq.Amount, color.CyanString(swapReq.FromAsset), color.CyanString(swapReq.ToAsset))
	fmt.Printf("  Recipient: %s\n", color.HiBlackString(swapReq.Recipient))

	if len(resp.Routes) == 0 {
		color.Yellow("\n  No usable routes were returned.\n")
	} else {
		fmt.Printf("  Expires:   %ds\n", resp.ExpiresIn)
		for i, r := range resp.Routes {
			displayRoute(i+1, r, resp.BestRoute != nil && i == 0)
		}
	}

	displayIntegrationStatus(resp.IntegrationStatus)

	fmt.Println("\n" + strings.Repeat("=", 90) + "\n")
}

func displayRoute(rank int, r types.Route, best bool) {
	label := fmt.Sprintf("#%d %s", rank, r.Provider)
	if best {
		label += " (best)"
		color.Green("\n  %s", label)
	} else {
		color.Cyan("\n  %s", label)
	}
	fmt.Println("  " + strings.Repeat("-", 86))

	fmt.Printf("    Expected Output:  %s\n", color.YellowString(r.ExpectedOutput))
	if r.ExpectedOutputMaxSlippage != r.ExpectedOutput {
		fmt.Printf("    Min (slippage):   %s\n", r.ExpectedOutputMaxSlippage)
	}
	fmt.Printf("    Deposit Address:  %s\n", color.CyanString(r.DepositAddress))
	if r.Memo != "" {
		fmt.Printf("    Memo:             %s\n", color.HiBlackString(r.Memo))
	}
	fmt.Printf("    Total Fees:       %g\n", r.TotalFees)
	fmt.Printf("    Estimated Time:   %s\n", r.EstimatedTime)
	if r.PriceImpact != 0 {
		fmt.Printf("    Price Impact:     %.2f%%\n", r.PriceImpact)
	}

	for _, w := range r.Warnings {
		if strings.HasPrefix(w, route.ErrorPrefix) {
			color.Red("    ! %s", w)
		} else {
			color.Yellow("    ! %s", w)
		}
	}
}

func displayIntegrationStatus(status types.IntegrationStatus) {
	if len(status) == 0 {
		return
	}

	color.Cyan("\n  PROVIDER STATUS")
	fmt.Println("  " + strings.Repeat("-", 86))

	kinds := make([]string, 0, len(status))
	for kind := range status {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		s := status[types.ProviderKind(kind)]
		state := color.RedString("unavailable")
		switch {
		case s.Functional:
			state = color.GreenString("functional")
		case s.Available:
			state = color.YellowString("degraded")
		}
		fmt.Printf("    %-12s %s\n", kind, state)
		for _, issue := range s.Issues {
			fmt.Printf("      %s\n", color.HiBlackString(issue))
		}
	}
}
