package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cross-chain-flow/pkg/client"
	"cross-chain-flow/pkg/types"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <tx-hash>",
	Short: "Check the status of a swap",
	Long: `Check the execution status of a cross-chain swap by its inbound transaction hash.

Examples:
  xflow status 0x1234...abcd
  xflow status 0x1234...abcd --watch
  xflow status 0x1234...abcd --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates until the swap settles")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	txHash := strings.TrimSpace(args[0])
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if watchStatus {
		watchSwapStatus(a.client, txHash, jsonOutput)
	} else {
		checkSwapStatus(a.client, txHash, jsonOutput)
	}
}

func checkSwapStatus(apiClient *client.AggregatorClient, txHash string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking swap status..."
		s.Start()
	}

	status, err := apiClient.GetStatus(context.Background(), txHash)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(status, "", "  ")
		fmt.Println(string(jsonData))
	} else {
		displayStatus(status)
	}
}

func watchSwapStatus(apiClient *client.AggregatorClient, txHash string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}
	if watchInterval <= 0 {
		watchInterval = 5
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nWatching swap status (Tx: %s)\n", color.CyanString(txHash))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	// Check immediately first
	if checkAndDisplayStatus(ctx, apiClient, txHash) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if checkAndDisplayStatus(ctx, apiClient, txHash) {
				return
			}
		}
	}
}

// checkAndDisplayStatus prints the current status and reports whether it is final
func checkAndDisplayStatus(ctx context.Context, apiClient *client.AggregatorClient, txHash string) bool {
	status, err := apiClient.GetStatus(ctx, txHash)
	if err != nil {
		color.Red("Error: %v", err)
		return false
	}

	displayStatus(status)
	return isFinalStatus(status.Status)
}

func isFinalStatus(status string) bool {
	switch strings.ToLower(status) {
	case "completed", "success", "failed", "refunded":
		return true
	default:
		return false
	}
}

func displayStatus(status *types.SwapStatus) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        SWAP STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Tx Hash:         %s\n", color.CyanString(status.TxHash))
	fmt.Printf("  Status:          %s\n", getColoredStatus(status.Status))

	if status.Message != "" {
		fmt.Printf("  Message:         %s\n", status.Message)
	}
	if status.Provider != "" {
		fmt.Printf("  Provider:        %s\n", status.Provider)
	}
	if status.ObservedIn != "" {
		fmt.Printf("  Observed In:     %s\n", status.ObservedIn)
	}
	if status.InAmount != "" {
		fmt.Printf("  Amount In:       %s\n", status.InAmount)
	}
	if status.OutAmount != "" {
		fmt.Printf("  Amount Out:      %s\n", status.OutAmount)
	}
	if status.FinalTxHash != "" {
		fmt.Printf("  Final Tx:        %s\n", color.HiBlackString(status.FinalTxHash))
	}
	if status.FinalTxExplorerURL != "" {
		fmt.Printf("  Explorer:        %s\n", color.HiBlackString(status.FinalTxExplorerURL))
	}
	if status.Timestamp != "" {
		fmt.Printf("  Last Updated:    %s\n", status.Timestamp)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func getColoredStatus(status string) string {
	status = strings.ToUpper(status)

	switch status {
	case "SUCCESS", "COMPLETED":
		return color.GreenString(status)
	case "PENDING", "PROCESSING", "SWAPPING", "INBOUND", "OUTBOUND":
		return color.YellowString(status)
	case "FAILED", "REFUNDED":
		return color.RedString(status)
	case "NOT_FOUND":
		return color.MagentaString(status)
	default:
		return status
	}
}
