package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	rootCmd   = &cobra.Command{
		Use:   "yt-courier",
		Short: "YT-Courier CLI - Admin interface for the YouTube courier bot",
		Long:  `A command-line interface for inspecting the running yt-courier bot: failed-download ledgers, user statistics and health.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Admin API URL")

	marketingCmd.Flags().Int("min-downloads", 1, "Minimum download count")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(marketingCmd)
}

func getJSON(path string, out interface{}) error {
	resp, err := http.Get(serverURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s", string(body))
	}
	return json.Unmarshal(body, out)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check bot health",
	Run: func(cmd *cobra.Command, args []string) {
		var status map[string]interface{}
		if err := getJSON("/health", &status); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Status: %v\n", status["status"])
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show user statistics",
	Run: func(cmd *cobra.Command, args []string) {
		var stats map[string]interface{}
		if err := getJSON("/api/v1/users/stats", &stats); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("User Statistics:")
		fmt.Printf("  Users:            %v\n", stats["total"])
		fmt.Printf("  Marketing opt-in: %v\n", stats["marketing_opt_in"])
		fmt.Printf("  Total downloads:  %v\n", stats["total_downloads"])
	},
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger [chat-id]",
	Short: "List failed downloads for a chat",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var result struct {
			ChatID int64 `json:"chat_id"`
			Count  int   `json:"count"`
			Items  []struct {
				URL    string `json:"url"`
				Format string `json:"format"`
			} `json:"items"`
		}
		if err := getJSON("/api/v1/ledger/"+args[0], &result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if result.Count == 0 {
			fmt.Printf("No failed downloads for chat %d\n", result.ChatID)
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "#\tURL\tFORMAT")
		for i, item := range result.Items {
			fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, truncate(item.URL, 60), item.Format)
		}
		w.Flush()
	},
}

var marketingCmd = &cobra.Command{
	Use:   "marketing",
	Short: "List chat IDs of users who opted into marketing",
	Run: func(cmd *cobra.Command, args []string) {
		minDownloads, _ := cmd.Flags().GetInt("min-downloads")

		var result struct {
			Count       int     `json:"count"`
			TelegramIDs []int64 `json:"telegram_ids"`
		}
		path := fmt.Sprintf("/api/v1/users/marketing?min_downloads=%d", minDownloads)
		if err := getJSON(path, &result); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%d user(s):\n", result.Count)
		for _, id := range result.TelegramIDs {
			fmt.Println(id)
		}
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
