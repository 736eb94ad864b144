package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var searchLimit int

var scoreColor = color.New(color.FgYellow).SprintFunc()

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a ranked task search against a running server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := &http.Client{Timeout: 10 * time.Second}
		u := fmt.Sprintf("%s/api/search?q=%s&limit=%s",
			serverURL, url.QueryEscape(args[0]), strconv.Itoa(searchLimit))
		resp, err := client.Get(u)
		if err != nil {
			return fmt.Errorf("requesting search: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned %s", resp.Status)
		}

		var body struct {
			Query   string `json:"query"`
			Count   int    `json:"count"`
			Results []struct {
				TaskID string  `json:"task_id"`
				Title  string  `json:"title"`
				Score  float64 `json:"score"`
				Lat    float64 `json:"lat"`
				Lng    float64 `json:"lng"`
			} `json:"results"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		fmt.Printf("%s %q: %d result(s)\n", heading("search"), body.Query, body.Count)
		for i, r := range body.Results {
			fmt.Printf("%2d. [%s] %s  %s\n", i+1, r.TaskID, r.Title, scoreColor(fmt.Sprintf("%.4f", r.Score)))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}
