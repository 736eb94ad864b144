package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	chatTaskID   string
	chatQuestion string
)

var npcColor = color.New(color.FgMagenta, color.Bold).SprintFunc()
var dimColor = color.New(color.Faint).SprintFunc()

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Manually test NPC chat against a running server",
	Long: `chat sends questions to the NPC chat endpoint for one task. With
--question it asks once and exits; without it, it reads questions from stdin
until EOF.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkServer(); err != nil {
			return err
		}
		if chatQuestion != "" {
			return askOnce(chatTaskID, chatQuestion)
		}
		fmt.Printf("chatting about task %s, type a question (Ctrl-D to quit)\n", chatTaskID)
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				continue
			}
			if err := askOnce(chatTaskID, question); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
		}
		return scanner.Err()
	},
}

func checkServer() error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(serverURL + "/health/live")
	if err != nil {
		return fmt.Errorf("server unreachable at %s: %w", serverURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server health check failed: %s", resp.Status)
	}
	return nil
}

func askOnce(taskID, question string) error {
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(
		fmt.Sprintf("%s/api/npc/%s/chat", serverURL, taskID),
		"application/json",
		bytes.NewReader(payload),
	)
	if err != nil {
		return fmt.Errorf("requesting chat: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	var body struct {
		Answer    string `json:"answer"`
		Citations []struct {
			Source  string  `json:"source"`
			Content string  `json:"content"`
			Score   float64 `json:"score"`
		} `json:"citations"`
		MapAnchor struct {
			LocationName string  `json:"location_name"`
			Lat          float64 `json:"lat"`
			Lng          float64 `json:"lng"`
		} `json:"map_anchor"`
		Suggestions []struct {
			TaskID string `json:"task_id"`
			Title  string `json:"title"`
		} `json:"suggestions"`
		UncertainReason string `json:"uncertain_reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	fmt.Printf("%s %s\n", npcColor("NPC:"), body.Answer)
	for i, c := range body.Citations {
		snippet := c.Content
		if len([]rune(snippet)) > 50 {
			snippet = string([]rune(snippet)[:50]) + "..."
		}
		fmt.Printf("  %d. %s %s %s\n", i+1, c.Source, dimColor(snippet), scoreColor(fmt.Sprintf("%.2f", c.Score)))
	}
	if body.MapAnchor.Lat != 0 || body.MapAnchor.Lng != 0 {
		fmt.Printf("  %s %s (%.4f, %.4f)\n", label("location:"),
			body.MapAnchor.LocationName, body.MapAnchor.Lat, body.MapAnchor.Lng)
	}
	for _, s := range body.Suggestions {
		fmt.Printf("  %s [%s] %s\n", label("related:"), s.TaskID, s.Title)
	}
	if body.UncertainReason != "" {
		fmt.Printf("  %s %s\n", dimColor("uncertain:"), dimColor(body.UncertainReason))
	}
	return nil
}

func init() {
	chatCmd.Flags().StringVar(&chatTaskID, "task", "T001", "task ID to chat about")
	chatCmd.Flags().StringVar(&chatQuestion, "question", "", "ask a single question and exit")
	rootCmd.AddCommand(chatCmd)
}
