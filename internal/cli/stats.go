package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cityu-campus/tasks-api/internal/store"
	"github.com/cityu-campus/tasks-api/pkg/config"
)

var heading = color.New(color.FgCyan, color.Bold).SprintFunc()
var label = color.New(color.FgGreen).SprintFunc()

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Analyze the local corpus data files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.StoreConfig{
			Source:        "csv",
			DataDir:       dataDir,
			TasksFile:     "tasks.csv",
			NPCsFile:      "npcs.jsonl",
			KnowledgeFile: "task_kb.jsonl",
		}
		loader := store.NewLoader(cfg, nil)
		snap, err := loader.Load(context.Background())
		if err != nil {
			return fmt.Errorf("loading corpus: %w", err)
		}
		s := store.New()
		s.Publish(snap)
		printStats(s.Stats())
		return nil
	},
}

func printStats(stats store.Stats) {
	fmt.Println(heading("Campus Tasks corpus statistics"))

	fmt.Printf("\n%s\n", heading("Tasks (tasks.csv)"))
	fmt.Printf("  %s %d\n", label("total tasks:"), stats.Tasks.TotalTasks)
	fmt.Printf("  %s %.1f min (range %d-%d)\n", label("avg duration:"),
		stats.Tasks.AvgDuration, stats.Tasks.MinDuration, stats.Tasks.MaxDuration)
	fmt.Printf("  %s %d\n", label("unique locations:"), stats.Tasks.UniqueLocations)
	fmt.Printf("  %s %d\n", label("linked NPCs:"), stats.Tasks.UniqueNPCs)
	printDistribution("categories", stats.Tasks.Categories, stats.Tasks.TotalTasks)
	printDistribution("difficulties", stats.Tasks.Difficulties, stats.Tasks.TotalTasks)
	printDistribution("courses", stats.Tasks.Courses, stats.Tasks.TotalTasks)

	fmt.Printf("\n%s\n", heading("Knowledge base (task_kb.jsonl)"))
	fmt.Printf("  %s %d\n", label("total records:"), stats.Knowledge.TotalRecords)
	fmt.Printf("  %s %.1f chars\n", label("avg content length:"), stats.Knowledge.AvgContentLength)
	fmt.Printf("  %s %.1f\n", label("avg tags:"), stats.Knowledge.AvgTagsCount)
	fmt.Printf("  %s %.1f min\n", label("avg estimated time:"), stats.Knowledge.AvgEstimatedTime)
	printDistribution("knowledge types", stats.Knowledge.KnowledgeTypes, stats.Knowledge.TotalRecords)

	fmt.Printf("\n%s %d\n", label("NPCs:"), stats.NPCCount)
}

func printDistribution(name string, counts map[string]int, total int) {
	if len(counts) == 0 || total == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	// Highest count first, ties alphabetical for stable output.
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	fmt.Printf("  %s\n", label(name+":"))
	for _, k := range keys {
		fmt.Printf("    %s: %d (%.1f%%)\n", k, counts[k], float64(counts[k])/float64(total)*100)
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
