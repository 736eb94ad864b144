// Command tasksctl is the operator CLI for the campus tasks API: corpus
// statistics, ranked search, and manual NPC chat testing.
package main

import (
	"github.com/cityu-campus/tasks-api/internal/cli"
)

func main() {
	cli.Execute()
}
