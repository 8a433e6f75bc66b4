package cli

import (
	"bufio"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tasknest/internal/query"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search tasks interactively",
		Long: `Read search text line by line from stdin and list the matching tasks.

Lines typed in quick succession are debounced: only the last one of a burst is
searched. The last line is always searched at end of input.`,
		Args: cobra.NoArgs,
		RunE: runSearch,
	}
	f := cmd.Flags()
	f.Duration("delay", query.DefaultDebounce, "quiet period before a search runs")
	f.Bool("offline", false, "search the local cache")
	return cmd
}

func runSearch(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	offline, _ := cmd.Flags().GetBool("offline")
	delay, _ := cmd.Flags().GetDuration("delay")

	tasks, boards, err := loadTasks(cmd, e, offline, false)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var mu sync.Mutex
	d := query.NewDebouncer(delay, func(q string) {
		shown := e.engine.Sort(e.engine.Filter(tasks, query.Filter{Search: q}), query.SortByDate)
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "search %q: %d tasks\n", q, len(shown))
		renderTasks(out, e, shown, boards)
	})

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		d.Trigger(strings.TrimSpace(scanner.Text()))
	}
	d.Close()
	return scanner.Err()
}
