package cli

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tasknest/internal/lifecycle"
	"tasknest/internal/localstate"
	"tasknest/internal/models"
	"tasknest/internal/query"
	"tasknest/internal/storage/sqlite"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks with filters and sorting",
		Long: `List tasks from the database, or from the local cache with --offline.

Statuses and priorities may be given in any supported language.`,
		RunE: runTasks,
	}
	f := cmd.Flags()
	f.String("status", "", "filter by status")
	f.String("board", "", "filter by board id")
	f.String("priority", "", "filter by priority")
	f.StringP("search", "q", "", "case-insensitive text in title or description")
	f.String("sort", "date", "sort by date, priority or title")
	f.String("view", "", "sidebar view: allTasks, important, completed")
	f.Bool("archived", false, "show archived tasks instead")
	f.Bool("offline", false, "read tasks from the local cache")
	f.Bool("cache", false, "store the fetched tasks and boards in the local cache")
	return cmd
}

func runTasks(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	offline, _ := flags.GetBool("offline")
	cache, _ := flags.GetBool("cache")
	archived, _ := flags.GetBool("archived")

	tasks, boards, err := loadTasks(cmd, e, offline, cache)
	if err != nil {
		return err
	}

	params := query.Params{}
	params.Status, _ = flags.GetString("status")
	params.BoardID, _ = flags.GetString("board")
	params.Priority, _ = flags.GetString("priority")
	params.Search, _ = flags.GetString("search")
	params.Sort, _ = flags.GetString("sort")

	var shown []models.Task
	if archived {
		shown = e.engine.Sort(e.engine.Archived(tasks), query.ParseSortKey(params.Sort))
	} else {
		filter, err := e.engine.ParseFilter(params)
		if err != nil {
			return err
		}
		if view, _ := flags.GetString("view"); view != "" {
			filter = merge(filter, query.ParsePreset(view).Filter())
		}
		shown = e.engine.Sort(e.engine.Filter(tasks, filter), query.ParseSortKey(params.Sort))
	}

	renderTasks(cmd.OutOrStdout(), e, shown, boards)
	return nil
}

func renderTasks(w io.Writer, e *env, tasks []models.Task, boards []models.Board) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Status", "Priority", "Due", "Board"})
	for _, task := range tasks {
		due := ""
		if task.DueDate != nil {
			due = task.DueDate.String()
		}
		t.AppendRow(table.Row{
			task.ID,
			task.Title,
			e.labels.DisplayStatus(string(task.Status), e.cfg.Locale),
			e.labels.DisplayPriority(string(task.Priority), e.cfg.Locale),
			due,
			lifecycle.BoardTitle(boards, task.BoardID, "no board"),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "total", len(tasks)})
	t.Render()
}

// loadTasks reads every task and board from the database, or from the local cache when
// offline. With cache set the fetched collections replace the cached ones.
func loadTasks(cmd *cobra.Command, e *env, offline, cache bool) ([]models.Task, []models.Board, error) {
	state := localstate.Open(e.cfg.StatePath, e.logger)
	if offline {
		return state.Tasks(), state.Boards(), nil
	}

	store, err := e.openStore()
	if err != nil {
		return nil, nil, err
	}
	defer store.Close()
	ctx := cmd.Context()
	tasks, err := store.ListTasks(ctx, sqlite.TaskQuery{Archived: sqlite.IncludeArchived})
	if err != nil {
		return nil, nil, err
	}
	boards, err := store.ListBoards(ctx)
	if err != nil {
		return nil, nil, err
	}
	if cache {
		if err := state.SaveTasks(tasks); err != nil {
			return nil, nil, err
		}
		if err := state.SaveBoards(boards); err != nil {
			return nil, nil, err
		}
	}
	return tasks, boards, nil
}

// merge overlays the preset constraints that the explicit filter leaves open.
func merge(f, preset query.Filter) query.Filter {
	if f.Status == nil {
		f.Status = preset.Status
	}
	if f.Priority == nil {
		f.Priority = preset.Priority
	}
	return f
}
