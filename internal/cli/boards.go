package cli

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tasknest/internal/lifecycle"
	"tasknest/internal/storage/sqlite"
)

func newBoardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "List boards with their progress",
		RunE:  runBoards,
	}
	cmd.Flags().Bool("assignable", false, "only boards that accept new tasks")

	cmd.AddCommand(&cobra.Command{
		Use:       "set <id> <archive|complete|reopen|unarchive|toggle>",
		Short:     "Change the status of a board",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"archive", "complete", "reopen", "unarchive", "toggle"},
		RunE:      runBoardSet,
	})
	return cmd
}

func runBoards(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	boards, err := store.ListBoards(ctx)
	if err != nil {
		return err
	}
	if assignable, _ := cmd.Flags().GetBool("assignable"); assignable {
		boards = lifecycle.AssignableBoards(boards)
	}
	tasks, err := store.ListTasks(ctx, sqlite.TaskQuery{})
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Title", "Status", "Tasks", "Done", "Progress"})
	for _, b := range e.engine.WithStats(boards, tasks) {
		t.AppendRow(table.Row{
			b.ID,
			b.Title,
			e.labels.BoardStatusLabel(b.Status, e.cfg.Locale),
			b.Stats.TaskCount,
			b.Stats.CompletedCount,
			fmt.Sprintf("%d%%", b.Stats.ProgressPercent),
		})
	}
	t.Render()
	return nil
}

func runBoardSet(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid board id %q", args[0])
	}
	action, err := lifecycle.ParseAction(args[1])
	if err != nil {
		return err
	}

	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	board, err := store.GetBoard(ctx, id)
	if err != nil {
		return err
	}
	next, err := lifecycle.Apply(board.Status, action)
	if err != nil {
		return err
	}
	if _, err := store.SetBoardStatus(ctx, id, next); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "board %d: %s -> %s\n", id,
		e.labels.BoardStatusLabel(board.Status, e.cfg.Locale), e.labels.BoardStatusLabel(next, e.cfg.Locale))
	return nil
}
