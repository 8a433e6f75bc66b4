package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tasknest/internal/export"
	"tasknest/internal/storage/sqlite"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export boards and tasks as CSV",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.StringP("output", "o", "", "output file (default tasknest-export-<date>.csv, - for stdout)")
	f.String("sheet", "", "only export one sheet: boards or tasks")
	f.Bool("table", false, "print as a table instead of CSV")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
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
	tasks, err := store.ListTasks(ctx, sqlite.TaskQuery{})
	if err != nil {
		return err
	}

	x := export.New(e.engine, e.cfg.Locale)
	book := x.Build(boards, tasks)
	sheets := book.Sheets()
	if name, _ := cmd.Flags().GetString("sheet"); name != "" {
		sheet, ok := book.Sheet(name)
		if !ok {
			return fmt.Errorf("unknown sheet %q", name)
		}
		sheets = []export.Sheet{sheet}
	}

	if asTable, _ := cmd.Flags().GetBool("table"); asTable {
		for _, s := range sheets {
			if err := s.Render(cmd.OutOrStdout()); err != nil {
				return err
			}
		}
		return nil
	}

	out := cmd.OutOrStdout()
	path, _ := cmd.Flags().GetString("output")
	if path != "-" {
		if path == "" {
			path = export.FileName(time.Now())
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if len(sheets) == 1 {
		_, err = fmt.Fprintln(out, sheets[0].CSV())
	} else {
		err = book.WriteCSV(out)
	}
	if err != nil {
		return err
	}
	if path != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", book.Summary(), path)
	}
	return nil
}
