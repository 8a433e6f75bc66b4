// Package export renders boards and tasks as the two-sheet report offered for download.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tasknest/internal/lifecycle"
	"tasknest/internal/models"
	"tasknest/internal/query"
)

// NoBoard is shown for tasks whose board is missing.
const NoBoard = "no board"

// Sheet is one tab of the report.
type Sheet struct {
	Name   string
	Header table.Row
	Rows   []table.Row
	widths []int
}

// Workbook is the full report.
type Workbook struct {
	Boards Sheet
	Tasks  Sheet
}

// Sheets returns the sheets in report order.
func (w Workbook) Sheets() []Sheet {
	return []Sheet{w.Boards, w.Tasks}
}

// Sheet returns the sheet with the given name.
func (w Workbook) Sheet(name string) (Sheet, bool) {
	for _, s := range w.Sheets() {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

// Exporter builds reports. Labels are rendered for Locale.
type Exporter struct {
	Engine *query.Engine
	Locale string
	Now    func() time.Time
}

// New returns an exporter using engine and locale.
func New(engine *query.Engine, locale string) *Exporter {
	return &Exporter{Engine: engine, Locale: locale, Now: time.Now}
}

// FileName is the suggested download name for a report produced at now.
func FileName(now time.Time) string {
	return fmt.Sprintf("tasknest-export-%s.csv", now.Format(models.DateLayout))
}

// Build assembles both sheets. Archived tasks are left out.
func (x *Exporter) Build(boards []models.Board, tasks []models.Task) Workbook {
	n := x.Engine.Labels()
	stats := x.Engine.AggregateAll(boards, tasks)

	boardSheet := Sheet{
		Name:   "boards",
		Header: table.Row{"ID", "Title", "Description", "Status", "Created", "Tasks", "Done", "Progress (%)"},
		widths: []int{5, 25, 40, 12, 12, 12, 12, 12},
	}
	for _, b := range boards {
		st := stats[b.ID]
		boardSheet.Rows = append(boardSheet.Rows, table.Row{
			b.ID,
			b.Title,
			b.Description,
			n.DisplayBoardStatus(string(b.Status), x.Locale),
			b.CreatedAt.Format(models.DateLayout),
			st.TaskCount,
			st.CompletedCount,
			st.ProgressPercent,
		})
	}

	today := models.NewDate(x.now())
	taskSheet := Sheet{
		Name:   "tasks",
		Header: table.Row{"ID", "Title", "Description", "Status", "Priority", "Due", "Board", "Overdue"},
		widths: []int{5, 30, 40, 15, 12, 15, 20, 12},
	}
	for _, t := range x.Engine.Filter(tasks, query.Filter{}) {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		taskSheet.Rows = append(taskSheet.Rows, table.Row{
			t.ID,
			t.Title,
			t.Description,
			n.DisplayStatus(string(t.Status), x.Locale),
			n.DisplayPriority(string(t.Priority), x.Locale),
			due,
			lifecycle.BoardTitle(boards, t.BoardID, NoBoard),
			yesNo(x.Overdue(t, today)),
		})
	}

	return Workbook{Boards: boardSheet, Tasks: taskSheet}
}

// Overdue reports whether a task that is not done was due before today.
func (x *Exporter) Overdue(t models.Task, today models.Date) bool {
	if t.DueDate == nil || x.Engine.IsDone(t) {
		return false
	}
	return t.DueDate.Before(today)
}

func (x *Exporter) now() time.Time {
	if x.Now == nil {
		return time.Now()
	}
	return x.Now()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (s Sheet) writer() table.Writer {
	t := table.NewWriter()
	t.AppendHeader(s.Header)
	t.AppendRows(s.Rows)
	return t
}

// CSV renders the sheet as comma separated values with a header row.
func (s Sheet) CSV() string {
	return s.writer().RenderCSV()
}

// Render draws the sheet as a terminal table, wrapping wide columns.
func (s Sheet) Render(w io.Writer) error {
	t := s.writer()
	t.SetTitle(s.Name)
	t.SetStyle(table.StyleLight)
	configs := make([]table.ColumnConfig, 0, len(s.widths))
	for i, width := range s.widths {
		cfg := table.ColumnConfig{Number: i + 1, WidthMax: width}
		if i == 0 {
			cfg.Align = text.AlignRight
		}
		configs = append(configs, cfg)
	}
	t.SetColumnConfigs(configs)
	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}

// WriteCSV writes every sheet, each preceded by a "# name" line and separated by a
// blank line.
func (w Workbook) WriteCSV(out io.Writer) error {
	for i, s := range w.Sheets() {
		if i > 0 {
			if _, err := io.WriteString(out, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(out, "# "+s.Name+"\n"+s.CSV()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Summary is a one-line description of the workbook size.
func (w Workbook) Summary() string {
	return fmt.Sprintf("%d boards, %d tasks", len(w.Boards.Rows), len(w.Tasks.Rows))
}
