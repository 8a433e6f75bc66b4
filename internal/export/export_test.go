package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"tasknest/internal/models"
	"tasknest/internal/query"
)

func fixedExporter(locale string) *Exporter {
	x := New(query.NewEngine(nil, locale), locale)
	x.Now = func() time.Time { return time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC) }
	return x
}

func date(s string) *models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func fixture() ([]models.Board, []models.Task) {
	board := int64(1)
	gone := int64(9)
	boards := []models.Board{{ID: 1, Title: "Home", Status: models.BoardActive, CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}}
	tasks := []models.Task{
		{ID: 1, BoardID: &board, Title: "Late", Status: models.StatusToDo, Priority: models.PriorityHigh, DueDate: date("2024-06-01")},
		{ID: 2, BoardID: &board, Title: "Finished", Status: models.StatusDone, Priority: models.PriorityLow, DueDate: date("2024-06-01")},
		{ID: 3, BoardID: &gone, Title: "Orphan", Status: models.StatusInProgress, Priority: models.PriorityMedium},
		{ID: 4, BoardID: &board, Title: "Hidden", Status: models.StatusToDo, IsArchived: true},
	}
	return boards, tasks
}

func TestBuild(t *testing.T) {
	boards, tasks := fixture()
	book := fixedExporter("en").Build(boards, tasks)

	if len(book.Boards.Rows) != 1 {
		t.Fatalf("expected one board row, got %d", len(book.Boards.Rows))
	}
	row := book.Boards.Rows[0]
	if row[3] != "Active" || row[4] != "2024-01-02" || row[5] != 2 || row[6] != 1 || row[7] != 50 {
		t.Fatalf("unexpected board row %v", row)
	}

	if len(book.Tasks.Rows) != 3 {
		t.Fatalf("archived tasks must be excluded, got %d rows", len(book.Tasks.Rows))
	}
	late, finished, orphan := book.Tasks.Rows[0], book.Tasks.Rows[1], book.Tasks.Rows[2]
	if late[3] != "To Do" || late[4] != "High" || late[6] != "Home" || late[7] != "yes" {
		t.Fatalf("unexpected row %v", late)
	}
	if finished[7] != "no" {
		t.Fatalf("done tasks are never overdue, got %v", finished)
	}
	if orphan[6] != NoBoard || orphan[5] != "" {
		t.Fatalf("unexpected orphan row %v", orphan)
	}
}

func TestBuildLocalized(t *testing.T) {
	boards, tasks := fixture()
	book := fixedExporter("ru").Build(boards, tasks)
	if got := book.Tasks.Rows[2][3]; got != "В процессе" {
		t.Fatalf("expected russian status label, got %v", got)
	}
	if got := book.Boards.Rows[0][3]; got != "Активная" {
		t.Fatalf("expected russian board status, got %v", got)
	}
}

func TestOverdue(t *testing.T) {
	x := fixedExporter("en")
	today := models.NewDate(x.Now())
	cases := []struct {
		task models.Task
		want bool
	}{
		{models.Task{Status: models.StatusToDo, DueDate: date("2024-06-14")}, true},
		{models.Task{Status: models.StatusToDo, DueDate: date("2024-06-15")}, false},
		{models.Task{Status: models.StatusToDo}, false},
		{models.Task{Status: "Выполнено", DueDate: date("2020-01-01")}, false},
	}
	for i, c := range cases {
		if got := x.Overdue(c.task, today); got != c.want {
			t.Fatalf("case %d: expected %v, got %v", i, c.want, got)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	boards, tasks := fixture()
	book := fixedExporter("en").Build(boards, tasks)

	var buf bytes.Buffer
	if err := book.WriteCSV(&buf); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "# boards\n") || !strings.Contains(out, "\n\n# tasks\n") {
		t.Fatalf("unexpected layout:\n%s", out)
	}
	if !strings.Contains(strings.ToLower(out), "id,title,description,status,priority,due,board,overdue") {
		t.Fatalf("missing task header:\n%s", out)
	}
	if book.Summary() != "1 boards, 3 tasks" {
		t.Fatalf("unexpected summary %q", book.Summary())
	}
}

func TestSheetLookupAndRender(t *testing.T) {
	boards, tasks := fixture()
	book := fixedExporter("en").Build(boards, tasks)
	if _, ok := book.Sheet("tasks"); !ok {
		t.Fatal("expected tasks sheet")
	}
	if _, ok := book.Sheet("users"); ok {
		t.Fatal("unexpected users sheet")
	}
	var buf bytes.Buffer
	if err := book.Tasks.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Orphan") {
		t.Fatalf("rendered table missing rows:\n%s", buf.String())
	}
}

func TestFileName(t *testing.T) {
	got := FileName(time.Date(2024, 6, 15, 23, 0, 0, 0, time.UTC))
	if got != "tasknest-export-2024-06-15.csv" {
		t.Fatalf("unexpected file name %q", got)
	}
}
