package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tasknest/internal/models"
	"tasknest/internal/storage/sqlite"
)

type fixture struct {
	dir   string
	db    string
	state string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	f := fixture{dir: dir, db: filepath.Join(dir, "cli.db"), state: filepath.Join(dir, "state.json")}

	store, err := sqlite.Open(f.db, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()
	home, err := store.CreateBoard(ctx, sqlite.BoardInput{Title: "Home"})
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	for _, in := range []sqlite.TaskInput{
		{BoardID: home.ID, Title: "Write report", Priority: models.PriorityHigh},
		{BoardID: home.ID, Title: "Plan trip", Status: models.StatusDone},
	} {
		if _, err := store.CreateTask(ctx, in); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	return f
}

func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return f.runWithInput(t, "", args...)
}

func (f fixture) runWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader(input))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--db", f.db, "--state", f.state, "--locale", "en"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "version")
	if err != nil || !strings.Contains(out, "tasknest "+Version) {
		t.Fatalf("unexpected output %q (%v)", out, err)
	}
}

func TestBoardsCommand(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "boards")
	if err != nil {
		t.Fatalf("boards: %v", err)
	}
	if !strings.Contains(out, "Home") || !strings.Contains(out, "50%") {
		t.Fatalf("expected board with 50%% progress:\n%s", out)
	}

	out, err = f.run(t, "boards", "set", "1", "archive")
	if err != nil || !strings.Contains(out, "Active -> Archived") {
		t.Fatalf("unexpected set output %q (%v)", out, err)
	}
	if _, err := f.run(t, "boards", "set", "1", "complete"); err == nil {
		t.Fatal("completing an archived board must fail")
	}
	out, err = f.run(t, "boards", "--assignable")
	if err != nil || strings.Contains(out, "Home") {
		t.Fatalf("archived board listed as assignable:\n%s (%v)", out, err)
	}
}

func TestTasksCommand(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "tasks", "--view", "important")
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if !strings.Contains(out, "Write report") || strings.Contains(out, "Plan trip") {
		t.Fatalf("expected only the important task:\n%s", out)
	}

	out, err = f.run(t, "tasks", "--status", "Выполнено", "--cache")
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if !strings.Contains(out, "Plan trip") || !strings.Contains(out, "Done") {
		t.Fatalf("expected the done task with an english label:\n%s", out)
	}

	// The cache written above serves the offline listing.
	if err := os.Remove(f.db); err != nil {
		t.Fatal(err)
	}
	out, err = f.run(t, "tasks", "--offline", "-q", "TRIP")
	if err != nil || !strings.Contains(out, "Plan trip") {
		t.Fatalf("offline listing failed:\n%s (%v)", out, err)
	}
	if !strings.Contains(out, "Home") || strings.Contains(out, "no board") {
		t.Fatalf("offline listing lost the board titles:\n%s", out)
	}

	if _, err := f.run(t, "tasks", "--offline", "--priority", "urgent"); err == nil {
		t.Fatal("expected an error for an unknown priority")
	}
}

func TestExportCommand(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "export", "-o", "-")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "# boards") || !strings.Contains(out, "Write report") {
		t.Fatalf("unexpected export:\n%s", out)
	}

	path := filepath.Join(f.dir, "out.csv")
	out, err = f.run(t, "export", "-o", path, "--sheet", "tasks")
	if err != nil || !strings.Contains(out, "exported 1 boards, 2 tasks") {
		t.Fatalf("unexpected output %q (%v)", out, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if strings.Contains(string(data), "# boards") || !strings.Contains(string(data), "Plan trip") {
		t.Fatalf("expected only the tasks sheet:\n%s", data)
	}
	if _, err := f.run(t, "export", "--sheet", "users"); err == nil {
		t.Fatal("expected unknown sheet error")
	}
}

func TestPrefsCommand(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "prefs")
	if err != nil || out != "darkMode=false\nsidebarOpen=true\n" {
		t.Fatalf("unexpected defaults %q (%v)", out, err)
	}
	if _, err := f.run(t, "prefs", "set", "darkMode", "true"); err != nil {
		t.Fatalf("set: %v", err)
	}
	out, _ = f.run(t, "prefs")
	if out != "darkMode=true\nsidebarOpen=true\n" {
		t.Fatalf("unexpected prefs %q", out)
	}
	if _, err := f.run(t, "prefs", "set", "fontSize", "true"); err == nil {
		t.Fatal("expected unknown preference error")
	}
	if _, err := f.run(t, "prefs", "set", "darkMode", "maybe"); err == nil {
		t.Fatal("expected boolean parse error")
	}
}

func TestSearchDebouncesInput(t *testing.T) {
	f := newFixture(t)
	out, err := f.runWithInput(t, "r\nre\nreport\n", "search", "--delay", "200ms")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if n := strings.Count(out, "search "); n != 1 {
		t.Fatalf("expected one debounced search, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, `search "report": 1 tasks`) || !strings.Contains(out, "Write report") || strings.Contains(out, "Plan trip") {
		t.Fatalf("expected only the last query to run:\n%s", out)
	}
}

func TestSearchOffline(t *testing.T) {
	f := newFixture(t)
	if _, err := f.run(t, "tasks", "--cache"); err != nil {
		t.Fatalf("cache: %v", err)
	}
	if err := os.Remove(f.db); err != nil {
		t.Fatal(err)
	}
	out, err := f.runWithInput(t, "TRIP\n", "search", "--offline")
	if err != nil {
		t.Fatalf("offline search: %v", err)
	}
	if !strings.Contains(out, `search "TRIP": 1 tasks`) || !strings.Contains(out, "Plan trip") || !strings.Contains(out, "Home") {
		t.Fatalf("unexpected offline search output:\n%s", out)
	}
}
