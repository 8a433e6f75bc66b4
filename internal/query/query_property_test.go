package query

import (
	"testing"
	"time"

	"pgregory.net/rapid"

	"tasknest/internal/models"
)

func genTask(id int64) *rapid.Generator[models.Task] {
	return rapid.Custom(func(t *rapid.T) models.Task {
		task := models.Task{
			ID:          id,
			Title:       rapid.SampledFrom([]string{"Write report", "plan", "Alpha", "báná", "Яблоко", ""}).Draw(t, "title"),
			Description: rapid.String().Draw(t, "description"),
			Status:      rapid.SampledFrom([]models.TaskStatus{models.StatusToDo, models.StatusInProgress, models.StatusDone, "Выполнено", "Someday"}).Draw(t, "status"),
			Priority:    rapid.SampledFrom([]models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh, "Высокий", ""}).Draw(t, "priority"),
			IsArchived:  rapid.Bool().Draw(t, "archived"),
		}
		if rapid.Bool().Draw(t, "onBoard") {
			b := rapid.Int64Range(1, 3).Draw(t, "board")
			task.BoardID = &b
		}
		if rapid.Bool().Draw(t, "hasDue") {
			d := models.NewDate(time.Date(2024, time.Month(rapid.IntRange(1, 12).Draw(t, "month")), rapid.IntRange(1, 28).Draw(t, "day"), 0, 0, 0, 0, time.UTC))
			task.DueDate = &d
		}
		return task
	})
}

func genTasks(t *rapid.T) []models.Task {
	n := rapid.IntRange(0, 20).Draw(t, "n")
	out := make([]models.Task, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, genTask(int64(i+1)).Draw(t, "task"))
	}
	return out
}

func TestZeroFilterKeepsExactlyNonArchived(t *testing.T) {
	e := newEngine()
	rapid.Check(t, func(t *rapid.T) {
		tasks := genTasks(t)
		got := e.Filter(tasks, Filter{})
		i := 0
		for _, task := range tasks {
			if task.IsArchived {
				continue
			}
			if i >= len(got) || got[i].ID != task.ID {
				t.Fatalf("zero filter dropped or reordered task %d", task.ID)
			}
			i++
		}
		if i != len(got) {
			t.Fatalf("zero filter returned %d tasks, want %d", len(got), i)
		}
	})
}

func TestSortIsPermutationAndIdempotent(t *testing.T) {
	e := newEngine()
	rapid.Check(t, func(t *rapid.T) {
		tasks := genTasks(t)
		key := rapid.SampledFrom([]SortKey{SortByDate, SortByPriority, SortByTitle}).Draw(t, "key")
		once := e.Sort(tasks, key)
		twice := e.Sort(once, key)
		if len(once) != len(tasks) {
			t.Fatalf("sort changed length %d -> %d", len(tasks), len(once))
		}
		seen := map[int64]bool{}
		for i := range once {
			seen[once[i].ID] = true
			if once[i].ID != twice[i].ID {
				t.Fatalf("sorting twice moved task %d", once[i].ID)
			}
		}
		if len(seen) != len(tasks) {
			t.Fatal("sort lost or duplicated tasks")
		}
	})
}

func TestAggregateBounds(t *testing.T) {
	e := newEngine()
	rapid.Check(t, func(t *rapid.T) {
		tasks := genTasks(t)
		board := models.Board{ID: rapid.Int64Range(1, 3).Draw(t, "board")}
		stats := e.Aggregate(board, tasks)
		if stats.CompletedCount > stats.TaskCount {
			t.Fatalf("completed %d exceeds total %d", stats.CompletedCount, stats.TaskCount)
		}
		if stats.ProgressPercent < 0 || stats.ProgressPercent > 100 {
			t.Fatalf("percent out of range: %d", stats.ProgressPercent)
		}
		if stats.TaskCount == 0 && stats.ProgressPercent != 0 {
			t.Fatalf("empty board reported %d%%", stats.ProgressPercent)
		}
	})
}
