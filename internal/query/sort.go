package query

import (
	"sort"

	"golang.org/x/text/collate"

	"tasknest/internal/models"
)

// SortKey selects the ordering applied by Sort.
type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByPriority SortKey = "priority"
	SortByTitle    SortKey = "title"
)

// ParseSortKey resolves a sort key name; unknown names sort by date.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortByPriority, SortByTitle:
		return SortKey(s)
	}
	return SortByDate
}

// Sort returns a stably ordered copy of tasks.
//
// By date the newest due date comes first and a missing due date counts as the oldest.
// By priority high comes first and an unknown priority last. By title the order is
// ascending under the engine's collation.
func (e *Engine) Sort(tasks []models.Task, key SortKey) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)

	switch key {
	case SortByPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return e.rank(out[i]) > e.rank(out[j])
		})
	case SortByTitle:
		// A Collator keeps scratch buffers, so each call gets its own.
		c := collate.New(e.lang)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Title, out[j].Title) < 0
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return dueAfter(out[i], out[j])
		})
	}
	return out
}

func (e *Engine) rank(t models.Task) int {
	p, ok := e.priority(t)
	if !ok {
		return 0
	}
	return p.Rank()
}

// dueAfter reports whether a is due strictly later than b.
func dueAfter(a, b models.Task) bool {
	switch {
	case a.DueDate == nil:
		return false
	case b.DueDate == nil:
		return true
	}
	return a.DueDate.After(b.DueDate.Time)
}
