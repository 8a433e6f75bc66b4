package query

import (
	"strings"

	"golang.org/x/text/cases"

	"tasknest/internal/models"
)

// Filter selects tasks. Nil or empty fields impose no constraint.
type Filter struct {
	Status   *models.TaskStatus
	BoardID  *int64
	Priority *models.Priority
	Search   string
}

// IsZero reports whether the filter matches every non-archived task.
func (f Filter) IsZero() bool {
	return f.Status == nil && f.BoardID == nil && f.Priority == nil && strings.TrimSpace(f.Search) == ""
}

// Filter returns the non-archived tasks matching every present predicate, in input order.
func (e *Engine) Filter(tasks []models.Task, f Filter) []models.Task {
	needle := foldSearch(f.Search)
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsArchived {
			continue
		}
		if !e.matches(t, f, needle) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Archived returns only the archived tasks, in input order.
func (e *Engine) Archived(tasks []models.Task) []models.Task {
	out := make([]models.Task, 0)
	for _, t := range tasks {
		if t.IsArchived {
			out = append(out, t)
		}
	}
	return out
}

func (e *Engine) matches(t models.Task, f Filter, needle string) bool {
	if f.Status != nil {
		s, ok := e.status(t)
		if !ok || s != *f.Status {
			return false
		}
	}
	if f.BoardID != nil && !t.OnBoard(*f.BoardID) {
		return false
	}
	if f.Priority != nil {
		p, ok := e.priority(t)
		if !ok || p != *f.Priority {
			return false
		}
	}
	if needle != "" {
		if !strings.Contains(foldSearch(t.Title), needle) && !strings.Contains(foldSearch(t.Description), needle) {
			return false
		}
	}
	return true
}

func foldSearch(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}

// Preset is one of the fixed sidebar views.
type Preset string

const (
	PresetAll       Preset = "allTasks"
	PresetImportant Preset = "important"
	PresetCompleted Preset = "completed"
)

// Presets lists the sidebar views in display order.
var Presets = []Preset{PresetAll, PresetImportant, PresetCompleted}

// ParsePreset resolves a preset name; unknown names fall back to PresetAll.
func ParsePreset(s string) Preset {
	switch Preset(s) {
	case PresetImportant, PresetCompleted:
		return Preset(s)
	}
	return PresetAll
}

// Filter returns the filter the preset stands for.
func (p Preset) Filter() Filter {
	switch p {
	case PresetImportant:
		high := models.PriorityHigh
		return Filter{Priority: &high}
	case PresetCompleted:
		done := models.StatusDone
		return Filter{Status: &done}
	}
	return Filter{}
}

// Counts returns the number of tasks each preset would show.
func (e *Engine) Counts(tasks []models.Task) map[Preset]int {
	counts := make(map[Preset]int, len(Presets))
	for _, p := range Presets {
		counts[p] = len(e.Filter(tasks, p.Filter()))
	}
	return counts
}
