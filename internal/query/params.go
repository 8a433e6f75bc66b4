package query

import (
	"strconv"
	"strings"

	"tasknest/internal/models"
)

// Params are the raw, unparsed filter inputs of a request.
type Params struct {
	Status   string
	BoardID  string
	Priority string
	Search   string
	Sort     string
}

// noConstraint reports the sentinel values that mean "match all".
func noConstraint(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "все", "барлығы":
		return true
	}
	return false
}

// ParseFilter converts raw parameters into a Filter. A non-integer board id or a status
// or priority outside every equivalence class is a validation error.
func (e *Engine) ParseFilter(p Params) (Filter, error) {
	f := Filter{Search: strings.TrimSpace(p.Search)}

	if !noConstraint(p.Status) {
		s, err := e.labels.NormalizeStatus(p.Status)
		if err != nil {
			return Filter{}, models.Invalid("status", "unknown status %q", p.Status)
		}
		f.Status = &s
	}
	if !noConstraint(p.BoardID) {
		id, err := strconv.ParseInt(strings.TrimSpace(p.BoardID), 10, 64)
		if err != nil {
			return Filter{}, models.Invalid("boardId", "must be an integer")
		}
		f.BoardID = &id
	}
	if !noConstraint(p.Priority) {
		pr, err := e.labels.NormalizePriority(p.Priority)
		if err != nil {
			return Filter{}, models.Invalid("priority", "unknown priority %q", p.Priority)
		}
		f.Priority = &pr
	}
	return f, nil
}

// Run filters tasks according to p, then sorts them when p names a sort key.
func (e *Engine) Run(tasks []models.Task, p Params) ([]models.Task, error) {
	f, err := e.ParseFilter(p)
	if err != nil {
		return nil, err
	}
	out := e.Filter(tasks, f)
	if strings.TrimSpace(p.Sort) == "" {
		return out, nil
	}
	return e.Sort(out, ParseSortKey(p.Sort)), nil
}
