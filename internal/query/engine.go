// Package query filters, sorts and aggregates task collections. Every function is pure:
// inputs are never mutated and results are recomputed on each call.
package query

import (
	"golang.org/x/text/language"

	"tasknest/internal/labels"
	"tasknest/internal/models"
)

// Engine evaluates task queries against in-memory collections.
type Engine struct {
	labels *labels.Normalizer
	lang   language.Tag
}

// NewEngine creates an engine that normalizes with n and collates titles for locale.
// A nil normalizer uses the embedded label table.
func NewEngine(n *labels.Normalizer, locale string) *Engine {
	if n == nil {
		n = labels.Default()
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Engine{labels: n, lang: tag}
}

// Labels exposes the normalizer backing the engine.
func (e *Engine) Labels() *labels.Normalizer {
	return e.labels
}

// status resolves the task status, reporting false when it matches no class.
func (e *Engine) status(t models.Task) (models.TaskStatus, bool) {
	if t.Status.Valid() {
		return t.Status, true
	}
	s, err := e.labels.NormalizeStatus(string(t.Status))
	return s, err == nil
}

func (e *Engine) priority(t models.Task) (models.Priority, bool) {
	if t.Priority.Valid() {
		return t.Priority, true
	}
	p, err := e.labels.NormalizePriority(string(t.Priority))
	return p, err == nil
}

// IsDone reports whether the task status normalizes to done.
func (e *Engine) IsDone(t models.Task) bool {
	s, ok := e.status(t)
	return ok && s == models.StatusDone
}
