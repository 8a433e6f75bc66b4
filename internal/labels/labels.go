// Package labels maps the localized and legacy display strings of task statuses,
// priorities and board statuses onto their canonical values, and back.
//
// The equivalence classes are data: a YAML table is embedded as the default and further
// tables can be merged over it, so a new locale never requires a code change.
package labels

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"tasknest/internal/models"
)

//go:embed default.yaml
var defaultTable []byte

// ErrUnrecognizedValue is returned when an input matches no equivalence class.
var ErrUnrecognizedValue = errors.New("unrecognized value")

// Class is one equivalence class: its display label per locale plus extra aliases.
type Class struct {
	Labels  map[string]string `yaml:"labels"`
	Aliases []string          `yaml:"aliases"`
}

// Table is the on-disk shape of an equivalence table.
type Table struct {
	Fallback    string           `yaml:"fallback"`
	TaskStatus  map[string]Class `yaml:"task_status"`
	Priority    map[string]Class `yaml:"priority"`
	BoardStatus map[string]Class `yaml:"board_status"`
}

// Parse decodes a YAML equivalence table.
func Parse(r io.Reader) (Table, error) {
	var t Table
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, nil
		}
		return Table{}, fmt.Errorf("decode label table: %w", err)
	}
	return t, nil
}

// ParseFile reads a YAML equivalence table from path.
func ParseFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open label table: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// kind indexes the classes of one enumeration.
type kind[T ~string] struct {
	name   string
	valid  func(T) bool
	index  map[string]T
	labels map[T]map[string]string
}

func newKind[T ~string](name string, valid func(T) bool) kind[T] {
	return kind[T]{
		name:   name,
		valid:  valid,
		index:  map[string]T{},
		labels: map[T]map[string]string{},
	}
}

func (k *kind[T]) merge(classes map[string]Class, locales map[string]struct{}) error {
	// Sorted for deterministic conflict errors.
	keys := make([]string, 0, len(classes))
	for key := range classes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := T(key)
		if !k.valid(value) {
			return fmt.Errorf("%s: unknown canonical value %q", k.name, key)
		}
		class := classes[key]
		if err := k.add(key, value); err != nil {
			return err
		}
		if k.labels[value] == nil {
			k.labels[value] = map[string]string{}
		}
		for locale, label := range class.Labels {
			if err := k.add(label, value); err != nil {
				return err
			}
			k.labels[value][locale] = label
			locales[locale] = struct{}{}
		}
		for _, alias := range class.Aliases {
			if err := k.add(alias, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (k *kind[T]) add(surface string, value T) error {
	folded := fold(surface)
	if folded == "" {
		return nil
	}
	if existing, ok := k.index[folded]; ok && existing != value {
		return fmt.Errorf("%s: %q maps to both %q and %q", k.name, surface, existing, value)
	}
	k.index[folded] = value
	return nil
}

func (k *kind[T]) normalize(input string) (T, error) {
	if v, ok := k.index[fold(input)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s %q", ErrUnrecognizedValue, k.name, input)
}

func (k *kind[T]) label(value T, locale, fallback string) string {
	byLocale := k.labels[value]
	if l, ok := byLocale[locale]; ok {
		return l
	}
	if l, ok := byLocale[fallback]; ok {
		return l
	}
	return string(value)
}

// Normalizer resolves surface strings to canonical enum values. It is safe for
// concurrent use once built.
type Normalizer struct {
	fallback string
	locales  map[string]struct{}
	status   kind[models.TaskStatus]
	priority kind[models.Priority]
	board    kind[models.BoardStatus]
}

// New builds a Normalizer from one or more tables; later tables extend earlier ones.
// The fallback locale of the last table that names one wins.
func New(tables ...Table) (*Normalizer, error) {
	n := &Normalizer{
		fallback: "en",
		locales:  map[string]struct{}{},
		status:   newKind("task status", models.TaskStatus.Valid),
		priority: newKind("priority", models.Priority.Valid),
		board:    newKind("board status", models.BoardStatus.Valid),
	}
	for _, t := range tables {
		if err := n.merge(t); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (n *Normalizer) merge(t Table) error {
	if t.Fallback != "" {
		n.fallback = t.Fallback
	}
	if err := n.status.merge(t.TaskStatus, n.locales); err != nil {
		return err
	}
	if err := n.priority.merge(t.Priority, n.locales); err != nil {
		return err
	}
	return n.board.merge(t.BoardStatus, n.locales)
}

var (
	defaultOnce       sync.Once
	defaultNormalizer *Normalizer
)

// DefaultTable returns the embedded equivalence table.
func DefaultTable() Table {
	t, err := Parse(bytes.NewReader(defaultTable))
	if err != nil {
		panic(fmt.Sprintf("labels: embedded table: %v", err))
	}
	return t
}

// Default returns the Normalizer built from the embedded table only.
func Default() *Normalizer {
	defaultOnce.Do(func() {
		n, err := New(DefaultTable())
		if err != nil {
			panic(fmt.Sprintf("labels: embedded table: %v", err))
		}
		defaultNormalizer = n
	})
	return defaultNormalizer
}

// Load returns a Normalizer built from the embedded table with the table at path merged
// over it. An empty path yields Default().
func Load(path string) (*Normalizer, error) {
	if path == "" {
		return Default(), nil
	}
	extra, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return New(DefaultTable(), extra)
}

// Fallback is the locale used when a requested locale has no label.
func (n *Normalizer) Fallback() string { return n.fallback }

// Locales lists every locale that has at least one label, sorted.
func (n *Normalizer) Locales() []string {
	out := make([]string, 0, len(n.locales))
	for l := range n.locales {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// NormalizeStatus maps input onto a canonical task status.
func (n *Normalizer) NormalizeStatus(input string) (models.TaskStatus, error) {
	return n.status.normalize(input)
}

// NormalizePriority maps input onto a canonical priority.
func (n *Normalizer) NormalizePriority(input string) (models.Priority, error) {
	return n.priority.normalize(input)
}

// NormalizeBoardStatus maps input onto a canonical board status.
func (n *Normalizer) NormalizeBoardStatus(input string) (models.BoardStatus, error) {
	return n.board.normalize(input)
}

// StatusLabel renders a task status for locale.
func (n *Normalizer) StatusLabel(s models.TaskStatus, locale string) string {
	return n.status.label(s, locale, n.fallback)
}

// PriorityLabel renders a priority for locale.
func (n *Normalizer) PriorityLabel(p models.Priority, locale string) string {
	return n.priority.label(p, locale, n.fallback)
}

// BoardStatusLabel renders a board status for locale.
func (n *Normalizer) BoardStatusLabel(s models.BoardStatus, locale string) string {
	return n.board.label(s, locale, n.fallback)
}

// DisplayStatus renders any stored status string. Unrecognized values pass through as is.
func (n *Normalizer) DisplayStatus(raw, locale string) string {
	s, err := n.NormalizeStatus(raw)
	if err != nil {
		return raw
	}
	return n.StatusLabel(s, locale)
}

// DisplayPriority renders any stored priority string. Unrecognized values pass through.
func (n *Normalizer) DisplayPriority(raw, locale string) string {
	p, err := n.NormalizePriority(raw)
	if err != nil {
		return raw
	}
	return n.PriorityLabel(p, locale)
}

// DisplayBoardStatus renders any stored board status. Unrecognized values pass through.
func (n *Normalizer) DisplayBoardStatus(raw, locale string) string {
	s, err := n.NormalizeBoardStatus(raw)
	if err != nil {
		return raw
	}
	return n.BoardStatusLabel(s, locale)
}

// fold builds a fresh Caser per call since a Caser must not be shared across goroutines.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
