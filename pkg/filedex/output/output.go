// Package output provides formatters for displaying search results in
// various output formats (plain, pretty, json, yaml, etc.).
//
// The package uses a registry pattern so formatters can be selected by name
// at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("plain")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    return err
//	}
//	fmt.Fprint(w, buf.String())
package output

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/jamesainslie/filedex/pkg/filedex/search"
)

// DefaultFormat is the formatter used when none is configured.
const DefaultFormat = "plain"

// Result contains the complete output data for one search.
type Result struct {
	// Query is the search term as given.
	Query string `json:"query" yaml:"query"`

	// Source is the archive that was searched.
	Source string `json:"source" yaml:"source"`

	// Matches holds every matching path in index order.
	Matches []search.Match `json:"matches" yaml:"matches"`

	// Paths is the number of paths in the archive.
	Paths uint64 `json:"paths" yaml:"paths"`

	// Duration is the time spent searching.
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Truncated is set when a limit cut the results short.
	Truncated bool `json:"truncated" yaml:"truncated"`

	// Color enables styling in formatters that support it.
	Color bool `json:"-" yaml:"-"`

	// Highlighter renders matched occurrences. Nil renders paths unchanged.
	Highlighter *search.Highlighter `json:"-" yaml:"-"`
}

// TotalMatches returns the number of matching paths.
func (r *Result) TotalMatches() int {
	return len(r.Matches)
}

// Occurrences returns the number of highlighted spans across all matches.
func (r *Result) Occurrences() int {
	var n int
	for _, m := range r.Matches {
		n += len(m.Spans)
	}
	return n
}

// Formatter renders a search result into w.
type Formatter interface {
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory returns a fresh Formatter. Formatters may keep state
// such as a parsed template, so each search gets its own.
type FormatterFactory func() Formatter

// Registry maps output format names to factories. Registration happens
// from init functions; lookups afterwards need no locking.
type Registry struct {
	factories map[string]FormatterFactory
}

// NewRegistry returns a registry with no formats.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]FormatterFactory)}
}

// Register binds name to factory. A later call with the same name wins.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.factories[name] = factory
}

// Get builds the formatter registered as name.
func (r *Registry) Get(name string) (Formatter, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (want one of %s)",
			name, strings.Join(r.Available(), ", "))
	}
	return factory(), nil
}

// Available lists format names in sorted order.
func (r *Registry) Available() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// DefaultRegistry holds the formats built into filedex.
var DefaultRegistry = NewRegistry()

// Register adds a format to DefaultRegistry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get builds a formatter from DefaultRegistry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available lists the formats in DefaultRegistry.
func Available() []string {
	return DefaultRegistry.Available()
}
