// Package output provides output formatting.
// This package produces human and machine-readable valuation reports.
package output

import (
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"inventory-valuation/core/explanation"
	"inventory-valuation/core/types"
	"inventory-valuation/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"

	// FormatLaTeX is a standalone LaTeX document of the workings
	FormatLaTeX Format = "latex"

	// FormatXLSX is an Excel workbook
	FormatXLSX Format = "xlsx"

	// FormatPDF is a PDF report
	FormatPDF Format = "pdf"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// ContentType is the MIME type of the rendered output
	ContentType() string

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report is everything a formatter needs to present one valuation
type Report struct {
	// Title heads the report
	Title string `json:"title"`

	// Currency is used for every money figure
	Currency types.Currency `json:"currency"`

	// Valuation holds inputs, figures and lineage
	Valuation *types.Valuation `json:"valuation"`

	// Equations are the LaTeX workings
	Equations []explanation.Equation `json:"equations,omitempty"`

	// Narrative is the audit commentary
	Narrative *explanation.Narrative `json:"narrative,omitempty"`

	// Options controls optional sections
	Options Options `json:"-"`

	// Metadata contains execution context
	Metadata Metadata `json:"metadata"`
}

// Options toggles optional report sections
type Options struct {
	ShowFormulas bool
	ShowNotes    bool
}

// Metadata contains execution context
type Metadata struct {
	// Timestamp is when the valuation was computed
	Timestamp string `json:"timestamp"`

	// Version is the tool version
	Version string `json:"version"`

	// Source is where the inputs came from (flags, file path, api)
	Source string `json:"source,omitempty"`

	// RequestID identifies an API request
	RequestID string `json:"request_id,omitempty"`

	// InputHash fingerprints the inputs and currency
	InputHash string `json:"input_hash,omitempty"`
}

// DefaultTitle heads reports that were not given a title
const DefaultTitle = "Finished Goods Inventory Valuation"

// NewReport assembles a report for v
func NewReport(v *types.Valuation, currency types.Currency, opts Options) *Report {
	return &Report{
		Title:     DefaultTitle,
		Currency:  currency,
		Valuation: v,
		Equations: explanation.Equations(v, currency),
		Narrative: explanation.NewNarrative(v, currency),
		Options:   opts,
		Metadata: Metadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{formatters: make(map[Format]Formatter)}
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[f.Format()]; exists {
		return errors.Newf(errors.TypeConfig, "formatter already registered: %s", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns a formatter for a format name
func (r *Registry) Get(format Format) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.formatters[Format(strings.ToLower(string(format)))]
	if !ok {
		return nil, errors.Newf(errors.TypeInput, "unknown output format %q", format).
			WithContext("allowed", r.formatsLocked())
	}
	return f, nil
}

// Formats returns the registered format names, sorted
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.formatsLocked()
}

func (r *Registry) formatsLocked() []Format {
	out := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the registry with every built-in formatter
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for _, f := range []Formatter{
			&CLIFormatter{},
			&JSONFormatter{Indent: true},
			&MarkdownFormatter{},
			&LaTeXFormatter{},
			&XLSXFormatter{},
			&PDFFormatter{},
		} {
			_ = defaultRegistry.Register(f)
		}
	})
	return defaultRegistry
}
