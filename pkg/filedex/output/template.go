package output

import (
	"bytes"
	"sync"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jamesainslie/filedex/pkg/filedex/search"
)

// TemplateFormatter formats output using a custom text/template.
type TemplateFormatter struct {
	templateStr string
	template    *template.Template
	mu          sync.Mutex
}

// templateData wraps Result with computed fields.
type templateData struct {
	*Result
	Total int
}

// NewTemplateFormatter creates a template formatter with the given template string.
func NewTemplateFormatter(templateStr string) *TemplateFormatter {
	return &TemplateFormatter{
		templateStr: templateStr,
	}
}

// SetTemplate sets or updates the template string.
func (f *TemplateFormatter) SetTemplate(templateStr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templateStr = templateStr
	f.template = nil
}

func templateFuncs(r *Result) template.FuncMap {
	return template.FuncMap{
		// Usage: {{highlight .}}
		"highlight": func(m search.Match) string {
			return r.Highlighter.Match(m)
		},

		// Usage: {{comma .Paths}}
		"comma": func(n any) string {
			switch v := n.(type) {
			case int:
				return humanize.Comma(int64(v))
			case uint64:
				return humanize.Comma(int64(v))
			case int64:
				return humanize.Comma(v)
			default:
				return ""
			}
		},

		// Usage: {{bytes 1024}}
		"bytes": func(size int64) string {
			return humanize.IBytes(uint64(size))
		},

		// Usage: {{duration .Duration}}
		"duration": func(d time.Duration) string {
			return formatDuration(d)
		},
	}
}

// Format writes the formatted output to the buffer.
func (f *TemplateFormatter) Format(w *bytes.Buffer, r *Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmpl := f.template
	if tmpl == nil {
		var err error
		tmpl, err = template.New("output").Funcs(templateFuncs(r)).Parse(f.templateStr)
		if err != nil {
			return err
		}
		f.template = tmpl
	} else {
		tmpl = tmpl.Funcs(templateFuncs(r))
	}

	return tmpl.Execute(w, templateData{
		Result: r,
		Total:  r.TotalMatches(),
	})
}

// DefaultTemplate is used when no custom template is provided.
const DefaultTemplate = `{{range .Matches}}{{highlight .}}
{{end}}`

func init() {
	Register("template", func() Formatter {
		return NewTemplateFormatter(DefaultTemplate)
	})
}

var _ Formatter = (*TemplateFormatter)(nil)
