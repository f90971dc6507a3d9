// Package legend builds the depth color key shown on the map.
package legend

import (
	"bytes"
	"html/template"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/woozymasta/quakemap/internal/style"
)

// DefaultTitle is the heading of the depth legend.
const DefaultTitle = "Earthquake Depth:"

// Entry is one legend row.
type Entry struct {
	Label string  `json:"label" yaml:"label"`
	Color string  `json:"color" yaml:"color"`
	Lower float64 `json:"lower" yaml:"lower"`
}

// Legend is a static, non-interactive color key.
type Legend struct {
	Title   string  `json:"title" yaml:"title"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Build creates a legend from the given band table. Colors are looked up
// through the table itself at each threshold plus one, the same path used
// for live markers.
func Build(title string, bands style.ColorBand) Legend {
	l := Legend{Title: title, Entries: make([]Entry, 0, len(bands))}
	for i, b := range bands {
		label := formatBound(b.Lower)
		if i+1 < len(bands) {
			label += "–" + formatBound(bands[i+1].Lower)
		} else {
			label += "+"
		}
		l.Entries = append(l.Entries, Entry{
			Lower: b.Lower,
			Color: bands.Color(b.Lower + 1),
			Label: label,
		})
	}
	return l
}

// Default returns the legend of the default depth table.
func Default() Legend {
	return Build(DefaultTitle, style.DefaultBands)
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var htmlTemplate = template.Must(template.New("legend").
	Funcs(template.FuncMap{
		// band colors come from the style table, never from feed data
		"css": func(s string) template.CSS { return template.CSS(s) },
	}).
	Parse(`<div class="legend"><h4>{{.Title}}</h4>` +
		`{{range .Entries}}<i style="background: {{css .Color}}"></i>{{.Label}}<br>{{end}}` +
		`</div>`))

// HTML renders the legend as the map control fragment.
func (l Legend) HTML() (template.HTML, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, l); err != nil {
		return "", eris.Wrap(err, "render legend html")
	}
	return template.HTML(buf.String()), nil
}
