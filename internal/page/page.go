// Package page assembles the minified index page from the embedded assets.
package page

import (
	"bytes"
	"html/template"
	texttemplate "text/template"

	"github.com/rotisserie/eris"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"

	"github.com/woozymasta/quakemap/assets"
	"github.com/woozymasta/quakemap/internal/legend"
)

// DefaultTitle is the page title.
const DefaultTitle = "Earthquakes & Tectonic Plates"

// Data holds the index template fields.
type Data struct {
	Title  string
	CSS    string
	JS     string
	Legend template.HTML
}

// Page is the rendered site.
type Page struct {
	Index   []byte
	Favicon []byte
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	return m
}

// Build renders the index page with the legend inlined and minifies it.
func Build(title string, l legend.Legend) (*Page, error) {
	if title == "" {
		title = DefaultTitle
	}

	m := newMinifier()

	cssMin, err := m.String("text/css", assets.Style)
	if err != nil {
		return nil, eris.Wrap(err, "minify css")
	}
	jsMin, err := m.String("text/javascript", assets.Script)
	if err != nil {
		return nil, eris.Wrap(err, "minify js")
	}
	svgMin, err := m.String("image/svg+xml", assets.Favicon)
	if err != nil {
		return nil, eris.Wrap(err, "minify favicon")
	}

	legendHTML, err := l.HTML()
	if err != nil {
		return nil, err
	}

	// assets are trusted; only the title and legend carry runtime data and
	// both are escaped before reaching the template
	tmpl, err := texttemplate.New("index").Parse(assets.IndexTemplate)
	if err != nil {
		return nil, eris.Wrap(err, "parse index template")
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, Data{
		Title:  template.HTMLEscapeString(title),
		CSS:    cssMin,
		JS:     jsMin,
		Legend: legendHTML,
	})
	if err != nil {
		return nil, eris.Wrap(err, "execute index template")
	}

	index, err := m.Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, eris.Wrap(err, "minify html")
	}

	return &Page{Index: index, Favicon: []byte(svgMin)}, nil
}
