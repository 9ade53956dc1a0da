// Package view turns state slices into HTML fragments. Components hold no
// state of their own; every render receives its props explicitly.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var templates = template.Must(
	template.New("larek").
		Funcs(template.FuncMap{
			"price":         PriceText,
			"synapses":      Synapses,
			"number":        FormatNumber,
			"categoryClass": CategoryClass,
			"join":          strings.Join,
		}).
		ParseFS(templateFS, "templates/*.html"),
)

// Renderable is implemented by every view component
type Renderable[P any] interface {
	Render(props P) (template.HTML, error)
}

func render(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// Static serves the stylesheet referenced by the page shell
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
