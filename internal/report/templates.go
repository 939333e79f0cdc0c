package report

import (
	"embed"
	htmltemplate "html/template"
	"io"
	"strings"
	"text/template"

	"github.com/at-addrcompare/internal/reconcile"
)

//go:embed templates/*
var templateFS embed.FS

var funcs = map[string]interface{}{
	"join": func(s []string) string { return strings.Join(s, ", ") },
}

var (
	textTemplate = template.Must(template.New("report.txt").Funcs(funcs).ParseFS(templateFS, "templates/report.txt"))
	htmlTemplate = htmltemplate.Must(htmltemplate.New("report.html").Funcs(funcs).ParseFS(templateFS, "templates/report.html"))
)

// Text renders a plain text report.
type Text struct{}

func (Text) Render(w io.Writer, res reconcile.Result, meta Meta) error {
	return textTemplate.Execute(w, newView(res, meta))
}

// HTML renders a standalone HTML page with one table row per street.
type HTML struct{}

func (HTML) Render(w io.Writer, res reconcile.Result, meta Meta) error {
	return htmlTemplate.Execute(w, newView(res, meta))
}
