package api

import (
	"embed"
	"html/template"
)

// Page templates are compiled into the binary; design of the pages
// themselves is out of scope, the portal only fills in user data.
//
//go:embed templates/*.html
var templateFS embed.FS

// loadTemplates parses the embedded page templates.
func loadTemplates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}
