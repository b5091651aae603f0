package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"initial": func(s string) string {
			for _, r := range s {
				return string(r)
			}
			return ""
		},
	}).ParseFS(templateFS, "templates/*.html")
}
