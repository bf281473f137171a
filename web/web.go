package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var Templates embed.FS

// LoadTemplates parses the embedded page templates
func LoadTemplates() (*template.Template, error) {
	return template.New("").ParseFS(Templates, "templates/*.html")
}
