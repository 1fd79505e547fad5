package views

import (
	"embed"
	"html/template"
)

//go:embed index.html
var IndexPage []byte

//go:embed saved.html error.html
var fragments embed.FS

// Templates parses the response fragments. Names are "saved.html" and "error.html".
func Templates() *template.Template {
	return template.Must(template.ParseFS(fragments, "saved.html", "error.html"))
}
