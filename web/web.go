// Package web embeds the page templates, fragments and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates static
var files embed.FS

// TemplatePatterns match every page and fragment template.
var TemplatePatterns = []string{"templates/pages/*.html", "templates/fragments/*.html"}

// Templates returns the embedded template tree.
func Templates() fs.FS {
	return files
}

// Static returns the embedded static asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
