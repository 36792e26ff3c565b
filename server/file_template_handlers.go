package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
)

//go:embed templates/*
var templateFiles embed.FS

// pageTemplates is the embedded templates directory with the prefix stripped,
// so pages are looked up by bare file name.
var pageTemplates = mustSub(templateFiles, "templates")

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic("failed to create " + dir + " sub filesystem: " + err.Error())
	}
	return sub
}

// ParseTemplate loads one page template by file name, e.g. "dashboard.html".
// The returned template is named after the file. Handlers parse their
// templates once at construction and fail startup on error.
func ParseTemplate(name string) (*template.Template, error) {
	if _, err := fs.Stat(pageTemplates, name); err != nil {
		return nil, fmt.Errorf("[Server ParseTemplate] template %q not found: %w", name, err)
	}
	tmpl, err := template.ParseFS(pageTemplates, name)
	if err != nil {
		return nil, fmt.Errorf("[Server ParseTemplate] failed to parse %q: %w", name, err)
	}
	return tmpl, nil
}
