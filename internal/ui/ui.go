package ui

import "embed"

// TemplatesFS holds the page templates parsed by package render.
//
//go:embed templates/*.html
var TemplatesFS embed.FS
