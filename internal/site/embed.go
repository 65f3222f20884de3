package site

import "embed"

//go:embed templates/*.tmpl
var pageTemplates embed.FS
