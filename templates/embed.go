package templates

import "embed"

// FS holds the console pages, parsed once at startup.
//
//go:embed *.html
var FS embed.FS
