// Package web bundles the dashboard templates and stylesheet into the binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/layouts/*.html templates/partials/*.html templates/pages/*.html
var Templates embed.FS

//go:embed static/css/*.css
var static embed.FS

// TemplatePatterns lists the globs the template set is parsed from.
var TemplatePatterns = []string{
	"templates/layouts/*.html",
	"templates/partials/*.html",
	"templates/pages/*.html",
}

// Static returns the assets rooted at the static directory, ready for /static/.
func Static() (fs.FS, error) {
	return fs.Sub(static, "static")
}
