package discovery

import (
	"path/filepath"
	"strings"
)

// ClassifyFile determines if a file is a template or a rendered output based on naming convention
func ClassifyFile(filename string) FileType {
	if strings.HasSuffix(strings.ToLower(filename), RenderedSuffix) {
		return FileTypeRendered
	}
	return FileTypeTemplate
}

// IsSQLFile returns true for files with a .sql extension (case-insensitive)
func IsSQLFile(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".sql")
}

// RenderedName returns the output file name for a template path, e.g.
// "reports/daily.sql" becomes "reports/daily.rendered.sql"
func RenderedName(relPath string) string {
	ext := filepath.Ext(relPath)
	return strings.TrimSuffix(relPath, ext) + RenderedSuffix
}
