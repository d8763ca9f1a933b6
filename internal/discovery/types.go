package discovery

import "time"

// DiscoveredFile represents a SQL file discovered during filesystem traversal
type DiscoveredFile struct {
	Path         string    // Absolute path to file
	RelativePath string    // Path relative to search root
	Type         FileType  // Template or Rendered
	ModTime      time.Time // Last modification time
}

// FileType indicates whether a file is a template or a rendering output
type FileType int

const (
	FileTypeTemplate FileType = iota // Any *.sql that is not an output
	FileTypeRendered                 // Matches *.rendered.sql
)

// RenderedSuffix is appended in place of ".sql" to name rendered outputs
const RenderedSuffix = ".rendered.sql"

// String returns a string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case FileTypeTemplate:
		return "template"
	case FileTypeRendered:
		return "rendered"
	default:
		return "unknown"
	}
}
