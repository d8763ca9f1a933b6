package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Discover recursively finds all template files in the given directory.
// Rendered outputs (*.rendered.sql) are skipped.
func Discover(rootPath string) ([]DiscoveredFile, error) {
	absRoot, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", absRoot)
		}
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absRoot)
	}

	var files []DiscoveredFile

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Skip directories we can't access
			if os.IsPermission(err) {
				return nil
			}
			return err
		}

		if info.IsDir() || !IsSQLFile(path) {
			return nil
		}

		if ClassifyFile(filepath.Base(path)) != FileTypeTemplate {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		files = append(files, DiscoveredFile{
			Path:         path,
			RelativePath: relPath,
			Type:         FileTypeTemplate,
			ModTime:      info.ModTime(),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})

	return files, nil
}

// Resolve expands command-line paths into template files. Directories are
// searched recursively; files are taken as given, whatever their extension.
// A file listed twice is returned once.
func Resolve(paths []string) ([]DiscoveredFile, error) {
	var files []DiscoveredFile
	seenFiles := make(map[string]bool) // Avoid duplicates

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", p, err)
		}

		var found []DiscoveredFile
		if info.IsDir() {
			found, err = Discover(p)
			if err != nil {
				return nil, err
			}
		} else {
			abs, err := filepath.Abs(p)
			if err != nil {
				return nil, fmt.Errorf("failed to get absolute path: %w", err)
			}
			found = []DiscoveredFile{{
				Path:         abs,
				RelativePath: filepath.Base(p),
				Type:         ClassifyFile(filepath.Base(p)),
				ModTime:      info.ModTime(),
			}}
		}

		for _, file := range found {
			if !seenFiles[file.Path] {
				files = append(files, file)
				seenFiles[file.Path] = true
			}
		}
	}

	return files, nil
}
