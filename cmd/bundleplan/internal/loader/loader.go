package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// BundleLoadResult is one loaded bundle document, or the error that kept it
// from loading.
type BundleLoadResult struct {
	Path string
	Data []byte
	Err  error
}

// collectYAMLFiles returns a list of YAML file paths from the given path.
// If path is a file, it returns a single-element slice.
// If path is a directory, it returns all .yaml and .yml files in the directory (non-recursive).
func collectYAMLFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil, fmt.Errorf("file %q must have a .yaml or .yml extension", path)
		}
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// LoadBundlesDetailed loads bundle documents from a file or directory,
// returning per-file results (including read errors) so callers can
// continue on failure. Only errors related to accessing the path
// (stat/readdir) are returned directly.
func LoadBundlesDetailed(path string) ([]BundleLoadResult, error) {
	files, err := collectYAMLFiles(path)
	if err != nil {
		return nil, err
	}

	results := make([]BundleLoadResult, 0, len(files))
	for _, file := range files {
		data, loadErr := LoadBundle(file)
		results = append(results, BundleLoadResult{Path: file, Data: data, Err: loadErr})
	}

	return results, nil
}

// LoadBundle reads a single bundle document.
func LoadBundle(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("path %q is a directory, provide a path to a bundle file (.yaml or .yml)", path)
	}

	ext := filepath.Ext(path)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("file %q must have a .yaml or .yml extension", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return content, nil
}
