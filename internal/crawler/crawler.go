// Package crawler discovers exchange documents under an input directory.
package crawler

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

var documentExtensions = map[string]bool{
	".stp":  true,
	".step": true,
}

// ignoredDirs are never descended into.
var ignoredDirs = []string{".git", "output"}

// FindDocuments walks root recursively and returns every STEP document,
// deduplicated by absolute path and sorted. The sorted order is what the
// pipeline treats as discovery order, so it must be stable across runs.
func FindDocuments(root string) ([]string, error) {
	seen := make(map[string]bool)
	var docs []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			for _, ign := range ignoredDirs {
				if d.Name() == ign {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if !documentExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if seen[abs] {
			return nil
		}
		seen[abs] = true
		docs = append(docs, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(docs)
	return docs, nil
}

// SamePath reports whether two paths refer to the same file once made
// absolute.
func SamePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
