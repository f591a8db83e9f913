package audit

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// listPages walks the site root and returns the site-relative,
// slash-separated paths of the HTML files to scan, in sorted order. Hidden
// and underscore-prefixed paths and node_modules are skipped, as are the
// configured skip files.
func listPages(root string, skip map[string]struct{}) ([]string, error) {
	var pages []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(name, ".html") {
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return nil
		}
		if _, ok := skip[name]; ok {
			return nil
		}
		pages = append(pages, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}
