package audit

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// resolveInternal checks whether an internal target URL maps to an existing
// file under the site root. Directory URLs resolve to their index.html.
// Fragments are not verified; the answer is 200 or 404, nothing else.
func resolveInternal(root, target string) int {
	parsed, err := url.Parse(target)
	if err != nil {
		return 404
	}
	local := filepath.Join(root, filepath.FromSlash(strings.TrimLeft(parsed.Path, "/")))
	if strings.HasSuffix(parsed.Path, "/") {
		local = filepath.Join(local, "index.html")
	}
	if _, err := os.Stat(local); err != nil {
		return 404
	}
	return 200
}
