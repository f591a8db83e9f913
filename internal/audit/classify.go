package audit

import (
	"net/url"
	"path"
	"strings"

	"linkaudit/internal/domain"
)

// skipPrefixes are hrefs that never become link rows: same-page fragments
// and non-HTTP schemes the audit cannot verify.
var skipPrefixes = []string{"#", "mailto:", "javascript:", "tel:"}

// classifier resolves hrefs against their page URL and splits them into
// internal and external targets.
type classifier struct {
	base *url.URL
	host string // site host without the www prefix
}

func newClassifier(base *url.URL) *classifier {
	return &classifier{
		base: base,
		host: strings.TrimPrefix(base.Host, "www."),
	}
}

// classify resolves href against the page URL. The returned bool is false
// for links that are skipped entirely: empty, fragment-only, mailto,
// javascript, tel and unparseable hrefs. Internal targets are stored without
// their fragment; external targets keep fragment and query untouched.
func (cl *classifier) classify(href string, page *url.URL) (domain.LinkType, string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", "", false
	}
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(href, prefix) {
			return "", "", false
		}
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", "", false
	}
	resolved := page.ResolveReference(ref)
	switch resolved.Host {
	case cl.host, "www." + cl.host, "":
		resolved.Fragment = ""
		return domain.LinkTypeInternal, resolved.String(), true
	}
	return domain.LinkTypeExternal, resolved.String(), true
}

// pageURL maps a site-relative HTML file path (slash-separated) to its
// canonical URL. index.html files map to their directory URL with a
// trailing slash.
func (cl *classifier) pageURL(rel string) string {
	base := strings.TrimSuffix(cl.base.String(), "/")
	if path.Base(rel) == "index.html" {
		dir := path.Dir(rel)
		if dir == "." {
			return base + "/"
		}
		return base + "/" + dir + "/"
	}
	return base + "/" + rel
}
