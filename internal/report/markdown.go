package report

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"linkaudit/internal/domain"
	"linkaudit/internal/store"
)

// WriteSummary renders the Markdown audit report from the store into path.
func WriteSummary(ctx context.Context, s *store.Store, baseURL, path string) error {
	totals, err := s.Totals(ctx)
	if err != nil {
		return err
	}
	pages, err := s.Pages(ctx)
	if err != nil {
		return err
	}
	broken, err := s.BrokenLinks(ctx)
	if err != nil {
		return err
	}
	warnings, err := s.Warnings(ctx)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s Link Audit\n\n", siteName(baseURL))
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().UTC().Format("2006-01-02 15:04 UTC"))

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Pages scanned | %d |\n", totals.Pages)
	fmt.Fprintf(&b, "| Total links | %d |\n", totals.Links)
	fmt.Fprintf(&b, "| Internal links | %d |\n", totals.Internal)
	fmt.Fprintf(&b, "| External links | %d |\n", totals.External)
	fmt.Fprintf(&b, "| Broken internal | %d |\n", totals.BrokenInternal)
	fmt.Fprintf(&b, "| Broken external | %d |\n", totals.BrokenExternal)
	if totals.Unchecked > 0 {
		fmt.Fprintf(&b, "| Unchecked external | %d |\n", totals.Unchecked)
	}
	b.WriteString("\n")

	if len(broken) > 0 {
		b.WriteString("## Broken Links\n\n")
		b.WriteString("| Status | Source | Target | Link Text |\n")
		b.WriteString("|--------|--------|--------|-----------|\n")
		for _, l := range broken {
			target := l.TargetURL
			if l.Type == domain.LinkTypeInternal {
				target = shorten(target, baseURL)
			}
			fmt.Fprintf(&b, "| %d | `%s` | `%s` | %s |\n",
				statusOf(l), shorten(l.SourceURL, baseURL), target, truncate(l.LinkText))
		}
		b.WriteString("\n")
	}

	if len(warnings) > 0 {
		b.WriteString("## Warnings (non-200, non-404)\n\n")
		b.WriteString("| Status | Source | Target | Link Text |\n")
		b.WriteString("|--------|--------|--------|-----------|\n")
		for _, l := range warnings {
			fmt.Fprintf(&b, "| %d | `%s` | `%s` | %s |\n",
				statusOf(l), shorten(l.SourceURL, baseURL), l.TargetURL, truncate(l.LinkText))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Pages\n\n")
	for _, p := range pages {
		fmt.Fprintf(&b, "### `%s`\n\n", shorten(p.URL, baseURL))
		fmt.Fprintf(&b, "**%s** (%d links)\n\n", p.Title, p.LinkCount)

		links, err := s.LinksBySource(ctx, p.URL)
		if err != nil {
			return err
		}
		if len(links) == 0 {
			b.WriteString("No links found.\n\n")
			continue
		}

		var internal, external []domain.Link
		for _, l := range links {
			if l.Type == domain.LinkTypeInternal {
				internal = append(internal, l)
			} else {
				external = append(external, l)
			}
		}

		if len(internal) > 0 {
			fmt.Fprintf(&b, "**Internal (%d):**\n", len(internal))
			for _, l := range internal {
				icon := " "
				if l.HTTPStatus != nil && *l.HTTPStatus == 404 {
					icon = "x"
				}
				fmt.Fprintf(&b, "- [%s] `%s` — %s\n", icon, shorten(l.TargetURL, baseURL), l.LinkText)
			}
			b.WriteString("\n")
		}
		if len(external) > 0 {
			fmt.Fprintf(&b, "**External (%d):**\n", len(external))
			for _, l := range external {
				fmt.Fprintf(&b, "- [%s] [%s] %s — %s\n",
					externalIcon(l.HTTPStatus), statusLabel(l.HTTPStatus), l.TargetURL, l.LinkText)
			}
			b.WriteString("\n")
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// siteName is the report heading: the site's host when the base URL parses,
// the raw value otherwise.
func siteName(baseURL string) string {
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return baseURL
}

func shorten(u, baseURL string) string {
	return strings.TrimPrefix(u, baseURL)
}

// truncate keeps long link text readable inside table cells.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= 43 {
		return s
	}
	return string(runes[:40]) + "..."
}

func statusOf(l domain.Link) int {
	if l.HTTPStatus == nil {
		return 0
	}
	return *l.HTTPStatus
}

// externalIcon mirrors the check buckets: unchecked, ok, broken, warning.
func externalIcon(status *int) string {
	switch {
	case status == nil:
		return "?"
	case *status >= 200 && *status < 400:
		return " "
	case *status == 0, *status == 404, *status == 410:
		return "x"
	default:
		return "!"
	}
}

// statusLabel renders "?" for links that were never checked or never got a
// response.
func statusLabel(status *int) string {
	if status == nil || *status == 0 {
		return "?"
	}
	return strconv.Itoa(*status)
}
