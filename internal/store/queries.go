package store

import (
	"context"
	"fmt"

	"linkaudit/internal/domain"
)

// Totals aggregates the counters shown in the summary header.
type Totals struct {
	Pages          int `db:"pages"`
	Links          int `db:"links"`
	Internal       int `db:"internal"`
	External       int `db:"external"`
	BrokenInternal int `db:"broken_internal"`
	BrokenExternal int `db:"broken_external"`
	Unchecked      int `db:"unchecked"`
}

// Totals computes the summary counters in one round trip.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := s.db.GetContext(ctx, &t, `
		SELECT
			(SELECT COUNT(*) FROM pages) AS pages,
			(SELECT COUNT(*) FROM links) AS links,
			(SELECT COUNT(*) FROM links WHERE link_type = 'internal') AS internal,
			(SELECT COUNT(*) FROM links WHERE link_type = 'external') AS external,
			(SELECT COUNT(*) FROM links WHERE link_type = 'internal' AND http_status = 404) AS broken_internal,
			(SELECT COUNT(*) FROM links WHERE link_type = 'external' AND http_status IN (0, 404, 410)) AS broken_external,
			(SELECT COUNT(*) FROM links WHERE link_type = 'external' AND http_status IS NULL) AS unchecked`)
	if err != nil {
		return Totals{}, fmt.Errorf("failed to compute totals: %w", err)
	}
	return t, nil
}

// Pages returns every scanned page ordered by file path.
func (s *Store) Pages(ctx context.Context) ([]domain.Page, error) {
	var pages []domain.Page
	err := s.db.SelectContext(ctx, &pages, `
		SELECT url, file_path, title, link_count, last_scanned
		FROM pages
		ORDER BY file_path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return pages, nil
}

// LinksBySource returns one page's links grouped by type, each group
// ordered by target.
func (s *Store) LinksBySource(ctx context.Context, sourceURL string) ([]domain.Link, error) {
	var links []domain.Link
	err := s.db.SelectContext(ctx, &links, `
		SELECT id, source_url, target_url, link_text, link_type, http_status, last_checked
		FROM links
		WHERE source_url = ?
		ORDER BY link_type, target_url`, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list links for %s: %w", sourceURL, err)
	}
	return links, nil
}

// BrokenLinks returns every link whose last check failed outright
// (no response, not found, or gone), ordered by status then source page.
func (s *Store) BrokenLinks(ctx context.Context) ([]domain.Link, error) {
	var links []domain.Link
	err := s.db.SelectContext(ctx, &links, `
		SELECT id, source_url, target_url, link_text, link_type, http_status, last_checked
		FROM links
		WHERE http_status IN (0, 404, 410)
		ORDER BY http_status, source_url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list broken links: %w", err)
	}
	return links, nil
}

// Warnings returns checked external links whose status is neither a plain
// success, a recognized redirect, nor an outright failure.
func (s *Store) Warnings(ctx context.Context) ([]domain.Link, error) {
	var links []domain.Link
	err := s.db.SelectContext(ctx, &links, `
		SELECT id, source_url, target_url, link_text, link_type, http_status, last_checked
		FROM links
		WHERE link_type = 'external'
		  AND http_status IS NOT NULL
		  AND http_status NOT IN (0, 200, 301, 302, 303, 307, 308, 404, 410)
		ORDER BY http_status, source_url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list warnings: %w", err)
	}
	return links, nil
}

// BrokenDetail pairs a broken link with the file that contains it.
type BrokenDetail struct {
	domain.Link
	FilePath string `db:"file_path"`
}

// BrokenDetails returns broken links joined to their source pages for the
// console listing, grouped by type, then by status and source.
func (s *Store) BrokenDetails(ctx context.Context) ([]BrokenDetail, error) {
	var rows []BrokenDetail
	err := s.db.SelectContext(ctx, &rows, `
		SELECT l.id, l.source_url, l.target_url, l.link_text, l.link_type, l.http_status, l.last_checked,
		       p.file_path
		FROM links l
		JOIN pages p ON p.url = l.source_url
		WHERE l.http_status IN (0, 404, 410)
		ORDER BY l.link_type, l.http_status, l.source_url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list broken link details: %w", err)
	}
	return rows, nil
}
