package domain

import "time"

// LinkType classifies a link relative to the audited site.
type LinkType string

const (
	// LinkTypeInternal marks links that resolve to the audited site's host.
	LinkTypeInternal LinkType = "internal"
	// LinkTypeExternal marks links that target any other host.
	LinkTypeExternal LinkType = "external"
)

// Page is one scanned HTML document, keyed by its canonical URL.
type Page struct {
	URL         string    `db:"url"`
	FilePath    string    `db:"file_path"`
	Title       string    `db:"title"`
	LinkCount   int       `db:"link_count"`
	LastScanned time.Time `db:"last_scanned"`
}

// Link is one distinct (source, target, text) anchor occurrence. HTTPStatus
// and LastChecked are nil until the target has been verified; internal links
// carry 200 or 404 from the scan, external links any HTTP status or 0 for
// requests that never produced a response.
type Link struct {
	ID          int64      `db:"id"`
	SourceURL   string     `db:"source_url"`
	TargetURL   string     `db:"target_url"`
	LinkText    string     `db:"link_text"`
	Type        LinkType   `db:"link_type"`
	HTTPStatus  *int       `db:"http_status"`
	LastChecked *time.Time `db:"last_checked"`
}

// Check is the outcome of one external probe.
type Check struct {
	ID             int64     `db:"id"`
	TargetURL      string    `db:"target_url"`
	HTTPStatus     int       `db:"http_status"`
	ResponseTimeMS int64     `db:"response_time_ms"`
	CheckedAt      time.Time `db:"checked_at"`
}
