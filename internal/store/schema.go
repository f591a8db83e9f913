package store

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	url          TEXT PRIMARY KEY,
	file_path    TEXT NOT NULL,
	title        TEXT NOT NULL DEFAULT '',
	link_count   INTEGER NOT NULL DEFAULT 0,
	last_scanned TIMESTAMP
);

CREATE TABLE IF NOT EXISTS links (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	source_url   TEXT NOT NULL,
	target_url   TEXT NOT NULL,
	link_text    TEXT NOT NULL DEFAULT '',
	link_type    TEXT NOT NULL CHECK (link_type IN ('internal', 'external')),
	http_status  INTEGER,
	last_checked TIMESTAMP,
	UNIQUE (source_url, target_url, link_text)
);

CREATE TABLE IF NOT EXISTS check_history (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	target_url       TEXT NOT NULL,
	http_status      INTEGER NOT NULL,
	response_time_ms INTEGER NOT NULL,
	checked_at       TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_links_source ON links (source_url);
CREATE INDEX IF NOT EXISTS idx_links_target ON links (target_url);
CREATE INDEX IF NOT EXISTS idx_links_status ON links (http_status);
CREATE INDEX IF NOT EXISTS idx_history_url ON check_history (target_url);
CREATE INDEX IF NOT EXISTS idx_history_time ON check_history (checked_at);
`
