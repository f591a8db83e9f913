package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"linkaudit/internal/domain"
)

// Store persists audit results in a SQLite database.
type Store struct {
	db *sqlx.DB
}

// Open connects to the SQLite database at path, creating the file and the
// schema when missing.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal=WAL&_busy_timeout=5000", path)
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// SQLite supports only one writer at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Reset drops all page and link rows ahead of a fresh scan. Check history
// is append-only and survives resets.
func (s *Store) Reset(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM links`); err != nil {
			return fmt.Errorf("failed to clear links: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM pages`); err != nil {
			return fmt.Errorf("failed to clear pages: %w", err)
		}
		return nil
	})
}

// SavePageLinks stores one scanned page and its links in a single
// transaction. Existing rows for the same page URL or the same
// (source, target, text) triple are replaced.
func (s *Store) SavePageLinks(ctx context.Context, page domain.Page, links []domain.Link) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO pages (url, file_path, title, link_count, last_scanned)
			VALUES (?, ?, ?, ?, ?)`,
			page.URL, page.FilePath, page.Title, page.LinkCount, page.LastScanned)
		if err != nil {
			return fmt.Errorf("failed to save page %s: %w", page.URL, err)
		}
		for _, link := range links {
			_, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO links (source_url, target_url, link_text, link_type, http_status, last_checked)
				VALUES (?, ?, ?, ?, ?, ?)`,
				link.SourceURL, link.TargetURL, link.LinkText, link.Type, link.HTTPStatus, link.LastChecked)
			if err != nil {
				return fmt.Errorf("failed to save link %s -> %s: %w", link.SourceURL, link.TargetURL, err)
			}
		}
		return nil
	})
}

// DistinctExternalTargets lists every unique external URL from the last
// scan, ordered so check runs are stable.
func (s *Store) DistinctExternalTargets(ctx context.Context) ([]string, error) {
	var targets []string
	err := s.db.SelectContext(ctx, &targets, `
		SELECT DISTINCT target_url FROM links WHERE link_type = 'external' ORDER BY target_url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list external targets: %w", err)
	}
	return targets, nil
}

// RecordExternalResult applies one probe outcome in a single transaction:
// every link row pointing at the target gets the new status, and the probe
// is appended to check_history.
func (s *Store) RecordExternalResult(ctx context.Context, check domain.Check) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE links SET http_status = ?, last_checked = ? WHERE target_url = ?`,
			check.HTTPStatus, check.CheckedAt, check.TargetURL)
		if err != nil {
			return fmt.Errorf("failed to update links for %s: %w", check.TargetURL, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO check_history (target_url, http_status, response_time_ms, checked_at)
			VALUES (?, ?, ?, ?)`,
			check.TargetURL, check.HTTPStatus, check.ResponseTimeMS, check.CheckedAt)
		if err != nil {
			return fmt.Errorf("failed to record check for %s: %w", check.TargetURL, err)
		}
		return nil
	})
}
