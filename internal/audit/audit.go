package audit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"linkaudit/internal/domain"
)

const (
	defaultUserAgent  = "linkaudit/1.0"
	defaultTimeout    = 15 * time.Second
	defaultCheckDelay = 300 * time.Millisecond
)

// Store persists scan results between the local and external passes.
type Store interface {
	Reset(ctx context.Context) error
	SavePageLinks(ctx context.Context, page domain.Page, links []domain.Link) error
	DistinctExternalTargets(ctx context.Context) ([]string, error)
	RecordExternalResult(ctx context.Context, check domain.Check) error
}

// Config defines inputs for the audit passes.
type Config struct {
	Root      string // site root directory
	BaseURL   string // canonical URL the site is served under
	Store     Store
	SkipFiles []string // file names excluded from scanning
	UserAgent string
	Timeout   time.Duration // per-request timeout for external checks
	// CheckDelay is the pause between external checks. Zero selects the
	// default; a negative value disables the pause.
	CheckDelay time.Duration
	Client     *http.Client
	Logger     *zap.Logger
	Progress   func(string)
}

// ScanStats summarizes one local scan pass.
type ScanStats struct {
	Files          int
	Pages          int
	Links          int
	InternalLinks  int
	ExternalLinks  int
	BrokenInternal int
	Skipped        int
}

// CheckStats summarizes one external check pass.
type CheckStats struct {
	Checked int
	Broken  int
	OK      int
}

type auditor struct {
	root      string
	cl        *classifier
	store     Store
	skip      map[string]struct{}
	userAgent string
	delay     time.Duration
	client    *http.Client
	log       *zap.Logger
	progress  func(string)
}

func newAuditor(cfg Config) (*auditor, error) {
	if cfg.Root == "" {
		return nil, errors.New("site root is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", base.Scheme)
	}
	if base.Host == "" {
		return nil, errors.New("base URL must include a host")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	delay := cfg.CheckDelay
	if delay == 0 {
		delay = defaultCheckDelay
	}
	if delay < 0 {
		delay = 0
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	skip := make(map[string]struct{}, len(cfg.SkipFiles))
	for _, name := range cfg.SkipFiles {
		skip[name] = struct{}{}
	}

	return &auditor{
		root:      cfg.Root,
		cl:        newClassifier(base),
		store:     cfg.Store,
		skip:      skip,
		userAgent: userAgent,
		delay:     delay,
		client:    client,
		log:       log,
		progress:  cfg.Progress,
	}, nil
}

// Scan rebuilds the pages and links tables from the HTML files under the
// site root. Internal links are verified against the filesystem as they are
// stored; external links are left for CheckExternal. Each page commits
// separately, so an interrupted scan keeps every fully processed page.
func Scan(ctx context.Context, cfg Config) (*ScanStats, error) {
	a, err := newAuditor(cfg)
	if err != nil {
		return nil, err
	}
	return a.scan(ctx)
}

func (a *auditor) scan(ctx context.Context) (*ScanStats, error) {
	pages, err := listPages(a.root, a.skip)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	a.emitProgress(fmt.Sprintf("Scanning %d HTML files...", len(pages)))

	if err := a.store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("reset store: %w", err)
	}

	stats := &ScanStats{Files: len(pages)}
	for _, rel := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, links, err := a.scanPage(rel)
		if err != nil {
			stats.Skipped++
			a.log.Warn("skipping page", zap.String("file", rel), zap.Error(err))
			continue
		}
		if err := a.store.SavePageLinks(ctx, *page, links); err != nil {
			return nil, fmt.Errorf("save page %s: %w", rel, err)
		}
		a.log.Debug("scanned page", zap.String("file", rel), zap.Int("links", len(links)))

		stats.Pages++
		stats.Links += len(links)
		for _, link := range links {
			switch link.Type {
			case domain.LinkTypeInternal:
				stats.InternalLinks++
				if link.HTTPStatus != nil && *link.HTTPStatus == 404 {
					stats.BrokenInternal++
				}
			case domain.LinkTypeExternal:
				stats.ExternalLinks++
			}
		}
	}
	a.emitProgress(fmt.Sprintf("Found %d links across %d pages.", stats.Links, stats.Pages))
	return stats, nil
}

// scanPage extracts one file into its page row and deduplicated link rows.
// The page's link count always equals the number of rows returned.
func (a *auditor) scanPage(rel string) (*domain.Page, []domain.Link, error) {
	f, err := os.Open(filepath.Join(a.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	doc, err := extractDocument(f)
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}

	pageURL := a.cl.pageURL(rel)
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("page URL %q: %w", pageURL, err)
	}

	now := time.Now().UTC()
	seen := make(map[linkKey]struct{})
	links := make([]domain.Link, 0, len(doc.anchors))
	for _, anc := range doc.anchors {
		linkType, target, ok := a.cl.classify(anc.href, base)
		if !ok {
			continue
		}
		key := linkKey{target: target, text: anc.text}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		link := domain.Link{
			SourceURL: pageURL,
			TargetURL: target,
			LinkText:  anc.text,
			Type:      linkType,
		}
		if linkType == domain.LinkTypeInternal {
			status := resolveInternal(a.root, target)
			link.HTTPStatus = &status
			link.LastChecked = &now
		}
		links = append(links, link)
	}

	page := &domain.Page{
		URL:         pageURL,
		FilePath:    rel,
		Title:       doc.title,
		LinkCount:   len(links),
		LastScanned: now,
	}
	return page, links, nil
}

type linkKey struct {
	target string
	text   string
}

// CheckExternal probes every distinct external target recorded by the last
// scan and stores the outcomes. Probe failures are recorded as status 0,
// not returned as errors; only store failures abort the pass.
func CheckExternal(ctx context.Context, cfg Config) (*CheckStats, error) {
	a, err := newAuditor(cfg)
	if err != nil {
		return nil, err
	}
	return a.checkExternal(ctx)
}

func (a *auditor) checkExternal(ctx context.Context) (*CheckStats, error) {
	targets, err := a.store.DistinctExternalTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list external targets: %w", err)
	}
	a.emitProgress(fmt.Sprintf("Checking %d unique external URLs...", len(targets)))

	stats := &CheckStats{}
	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := probe(ctx, a.client, a.userAgent, target)
		check := domain.Check{
			TargetURL:      target,
			HTTPStatus:     res.status,
			ResponseTimeMS: res.elapsed.Milliseconds(),
			CheckedAt:      time.Now().UTC(),
		}
		if err := a.store.RecordExternalResult(ctx, check); err != nil {
			return nil, fmt.Errorf("record check for %s: %w", target, err)
		}
		a.log.Debug("checked url",
			zap.String("url", target),
			zap.Int("status", res.status),
			zap.Int64("ms", check.ResponseTimeMS))

		stats.Checked++
		if isBroken(res.status) {
			stats.Broken++
		} else {
			stats.OK++
		}
		if !isOK(res.status) {
			a.emitProgress(fmt.Sprintf("  [%3d] %s", res.status, target))
		} else if stats.Checked%10 == 0 {
			a.emitProgress(fmt.Sprintf("  ...checked %d/%d", stats.Checked, len(targets)))
		}

		if i < len(targets)-1 {
			if err := a.wait(ctx); err != nil {
				return nil, err
			}
		}
	}
	a.emitProgress(fmt.Sprintf("Done. %d broken, %d ok out of %d URLs.", stats.Broken, stats.OK, stats.Checked))
	return stats, nil
}

// wait pauses between external checks so remote hosts see a polite,
// fixed-rate client.
func (a *auditor) wait(ctx context.Context) error {
	if a.delay <= 0 {
		return nil
	}
	t := time.NewTimer(a.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (a *auditor) emitProgress(msg string) {
	if a.progress == nil {
		return
	}
	a.progress(msg)
}
