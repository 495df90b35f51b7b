package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scanview/frontend/internal/model"
	"github.com/scanview/frontend/internal/render"
	"github.com/scanview/frontend/internal/scanclient"
)

var (
	ErrPageNotFound   = errors.New("page not found")
	ErrScanInProgress = errors.New("a scan is already in progress")
)

// Scanner is the remote scan service. Scan failures are expected to be
// *scanclient.SubmissionError values.
type Scanner interface {
	Scan(ctx context.Context, url string) (model.ScanResult, error)
	History(ctx context.Context) ([]model.ScanResult, error)
}

// HistoryListener is called after an entry has been added to a page's history
// by a successful scan.
type HistoryListener func(pageID string, entry model.HistoryEntry)

// Dashboard owns the open pages and runs the page commands: open (with
// history replay), submit and close.
type Dashboard struct {
	scanner Scanner
	idleTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	pages     map[string]*Page
	listeners []HistoryListener
}

func NewDashboard(scanner Scanner, idleTTL time.Duration, logger *slog.Logger) *Dashboard {
	return &Dashboard{
		scanner: scanner,
		idleTTL: idleTTL,
		logger:  logger.With("area", "dashboard"),
		now:     time.Now,
		pages:   make(map[string]*Page),
	}
}

func (d *Dashboard) OnHistory(fn HistoryListener) {
	d.mu.Lock()
	d.listeners = append(d.listeners, fn)
	d.mu.Unlock()
}

// Open creates a page and replays the scan service's history into it. A
// history failure is logged and leaves the page with an empty history.
func (d *Dashboard) Open(ctx context.Context) *Page {
	p := newPage(uuid.NewString(), d.now())

	d.mu.Lock()
	d.pages[p.id] = p
	d.mu.Unlock()

	results, err := d.scanner.History(ctx)
	if err != nil {
		d.logger.Warn("failed to load history", "page", p.id, "error", err)
		return p
	}
	p.history.Preload(results)
	d.logger.Debug("page opened", "page", p.id, "history", len(results))
	return p
}

func (d *Dashboard) Page(id string) (*Page, error) {
	d.mu.RLock()
	p, ok := d.pages[id]
	d.mu.RUnlock()
	if !ok {
		return nil, ErrPageNotFound
	}
	p.touch(d.now())
	return p, nil
}

// Touch marks a page as seen so the reaper keeps it. It reports whether the
// page exists.
func (d *Dashboard) Touch(id string) bool {
	_, err := d.Page(id)
	return err == nil
}

func (d *Dashboard) Close(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.pages[id]; !ok {
		return ErrPageNotFound
	}
	delete(d.pages, id)
	return nil
}

func (d *Dashboard) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.pages)
}

// Submit scans url for the page. On success the page shows the rendered
// result and then gains a history entry; on failure neither changes. The
// returned snapshot is taken after the in-flight mark is cleared.
func (d *Dashboard) Submit(ctx context.Context, pageID, url string) (Snapshot, error) {
	p, err := d.Page(pageID)
	if err != nil {
		return Snapshot{}, err
	}
	err = d.scan(ctx, p, url)
	return p.Snapshot(), err
}

func (d *Dashboard) scan(ctx context.Context, p *Page, url string) error {
	if !p.begin() {
		return &scanclient.SubmissionError{Message: "A scan is already in progress", Err: ErrScanInProgress}
	}
	defer p.end()

	result, err := d.scanner.Scan(ctx, url)
	if err != nil {
		d.logger.Info("scan failed", "page", p.id, "url", url, "error", err)
		return err
	}

	entry := model.NewHistoryEntry(result)
	p.commit(render.Render(result), entry)
	d.logger.Info("scan rendered", "page", p.id, "url", result.URL, "risk", result.RiskLevel,
		"vulnerabilities", len(result.Vulnerabilities))

	d.mu.RLock()
	listeners := append([]HistoryListener(nil), d.listeners...)
	d.mu.RUnlock()
	for _, fn := range listeners {
		fn(p.id, entry)
	}
	return nil
}

// Reap closes pages idle for longer than the idle TTL. Pages with a scan in
// flight are kept.
func (d *Dashboard) Reap() int {
	if d.idleTTL <= 0 {
		return 0
	}
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for id, p := range d.pages {
		idle, loading := p.idleSince(now)
		if !loading && idle > d.idleTTL {
			delete(d.pages, id)
			n++
		}
	}
	return n
}

// RunReaper calls Reap every interval until ctx is done.
func (d *Dashboard) RunReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := d.Reap(); n > 0 {
				d.logger.Debug("reaped idle pages", "count", n)
			}
		}
	}
}
