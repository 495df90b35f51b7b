package service

import (
	"sync"
	"time"

	"github.com/scanview/frontend/internal/history"
	"github.com/scanview/frontend/internal/model"
	"github.com/scanview/frontend/internal/render"
)

// Page is one open browser page: its result regions, its history and whether
// a scan is in flight. All access goes through the page lock.
type Page struct {
	id      string
	history *history.Log

	mu       sync.Mutex
	state    render.ViewState
	loading  bool
	lastSeen time.Time
	flash    Flash
}

// Flash is shown once, on the next render of the page after a form post.
type Flash struct {
	Alert  string
	Target string
}

// Snapshot is a consistent copy of a page for display.
type Snapshot struct {
	ID      string               `json:"id"`
	Loading bool                 `json:"loading"`
	View    render.ViewState     `json:"view"`
	History []model.HistoryEntry `json:"history"`
}

func newPage(id string, now time.Time) *Page {
	return &Page{
		id:       id,
		history:  history.New(),
		lastSeen: now,
	}
}

func (p *Page) ID() string { return p.id }

func (p *Page) Snapshot() Snapshot {
	p.mu.Lock()
	s := Snapshot{ID: p.id, Loading: p.loading, View: p.state}
	p.mu.Unlock()

	s.History = p.history.Entries()
	return s
}

func (p *Page) SetFlash(f Flash) {
	p.mu.Lock()
	p.flash = f
	p.mu.Unlock()
}

// TakeFlash returns the pending flash and clears it.
func (p *Page) TakeFlash() Flash {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := p.flash
	p.flash = Flash{}
	return f
}

func (p *Page) History() []model.HistoryEntry {
	return p.history.Entries()
}

// begin marks a scan in flight. It reports false if one already is.
func (p *Page) begin() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loading {
		return false
	}
	p.loading = true
	return true
}

func (p *Page) end() {
	p.mu.Lock()
	p.loading = false
	p.mu.Unlock()
}

// commit shows vs and then records entry in the history.
func (p *Page) commit(vs render.ViewState, entry model.HistoryEntry) {
	p.mu.Lock()
	p.state = vs
	p.mu.Unlock()

	p.history.Append(entry)
}

func (p *Page) touch(now time.Time) {
	p.mu.Lock()
	p.lastSeen = now
	p.mu.Unlock()
}

func (p *Page) idleSince(now time.Time) (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return now.Sub(p.lastSeen), p.loading
}
