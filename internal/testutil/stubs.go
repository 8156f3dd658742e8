// stubs.go - Stub decoders and sinks for testing
package testutil

import (
	"fmt"
	"sync"

	"github.com/propulsa/docview-backend/internal/notify"
	"github.com/propulsa/docview-backend/internal/preview"
)

// StubHandle implements preview.Handle with fixed page geometry
type StubHandle struct {
	Pages   int
	PageW   float64
	PageH   float64
	DrawErr error

	mu         sync.Mutex
	closeCount int
	drawnPages []int
}

// NewStubHandle creates a handle with the given page count and US-letter
// sized pages
func NewStubHandle(pages int) *StubHandle {
	return &StubHandle{Pages: pages, PageW: 612, PageH: 792}
}

func (h *StubHandle) PageCount() int { return h.Pages }

func (h *StubHandle) PageSize(page int) (float64, float64, error) {
	if page < 1 || page > h.Pages {
		return 0, 0, fmt.Errorf("page %d out of range", page)
	}
	return h.PageW, h.PageH, nil
}

func (h *StubHandle) DrawPage(page int, s *preview.Surface) error {
	if h.DrawErr != nil {
		return h.DrawErr
	}
	h.mu.Lock()
	h.drawnPages = append(h.drawnPages, page)
	h.mu.Unlock()
	return nil
}

func (h *StubHandle) Close() error {
	h.mu.Lock()
	h.closeCount++
	h.mu.Unlock()
	return nil
}

// CloseCount returns how many times Close was called
func (h *StubHandle) CloseCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closeCount
}

// DrawnPages returns the pages drawn, in order
func (h *StubHandle) DrawnPages() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.drawnPages...)
}

// StubDecoder implements preview.Decoder returning a fixed handle or error
type StubDecoder struct {
	Handle preview.Handle
	Err    error

	mu    sync.Mutex
	calls int
}

func (d *StubDecoder) Decode(data []byte) (preview.Handle, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Handle, nil
}

// Calls returns how many times Decode was called
func (d *StubDecoder) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Notification is one recorded sink event
type Notification struct {
	Level   notify.Level
	Message string
}

// RecordingSink implements notify.Sink and keeps every event
type RecordingSink struct {
	mu     sync.Mutex
	events []Notification
}

func (s *RecordingSink) Notify(level notify.Level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, Notification{Level: level, Message: message})
}

// Events returns a copy of everything recorded so far
func (s *RecordingSink) Events() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notification(nil), s.events...)
}

// Messages returns just the recorded message strings
func (s *RecordingSink) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Message
	}
	return out
}
