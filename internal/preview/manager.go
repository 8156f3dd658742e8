package preview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/propulsa/docview-backend/internal/models"
	"github.com/propulsa/docview-backend/internal/notify"
)

// MaxSessions limits concurrent render sessions to bound decode memory.
const MaxSessions = 10

// SessionKeepAliveWindow is how long a recently touched session is
// protected from cleanup.
const SessionKeepAliveWindow = 5 * time.Minute

// ErrSessionNotFound reports an unknown or already closed session.
var ErrSessionNotFound = errors.New("session not found")

// shortID safely truncates an ID for logging.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// Options carries the per-surface collaborators the manager injects
// into each renderer it constructs.
type Options struct {
	Fetcher   *Fetcher
	Decoder   Decoder
	Fallback  *FallbackViewer
	Formats   *Registry
	Sink      notify.Sink
	PageWidth float64
	Boost     float64
	MaxScale  float64
}

// Manager owns active render sessions. One renderer is constructed per
// session (per viewing surface); nothing is looked up globally.
type Manager struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*sessionState
}

type sessionState struct {
	Session      *models.PreviewSession
	Renderer     *Renderer
	Presenter    *Presenter
	cancel       context.CancelFunc
	LastAccessed time.Time
}

// NewManager creates a session manager.
func NewManager(opts Options) *Manager {
	if opts.Sink == nil {
		opts.Sink = notify.Discard()
	}
	if opts.Formats == nil {
		opts.Formats = DefaultRegistry()
	}
	return &Manager{
		opts:     opts,
		sessions: make(map[string]*sessionState),
	}
}

// StartPreview begins rendering a document in the background and
// returns the new session immediately.
func (m *Manager) StartPreview(ref models.DocumentRef) *models.PreviewSession {
	m.cleanupIfAtCapacity()

	sessionID := uuid.New().String()
	session := models.NewPreviewSession(sessionID, ref)
	session.State = models.PreviewStateLoading

	renderer := NewRenderer(m.opts.Fetcher, m.opts.Decoder, m.opts.Fallback, m.opts.Formats, m.opts.Sink, m.opts.PageWidth)
	renderer.SetPageCallback(func(done, total int) {
		m.mu.Lock()
		if state, ok := m.sessions[sessionID]; ok {
			// 0-10% is fetch+decode, 10-100% is page rendering.
			state.Session.Progress = 10 + float64(done)*90/float64(total)
			state.Session.State = models.PreviewStateRendering
		}
		m.mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	state := &sessionState{
		Session:      session,
		Renderer:     renderer,
		Presenter:    NewPresenter(renderer, m.opts.Boost, m.opts.MaxScale),
		cancel:       cancel,
		LastAccessed: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sessionID] = state
	snapshot := *session
	m.mu.Unlock()

	go m.runRender(ctx, sessionID, ref)

	return &snapshot
}

func (m *Manager) runRender(ctx context.Context, sessionID string, ref models.DocumentRef) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[Preview %s] PANIC recovered: %v\n", shortID(sessionID), r)
			m.finish(sessionID, models.RenderOutcome{
				Kind:   models.RenderOutcomeFailed,
				Reason: "the preview could not be loaded, please try again",
			})
		}
	}()

	start := time.Now()
	fmt.Printf("[Preview %s] Opening %s\n", shortID(sessionID), ref.StorageURL)

	m.mu.RLock()
	state, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return
	}

	outcome := state.Renderer.Open(ctx, ref)

	fmt.Printf("[Preview %s] Outcome %s in %s\n", shortID(sessionID), outcome.Kind, time.Since(start).Round(time.Millisecond))
	m.finish(sessionID, outcome)
}

func (m *Manager) finish(sessionID string, outcome models.RenderOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[sessionID]
	if !ok {
		return
	}

	o := outcome
	state.Session.Outcome = &o
	switch outcome.Kind {
	case models.RenderOutcomeRendered:
		state.Session.State = models.PreviewStateReady
		state.Session.Progress = 100
		state.Session.PageCount = outcome.PageCount
		state.Session.CurrentPage = 1
	case models.RenderOutcomeFellBack:
		state.Session.State = models.PreviewStateFallback
		state.Session.Progress = 100
	default:
		state.Session.State = models.PreviewStateFailed
	}
}

// GetSession returns a session snapshot and refreshes its keep-alive.
func (m *Manager) GetSession(id string) (*models.PreviewSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	state.LastAccessed = time.Now()
	snapshot := *state.Session
	return &snapshot, true
}

// Navigate moves a session's current page by delta, clamped in range.
func (m *Manager) Navigate(id string, delta int) (int, bool) {
	m.mu.Lock()
	state, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return 0, false
	}
	state.LastAccessed = time.Now()
	renderer := state.Renderer
	m.mu.Unlock()

	page := renderer.Navigate(delta)

	m.mu.Lock()
	if state, ok := m.sessions[id]; ok {
		state.Session.CurrentPage = page
	}
	m.mu.Unlock()
	return page, true
}

// PageSurface returns a rendered surface for a page. A targetWidth of 0
// serves the pre-rendered inline surface; any other width re-renders at
// that width.
func (m *Manager) PageSurface(id string, page int, targetWidth float64) (*Surface, error) {
	m.mu.Lock()
	state, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	state.LastAccessed = time.Now()
	renderer := state.Renderer
	m.mu.Unlock()

	if targetWidth <= 0 {
		return renderer.Surface(page)
	}
	return renderer.RenderPage(page, targetWidth)
}

// FullscreenSurface renders a page at overlay fidelity on its own
// surface.
func (m *Manager) FullscreenSurface(ctx context.Context, id string, page int, containerWidth float64) (*Surface, error) {
	m.mu.Lock()
	state, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	state.LastAccessed = time.Now()
	presenter := state.Presenter
	m.mu.Unlock()

	return presenter.Present(ctx, page, containerWidth)
}

// CloseSession abandons any in-flight render, releases the document
// handle and removes the session.
func (m *Manager) CloseSession(id string) bool {
	m.mu.Lock()
	state, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	state.cancel()
	state.Renderer.Close()
	fmt.Printf("[Preview %s] Session closed\n", shortID(id))
	return true
}

// SessionCount reports how many sessions are currently tracked.
func (m *Manager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// cleanupIfAtCapacity evicts sessions to make room for one more when at
// the limit. Finished sessions go first; when every session is still in
// flight the least recently touched ones are abandoned instead, so the
// map never grows past MaxSessions.
func (m *Manager) cleanupIfAtCapacity() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < MaxSessions {
		return
	}

	toFree := len(m.sessions) - MaxSessions + 1
	for id, state := range m.sessions {
		if toFree == 0 {
			return
		}
		s := state.Session.State
		if s != models.PreviewStateReady && s != models.PreviewStateFailed && s != models.PreviewStateFallback {
			continue
		}
		state.cancel()
		state.Renderer.Close()
		delete(m.sessions, id)
		toFree--
		fmt.Printf("[Preview %s] Evicted session to free memory\n", shortID(id))
	}

	for ; toFree > 0; toFree-- {
		oldestID := ""
		var oldest time.Time
		for id, state := range m.sessions {
			if oldestID == "" || state.LastAccessed.Before(oldest) {
				oldestID = id
				oldest = state.LastAccessed
			}
		}
		if oldestID == "" {
			return
		}
		state := m.sessions[oldestID]
		state.cancel()
		state.Renderer.Close()
		delete(m.sessions, oldestID)
		fmt.Printf("[Preview %s] Evicted in-flight session at capacity\n", shortID(oldestID))
	}
}

// CleanupOldSessions removes finished sessions idle longer than maxAge,
// keeping anything touched within the keep-alive window.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAlive := time.Now().Add(-SessionKeepAliveWindow)

	for id, state := range m.sessions {
		s := state.Session.State
		if s != models.PreviewStateReady && s != models.PreviewStateFailed && s != models.PreviewStateFallback {
			continue
		}
		if state.LastAccessed.After(keepAlive) {
			continue
		}
		if state.LastAccessed.Before(cutoff) {
			state.cancel()
			state.Renderer.Close()
			delete(m.sessions, id)
			fmt.Printf("[Preview %s] Cleaned up aged session (idle %s)\n",
				shortID(id), time.Since(state.LastAccessed).Round(time.Second))
		}
	}
}
