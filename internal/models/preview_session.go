package models

// PreviewState represents the lifecycle of a render session.
type PreviewState string

const (
	PreviewStateIdle      PreviewState = "idle"
	PreviewStateLoading   PreviewState = "loading"
	PreviewStateDecoded   PreviewState = "decoded"
	PreviewStateRendering PreviewState = "rendering"
	PreviewStateReady     PreviewState = "ready"
	PreviewStateFailed    PreviewState = "failed"
	// PreviewStateFallback means native rendering was abandoned and the
	// document was handed to the embeddable fallback viewer.
	PreviewStateFallback PreviewState = "fallback_delegated"
)

// PreviewSession is the externally visible view of one render session.
type PreviewSession struct {
	ID          string       `json:"id"`
	DocumentID  string       `json:"documentId,omitempty"`
	DocumentURL string       `json:"documentUrl"`
	State       PreviewState `json:"state"`
	Progress    float64      `json:"progress"` // 0-100
	PageCount   int          `json:"pageCount,omitempty"`
	CurrentPage int          `json:"currentPage,omitempty"`
	Outcome     *RenderOutcome `json:"outcome,omitempty"`
}

// NewPreviewSession creates a session in the idle state.
func NewPreviewSession(id string, ref DocumentRef) *PreviewSession {
	return &PreviewSession{
		ID:          id,
		DocumentID:  ref.ID,
		DocumentURL: ref.StorageURL,
		State:       PreviewStateIdle,
	}
}
