package models

// RenderOutcomeKind tags the result of opening a document for preview.
type RenderOutcomeKind string

const (
	RenderOutcomeRendered    RenderOutcomeKind = "rendered"
	RenderOutcomeFellBack    RenderOutcomeKind = "fell_back_to_embed"
	RenderOutcomeUnsupported RenderOutcomeKind = "unsupported_format"
	RenderOutcomeFailed      RenderOutcomeKind = "failed"
)

// RenderOutcome is the terminal result of PaginatedRenderer.Open.
type RenderOutcome struct {
	Kind      RenderOutcomeKind `json:"kind"`
	PageCount int               `json:"pageCount,omitempty"` // set when Kind == rendered
	EmbedURL  string            `json:"embedUrl,omitempty"`  // set when Kind == fell_back_to_embed
	Reason    string            `json:"reason,omitempty"`    // user-facing, set when Kind == failed
	// DownloadURL is the canonical URL offered as the "download instead"
	// affordance on unsupported and failed outcomes.
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// UploadOutcomeKind tags the terminal result of one upload submission.
type UploadOutcomeKind string

const (
	UploadAccepted         UploadOutcomeKind = "accepted"  // 202: queued for async processing
	UploadCompleted        UploadOutcomeKind = "completed" // 2xx with document id
	UploadPermanentFailure UploadOutcomeKind = "permanent_failure"
)

// UploadOutcome is the terminal result of UploadPipeline.Submit.
// RetryableFailure never escapes the pipeline; after the attempt budget
// is spent it is reported here as a permanent failure.
type UploadOutcome struct {
	Kind       UploadOutcomeKind `json:"kind"`
	DocumentID string            `json:"documentId,omitempty"`
	Message    string            `json:"message"`
	Attempts   int               `json:"attempts"`
	// MaybeProcessing is set when the last failure was a transport error
	// that may have reached the server: the document could already be
	// processing even though the upload is reported as failed.
	MaybeProcessing bool `json:"maybeProcessing,omitempty"`
}
