package preview

import (
	"fmt"
	"net/url"

	"github.com/propulsa/docview-backend/internal/cdn"
)

// DefaultViewerHost is the external embeddable document viewer.
const DefaultViewerHost = "docs.google.com"

// FallbackViewer renders a document through an external embeddable
// viewer when native paginated rendering cannot. No pagination, no
// scaling control; this is an explicit capability-degraded mode.
type FallbackViewer struct {
	host  string
	canon *cdn.Canonicalizer
}

// NewFallbackViewer creates a viewer for the given host. An empty host
// falls back to DefaultViewerHost.
func NewFallbackViewer(host string, canon *cdn.Canonicalizer) *FallbackViewer {
	if host == "" {
		host = DefaultViewerHost
	}
	return &FallbackViewer{host: host, canon: canon}
}

// EmbedRef points at an embeddable frame rendering the document.
type EmbedRef struct {
	FrameURL string `json:"frameUrl"`
}

// Open composes the embeddable frame request for a document. Failure
// here is terminal for preview; there is no further fallback.
func (v *FallbackViewer) Open(documentURL string) (EmbedRef, error) {
	canonical := v.canon.Canonicalize(documentURL)
	if canonical == "" {
		return EmbedRef{}, fmt.Errorf("no document url to embed")
	}

	frame := fmt.Sprintf("https://%s/viewer?url=%s&embedded=true", v.host, url.QueryEscape(canonical))
	return EmbedRef{FrameURL: frame}, nil
}
