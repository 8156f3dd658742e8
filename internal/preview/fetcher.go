package preview

import (
	"context"
	"io"
	"net/http"

	"github.com/propulsa/docview-backend/internal/cdn"
)

// Fetcher downloads document bytes from their canonical CDN location and
// classifies failures into the preview error taxonomy.
type Fetcher struct {
	client *http.Client
	canon  *cdn.Canonicalizer
}

// NewFetcher creates a Fetcher. A nil client uses http.DefaultClient.
func NewFetcher(client *http.Client, canon *cdn.Canonicalizer) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, canon: canon}
}

// Canonicalize exposes the canonical form of a storage URL without
// fetching it.
func (f *Fetcher) Canonicalize(rawURL string) string {
	return f.canon.Canonicalize(rawURL)
}

// Fetch canonicalizes rawURL and downloads the object. The returned
// canonical URL is valid even when the fetch fails, so callers can hand
// the same URL to the fallback viewer or a download affordance.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (data []byte, canonical string, err error) {
	canonical = f.canon.Canonicalize(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, canonical, nil)
	if err != nil {
		return nil, canonical, NewNetworkError(err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, canonical, NewNetworkError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, canonical, NewNotFoundError(canonical)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, canonical, NewServerRejectedError(resp.StatusCode)
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, canonical, NewNetworkError(err)
	}
	return data, canonical, nil
}
