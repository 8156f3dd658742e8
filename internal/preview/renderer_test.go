package preview_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/propulsa/docview-backend/internal/cdn"
	"github.com/propulsa/docview-backend/internal/models"
	"github.com/propulsa/docview-backend/internal/preview"
	"github.com/propulsa/docview-backend/internal/testutil"
)

func newDocServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Write([]byte("%PDF-1.4 stub"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newRenderer(srv *httptest.Server, decoder preview.Decoder) *preview.Renderer {
	canon := cdn.New("cdn.example.net")
	return preview.NewRenderer(
		preview.NewFetcher(srv.Client(), canon),
		decoder,
		preview.NewFallbackViewer("", canon),
		preview.DefaultRegistry(),
		&testutil.RecordingSink{},
		800,
	)
}

func pdfRef(srv *httptest.Server) models.DocumentRef {
	return models.DocumentRef{
		ID:          "doc-1",
		StorageURL:  srv.URL + "/doc.pdf",
		MimeHint:    "pdf",
		DisplayName: "doc.pdf",
	}
}

func TestOpenRendersAllPagesInOrder(t *testing.T) {
	srv := newDocServer(t, http.StatusOK)
	handle := testutil.NewStubHandle(3)
	r := newRenderer(srv, &testutil.StubDecoder{Handle: handle})

	outcome := r.Open(context.Background(), pdfRef(srv))

	if outcome.Kind != models.RenderOutcomeRendered {
		t.Fatalf("expected rendered, got %v (%v)", outcome.Kind, outcome.Reason)
	}
	if outcome.PageCount != 3 {
		t.Errorf("expected 3 pages, got %d", outcome.PageCount)
	}
	if r.State() != models.PreviewStateReady {
		t.Errorf("expected ready state, got %v", r.State())
	}
	if r.CurrentPage() != 1 {
		t.Errorf("expected current page 1, got %d", r.CurrentPage())
	}

	drawn := handle.DrawnPages()
	if len(drawn) != 3 || drawn[0] != 1 || drawn[1] != 2 || drawn[2] != 3 {
		t.Errorf("pages not drawn in ascending order: %v", drawn)
	}

	// Inline surfaces are scaled to the 800pt container width.
	s, err := r.Surface(1)
	if err != nil {
		t.Fatalf("surface: %v", err)
	}
	if s.Width != 800 {
		t.Errorf("expected fit-to-width 800, got %d", s.Width)
	}
}

func TestOpenUnsupportedFormatNeverFetches(t *testing.T) {
	srv := newDocServer(t, http.StatusOK)
	decoder := &testutil.StubDecoder{Handle: testutil.NewStubHandle(1)}
	r := newRenderer(srv, decoder)

	ref := pdfRef(srv)
	ref.MimeHint = "docx"
	outcome := r.Open(context.Background(), ref)

	if outcome.Kind != models.RenderOutcomeUnsupported {
		t.Fatalf("expected unsupported, got %v", outcome.Kind)
	}
	if outcome.DownloadURL == "" {
		t.Error("unsupported outcome must offer a download URL")
	}
	if decoder.Calls() != 0 {
		t.Error("unsupported formats must not reach the decoder")
	}
}

func TestOpenMalformedDocumentFallsBack(t *testing.T) {
	srv := newDocServer(t, http.StatusOK)
	r := newRenderer(srv, &testutil.StubDecoder{Err: preview.NewMalformedDocumentError(nil)})

	ref := pdfRef(srv)
	outcome := r.Open(context.Background(), ref)

	if outcome.Kind != models.RenderOutcomeFellBack {
		t.Fatalf("expected fallback, got %v (%v)", outcome.Kind, outcome.Reason)
	}
	// The viewer must embed exactly the canonical URL the native render
	// fetched, percent-encoded as a query value.
	canonical := cdn.New("cdn.example.net").Canonicalize(ref.StorageURL)
	want := "https://docs.google.com/viewer?url=" + url.QueryEscape(canonical) + "&embedded=true"
	if outcome.EmbedURL != want {
		t.Errorf("embed URL mismatch:\n got %s\nwant %s", outcome.EmbedURL, want)
	}
	if r.State() != models.PreviewStateFallback {
		t.Errorf("expected fallback state, got %v", r.State())
	}
}

func TestOpenServerRejectionFallsBack(t *testing.T) {
	srv := newDocServer(t, http.StatusInternalServerError)
	r := newRenderer(srv, &testutil.StubDecoder{Handle: testutil.NewStubHandle(1)})

	outcome := r.Open(context.Background(), pdfRef(srv))
	if outcome.Kind != models.RenderOutcomeFellBack {
		t.Fatalf("expected fallback, got %v", outcome.Kind)
	}
}

func TestOpenNotFoundFailsWithoutFallback(t *testing.T) {
	srv := newDocServer(t, http.StatusNotFound)
	r := newRenderer(srv, &testutil.StubDecoder{Handle: testutil.NewStubHandle(1)})

	outcome := r.Open(context.Background(), pdfRef(srv))

	if outcome.Kind != models.RenderOutcomeFailed {
		t.Fatalf("expected failed, got %v", outcome.Kind)
	}
	if outcome.EmbedURL != "" {
		t.Error("a missing document must not loop into the fallback viewer")
	}
	if outcome.DownloadURL == "" {
		t.Error("failed outcome must carry the canonical URL")
	}
	if r.State() != models.PreviewStateFailed {
		t.Errorf("expected failed state, got %v", r.State())
	}
}

func TestOpenNetworkErrorFails(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := srv.Client()
	url := srv.URL
	srv.Close()

	canon := cdn.New("cdn.example.net")
	r := preview.NewRenderer(
		preview.NewFetcher(client, canon),
		&testutil.StubDecoder{Handle: testutil.NewStubHandle(1)},
		preview.NewFallbackViewer("", canon),
		preview.DefaultRegistry(),
		nil,
		800,
	)

	outcome := r.Open(context.Background(), models.DocumentRef{StorageURL: url + "/doc.pdf", MimeHint: "pdf"})
	if outcome.Kind != models.RenderOutcomeFailed {
		t.Fatalf("expected failed, got %v", outcome.Kind)
	}
	if outcome.Reason == "" {
		t.Error("failed outcome must carry a user-facing reason")
	}
}

func TestNavigateClampsAtBounds(t *testing.T) {
	srv := newDocServer(t, http.StatusOK)
	r := newRenderer(srv, &testutil.StubDecoder{Handle: testutil.NewStubHandle(3)})
	r.Open(context.Background(), pdfRef(srv))

	if got := r.Navigate(1); got != 2 {
		t.Errorf("expected page 2, got %d", got)
	}
	// Overshooting is a no-op, not a clamp to the boundary.
	if got := r.Navigate(10); got != 2 {
		t.Errorf("overshoot must not move, got %d", got)
	}
	if got := r.Navigate(-10); got != 2 {
		t.Errorf("undershoot must not move, got %d", got)
	}
	if got := r.Navigate(-1); got != 1 {
		t.Errorf("expected page 1, got %d", got)
	}
}

func TestRenderPageOutOfRangeDrawsNothing(t *testing.T) {
	srv := newDocServer(t, http.StatusOK)
	handle := testutil.NewStubHandle(2)
	r := newRenderer(srv, &testutil.StubDecoder{Handle: handle})
	r.Open(context.Background(), pdfRef(srv))

	before := len(handle.DrawnPages())
	_, err := r.RenderPage(99, 800)
	if preview.KindOf(err) != preview.KindRender {
		t.Fatalf("expected render error, got %v", err)
	}
	if len(handle.DrawnPages()) != before {
		t.Error("out-of-range request must not draw")
	}
}

func TestCloseReleasesHandle(t *testing.T) {
	srv := newDocServer(t, http.StatusOK)
	handle := testutil.NewStubHandle(2)
	r := newRenderer(srv, &testutil.StubDecoder{Handle: handle})
	r.Open(context.Background(), pdfRef(srv))

	r.Close()
	if handle.CloseCount() == 0 {
		t.Error("close must release the document handle")
	}
	if _, err := r.Surface(1); err == nil {
		t.Error("surfaces must be dropped on close")
	}
}

func TestReopenReleasesPreviousHandle(t *testing.T) {
	srv := newDocServer(t, http.StatusOK)
	first := testutil.NewStubHandle(2)
	decoder := &testutil.StubDecoder{Handle: first}
	r := newRenderer(srv, decoder)
	r.Open(context.Background(), pdfRef(srv))

	second := testutil.NewStubHandle(5)
	decoder.Handle = second
	outcome := r.Open(context.Background(), pdfRef(srv))

	if outcome.PageCount != 5 {
		t.Errorf("expected second document's 5 pages, got %d", outcome.PageCount)
	}
	if first.CloseCount() == 0 {
		t.Error("previous handle must be released before the new acquire")
	}
}

func TestOpenCancelledContext(t *testing.T) {
	srv := newDocServer(t, http.StatusOK)
	r := newRenderer(srv, &testutil.StubDecoder{Handle: testutil.NewStubHandle(3)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := r.Open(ctx, pdfRef(srv))
	if outcome.Kind != models.RenderOutcomeFailed {
		t.Fatalf("expected failed on cancellation, got %v", outcome.Kind)
	}
}
