package preview

import (
	"context"
	"fmt"
	"sync"

	"github.com/propulsa/docview-backend/internal/models"
	"github.com/propulsa/docview-backend/internal/notify"
)

// DefaultPageWidth is the inline container width, in points, that pages
// are scaled to when the caller does not ask for another width.
const DefaultPageWidth = 800

// Renderer loads a multi-page document and renders its pages
// sequentially into scaled surfaces. One Renderer serves one viewing
// surface; the shell constructs an instance per surface and passes
// collaborators explicitly.
type Renderer struct {
	fetcher   *Fetcher
	decoder   Decoder
	fallback  *FallbackViewer
	formats   *Registry
	sink      notify.Sink
	pageWidth float64

	// onPage, when set, is invoked after each page render with the
	// number of pages done and the total.
	onPage func(done, total int)

	mu          sync.Mutex
	state       models.PreviewState
	handle      Handle
	pageCount   int
	currentPage int
	surfaces    []*Surface
	// generation increments whenever the session is replaced or closed.
	// In-flight renders compare it before publishing so an abandoned
	// render never writes into a reused session.
	generation uint64
}

// NewRenderer wires a renderer for one viewing surface. pageWidth <= 0
// uses DefaultPageWidth.
func NewRenderer(fetcher *Fetcher, decoder Decoder, fallback *FallbackViewer, formats *Registry, sink notify.Sink, pageWidth float64) *Renderer {
	if pageWidth <= 0 {
		pageWidth = DefaultPageWidth
	}
	if sink == nil {
		sink = notify.Discard()
	}
	return &Renderer{
		fetcher:   fetcher,
		decoder:   decoder,
		fallback:  fallback,
		formats:   formats,
		sink:      sink,
		pageWidth: pageWidth,
		state:     models.PreviewStateIdle,
	}
}

// SetPageCallback registers a per-page progress callback. Must be set
// before Open.
func (r *Renderer) SetPageCallback(fn func(done, total int)) { r.onPage = fn }

// State returns the current session state.
func (r *Renderer) State() models.PreviewState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// PageCount returns the decoded page count, 0 before decode.
func (r *Renderer) PageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pageCount
}

// CurrentPage returns the 1-indexed current page, 0 before decode.
func (r *Renderer) CurrentPage() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentPage
}

// Open canonicalizes the document's URL, decodes it and renders every
// page in ascending order. On a decode or server-rejection failure the
// document is handed to the fallback viewer; network and not-found
// failures surface as a distinct failed outcome instead of looping.
func (r *Renderer) Open(ctx context.Context, ref models.DocumentRef) models.RenderOutcome {
	if r.formats.ModeFor(ref.MimeHint) != ModeNative {
		// Pure routing decision: never attempt either renderer.
		return models.RenderOutcome{
			Kind:        models.RenderOutcomeUnsupported,
			Reason:      "this format is not supported for preview",
			DownloadURL: r.fetcher.Canonicalize(ref.StorageURL),
		}
	}

	// Release the previous session before acquiring a new handle: the
	// handle is the sole owner of decode-time resources.
	gen := r.reset(models.PreviewStateLoading)

	data, canonical, err := r.fetcher.Fetch(ctx, ref.StorageURL)
	if err != nil {
		return r.failOrFallback(gen, canonical, err)
	}

	handle, err := r.decoder.Decode(data)
	if err != nil {
		return r.failOrFallback(gen, canonical, err)
	}

	r.mu.Lock()
	if r.generation != gen {
		// Session was replaced while decoding; the new owner wins.
		r.mu.Unlock()
		handle.Close()
		return models.RenderOutcome{Kind: models.RenderOutcomeFailed, Reason: "preview was cancelled"}
	}
	r.handle = handle
	r.pageCount = handle.PageCount()
	r.state = models.PreviewStateDecoded
	total := r.pageCount
	r.mu.Unlock()

	r.setState(gen, models.PreviewStateRendering)

	// Pages render strictly in ascending order, one at a time, to bound
	// peak memory: the decode handle is single-owner.
	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			r.abandon(gen)
			return models.RenderOutcome{Kind: models.RenderOutcomeFailed, Reason: "preview was cancelled"}
		}

		surface, err := r.renderAt(page, r.fitScale(page, r.pageWidth))
		if err != nil {
			r.abandon(gen)
			return models.RenderOutcome{
				Kind:        models.RenderOutcomeFailed,
				Reason:      userReason(err),
				DownloadURL: canonical,
			}
		}

		r.mu.Lock()
		if r.generation != gen {
			r.mu.Unlock()
			return models.RenderOutcome{Kind: models.RenderOutcomeFailed, Reason: "preview was cancelled"}
		}
		r.surfaces = append(r.surfaces, surface)
		r.mu.Unlock()

		if r.onPage != nil {
			r.onPage(page, total)
		}
	}

	r.mu.Lock()
	if r.generation == gen {
		r.state = models.PreviewStateReady
		r.currentPage = 1
	}
	r.mu.Unlock()

	r.sink.Notify(notify.LevelSuccess, fmt.Sprintf("Rendered %d pages of %s", total, ref.DisplayName))
	return models.RenderOutcome{Kind: models.RenderOutcomeRendered, PageCount: total}
}

// fitScale measures a page and returns the scale fitting it to width.
func (r *Renderer) fitScale(page int, width float64) float64 {
	r.mu.Lock()
	handle := r.handle
	r.mu.Unlock()
	if handle == nil {
		return 1.0
	}
	nativeW, _, err := handle.PageSize(page)
	if err != nil {
		return 1.0
	}
	return ComputeScale(width, nativeW)
}

// RenderPage renders a single page at the scale fitting targetWidth.
// The page is re-measured at that scale and drawn into a surface sized
// exactly to the scaled dimensions. Out-of-range pages fail with a
// render error and perform no drawing.
func (r *Renderer) RenderPage(page int, targetWidth float64) (*Surface, error) {
	r.mu.Lock()
	handle := r.handle
	count := r.pageCount
	r.mu.Unlock()

	if handle == nil {
		return nil, NewRenderError("no document is open", nil)
	}
	if page < 1 || page > count {
		return nil, NewRenderError(fmt.Sprintf("page %d out of range [1,%d]", page, count), nil)
	}

	nativeW, _, err := handle.PageSize(page)
	if err != nil {
		return nil, err
	}
	return r.renderAt(page, ComputeScale(targetWidth, nativeW))
}

// renderAt performs the second measure-then-draw pass at a known scale.
func (r *Renderer) renderAt(page int, scale float64) (*Surface, error) {
	r.mu.Lock()
	handle := r.handle
	r.mu.Unlock()
	if handle == nil {
		return nil, NewRenderError("no document is open", nil)
	}

	nativeW, nativeH, err := handle.PageSize(page)
	if err != nil {
		return nil, err
	}

	surface := NewSurface(page, nativeW, nativeH, scale)
	if err := handle.DrawPage(page, surface); err != nil {
		return nil, err
	}
	return surface, nil
}

// Surface returns the pre-rendered inline surface for a page.
func (r *Renderer) Surface(page int) (*Surface, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if page < 1 || page > len(r.surfaces) {
		return nil, NewRenderError(fmt.Sprintf("page %d out of range [1,%d]", page, len(r.surfaces)), nil)
	}
	return r.surfaces[page-1], nil
}

// Navigate moves the current page by delta, clamped to [1, pageCount].
// A delta that would leave the range is a no-op: the current value is
// returned and nothing is rendered.
func (r *Renderer) Navigate(delta int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pageCount == 0 {
		return r.currentPage
	}
	next := r.currentPage + delta
	if next < 1 || next > r.pageCount {
		return r.currentPage
	}
	r.currentPage = next
	return r.currentPage
}

// Close releases the document handle and drops all surfaces. Every exit
// path must release before a new handle is acquired.
func (r *Renderer) Close() {
	r.reset(models.PreviewStateIdle)
}

// reset bumps the generation, releases any held handle and moves to the
// given state. Returns the new generation.
func (r *Renderer) reset(state models.PreviewState) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation++
	if r.handle != nil {
		r.handle.Close()
		r.handle = nil
	}
	r.pageCount = 0
	r.currentPage = 0
	r.surfaces = nil
	r.state = state
	return r.generation
}

// abandon releases the session if it still belongs to gen.
func (r *Renderer) abandon(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation != gen {
		return
	}
	if r.handle != nil {
		r.handle.Close()
		r.handle = nil
	}
	r.surfaces = nil
	r.state = models.PreviewStateFailed
}

func (r *Renderer) setState(gen uint64, state models.PreviewState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation == gen {
		r.state = state
	}
}

// failOrFallback routes a classified failure: decode and rejection
// failures delegate to the fallback viewer, the rest surface as failed.
func (r *Renderer) failOrFallback(gen uint64, canonical string, err error) models.RenderOutcome {
	kind := KindOf(err)
	if kind == KindMalformed || kind == KindServerRejected {
		if embed, ferr := r.fallback.Open(canonical); ferr == nil {
			r.setState(gen, models.PreviewStateFallback)
			r.sink.Notify(notify.LevelWarning, "Native preview unavailable, using embedded viewer")
			return models.RenderOutcome{Kind: models.RenderOutcomeFellBack, EmbedURL: embed.FrameURL}
		}
	}

	r.abandon(gen)
	r.sink.Notify(notify.LevelError, userReason(err))
	return models.RenderOutcome{
		Kind:        models.RenderOutcomeFailed,
		Reason:      userReason(err),
		DownloadURL: canonical,
	}
}

// userReason extracts interpretable user-facing text from an error,
// never a raw transport or decode message.
func userReason(err error) string {
	if pe, ok := err.(*Error); ok {
		return pe.Msg
	}
	return "the preview could not be loaded, please try again"
}
