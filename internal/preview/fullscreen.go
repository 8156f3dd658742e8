package preview

import "context"

// Presenter re-renders a single page at higher fidelity for an overlay.
// The overlay's surface is wholly independent of the inline render's:
// both may be visible or torn down on their own.
type Presenter struct {
	renderer *Renderer
	boost    float64
	maxScale float64
}

// NewPresenter wires a presenter onto an existing renderer. Zero boost
// or maxScale use the defaults.
func NewPresenter(r *Renderer, boost, maxScale float64) *Presenter {
	if boost <= 0 {
		boost = DefaultFullscreenBoost
	}
	if maxScale <= 0 {
		maxScale = MaxFullscreenScale
	}
	return &Presenter{renderer: r, boost: boost, maxScale: maxScale}
}

// Present renders the page at the boosted scale for a container of the
// given width. A cancellation (dismiss or cancel key upstream) tears
// down the overlay render without touching the inline surfaces.
func (p *Presenter) Present(ctx context.Context, page int, containerWidth float64) (*Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fit := p.renderer.fitScale(page, containerWidth)
	scale := FullscreenScale(fit, p.boost, p.maxScale)

	surface, err := p.renderer.renderAt(page, scale)
	if err != nil {
		return nil, err
	}

	// Dismissed while drawing: release the overlay's own surface and
	// report the cancellation instead of publishing it.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return surface, nil
}
