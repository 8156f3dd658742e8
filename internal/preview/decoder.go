package preview

// Handle is the in-memory representation of a successfully decoded
// multi-page document. It is exclusively owned by one render session;
// Close must be called on every exit path before a new handle is
// acquired for the same viewing surface.
type Handle interface {
	// PageCount returns the number of pages, known after decode.
	PageCount() int
	// PageSize returns the native page dimensions at scale 1.0 for a
	// 1-indexed page.
	PageSize(page int) (width, height float64, err error)
	// DrawPage draws the page content into an already sized surface.
	DrawPage(page int, s *Surface) error
	// Close releases decode-time resources. Safe to call more than once.
	Close() error
}

// Decoder turns raw document bytes into a Handle. A failure to decode is
// reported as a malformed-document error.
type Decoder interface {
	Decode(data []byte) (Handle, error)
}
