package preview

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// PDFDecoder decodes PDF bytes through pdfcpu's file-based API. Each
// handle owns a temp directory holding the source file and extraction
// scratch space; Close removes it.
type PDFDecoder struct {
	tempDir string
}

// NewPDFDecoder creates a decoder writing scratch files under tempDir.
// An empty tempDir uses the OS default.
func NewPDFDecoder(tempDir string) *PDFDecoder {
	return &PDFDecoder{tempDir: tempDir}
}

// Decode validates the bytes as a PDF and measures all pages. Invalid
// bytes yield a malformed-document error.
func (d *PDFDecoder) Decode(data []byte) (Handle, error) {
	dir, err := os.MkdirTemp(d.tempDir, "preview-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}

	path := filepath.Join(dir, "source.pdf")
	if err := os.WriteFile(path, data, 0644); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("writing scratch file: %w", err)
	}

	if err := api.ValidateFile(path, nil); err != nil {
		os.RemoveAll(dir)
		return nil, NewMalformedDocumentError(err)
	}

	pageCount, err := api.PageCountFile(path)
	if err != nil {
		os.RemoveAll(dir)
		return nil, NewMalformedDocumentError(err)
	}

	dims, err := api.PageDimsFile(path)
	if err != nil {
		os.RemoveAll(dir)
		return nil, NewMalformedDocumentError(err)
	}

	return &pdfHandle{dir: dir, path: path, pageCount: pageCount, dims: dims}, nil
}

type pdfHandle struct {
	dir       string
	path      string
	pageCount int
	dims      []types.Dim
	closed    bool
}

func (h *pdfHandle) PageCount() int { return h.pageCount }

func (h *pdfHandle) PageSize(page int) (float64, float64, error) {
	if h.closed {
		return 0, 0, NewRenderError("document handle already released", nil)
	}
	if page < 1 || page > len(h.dims) {
		return 0, 0, NewRenderError(fmt.Sprintf("page %d out of range [1,%d]", page, h.pageCount), nil)
	}
	d := h.dims[page-1]
	return d.Width, d.Height, nil
}

// DrawPage composites the page's embedded raster images onto the
// surface. Vector content and text runs are not rasterized; pages
// without images stay a blank sheet.
func (h *pdfHandle) DrawPage(page int, s *Surface) error {
	if h.closed {
		return NewRenderError("document handle already released", nil)
	}
	if page < 1 || page > h.pageCount {
		return NewRenderError(fmt.Sprintf("page %d out of range [1,%d]", page, h.pageCount), nil)
	}

	outDir := filepath.Join(h.dir, "page_"+strconv.Itoa(page))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return NewRenderError("preparing page scratch directory", err)
	}
	defer os.RemoveAll(outDir)

	// Pages that carry no extractable images render as a blank sheet,
	// so extraction problems are not drawing failures.
	if err := api.ExtractImagesFile(h.path, outDir, []string{strconv.Itoa(page)}, nil); err != nil {
		return nil
	}

	img := largestImage(outDir)
	if img != nil {
		s.DrawImage(img)
	}
	return nil
}

func (h *pdfHandle) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	return os.RemoveAll(h.dir)
}

// largestImage decodes every extracted file and returns the one with the
// biggest pixel area, which for scanned documents is the page scan.
func largestImage(dir string) image.Image {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var best image.Image
	var bestArea int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		f, err := os.Open(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		img, _, err := image.Decode(f)
		f.Close()
		if err != nil {
			continue
		}
		area := img.Bounds().Dx() * img.Bounds().Dy()
		if area > bestArea {
			best = img
			bestArea = area
		}
	}
	return best
}
