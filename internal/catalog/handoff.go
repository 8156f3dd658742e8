package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/propulsa/docview-backend/internal/models"
)

// handoffName is the fixed key for the single stashed result blob.
const handoffName = "search-results.msgpack"

// Handoff stashes one serialized search-result blob for the next page
// load. The blob is keyed by a fixed name, read once and cleared.
type Handoff struct {
	mu   sync.Mutex
	path string
}

// NewHandoff creates a handoff store under dir.
func NewHandoff(dir string) (*Handoff, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating handoff directory: %w", err)
	}
	return &Handoff{path: filepath.Join(dir, handoffName)}, nil
}

// Put replaces the stashed blob with the given results.
func (h *Handoff) Put(docs []models.Document) error {
	data, err := msgpack.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encoding handoff blob: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := os.WriteFile(h.path, data, 0644); err != nil {
		return fmt.Errorf("writing handoff blob: %w", err)
	}
	return nil
}

// Take returns the stashed results and clears them. The second return
// is false when nothing is stashed.
func (h *Handoff) Take() ([]models.Document, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading handoff blob: %w", err)
	}

	// Cleared regardless of decode success: read-once semantics.
	os.Remove(h.path)

	var docs []models.Document
	if err := msgpack.Unmarshal(data, &docs); err != nil {
		return nil, false, fmt.Errorf("decoding handoff blob: %w", err)
	}
	return docs, true, nil
}
