package preview

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode says how a declared document type is previewed.
type Mode string

const (
	// ModeNative means the paginated renderer decodes and rasterizes
	// the document itself.
	ModeNative Mode = "native"
	// ModeNone means the type is not previewable at all; neither
	// renderer is attempted.
	ModeNone Mode = "none"
)

type formatRule struct {
	Match string `yaml:"match"`
	Mode  Mode   `yaml:"mode"`
}

type formatRulesFile struct {
	Formats []formatRule `yaml:"formats"`
}

// Registry routes declared document types to a preview mode. Matching is
// case-insensitive substring matching against the mime hint, so both
// "pdf" and "application/pdf" route the same way.
type Registry struct {
	rules []formatRule
}

// DefaultRegistry previews PDFs natively and nothing else.
func DefaultRegistry() *Registry {
	return &Registry{
		rules: []formatRule{
			{Match: "pdf", Mode: ModeNative},
		},
	}
}

// LoadRegistry reads format rules from a YAML file. A missing file is
// not an error; the defaults apply.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRegistry(), nil
		}
		return nil, fmt.Errorf("reading format rules: %w", err)
	}

	var f formatRulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing format rules: %w", err)
	}
	if len(f.Formats) == 0 {
		return DefaultRegistry(), nil
	}
	return &Registry{rules: f.Formats}, nil
}

// ModeFor returns the preview mode for a declared type.
func (r *Registry) ModeFor(mimeHint string) Mode {
	hint := strings.ToLower(strings.TrimSpace(mimeHint))
	if hint == "" {
		return ModeNone
	}
	for _, rule := range r.rules {
		if strings.Contains(hint, strings.ToLower(rule.Match)) {
			return rule.Mode
		}
	}
	return ModeNone
}
