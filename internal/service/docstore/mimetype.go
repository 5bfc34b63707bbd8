package docstore

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed mime/types.yaml
var mimeFiles embed.FS

// MimeRegistry maps filename extensions to MIME types. The table is a
// static lookup loaded once from an embedded YAML file; a document's MIME
// type is derived from its filename at creation and never recomputed.
type MimeRegistry struct {
	byExt    map[string]string
	fallback string
}

type mimeConfig struct {
	Default    string            `yaml:"default"`
	Extensions map[string]string `yaml:"extensions"`
}

// NewMimeRegistry loads the embedded extension table.
func NewMimeRegistry() (*MimeRegistry, error) {
	data, err := mimeFiles.ReadFile("mime/types.yaml")
	if err != nil {
		return nil, fmt.Errorf("read mime table: %w", err)
	}

	var cfg mimeConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal mime table: %w", err)
	}
	if cfg.Default == "" || len(cfg.Extensions) == 0 {
		return nil, fmt.Errorf("mime table is incomplete")
	}

	return &MimeRegistry{
		byExt:    cfg.Extensions,
		fallback: cfg.Default,
	}, nil
}

// Lookup returns the MIME type for a filename. Extensions are matched
// case-insensitively; unknown or missing extensions map to the default.
func (r *MimeRegistry) Lookup(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return r.fallback
	}
	if mime, ok := r.byExt[ext]; ok {
		return mime
	}
	return r.fallback
}
