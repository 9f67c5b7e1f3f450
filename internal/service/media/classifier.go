package media

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"medvault/internal/domain/models"
)

//go:embed config/*.yaml
var configFiles embed.FS

// extensionTable is the on-disk shape of config/extensions.yaml
type extensionTable struct {
	Kinds     map[models.MediaKind][]string `yaml:"kinds"`
	Sniffable []string                      `yaml:"sniffable"`
}

// Classifier maps file names to media kinds by extension
type Classifier struct {
	kinds     map[string]models.MediaKind
	sniffable map[string]bool
}

// NewClassifier loads the embedded extension table
func NewClassifier() (*Classifier, error) {
	data, err := configFiles.ReadFile("config/extensions.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read extension table: %w", err)
	}
	return parseClassifier(data)
}

func parseClassifier(data []byte) (*Classifier, error) {
	var table extensionTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extension table: %w", err)
	}

	c := &Classifier{
		kinds:     make(map[string]models.MediaKind),
		sniffable: make(map[string]bool),
	}
	for kind, exts := range table.Kinds {
		switch kind {
		case models.MediaVideo, models.MediaAudio, models.MediaImage, models.MediaDocument:
		default:
			return nil, fmt.Errorf("unknown media kind %q in extension table", kind)
		}
		for _, ext := range exts {
			ext = normalizeExt(ext)
			if prev, ok := c.kinds[ext]; ok && prev != kind {
				return nil, fmt.Errorf("extension %s listed as both %s and %s", ext, prev, kind)
			}
			c.kinds[ext] = kind
		}
	}
	for _, ext := range table.Sniffable {
		c.sniffable[normalizeExt(ext)] = true
	}
	return c, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Classify returns the media kind of name; unknown extensions are "other"
func (c *Classifier) Classify(name string) models.MediaKind {
	if kind, ok := c.kinds[normalizeExt(filepath.Ext(name))]; ok {
		return kind
	}
	return models.MediaOther
}

// Sniffable reports whether name is a container the built-in probe can read
func (c *Classifier) Sniffable(name string) bool {
	return c.sniffable[normalizeExt(filepath.Ext(name))]
}
