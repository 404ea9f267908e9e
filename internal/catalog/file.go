package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/EcoPack/internal/scoring"
)

type fileCatalog struct {
	Materials []scoring.Material `yaml:"materials"`
}

// FileSource reads the catalog from a YAML or CSV file on every List.
type FileSource struct {
	path   string
	logger *slog.Logger
}

func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, logger: logger}
}

func (s *FileSource) List(ctx context.Context, _ string) ([]scoring.Material, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	materials, err := LoadFile(s.path)
	if err != nil {
		return nil, err
	}
	return dedupe(materials, s.logger), nil
}

// LoadFile parses a catalog file, choosing the format by extension.
func LoadFile(path string) ([]scoring.Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".yaml", ".yml":
		var fc fileCatalog
		if err := yaml.NewDecoder(f).Decode(&fc); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		return fc.Materials, nil
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}
