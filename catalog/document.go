package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

// Document is the on-disk catalog format: a flat module list plus the
// enabled state of each module.
type Document struct {
	Modules []Module        `json:"modules" toml:"modules" yaml:"modules"`
	Enabled map[string]bool `json:"enabled,omitempty" toml:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// LoadDocument reads a catalog document from path. The format is chosen by
// file extension: .json, .toml, or .yaml/.yml.
func LoadDocument(path string) (*Catalog, Selection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read catalog %s", path)
	}

	var doc Document
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &doc)
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, nil, errors.Wrapf(errors.ErrInvalidCatalog, "unsupported catalog format %q", ext)
	}
	if err != nil {
		return nil, nil, errors.Wrapf(errors.ErrInvalidCatalog, "failed to decode %s: %v", path, err)
	}

	for i := range doc.Modules {
		doc.Modules[i].Version = NormalizeVersion(doc.Modules[i].Version)
	}

	selection := make(Selection, len(doc.Modules))
	for _, m := range doc.Modules {
		selection[m.ID] = doc.Enabled[m.ID]
	}

	return New(doc.Modules), selection, nil
}
