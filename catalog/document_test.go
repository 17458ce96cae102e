package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

func writeCatalogFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDocumentJSON(t *testing.T) {
	path := writeCatalogFile(t, "catalog.json", `{
		"modules": [
			{"id": "Native", "name": "Native", "version": "1.2.9.0", "native": true},
			{"id": "Bannerlord.Harmony", "name": "Harmony", "version": "v2.3.0",
			 "required": [{"id": "Native", "version": "v1.2.9"}],
			 "load_before": ["SandBox"]}
		],
		"enabled": {"Native": true, "Bannerlord.Harmony": true}
	}`)

	cat, selection, err := LoadDocument(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cat.Len())
	assert.True(t, selection.IsSelected("Bannerlord.Harmony"))

	native, ok := cat.Get("Native")
	require.True(t, ok)
	assert.True(t, native.IsNative)
	assert.Equal(t, "v1.2.9", native.Version, "four-component version is normalized")

	harmony, ok := cat.Get("Bannerlord.Harmony")
	require.True(t, ok)
	require.Len(t, harmony.Required, 1)
	assert.Equal(t, "Native", harmony.Required[0].ID)
	assert.Equal(t, []string{"SandBox"}, harmony.LoadBefore)
}

func TestLoadDocumentTOML(t *testing.T) {
	path := writeCatalogFile(t, "catalog.toml", `
[[modules]]
id = "Native"
name = "Native"
version = "v1.2.9"
native = true

[[modules]]
id = "SandBox"
name = "SandBox"
version = "v1.2.9"
native = true
required = [{id = "Native"}]

[enabled]
Native = true
SandBox = false
`)

	cat, selection, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
	assert.True(t, selection.IsSelected("Native"))
	assert.False(t, selection.IsSelected("SandBox"))
}

func TestLoadDocumentYAML(t *testing.T) {
	path := writeCatalogFile(t, "catalog.yaml", `
modules:
  - id: Native
    name: Native
    version: v1.2.9
    native: true
  - id: CustomSpawns
    name: Custom Spawns
    version: v1.8.2
    required:
      - id: Native
    incompatible:
      - CalradiaExpanded
enabled:
  Native: true
  CustomSpawns: true
`)

	cat, _, err := LoadDocument(path)
	require.NoError(t, err)

	spawns, ok := cat.Get("CustomSpawns")
	require.True(t, ok)
	assert.Equal(t, []string{"CalradiaExpanded"}, spawns.Incompatible)
}

func TestLoadDocumentErrors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		path := writeCatalogFile(t, "catalog.xml", `<modules/>`)
		_, _, err := LoadDocument(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidCatalog))
	})

	t.Run("malformed document", func(t *testing.T) {
		path := writeCatalogFile(t, "catalog.json", `{"modules": [`)
		_, _, err := LoadDocument(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidCatalog))
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := LoadDocument(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.False(t, errors.Is(err, errors.ErrInvalidCatalog))
	})
}
