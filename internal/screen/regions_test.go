package screen

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalogAndBounds(t *testing.T) {
	path := writeCatalog(t, `
regions:
  order_entry:
    x: 100
    y: 200
    w: 400
    h: 50
  portfolio_table:
    x: 0
    y: 300
    w: 1920
    h: 500
    note: main positions grid
`)

	cat, err := LoadCatalog(path, 1920, 1080, image.Rect(0, 0, 1920, 1080))
	require.NoError(t, err)

	bounds, err := cat.Bounds("order_entry")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(100, 200, 500, 250), bounds)

	assert.True(t, cat.Has("portfolio_table"))
	assert.Equal(t, []string{"order_entry", "portfolio_table"}, cat.Names())
}

func TestBoundsScalesToLiveDisplay(t *testing.T) {
	path := writeCatalog(t, `
regions:
  order_entry:
    x: 100
    y: 100
    w: 200
    h: 100
`)

	// Authored at 1920x1080, running at 3840x2160: everything doubles.
	cat, err := LoadCatalog(path, 1920, 1080, image.Rect(0, 0, 3840, 2160))
	require.NoError(t, err)

	bounds, err := cat.Bounds("order_entry")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(200, 200, 600, 400), bounds)
}

func TestBoundsUnknownRegion(t *testing.T) {
	cat, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"), 1920, 1080, image.Rect(0, 0, 1920, 1080))
	require.NoError(t, err, "a missing catalog file is not an error")

	_, err = cat.Bounds("order_entry")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order_entry")
}

func TestLoadCatalogRejectsDegenerateRegion(t *testing.T) {
	path := writeCatalog(t, `
regions:
  broken:
    x: 10
    y: 10
    w: 0
    h: 50
`)
	_, err := LoadCatalog(path, 1920, 1080, image.Rect(0, 0, 1920, 1080))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
