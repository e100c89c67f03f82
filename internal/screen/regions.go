package screen

import (
	"fmt"
	"image"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Region is a named rectangle from the catalog, declared against the base
// resolution the layout was authored on.
type Region struct {
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Width  int    `yaml:"w"`
	Height int    `yaml:"h"`
	Note   string `yaml:"note,omitempty"`
}

type regionsFile struct {
	Regions map[string]Region `yaml:"regions"`
}

// Catalog maps region names to absolute screen rectangles, scaling from the
// authored base resolution to the live display. Loaded once at startup and
// read-only afterwards.
type Catalog struct {
	regions map[string]Region
	scaleX  float64
	scaleY  float64
}

// LoadCatalog reads the region file and prepares scaling to the live bounds.
// A missing file yields an empty catalog; actions referencing named regions
// will then fail with a clear error instead of guessing coordinates.
func LoadCatalog(path string, baseW, baseH int, live image.Rectangle) (*Catalog, error) {
	cat := &Catalog{
		regions: map[string]Region{},
		scaleX:  float64(live.Dx()) / float64(baseW),
		scaleY:  float64(live.Dy()) / float64(baseH),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cat, nil
		}
		return nil, fmt.Errorf("reading region catalog %s: %w", path, err)
	}

	var rf regionsFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing region catalog %s: %w", path, err)
	}
	for name, r := range rf.Regions {
		if r.Width <= 0 || r.Height <= 0 {
			return nil, fmt.Errorf("region %q has non-positive size", name)
		}
		cat.regions[name] = r
	}
	return cat, nil
}

// Bounds returns the absolute rectangle for a named region on the live display.
func (c *Catalog) Bounds(name string) (image.Rectangle, error) {
	r, ok := c.regions[name]
	if !ok {
		return image.Rectangle{}, fmt.Errorf("unknown screen region %q", name)
	}
	x0 := int(float64(r.X) * c.scaleX)
	y0 := int(float64(r.Y) * c.scaleY)
	x1 := int(float64(r.X+r.Width) * c.scaleX)
	y1 := int(float64(r.Y+r.Height) * c.scaleY)
	return image.Rect(x0, y0, x1, y1), nil
}

// Has reports whether the named region exists.
func (c *Catalog) Has(name string) bool {
	_, ok := c.regions[name]
	return ok
}

// Names lists the catalog's region names, sorted for stable output.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.regions))
	for name := range c.regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
