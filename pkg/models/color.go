package models

import (
	"context"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorRecord is a single named color in the catalog.
//
// Hue is derived from the packed color value at construction time and stored
// redundantly so the catalog can filter by hue range without recomputing it
// per query. Aside from the favorite flag and id assignment on insert, a
// record is immutable; if the color value is ever changed, the hue must be
// re-derived and written back via UpdateHue.
type ColorRecord struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Color      int     `json:"color"`
	IsFavorite bool    `json:"isFavorite"`
	Hue        float64 `json:"hue"`
}

// NewColorRecord builds an unsaved record for the given packed 32-bit ARGB
// value, deriving the hue. The id is assigned by the catalog on insert.
func NewColorRecord(name string, color int) ColorRecord {
	return ColorRecord{
		Name:  name,
		Color: color,
		Hue:   HueOf(color),
	}
}

// HueOf returns the HSV hue in degrees [0, 360) for a packed ARGB value.
// Achromatic colors (equal channels) yield 0.
func HueOf(color int) float64 {
	c := colorful.Color{
		R: float64((color>>16)&0xff) / 255.0,
		G: float64((color>>8)&0xff) / 255.0,
		B: float64(color&0xff) / 255.0,
	}
	h, _, _ := c.Hsv()
	if h >= 360 {
		h -= 360
	}
	return h
}

// ColorReader provides read access to the color catalog.
type ColorReader interface {
	Find(ctx context.Context, id int) (*ColorRecord, error)
	All(ctx context.Context) ([]ColorRecord, error)
	FindByHueRange(ctx context.Context, minHue, maxHue float64) ([]ColorRecord, error)
}

// ColorWriter provides write access to the color catalog.
type ColorWriter interface {
	Create(ctx context.Context, newColor *ColorRecord) error
	CreateMany(ctx context.Context, newColors []ColorRecord) ([]ColorRecord, error)
	Destroy(ctx context.Context, id int) error
	UpdateFavorite(ctx context.Context, id int, favorite bool) error
	UpdateHue(ctx context.Context, id int, hue float64) error
}

// ColorReaderWriter provides all read/write access to the color catalog.
type ColorReaderWriter interface {
	ColorReader
	ColorWriter
}
