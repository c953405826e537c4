// API input types for the REST endpoints.
package api

import (
	"fmt"
	"strconv"
	"strings"
)

type ColorCreateInput struct {
	Name string `json:"name"`
	// Exactly one of Color (packed ARGB integer) or Hex must be provided.
	Color *int    `json:"color,omitempty"`
	Hex   *string `json:"hex,omitempty"`
}

// packedColor resolves the input into a packed ARGB value.
func (in ColorCreateInput) packedColor() (int, error) {
	switch {
	case in.Color != nil && in.Hex != nil:
		return 0, fmt.Errorf("provide either color or hex, not both")
	case in.Color != nil:
		return *in.Color, nil
	case in.Hex != nil:
		return parseHexColor(*in.Hex)
	default:
		return 0, fmt.Errorf("color or hex is required")
	}
}

// parseHexColor parses "#RRGGBB" or "#AARRGGBB" (leading '#' optional) into a
// packed ARGB value. Alpha defaults to opaque.
func parseHexColor(s string) (int, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")

	var withAlpha string
	switch len(hex) {
	case 6:
		withAlpha = "ff" + hex
	case 8:
		withAlpha = hex
	default:
		return 0, fmt.Errorf("invalid hex color %q", s)
	}

	v, err := strconv.ParseUint(withAlpha, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex color %q", s)
	}
	return int(v), nil
}

type FavoriteUpdateInput struct {
	IsFavorite bool `json:"isFavorite"`
}

type NameQueryInput struct {
	Value string `json:"value"`
}

type HueRangeInput struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type ShowFavoritesInput struct {
	Value bool `json:"value"`
}

type ThemeInput struct {
	Value string `json:"value"`
}
