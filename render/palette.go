package render

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/teranos/recipeviz/errors"
)

// Palette is the colour set used by every surface. Values are CSS hex
// colours (#rgb or #rrggbb). Palettes are never mutated after loading.
type Palette struct {
	Name              string `toml:"name" json:"name"`
	Background        string `toml:"background" json:"background"`
	Edge              string `toml:"edge" json:"edge"`
	NodeBorder        string `toml:"node_border" json:"node_border"`
	PlaceholderFill   string `toml:"placeholder_fill" json:"placeholder_fill"`
	PlaceholderText   string `toml:"placeholder_text" json:"placeholder_text"`
	Text              string `toml:"text" json:"text"`
	ErrorText         string `toml:"error_text" json:"error_text"`
	MinimapBackground string `toml:"minimap_background" json:"minimap_background"`
	MinimapBounds     string `toml:"minimap_bounds" json:"minimap_bounds"`
	MinimapNode       string `toml:"minimap_node" json:"minimap_node"`
	MinimapIndicator  string `toml:"minimap_indicator" json:"minimap_indicator"`
}

// LightPalette mirrors the original canvas: black edges on white, red errors
var LightPalette = Palette{
	Name:              "light",
	Background:        "#ffffff",
	Edge:              "#000000",
	NodeBorder:        "#c8c8c8",
	PlaceholderFill:   "#eeeeee",
	PlaceholderText:   "#555555",
	Text:              "#000000",
	ErrorText:         "#ff0000",
	MinimapBackground: "#f4f4f4",
	MinimapBounds:     "#bbbbbb",
	MinimapNode:       "#444444",
	MinimapIndicator:  "#ff0000",
}

// DarkPalette uses gruvbox tones, matching the console log theme
var DarkPalette = Palette{
	Name:              "dark",
	Background:        "#282828",
	Edge:              "#ebdbb2",
	NodeBorder:        "#504945",
	PlaceholderFill:   "#3c3836",
	PlaceholderText:   "#a89984",
	Text:              "#ebdbb2",
	ErrorText:         "#fb4934",
	MinimapBackground: "#1d2021",
	MinimapBounds:     "#665c54",
	MinimapNode:       "#d5c4a1",
	MinimapIndicator:  "#fabd2f",
}

// PaletteByName returns a built-in palette
func PaletteByName(name string) (Palette, bool) {
	switch strings.ToLower(name) {
	case "", "light":
		return LightPalette, true
	case "dark":
		return DarkPalette, true
	}
	return Palette{}, false
}

// ResolvePalette returns the palette file at path if set, else the built-in
// palette called name
func ResolvePalette(name, path string) (Palette, error) {
	if path != "" {
		return LoadPalette(path)
	}
	p, ok := PaletteByName(name)
	if !ok {
		return Palette{}, errors.WithHint(
			errors.Newf("unknown palette %q", name),
			"built-in palettes: light, dark")
	}
	return p, nil
}

// paletteFile is the on-disk form: an optional base plus overrides
type paletteFile struct {
	Base string `toml:"base" json:"base"`
	Palette
}

// LoadPalette reads a palette from a TOML file. Keys not present fall back
// to the base palette ("light" unless base = "dark").
func LoadPalette(path string) (Palette, error) {
	var pf paletteFile
	if _, err := toml.DecodeFile(path, &pf); err != nil {
		return Palette{}, errors.Wrapf(err, "failed to read palette %s", path)
	}

	base, ok := PaletteByName(pf.Base)
	if !ok {
		return Palette{}, errors.Newf("unknown base palette %q in %s", pf.Base, path)
	}

	file := paletteFile{Palette: base}
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return Palette{}, errors.Wrapf(err, "failed to read palette %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Palette{}, errors.WithHint(
			errors.Newf("unknown palette key %q in %s", undecoded[0].String(), path),
			"valid keys: background, edge, node_border, placeholder_fill, placeholder_text, text, error_text, minimap_background, minimap_bounds, minimap_node, minimap_indicator")
	}

	p := file.Palette
	if p.Name == "" || p.Name == base.Name {
		p.Name = path
	}
	if err := p.Validate(); err != nil {
		return Palette{}, errors.Wrapf(err, "palette %s", path)
	}
	return p, nil
}

// Validate checks every colour parses
func (p Palette) Validate() error {
	for key, value := range p.entries() {
		if _, err := ParseHexColor(value); err != nil {
			return errors.Wrapf(err, "%s", key)
		}
	}
	return nil
}

func (p Palette) entries() map[string]string {
	return map[string]string{
		"background":         p.Background,
		"edge":               p.Edge,
		"node_border":        p.NodeBorder,
		"placeholder_fill":   p.PlaceholderFill,
		"placeholder_text":   p.PlaceholderText,
		"text":               p.Text,
		"error_text":         p.ErrorText,
		"minimap_background": p.MinimapBackground,
		"minimap_bounds":     p.MinimapBounds,
		"minimap_node":       p.MinimapNode,
		"minimap_indicator":  p.MinimapIndicator,
	}
}

// ParseHexColor parses #rgb or #rrggbb
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, errors.Newf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, errors.Newf("invalid colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// rgba converts a validated palette entry, falling back to black
func rgba(s string) color.RGBA {
	c, err := ParseHexColor(s)
	if err != nil {
		return color.RGBA{A: 0xff}
	}
	return c
}
