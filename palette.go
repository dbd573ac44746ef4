package main

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ColorPair is a player color: the main body tone and the darker shadow tone.
type ColorPair struct {
	Name   string `json:"name"`
	Body   string `json:"body"`   // hex, e.g. "#c51111"
	Shadow string `json:"shadow"` // hex
}

// Palette is the fixed set of player colors. Indexes are the color ids sent on the wire.
var Palette = [...]ColorPair{
	{Name: "red", Body: "#c51111", Shadow: "#7a0838"},
	{Name: "blue", Body: "#132ed1", Shadow: "#09158e"},
	{Name: "green", Body: "#117f2d", Shadow: "#0a4d2e"},
	{Name: "pink", Body: "#ed54ba", Shadow: "#ab2bad"},
	{Name: "orange", Body: "#ef7d0d", Shadow: "#b33e15"},
	{Name: "yellow", Body: "#f5f557", Shadow: "#c38823"},
	{Name: "black", Body: "#3f474e", Shadow: "#1e1f26"},
	{Name: "white", Body: "#d6e0f0", Shadow: "#8394bf"},
	{Name: "purple", Body: "#6b2fbb", Shadow: "#3b177c"},
	{Name: "brown", Body: "#71491e", Shadow: "#5e2615"},
	{Name: "cyan", Body: "#38fedc", Shadow: "#24a8be"},
	{Name: "lime", Body: "#50ef39", Shadow: "#15a742"},
}

// PaletteSize is the number of distinct player colors
const PaletteSize = len(Palette)

// ValidColor reports whether c indexes the palette
func ValidColor(c int) bool {
	return c >= 0 && c < PaletteSize
}

// ParseHex converts "#rrggbb" (or "rrggbb") into an opaque RGBA color.
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("hex color %q: want 6 digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("hex color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// mustParseHex is used for the compiled-in palette only.
func mustParseHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}
