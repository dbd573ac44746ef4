package main

import (
	"image"
	"image/color"
	"sync"
)

// Template sprites are painted with pure red for the body, pure blue for the
// shadow and green shades for the visor. These thresholds sort each opaque
// pixel into one of those groups.
const (
	baseHigh        = 150 // a dominant channel is at least this bright
	baseLow         = 100 // the other channels stay below this
	visorOutlineMax = 100 // green below this is the visor outline
	visorShadeMax   = 200 // green below this (and above the outline) is the shaded visor
)

type pixelClass int

const (
	pixelOther pixelClass = iota
	pixelBody
	pixelShadow
	pixelVisorOutline
	pixelVisorShade
	pixelVisorHighlight
)

var (
	visorOutline   = mustParseHex("#435a6e")
	visorShade     = mustParseHex("#95cadc")
	visorHighlight = mustParseHex("#c3e3eb")
)

func classifyPixel(r, g, b uint8) pixelClass {
	switch {
	case r >= baseHigh && g < baseLow && b < baseLow:
		return pixelBody
	case b >= baseHigh && r < baseLow && g < baseLow:
		return pixelShadow
	case g > r && g > b:
		switch {
		case g < visorOutlineMax:
			return pixelVisorOutline
		case g < visorShadeMax:
			return pixelVisorShade
		default:
			return pixelVisorHighlight
		}
	}
	return pixelOther
}

// RecolorImage paints a template frame with the given body and shadow colors.
// The result has its origin at (0, 0), keeps the source alpha and leaves
// fully transparent and unclassified pixels untouched.
func RecolorImage(src image.Image, body, shadow color.RGBA) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			if c.A != 0 {
				var to color.RGBA
				switch classifyPixel(c.R, c.G, c.B) {
				case pixelBody:
					to = body
				case pixelShadow:
					to = shadow
				case pixelVisorOutline:
					to = visorOutline
				case pixelVisorShade:
					to = visorShade
				case pixelVisorHighlight:
					to = visorHighlight
				default:
					to = color.RGBA{R: c.R, G: c.G, B: c.B}
				}
				c.R, c.G, c.B = to.R, to.G, to.B
			}
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return dst
}

type recolorKey struct {
	sprite string
	color  int
}

// Recolorer memoizes recolored frames per (sprite, color). The key space is
// bounded by palette size times the number of template frames, so entries
// are never evicted.
type Recolorer struct {
	mu      sync.Mutex
	cache   map[recolorKey]*image.NRGBA
	palette [PaletteSize][2]color.RGBA
}

// NewRecolorer parses the palette once
func NewRecolorer() *Recolorer {
	r := &Recolorer{cache: make(map[recolorKey]*image.NRGBA)}
	for i, p := range Palette {
		r.palette[i] = [2]color.RGBA{mustParseHex(p.Body), mustParseHex(p.Shadow)}
	}
	return r
}

// Recolor returns the frame identified by spriteID painted in palette color
// colorIndex. src is only read on a cache miss. Out-of-range colors use the
// first palette entry.
func (r *Recolorer) Recolor(spriteID string, src image.Image, colorIndex int) *image.NRGBA {
	if !ValidColor(colorIndex) {
		colorIndex = 0
	}
	key := recolorKey{sprite: spriteID, color: colorIndex}

	r.mu.Lock()
	defer r.mu.Unlock()
	if img, ok := r.cache[key]; ok {
		return img
	}
	pair := r.palette[colorIndex]
	img := RecolorImage(src, pair[0], pair[1])
	r.cache[key] = img
	return img
}

// Len returns the number of cached frames
func (r *Recolorer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}
