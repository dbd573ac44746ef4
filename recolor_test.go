package main

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// templateFrame is a 5x1 strip: body, half-transparent shadow, visor
// highlight, fully transparent, and an unrelated grey.
func templateFrame() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 128})
	img.SetNRGBA(2, 0, color.NRGBA{G: 230, A: 255})
	img.SetNRGBA(3, 0, color.NRGBA{R: 255, A: 0})
	img.SetNRGBA(4, 0, color.NRGBA{R: 120, G: 120, B: 120, A: 255})
	return img
}

func TestClassifyPixel(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    pixelClass
	}{
		{255, 0, 0, pixelBody},
		{150, 99, 99, pixelBody},
		{149, 0, 0, pixelOther},
		{0, 0, 255, pixelShadow},
		{0, 80, 0, pixelVisorOutline},
		{0, 150, 0, pixelVisorShade},
		{0, 230, 0, pixelVisorHighlight},
		{200, 200, 200, pixelOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyPixel(tt.r, tt.g, tt.b), "rgb(%d,%d,%d)", tt.r, tt.g, tt.b)
	}
}

func TestRecolorImage(t *testing.T) {
	body := mustParseHex(Palette[1].Body)
	shadow := mustParseHex(Palette[1].Shadow)
	out := RecolorImage(templateFrame(), body, shadow)

	assert.Equal(t, color.NRGBA{R: body.R, G: body.G, B: body.B, A: 255}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: shadow.R, G: shadow.G, B: shadow.B, A: 128}, out.NRGBAAt(1, 0), "alpha is preserved")
	assert.Equal(t, color.NRGBA{R: visorHighlight.R, G: visorHighlight.G, B: visorHighlight.B, A: 255}, out.NRGBAAt(2, 0))
	assert.Equal(t, uint8(0), out.NRGBAAt(3, 0).A, "transparent pixels stay transparent")
	assert.Equal(t, color.NRGBA{R: 120, G: 120, B: 120, A: 255}, out.NRGBAAt(4, 0))
}

func TestRecolorImageIdentityPalette(t *testing.T) {
	src := templateFrame()
	out := RecolorImage(src, color.RGBA{R: 255, A: 255}, color.RGBA{B: 255, A: 255})

	assert.Equal(t, src.NRGBAAt(0, 0), out.NRGBAAt(0, 0), "body")
	assert.Equal(t, src.NRGBAAt(1, 0), out.NRGBAAt(1, 0), "shadow")
	assert.Equal(t, src.NRGBAAt(4, 0), out.NRGBAAt(4, 0))
}

func TestRecolorImageDeterministic(t *testing.T) {
	body := mustParseHex(Palette[4].Body)
	shadow := mustParseHex(Palette[4].Shadow)
	a := RecolorImage(templateFrame(), body, shadow)
	b := RecolorImage(templateFrame(), body, shadow)
	assert.Equal(t, a.Pix, b.Pix)
}

func TestRecolorImageSubImageOrigin(t *testing.T) {
	sheet := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	sheet.SetNRGBA(3, 3, color.NRGBA{R: 255, A: 255})
	frame := sheet.SubImage(image.Rect(2, 2, 6, 6))

	out := RecolorImage(frame, mustParseHex("#010203"), mustParseHex("#040506"))
	assert.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, out.NRGBAAt(1, 1))
}

func TestRecolorerMemoizes(t *testing.T) {
	rc := NewRecolorer()
	src := templateFrame()

	first := rc.Recolor("player-idle#0", src, 2)
	require.NotNil(t, first)
	// A cached frame never reads its source again
	again := rc.Recolor("player-idle#0", nil, 2)
	assert.Same(t, first, again)
	assert.Equal(t, 1, rc.Len())

	other := rc.Recolor("player-idle#0", src, 3)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, rc.Len())
}

func TestRecolorerInvalidColor(t *testing.T) {
	rc := NewRecolorer()
	src := templateFrame()
	zero := rc.Recolor("s", src, 0)
	assert.Same(t, zero, rc.Recolor("s", src, -1))
	assert.Same(t, zero, rc.Recolor("s", src, PaletteSize))
}

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#c51111")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xc5, G: 0x11, B: 0x11, A: 0xff}, c)

	c, err = ParseHex("0a0b0c")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x0b), c.G)

	_, err = ParseHex("#fff")
	assert.Error(t, err)
	_, err = ParseHex("#gggggg")
	assert.Error(t, err)
}

func TestPaletteParses(t *testing.T) {
	for i, p := range Palette {
		_, err := ParseHex(p.Body)
		assert.NoError(t, err, "palette %d body", i)
		_, err = ParseHex(p.Shadow)
		assert.NoError(t, err, "palette %d shadow", i)
	}
}
