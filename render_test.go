package main

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSprites struct {
	sprites  map[string]*Sprite
	textures map[string]image.Image
}

func (m *mapSprites) Sprite(name string) *Sprite        { return m.sprites[name] }
func (m *mapSprites) Texture(name string) image.Image { return m.textures[name] }

// stripSprite is a horizontal sheet of n 16x16 body-red frames
func stripSprite(n int) *Sprite {
	tex := image.NewNRGBA(image.Rect(0, 0, 16*n, 16))
	for x := 0; x < 16*n; x++ {
		for y := 0; y < 16; y++ {
			tex.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	sp := &Sprite{Texture: tex}
	for i := 0; i < n; i++ {
		sp.Frames = append(sp.Frames, FrameRect{X: 16 * i, Y: 0, W: 16, H: 16, PivotX: 0.5, PivotY: 1})
	}
	return sp
}

func fullSprites() *mapSprites {
	return &mapSprites{
		sprites: map[string]*Sprite{
			spriteSpawn: stripSprite(spawnFrameCount),
			spriteIdle:  stripSprite(1),
			spriteWalk:  stripSprite(len(walkFrames)),
			spriteGhost: stripSprite(1),
		},
		textures: map[string]image.Image{
			textureTaskIndicator: image.NewNRGBA(image.Rect(0, 0, 4, 4)),
		},
	}
}

func idlePlayer(id string, x, y float64) *Player {
	return &Player{ID: id, X: x, Y: y, Anim: Animator{State: AnimIdle}}
}

func TestDrawListOrderAndPlacement(t *testing.T) {
	a := idlePlayer("a", 100, 200)
	b := idlePlayer("b", 300, 50)
	c := idlePlayer("c", 50, 200)

	cmds := buildDrawList([]*Player{a, b, c}, nil, fullSprites(), NewRecolorer())
	require.Len(t, cmds, 3)
	assert.Equal(t, "b", cmds[0].PlayerID, "higher on screen draws first")
	assert.Equal(t, "a", cmds[1].PlayerID, "ties break by id")
	assert.Equal(t, "c", cmds[2].PlayerID)

	// Pivot is bottom-center of a 16x16 frame
	assert.Equal(t, 92.0, cmds[1].X)
	assert.Equal(t, 184.0, cmds[1].Y)
	assert.Equal(t, image.Rect(0, 0, 16, 16), cmds[1].Image.Bounds())
}

func TestDrawListAppliesCamera(t *testing.T) {
	cam := NewCamera(100, 100, 1000, 1000)
	cam.Follow(500, 500)
	cmds := buildDrawList([]*Player{idlePlayer("a", 500, 500)}, cam, fullSprites(), NewRecolorer())
	require.Len(t, cmds, 1)
	assert.Equal(t, 42.0, cmds[0].X)
	assert.Equal(t, 34.0, cmds[0].Y)
}

func TestDrawListSpriteSelection(t *testing.T) {
	spawning := &Player{ID: "s"}
	spawning.Anim.Spawn()
	walking := &Player{ID: "w", Anim: Animator{State: AnimWalking, Frame: 2}, FacingLeft: true}
	ghost := &Player{ID: "g", Dead: true, Anim: Animator{State: AnimIdle}}

	assert.Equal(t, spriteSpawn, spriteName(spawning))
	assert.Equal(t, spriteWalk, spriteName(walking))
	assert.Equal(t, spriteGhost, spriteName(ghost))

	rc := NewRecolorer()
	cmds := buildDrawList([]*Player{walking}, nil, fullSprites(), rc)
	require.Len(t, cmds, 1)
	assert.True(t, cmds[0].FlipX)
	assert.Equal(t, 1, rc.Len())
}

func TestDrawListSkips(t *testing.T) {
	vented := idlePlayer("v", 0, 0)
	vented.InVent = true
	walker := &Player{ID: "w", Anim: Animator{State: AnimWalking}}
	tasked := idlePlayer("t", 10, 10)
	tasked.HasTask = true

	sprites := fullSprites()
	delete(sprites.sprites, spriteWalk)
	delete(sprites.textures, textureTaskIndicator)

	cmds := buildDrawList([]*Player{vented, walker, tasked}, nil, sprites, NewRecolorer())
	require.Len(t, cmds, 1, "vented players and missing art are skipped")
	assert.Equal(t, "t", cmds[0].PlayerID)
	assert.Nil(t, cmds[0].Indicator, "missing indicator texture draws nothing")

	assert.Nil(t, buildDrawList([]*Player{tasked}, nil, nil, NewRecolorer()))
}

func TestDrawListBadFrameRect(t *testing.T) {
	sprites := fullSprites()
	sprites.sprites[spriteIdle].Frames[0] = FrameRect{X: 100, Y: 100, W: 16, H: 16}
	cmds := buildDrawList([]*Player{idlePlayer("a", 0, 0)}, nil, sprites, NewRecolorer())
	assert.Empty(t, cmds)
}

func TestDrawListTaskIndicator(t *testing.T) {
	p := idlePlayer("a", 0, 0)
	p.HasTask = true
	cmds := buildDrawList([]*Player{p}, nil, fullSprites(), NewRecolorer())
	require.Len(t, cmds, 1)
	assert.NotNil(t, cmds[0].Indicator)
	body := mustParseHex(Palette[p.Color].Body)
	assert.Equal(t, color.NRGBA{R: body.R, G: body.G, B: body.B, A: 255}, cmds[0].Image.(*image.NRGBA).NRGBAAt(0, 0))
}
