package main

import (
	"image"
	"sort"
	"strconv"
)

// Sprite sheet names looked up for each animation state
const (
	spriteSpawn = "player-spawn"
	spriteIdle  = "player-idle"
	spriteWalk  = "player-walk"
	spriteGhost = "player-ghost"

	textureTaskIndicator = "task-indicator"
)

// FrameRect locates one frame inside a sprite sheet texture
type FrameRect struct {
	X, Y, W, H     int
	PivotX, PivotY float64 // 0..1 within the frame
}

// Sprite is a texture plus its ordered frames
type Sprite struct {
	Texture image.Image
	Frames  []FrameRect
}

// SpriteProvider resolves art by name. Missing art returns nil.
type SpriteProvider interface {
	Texture(name string) image.Image
	Sprite(name string) *Sprite
}

// Renderer draws one frame worth of commands
type Renderer interface {
	Draw(cmds []DrawCommand)
}

// DrawCommand is one recolored player frame positioned in screen space
type DrawCommand struct {
	PlayerID string
	X, Y     float64 // top-left in screen coordinates
	Image    image.Image
	FlipX    bool
	Name     string
	// Indicator is drawn above the player when it has a task; nil when
	// the player has none or the texture is missing.
	Indicator image.Image
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

func spriteName(p *Player) string {
	switch {
	case p.Anim.Spawning():
		return spriteSpawn
	case p.Dead:
		return spriteGhost
	case p.Anim.State == AnimWalking:
		return spriteWalk
	}
	return spriteIdle
}

// buildDrawList produces draw commands back to front. Players whose art is
// missing are skipped.
func buildDrawList(players []*Player, cam *Camera, sprites SpriteProvider, rc *Recolorer) []DrawCommand {
	if sprites == nil {
		return nil
	}
	ordered := append([]*Player(nil), players...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Y != ordered[j].Y {
			return ordered[i].Y < ordered[j].Y
		}
		return ordered[i].ID < ordered[j].ID
	})

	indicator := sprites.Texture(textureTaskIndicator)
	cmds := make([]DrawCommand, 0, len(ordered))
	for _, p := range ordered {
		if p.InVent {
			continue
		}
		name := spriteName(p)
		sp := sprites.Sprite(name)
		if sp == nil || sp.Texture == nil || len(sp.Frames) == 0 {
			continue
		}
		tex, ok := sp.Texture.(subImager)
		if !ok {
			continue
		}
		idx := p.Anim.Frame % len(sp.Frames)
		fr := sp.Frames[idx]
		rect := image.Rect(fr.X, fr.Y, fr.X+fr.W, fr.Y+fr.H)
		if rect.Empty() || !rect.In(sp.Texture.Bounds()) {
			continue
		}
		img := rc.Recolor(name+"#"+strconv.Itoa(idx), tex.SubImage(rect), p.Color)

		sx, sy := p.X, p.Y
		if cam != nil {
			sx, sy = cam.ToScreen(p.X, p.Y)
		}
		cmd := DrawCommand{
			PlayerID: p.ID,
			X:        sx - fr.PivotX*float64(fr.W),
			Y:        sy - fr.PivotY*float64(fr.H),
			Image:    img,
			FlipX:    p.FacingLeft,
			Name:     p.Name,
		}
		if p.HasTask {
			cmd.Indicator = indicator
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}
