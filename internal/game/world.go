package game

import (
	"image/color"

	"github.com/codeandkey/shadows/internal/render"
)

// tileSize is the checkerboard pitch of the demo floor.
const tileSize = 64

var (
	floorLight = color.RGBA{R: 0xb4, G: 0xb4, B: 0xaa, A: 0xff}
	floorDark  = color.RGBA{R: 0x96, G: 0x96, B: 0x8c, A: 0xff}
	blockColor = color.RGBA{R: 0x46, G: 0x50, B: 0x64, A: 0xff}
)

// drawWorld fully rewrites the world-color buffer: a checkered floor with
// the occluder blocks on top. The lighting pipeline never sees partial
// frames; this runs to completion before Frame reads the buffer.
func (g *Game) drawWorld(world render.Image) {
	w, h := world.Size()

	world.Fill(floorLight)
	for ty := 0; ty*tileSize < h; ty++ {
		for tx := 0; tx*tileSize < w; tx++ {
			if (tx+ty)%2 == 0 {
				continue
			}
			world.FillRect(float64(tx*tileSize), float64(ty*tileSize), tileSize, tileSize, floorDark, render.BlendNormal)
		}
	}

	for _, occ := range g.Scene.Occluders() {
		world.FillRect(occ.Pos.X(), occ.Pos.Y(), occ.Width, occ.Height, blockColor, render.BlendNormal)
	}
}
