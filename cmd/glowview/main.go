// Command glowview is an interactive light playground. Drag to paint
// walls, move the mouse to carry the light, and watch the attenuation
// respond in real time.
//
// Controls:
//
//	left drag    paint/erase walls
//	right click  clear all walls
//	C            clear all walls
//	1 / 2 / 3    standard / brightness-limit / perceptual normalization
//	R G B Y W    light color
//	T            toggle subpixel interpolation
//	+ / -        raise / lower base decay
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/glow"
	"github.com/gogpu/glow/viewer"
)

// Game implements ebiten.Game around a viewer.State.
type Game struct {
	state *viewer.State
	cfg   viewer.Config

	// Offscreen cell-resolution frame, scaled up in Draw.
	grid *ebiten.Image
	pix  []byte

	lightX, lightY float64
}

func NewGame(cfg viewer.Config) *Game {
	return &Game{
		state:  viewer.New(cfg, nil),
		cfg:    cfg,
		grid:   ebiten.NewImage(cfg.Width, cfg.Height),
		pix:    make([]byte, cfg.Width*cfg.Height*4),
		lightX: float64(cfg.Width) / 2,
		lightY: float64(cfg.Height) / 2,
	}
}

func (g *Game) Update() error {
	mx, my := ebiten.CursorPosition()
	cellX := float64(mx) / float64(g.cfg.Scale)
	cellY := float64(my) / float64(g.cfg.Scale)
	g.lightX, g.lightY = cellX, cellY

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.state.Press(int(cellX), int(cellY))
	} else {
		g.state.Release()
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.state.ClearWalls()
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.state.ClearWalls()
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		g.state.SetMode(glow.NormalizeStandard)
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		g.state.SetMode(glow.NormalizeBrightnessLimit)
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		g.state.SetMode(glow.NormalizePerceptual)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.state.SetColor(glow.RGBA{R: 1, G: 0.3, B: 0.3, A: 1})
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		g.state.SetColor(glow.RGBA{R: 0.3, G: 1, B: 0.4, A: 1})
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		g.state.SetColor(glow.RGBA{R: 0.35, G: 0.55, B: 1, A: 1})
	case inpututil.IsKeyJustPressed(ebiten.KeyY):
		g.state.SetColor(glow.RGBA{R: 1, G: 0.9, B: 0.5, A: 1})
	case inpututil.IsKeyJustPressed(ebiten.KeyW):
		g.state.SetColor(glow.White)
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		g.state.ToggleSubpixel()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		g.state.AdjustDecay(viewer.DecayStep)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		g.state.AdjustDecay(-viewer.DecayStep)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	att := g.state.Frame(g.lightX, g.lightY)
	g.state.RenderRGBA(att, g.pix)
	g.grid.WritePixels(g.pix)

	var op ebiten.DrawImageOptions
	op.GeoM.Scale(float64(g.cfg.Scale), float64(g.cfg.Scale))
	screen.DrawImage(g.grid, &op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Width * g.cfg.Scale, g.cfg.Height * g.cfg.Scale
}

func main() {
	cfg := viewer.DefaultConfig()
	flag.IntVar(&cfg.Width, "width", cfg.Width, "grid width in cells")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "grid height in cells")
	flag.IntVar(&cfg.Scale, "scale", cfg.Scale, "screen pixels per cell")
	flag.Parse()

	ebiten.SetWindowSize(cfg.Width*cfg.Scale, cfg.Height*cfg.Scale)
	ebiten.SetWindowTitle(fmt.Sprintf("glow %dx%d", cfg.Width, cfg.Height))

	if err := ebiten.RunGame(NewGame(cfg)); err != nil {
		log.Fatalf("Failed to run: %v", err)
	}
}
