//go:build ebiten

package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"par-ca/internal/config"
	"par-ca/internal/core"
)

// Game adapts an automaton to the ebiten.Game interface. It owns the window
// side of the shared frame: the automaton fills it during
// UpdateRenderBuffers and Draw uploads it.
type Game struct {
	auto    core.Automaton
	frame   []byte
	img     *ebiten.Image
	overlay *Overlay

	scale int
	skip  int
	max   uint64

	paused   bool
	stepOnce bool
}

// Run opens a window and drives the automaton until quit, the iteration
// limit or an error. The frame must be the same buffer the automaton was
// constructed with.
func Run(cfg config.Config, auto core.Automaton, frame []byte) error {
	size := auto.Size()
	g := &Game{
		auto:    auto,
		frame:   frame,
		img:     ebiten.NewImage(size.W, size.H),
		overlay: NewOverlay(),
		scale:   cfg.Scale,
		skip:    cfg.SkipFrames,
		max:     cfg.MaxIterations,
		paused:  !cfg.Start,
	}

	ebiten.SetWindowTitle(fmt.Sprintf("par-ca [%s] %dx%d", auto.Name(), size.W, size.H))
	ebiten.SetWindowSize(size.W*g.scale, size.H*g.scale)
	if cfg.RenderDelayMs > 0 {
		tps := int(time.Second / cfg.RenderDelay())
		ebiten.SetTPS(max(tps, 1))
	}

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// Update handles keys and advances the automaton. Space toggles pause, N
// steps a single generation, Tab toggles the status overlay, Q or Escape
// quits.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.stepOnce = true
	}
	g.overlay.Update(g.auto.Stats())

	if g.paused && !g.stepOnce {
		return nil
	}
	steps := 1 + g.skip
	if g.stepOnce {
		steps = 1
		g.stepOnce = false
	}
	for i := 0; i < steps; i++ {
		// the live-cell count is only worth refreshing on the drawn step
		collect := g.overlay.Visible() && i == steps-1
		if err := g.auto.Evolve(collect); err != nil {
			return err
		}
	}
	if g.max > 0 && g.auto.Stats().Iterations >= g.max {
		if err := g.auto.UpdateRenderBuffers(); err != nil {
			return err
		}
		return ebiten.Termination
	}
	return g.auto.UpdateRenderBuffers()
}

// Draw uploads the shared frame and scales it onto the screen.
func (g *Game) Draw(screen *ebiten.Image) {
	g.img.WritePixels(g.frame)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.scale), float64(g.scale))
	screen.DrawImage(g.img, op)
	g.overlay.Draw(screen, g.auto.Stats())
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.auto.Size()
	return s.W * g.scale, s.H * g.scale
}
