//go:build ebiten

package app

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"par-ca/internal/core"
)

// Overlay draws a status strip over the grid: generation count, generation
// rate and the live-cell count. Tab toggles it.
type Overlay struct {
	visible bool

	lastIt uint64
	lastAt time.Time
	rate   float64

	pixel *ebiten.Image
}

// NewOverlay constructs a hidden overlay.
func NewOverlay() *Overlay {
	o := &Overlay{}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Visible reports whether the overlay is shown. The game only collects
// live-cell counts while it is.
func (o *Overlay) Visible() bool { return o.visible }

// Update handles the toggle key and refreshes the generation rate.
func (o *Overlay) Update(st core.Snapshot) {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		o.visible = !o.visible
		o.lastIt = st.Iterations
		o.lastAt = time.Now()
		o.rate = 0
	}
	if !o.visible {
		return
	}
	now := time.Now()
	elapsed := now.Sub(o.lastAt)
	if elapsed >= 500*time.Millisecond {
		o.rate = float64(st.Iterations-o.lastIt) / elapsed.Seconds()
		o.lastIt = st.Iterations
		o.lastAt = now
	}
}

// Draw paints the status strip in the top-left corner.
func (o *Overlay) Draw(screen *ebiten.Image, st core.Snapshot) {
	if !o.visible {
		return
	}
	alive := "alive --"
	if st.AliveValid {
		alive = fmt.Sprintf("alive %d", st.Alive)
	}
	line := fmt.Sprintf("gen %d | %.0f gen/s | %s | evolve %s",
		st.Iterations, o.rate, alive, st.LastEvolve.Round(time.Microsecond))

	face := basicfont.Face7x13
	bounds := text.BoundString(face, line)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(bounds.Dx()+16), 22)
	op.ColorM.Scale(0, 0, 0, 0.65)
	screen.DrawImage(o.pixel, op)

	text.Draw(screen, line, face, 8, 15, color.RGBA{R: 220, G: 220, B: 230, A: 255})
}
