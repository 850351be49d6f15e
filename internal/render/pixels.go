package render

import "image/color"

var (
	// Alive is the default on-cell color.
	Alive = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	// Dead is the default off-cell color.
	Dead = color.RGBA{A: 0xff}
)

// FillBinaryRGBA converts binary cell data (0/1) into RGBA pixels in buf.
// len(buf) must be 4*len(cells).
func FillBinaryRGBA(buf []byte, cells []uint8, on, off color.RGBA) {
	for i, c := range cells {
		col := off
		if c != 0 {
			col = on
		}
		base := i * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// PutPixel writes one cell's color at pixel index idx. Accelerator pixel
// kernels use it to fill the shared frame in place.
func PutPixel(buf []byte, idx int, on bool, onColor, offColor color.RGBA) {
	col := offColor
	if on {
		col = onColor
	}
	base := idx * 4
	buf[base+0] = col.R
	buf[base+1] = col.G
	buf[base+2] = col.B
	buf[base+3] = col.A
}
