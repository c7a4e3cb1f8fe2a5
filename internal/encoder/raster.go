// Package encoder bakes rendered grids into a video file.
package encoder

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/vovakirdan/tui-cinema/internal/core"
)

// Rasterizer paints grids onto fixed-size RGBA images. Each cell covers a
// (W/cols) x (H/rows) pixel rectangle from the top-left; any remainder stays
// black. Shade blocks use exact pattern fills, other glyphs are stamped from
// a bitmap font scaled to the cell.
type Rasterizer struct {
	width  int
	height int
	face   *basicfont.Face
	masks  map[rune]*image.Alpha
}

// NewRasterizer creates a rasterizer for width x height pixel frames.
func NewRasterizer(width, height int) *Rasterizer {
	return &Rasterizer{
		width:  width,
		height: height,
		face:   basicfont.Face7x13,
		masks:  make(map[rune]*image.Alpha),
	}
}

// Width returns the frame width in pixels.
func (r *Rasterizer) Width() int { return r.width }

// Height returns the frame height in pixels.
func (r *Rasterizer) Height() int { return r.height }

// NewFrame allocates a black frame of the configured size.
func (r *Rasterizer) NewFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	Blank(img)
	return img
}

// Blank paints img opaque black.
func Blank(img *image.RGBA) {
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)
}

// CellSize returns the pixel size of one cell for a cols x rows grid.
func (r *Rasterizer) CellSize(cols, rows int) (int, int) {
	if cols <= 0 || rows <= 0 {
		return 0, 0
	}
	return r.width / cols, r.height / rows
}

// Rasterize paints g onto dst, which must be Width() x Height().
func (r *Rasterizer) Rasterize(dst *image.RGBA, g core.Grid) {
	Blank(dst)
	cw, ch := r.CellSize(g.Width(), g.Height())
	if cw == 0 || ch == 0 {
		return
	}
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			cell := g.At(x, y)
			r.drawCell(dst, cell, core.NewRect(x*cw, y*ch, cw, ch))
		}
	}
}

func (r *Rasterizer) drawCell(dst *image.RGBA, c core.Cell, rect core.Rect) {
	switch c.Glyph {
	case core.BlankGlyph:
		// nothing to draw on black
	case '█':
		fillRect(dst, rect, c.Color)
	case '▓':
		fillRect(dst, rect, c.Color)
		fillRect(dst, rect.Inset(1, 4), core.Black)
	case '▒':
		fillRect(dst, rect, c.Color)
		for i := 0; i < 2; i++ {
			for j := 0; j < 2; j++ {
				if (i+j)%2 == 0 {
					fillRect(dst, quadrant(rect, i, j), core.Black)
				}
			}
		}
	case '░':
		fillRect(dst, quadrant(rect, 1, 0), c.Color)
	default:
		mask := r.mask(c.Glyph)
		if mask == nil {
			fillRect(dst, rect, c.Color)
			return
		}
		stamp(dst, rect, mask, c.Color)
	}
}

// quadrant returns the (i, j) half-by-half sub-rectangle of rect.
func quadrant(rect core.Rect, i, j int) core.Rect {
	x0 := rect.X + i*rect.W/2
	y0 := rect.Y + j*rect.H/2
	x1 := rect.X + (i+1)*rect.W/2
	y1 := rect.Y + (j+1)*rect.H/2
	return core.Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func fillRect(dst *image.RGBA, rect core.Rect, c core.RGB) {
	b := image.Rect(rect.X, rect.Y, rect.Right(), rect.Bottom()).Intersect(dst.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := dst.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, 0xff
			i += 4
		}
	}
}

// stamp scales mask nearest-neighbor onto rect and paints covered pixels.
func stamp(dst *image.RGBA, rect core.Rect, mask *image.Alpha, c core.RGB) {
	mb := mask.Bounds()
	for py := 0; py < rect.H; py++ {
		my := mb.Min.Y + py*mb.Dy()/rect.H
		for px := 0; px < rect.W; px++ {
			mx := mb.Min.X + px*mb.Dx()/rect.W
			if mask.AlphaAt(mx, my).A < 0x80 {
				continue
			}
			x, y := rect.X+px, rect.Y+py
			if !(image.Point{X: x, Y: y}).In(dst.Bounds()) {
				continue
			}
			i := dst.PixOffset(x, y)
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, 0xff
		}
	}
}

// mask returns the font bitmap for glyph, or nil when the font lacks it.
func (r *Rasterizer) mask(glyph rune) *image.Alpha {
	if m, ok := r.masks[glyph]; ok {
		return m
	}
	var m *image.Alpha
	if r.covers(glyph) {
		m = image.NewAlpha(image.Rect(0, 0, r.face.Width, r.face.Height))
		d := font.Drawer{
			Dst:  m,
			Src:  image.Opaque,
			Face: r.face,
			Dot:  fixed.P(0, r.face.Ascent),
		}
		d.DrawString(string(glyph))
	}
	r.masks[glyph] = m
	return m
}

// covers reports whether the font has its own bitmap for glyph; the font's
// replacement character does not count.
func (r *Rasterizer) covers(glyph rune) bool {
	for _, rng := range r.face.Ranges {
		if glyph >= rng.Low && glyph < rng.High {
			return glyph != '\ufffd'
		}
	}
	return false
}
