package surface

import "github.com/leandrodaf/gazeuke/sdk/contracts"

// DefaultTagSize is the side of the corner marker tags, in pixels.
const DefaultTagSize = 256

// Mapper converts normalized tracker coordinates (0..1, origin bottom left)
// into surface pixels. The tracker surface is inset from the window edges
// by a tenth of the marker tag size.
type Mapper struct {
	Width   float64
	Height  float64
	TagSize float64
}

// Margin returns the inset on each side of the surface.
func (m Mapper) Margin() float64 {
	return 0.1 * m.TagSize
}

// ToSurface maps a normalized point to pixels with Y flipped.
func (m Mapper) ToSurface(nx, ny float64) contracts.Point {
	margin := m.Margin()
	w := m.Width - 2*margin
	h := m.Height - 2*margin
	return contracts.Point{
		X: nx*w + margin,
		Y: (h - ny*h) + margin,
	}
}
