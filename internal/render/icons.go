package render

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/piwi3910/StrataLines/internal/model"
)

type iconKey struct {
	style model.IconStyle
	size  int
	color string
}

// IconCache holds pre-rendered icon bitmaps keyed by style, size and colour.
// It is owned by a PlaceRenderer; Reset drops every entry.
type IconCache struct {
	mu      sync.Mutex
	entries map[iconKey]image.Image
}

func NewIconCache() *IconCache {
	return &IconCache{entries: make(map[iconKey]image.Image)}
}

// Get returns the bitmap for the given icon, rendering it on first use.
func (c *IconCache) Get(style model.IconStyle, size float64, hex string) image.Image {
	px := int(math.Ceil(size))
	if px < 1 {
		px = 1
	}
	key := iconKey{style: style, size: px, color: hex}

	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.entries[key]; ok {
		return img
	}
	img := drawIcon(style, px, colorOr(hex, color.NRGBA{R: 0xd7, G: 0x26, B: 0x3d, A: 0xff}))
	c.entries[key] = img
	return img
}

// Len reports the number of cached bitmaps.
func (c *IconCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset empties the cache.
func (c *IconCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[iconKey]image.Image)
}

func drawIcon(style model.IconStyle, px int, fill color.Color) image.Image {
	dc := gg.NewContext(px, px)
	s := float64(px)
	outline := math.Max(1, s/12)

	switch style {
	case model.IconDot:
		dc.DrawCircle(s/2, s/2, s/4)
		dc.SetColor(fill)
		dc.FillPreserve()
		dc.SetColor(color.White)
		dc.SetLineWidth(outline)
		dc.Stroke()

	case model.IconCircle:
		dc.DrawCircle(s/2, s/2, s/2-outline)
		dc.SetColor(color.White)
		dc.FillPreserve()
		dc.SetColor(fill)
		dc.SetLineWidth(outline * 2)
		dc.Stroke()

	case model.IconMarker:
		dc.DrawRoundedRectangle(outline, outline, s-2*outline, s-2*outline, s/5)
		dc.SetColor(fill)
		dc.FillPreserve()
		dc.SetColor(color.White)
		dc.SetLineWidth(outline)
		dc.Stroke()
		dc.DrawCircle(s/2, s/2, s/6)
		dc.SetColor(color.White)
		dc.Fill()

	case model.IconFlag:
		poleX := s * 0.25
		dc.SetColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff})
		dc.SetLineWidth(outline * 1.5)
		dc.DrawLine(poleX, s*0.1, poleX, s*0.95)
		dc.Stroke()
		dc.MoveTo(poleX, s*0.1)
		dc.LineTo(s*0.9, s*0.3)
		dc.LineTo(poleX, s*0.5)
		dc.ClosePath()
		dc.SetColor(fill)
		dc.Fill()

	case model.IconStar:
		outer := s/2 - outline
		inner := outer * 0.45
		for i := 0; i < 10; i++ {
			r := outer
			if i%2 == 1 {
				r = inner
			}
			a := -math.Pi/2 + float64(i)*math.Pi/5
			dc.LineTo(s/2+r*math.Cos(a), s/2+r*math.Sin(a))
		}
		dc.ClosePath()
		dc.SetColor(fill)
		dc.FillPreserve()
		dc.SetColor(color.White)
		dc.SetLineWidth(outline)
		dc.Stroke()

	default: // pin
		r := s * 0.32
		cx, cy := s/2, r+outline
		dc.MoveTo(cx, s-outline)
		dc.LineTo(cx-r*0.8, cy+r*0.6)
		dc.DrawArc(cx, cy, r, gg.Radians(143), gg.Radians(397))
		dc.LineTo(cx, s-outline)
		dc.ClosePath()
		dc.SetColor(fill)
		dc.FillPreserve()
		dc.SetColor(color.White)
		dc.SetLineWidth(outline)
		dc.Stroke()
		dc.DrawCircle(cx, cy, r*0.4)
		dc.SetColor(color.White)
		dc.Fill()
	}
	return dc.Image()
}
