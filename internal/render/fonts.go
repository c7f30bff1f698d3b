package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/piwi3910/StrataLines/internal/engine"
	"github.com/piwi3910/StrataLines/internal/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

type faceKey struct {
	family string
	bold   bool
	size   float64
}

// FontBook resolves text styles to font faces backed by the Go font family.
// Faces are cached per family, weight and size.
type FontBook struct {
	mu    sync.Mutex
	fonts map[string]*truetype.Font
	faces map[faceKey]font.Face
}

// NewFontBook parses the embedded Go fonts.
func NewFontBook() (*FontBook, error) {
	sources := map[string][]byte{
		"sans":      goregular.TTF,
		"sans-bold": gobold.TTF,
		"mono":      gomono.TTF,
		"mono-bold": gomonobold.TTF,
	}
	fb := &FontBook{
		fonts: make(map[string]*truetype.Font, len(sources)),
		faces: make(map[faceKey]font.Face),
	}
	for name, ttf := range sources {
		f, err := truetype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parsing font %s: %w", name, err)
		}
		fb.fonts[name] = f
	}
	return fb, nil
}

// Face returns the face for style. Unknown families fall back to sans.
func (fb *FontBook) Face(style model.TextStyle) font.Face {
	key := faceKey{
		family: normalizeFamily(style.FontFamily),
		bold:   isBold(style.FontWeight),
		size:   style.FontSize,
	}
	if key.size <= 0 {
		key.size = model.DefaultTextStyle().FontSize
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	if f, ok := fb.faces[key]; ok {
		return f
	}
	name := key.family
	if key.bold {
		name += "-bold"
	}
	face := truetype.NewFace(fb.fonts[name], &truetype.Options{
		Size:    key.size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	fb.faces[key] = face
	return face
}

// Measurer returns a text measurer for style.
func (fb *FontBook) Measurer(style model.TextStyle) engine.TextMeasurer {
	size := style.FontSize
	if size <= 0 {
		size = model.DefaultTextStyle().FontSize
	}
	return faceMeasurer{face: fb.Face(style), lineHeight: size * engine.LineHeightFactor}
}

func normalizeFamily(family string) string {
	f := strings.ToLower(family)
	if strings.Contains(f, "mono") || strings.Contains(f, "courier") {
		return "mono"
	}
	return "sans"
}

func isBold(weight string) bool {
	switch strings.ToLower(weight) {
	case "bold", "bolder", "600", "700", "800", "900":
		return true
	}
	return false
}

type faceMeasurer struct {
	face       font.Face
	lineHeight float64
}

func (m faceMeasurer) Measure(s string) float64 {
	return float64(font.MeasureString(m.face, s)) / 64
}

func (m faceMeasurer) LineHeight() float64 {
	return m.lineHeight
}
