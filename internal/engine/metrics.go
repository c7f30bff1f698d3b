package engine

import (
	"math"
	"strings"

	"github.com/piwi3910/StrataLines/internal/model"
)

const (
	// LabelGap is the space between an icon edge and its title.
	LabelGap = 4.0

	// DefaultMaxTitleWidth caps the width of a wrapped title in pixels.
	DefaultMaxTitleWidth = 160.0

	// LineHeightFactor scales the font size to the distance between baselines.
	LineHeightFactor = 1.2

	// Ellipsis marks a title truncated to fit its line budget.
	Ellipsis = "…"
)

// TextMeasurer reports the rendered size of text in one font face.
type TextMeasurer interface {
	Measure(s string) float64
	LineHeight() float64
}

// TitleBlock is a wrapped title and the size it occupies when drawn.
type TitleBlock struct {
	Lines  []string
	Width  float64
	Height float64
}

// Empty reports whether the block draws nothing.
func (b TitleBlock) Empty() bool {
	return len(b.Lines) == 0
}

// WrapTitle breaks title on word boundaries into lines no wider than maxWidth.
// When more than maxLines lines would be needed the last permitted line is
// shortened and suffixed with Ellipsis. A word wider than maxWidth gets a line
// of its own. maxLines <= 0 means unlimited. A blank title returns nil.
func WrapTitle(title string, maxWidth float64, maxLines int, m TextMeasurer) []string {
	words := strings.Fields(title)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		candidate := cur + " " + w
		if m.Measure(candidate) <= maxWidth {
			cur = candidate
			continue
		}
		lines = append(lines, cur)
		cur = w
	}
	lines = append(lines, cur)

	if maxLines <= 0 || len(lines) <= maxLines {
		return lines
	}

	lines = lines[:maxLines]
	lines[maxLines-1] = truncateLine(lines[maxLines-1], maxWidth, m)
	return lines
}

// truncateLine drops trailing runes until line plus the ellipsis fits maxWidth,
// always keeping at least one rune.
func truncateLine(line string, maxWidth float64, m TextMeasurer) string {
	runes := []rune(line)
	for len(runes) > 1 && m.Measure(string(runes)+Ellipsis) > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return strings.TrimRight(string(runes), " ") + Ellipsis
}

// MeasureBlock measures wrapped lines with m.
func MeasureBlock(lines []string, m TextMeasurer) TitleBlock {
	b := TitleBlock{Lines: lines}
	for _, l := range lines {
		b.Width = math.Max(b.Width, m.Measure(l))
	}
	b.Height = float64(len(lines)) * m.LineHeight()
	return b
}

// LayoutTitle wraps and measures title in one step.
func LayoutTitle(title string, maxWidth float64, maxLines int, m TextMeasurer) TitleBlock {
	return MeasureBlock(WrapTitle(title, maxWidth, maxLines, m), m)
}

// TitleRect returns where block is drawn when placed on side of anchor,
// separated from it by gap.
func TitleRect(anchor Point, side Side, gap float64, block TitleBlock) Rect {
	w, h := block.Width, block.Height
	switch side {
	case SideLeft:
		return RectXYWH(anchor.X-gap-w, anchor.Y-h/2, w, h)
	case SideTop:
		return RectXYWH(anchor.X-w/2, anchor.Y-gap-h, w, h)
	case SideBottom:
		return RectXYWH(anchor.X-w/2, anchor.Y+gap, w, h)
	default:
		return RectXYWH(anchor.X+gap, anchor.Y-h/2, w, h)
	}
}

// IconRect returns the pixel box an icon of the given style covers when its
// place projects to pt. Pins stand on the point; other styles are centred on
// it. A hidden icon is a zero-area box at pt.
func IconRect(pt Point, style model.IconStyle, size float64, showIcon bool) Rect {
	if !showIcon || size <= 0 {
		return Rect{Left: pt.X, Top: pt.Y, Right: pt.X, Bottom: pt.Y}
	}
	if style == model.IconPin {
		return RectXYWH(pt.X-size/2, pt.Y-size, size, size)
	}
	return RectXYWH(pt.X-size/2, pt.Y-size/2, size, size)
}

// LabelGapFor returns the distance from the icon centre to the title edge.
func LabelGapFor(icon Rect) float64 {
	return math.Max(icon.Width(), icon.Height())/2 + LabelGap
}
