package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/piwi3910/StrataLines/internal/engine"
	"github.com/piwi3910/StrataLines/internal/model"
)

// PlacedLabel is a place with its resolved icon box, side and title box.
type PlacedLabel struct {
	Place model.Place
	Icon  engine.Rect
	Side  engine.Side
	Title engine.Rect
	Block engine.TitleBlock
}

// PlaceRenderer lays out and draws place markers with their titles.
type PlaceRenderer struct {
	Fonts         *FontBook
	Icons         *IconCache
	MaxTitleWidth float64
	Sides         []engine.Side // Empty means left/right
}

func NewPlaceRenderer(fonts *FontBook, icons *IconCache) *PlaceRenderer {
	return &PlaceRenderer{
		Fonts:         fonts,
		Icons:         icons,
		MaxTitleWidth: engine.DefaultMaxTitleWidth,
	}
}

// Layout projects the visible places, measures their titles and runs the
// placement optimizer over them. Places are laid out in input order.
func (r *PlaceRenderer) Layout(places []model.Place, proj engine.Projector, density float64) []PlacedLabel {
	maxLines := engine.MaxTitleLines(density)
	maxWidth := r.MaxTitleWidth
	if maxWidth <= 0 {
		maxWidth = engine.DefaultMaxTitleWidth
	}

	var visible []model.Place
	var items []engine.LabelItem
	for _, p := range places {
		if !p.Visible {
			continue
		}
		pt := proj.Project(p.Position)
		icon := engine.IconRect(pt, p.Icon, p.IconSize, p.ShowIcon)
		block := engine.LayoutTitle(p.Title, maxWidth, maxLines, r.Fonts.Measurer(p.Text))
		visible = append(visible, p)
		items = append(items, engine.NewLabelItem(p.ID, icon, block))
	}

	opt := engine.NewPlacementOptimizer(density)
	if len(r.Sides) > 0 {
		opt.Sides = r.Sides
	}
	sides := opt.OptimizeSides(items)

	labels := make([]PlacedLabel, len(items))
	for i, it := range items {
		side := sides[i]
		labels[i] = PlacedLabel{
			Place: visible[i],
			Icon:  it.Icon,
			Side:  side,
			Title: it.TitleRect(side),
			Block: it.Block,
		}
	}
	return labels
}

// Draw paints icons first and titles on top of every icon.
func (r *PlaceRenderer) Draw(dst *image.RGBA, labels []PlacedLabel) {
	if len(labels) == 0 {
		return
	}
	dc := gg.NewContextForRGBA(dst)

	for _, l := range labels {
		if !l.Place.ShowIcon || l.Icon.Empty() {
			continue
		}
		img := r.Icons.Get(l.Place.Icon, l.Place.IconSize, l.Place.IconColor)
		dc.DrawImage(img, int(math.Round(l.Icon.Left)), int(math.Round(l.Icon.Top)))
	}

	for _, l := range labels {
		if l.Block.Empty() {
			continue
		}
		r.drawTitle(dc, l)
	}
}

func (r *PlaceRenderer) drawTitle(dc *gg.Context, l PlacedLabel) {
	style := l.Place.Text
	dc.SetFontFace(r.Fonts.Face(style))

	lineHeight := l.Block.Height / float64(len(l.Block.Lines))
	x, ax := l.Title.Left, 0.0
	switch l.Side {
	case engine.SideLeft:
		x, ax = l.Title.Right, 1
	case engine.SideTop, engine.SideBottom:
		x, ax = l.Title.Center().X, 0.5
	}

	for i, line := range l.Block.Lines {
		y := l.Title.Top + (float64(i)+0.5)*lineHeight

		if style.GlowColor != "" && style.GlowBlur > 0 {
			glow := withAlpha(colorOr(style.GlowColor, color.White), 0.25)
			dc.SetColor(glow)
			drawRing(dc, line, x, y, ax, style.GlowBlur)
		}
		if style.StrokeColor != "" && style.StrokeWidth > 0 {
			dc.SetColor(colorOr(style.StrokeColor, color.White))
			drawRing(dc, line, x, y, ax, style.StrokeWidth)
		}
		dc.SetColor(colorOr(style.Color, color.Black))
		dc.DrawStringAnchored(line, x, y, ax, 0.35)
	}
}

// drawRing draws s repeatedly around (x, y) at the given radius, which reads
// as an outline once the fill is drawn on top.
func drawRing(dc *gg.Context, s string, x, y, ax, radius float64) {
	steps := int(math.Max(8, math.Ceil(radius*6)))
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		dc.DrawStringAnchored(s, x+radius*math.Cos(a), y+radius*math.Sin(a), ax, 0.35)
	}
}

func withAlpha(c color.Color, f float64) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float64(n.A) * f)
	return n
}
