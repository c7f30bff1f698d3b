package engine

import (
	"testing"

	"github.com/piwi3910/StrataLines/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labelAt(id string, x, y, titleWidth float64) LabelItem {
	icon := IconRect(Point{X: x, Y: y}, model.IconCircle, 24, true)
	block := TitleBlock{Lines: []string{id}, Width: titleWidth, Height: 12}
	return NewLabelItem(id, icon, block)
}

func TestSideOpposite(t *testing.T) {
	assert.Equal(t, SideLeft, SideRight.Opposite())
	assert.Equal(t, SideRight, SideLeft.Opposite())
	assert.Equal(t, SideBottom, SideTop.Opposite())
	assert.Equal(t, SideTop, SideBottom.Opposite())
	assert.Equal(t, "left", SideLeft.String())
}

func TestOptimize_Empty(t *testing.T) {
	assert.Empty(t, NewPlacementOptimizer(0.5).Optimize(nil))
}

func TestOptimize_SinglePlaceKeepsDefault(t *testing.T) {
	got := NewPlacementOptimizer(0.5).Optimize([]LabelItem{labelAt("solo", 0, 0, 300)})
	assert.Equal(t, Assignment{"solo": SideRight}, got)
}

func TestOptimize_WideTitleFlipsAwayFromNeighbour(t *testing.T) {
	wide := labelAt("wide", 0, 0, 100)
	narrow := labelAt("narrow", 60, 0, 20)

	opt := NewPlacementOptimizer(0.5)
	got := opt.Optimize([]LabelItem{wide, narrow})

	require.Len(t, got, 2)
	assert.Equal(t, SideLeft, got["wide"])
	assert.Equal(t, SideRight, got["narrow"])

	wideRect := wide.TitleRect(got["wide"])
	narrowRect := narrow.TitleRect(got["narrow"])
	assert.Zero(t, OverlapArea(wideRect, narrow.Icon))
	assert.Zero(t, OverlapArea(wideRect, narrowRect))
}

func TestOptimizeSides_RepeatedIDs(t *testing.T) {
	wide := labelAt("dup", 0, 0, 100)
	narrow := labelAt("dup", 60, 0, 20)

	opt := NewPlacementOptimizer(0.5)
	sides := opt.OptimizeSides([]LabelItem{wide, narrow})
	assert.Equal(t, []Side{SideLeft, SideRight}, sides)

	// Keyed by ID the two places share a single entry.
	assert.Len(t, opt.Optimize([]LabelItem{wide, narrow}), 1)
}

func TestOptimize_NoConflictKeepsDefaults(t *testing.T) {
	items := []LabelItem{
		labelAt("a", 0, 0, 50),
		labelAt("b", 0, 200, 50),
		labelAt("c", 400, 0, 50),
	}
	got := NewPlacementOptimizer(1).Optimize(items)
	for _, it := range items {
		assert.Equal(t, SideRight, got[it.ID], it.ID)
	}
}

func TestOptimize_TieKeepsCurrentSide(t *testing.T) {
	// Both sides of "mid" are covered equally by its neighbours.
	items := []LabelItem{
		labelAt("mid", 100, 0, 60),
		labelAt("l", 40, 0, 0),
		labelAt("r", 160, 0, 0),
	}
	opt := &PlacementOptimizer{Sides: []Side{SideRight, SideLeft}}
	got := opt.Optimize(items)
	assert.Equal(t, SideRight, got["mid"])
}

func TestOptimize_HiddenIconStillParticipates(t *testing.T) {
	icon := IconRect(Point{X: 0, Y: 0}, model.IconPin, 24, false)
	hidden := NewLabelItem("hidden", icon, TitleBlock{Lines: []string{"hidden"}, Width: 80, Height: 12})
	other := labelAt("other", 50, 0, 20)

	got := NewPlacementOptimizer(0.5).Optimize([]LabelItem{hidden, other})
	require.Contains(t, got, "hidden")
	assert.Equal(t, SideLeft, got["hidden"])
}

func TestOptimize_TopBottomSandwich(t *testing.T) {
	// Neighbours on both sides leave only vertical room.
	items := []LabelItem{
		labelAt("centre", 100, 100, 60),
		labelAt("west", 40, 100, 10),
		labelAt("east", 160, 100, 10),
	}
	opt := &PlacementOptimizer{
		Sides:     []Side{SideRight, SideLeft, SideTop, SideBottom},
		MaxPasses: MaxRefinementPasses,
	}
	got := opt.Optimize(items)

	side := got["centre"]
	assert.Contains(t, []Side{SideTop, SideBottom}, side)
	r := items[0].TitleRect(side)
	assert.Zero(t, OverlapArea(r, items[1].Icon))
	assert.Zero(t, OverlapArea(r, items[2].Icon))
}

func TestOptimize_DeterministicForInputOrder(t *testing.T) {
	var items []LabelItem
	for i := 0; i < 12; i++ {
		items = append(items, labelAt(string(rune('a'+i)), float64(i%4)*45, float64(i/4)*10, 70))
	}
	opt := NewPlacementOptimizer(0.2)
	first := opt.Optimize(items)
	for run := 0; run < 5; run++ {
		assert.Equal(t, first, opt.Optimize(items))
	}
	assert.Len(t, first, len(items))
}

func TestOptimize_ResultDependsOnInputOrder(t *testing.T) {
	a := labelAt("a", 0, 0, 100)
	b := labelAt("b", 60, 0, 100)
	opt := NewPlacementOptimizer(1)
	opt.Sides = []Side{SideRight, SideLeft, SideTop, SideBottom}

	ab := opt.Optimize([]LabelItem{a, b})
	assert.Equal(t, Assignment{"a": SideLeft, "b": SideRight}, ab)

	// b refines first, escapes upwards, and a then still collides with b's icon
	ba := opt.Optimize([]LabelItem{b, a})
	assert.Equal(t, Assignment{"a": SideLeft, "b": SideTop}, ba)
}

func TestOptimize_TerminatesOnPathologicalCluster(t *testing.T) {
	var items []LabelItem
	for i := 0; i < 50; i++ {
		items = append(items, labelAt(string(rune('A'+i)), 0, 0, 100))
	}
	got := NewPlacementOptimizer(0).Optimize(items)
	assert.Len(t, got, 50)
}

func TestDensityMapping(t *testing.T) {
	assert.Equal(t, 6.0, LabelBuffer(0))
	assert.Equal(t, 0.0, LabelBuffer(1))
	assert.Equal(t, 6.0, LabelBuffer(-1))
	assert.Equal(t, 3, MaxTitleLines(0.2))
	assert.Equal(t, 2, MaxTitleLines(0.5))
}
