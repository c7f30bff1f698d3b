package engine

import "math"

// MaxRefinementPasses bounds the refinement loop so clusters of mutually
// overlapping labels cannot oscillate forever.
const MaxRefinementPasses = 10

// maxLabelBuffer is the near-miss buffer applied at the sparsest density.
const maxLabelBuffer = 6.0

// Side is where a title is drawn relative to its icon.
type Side int

const (
	SideRight Side = iota
	SideLeft
	SideTop
	SideBottom
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	default:
		return "right"
	}
}

// Opposite returns the side across the icon.
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideTop:
		return SideBottom
	case SideBottom:
		return SideTop
	default:
		return SideLeft
	}
}

// LabelItem is one place as seen by the optimizer.
type LabelItem struct {
	ID     string
	Icon   Rect
	Anchor Point
	Gap    float64
	Block  TitleBlock
}

// NewLabelItem derives the title anchor and gap from the icon box.
func NewLabelItem(id string, icon Rect, block TitleBlock) LabelItem {
	return LabelItem{
		ID:     id,
		Icon:   icon,
		Anchor: icon.Center(),
		Gap:    LabelGapFor(icon),
		Block:  block,
	}
}

// TitleRect returns the item's title box on side.
func (it LabelItem) TitleRect(side Side) Rect {
	return TitleRect(it.Anchor, side, it.Gap, it.Block)
}

// Assignment maps a place ID to its placement side.
type Assignment map[string]Side

// PlacementOptimizer picks a title side per place that minimizes overlap
// between titles and between titles and icons.
type PlacementOptimizer struct {
	Sides     []Side  // Candidate sides; the first is the default
	Buffer    float64 // Near-miss margin added around candidate titles
	MaxPasses int
}

// NewPlacementOptimizer returns a left/right optimizer tuned for density in
// 0 (sparse) .. 1 (dense).
func NewPlacementOptimizer(density float64) *PlacementOptimizer {
	return &PlacementOptimizer{
		Sides:     []Side{SideRight, SideLeft},
		Buffer:    LabelBuffer(density),
		MaxPasses: MaxRefinementPasses,
	}
}

// LabelBuffer maps a label density hint to a near-miss buffer in pixels.
func LabelBuffer(density float64) float64 {
	return (1 - clamp01(density)) * maxLabelBuffer
}

// MaxTitleLines maps a label density hint to the title line budget.
func MaxTitleLines(density float64) int {
	if clamp01(density) < 0.5 {
		return 3
	}
	return 2
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func (o *PlacementOptimizer) defaultSide() Side {
	if len(o.Sides) == 0 {
		return SideRight
	}
	return o.Sides[0]
}

func (o *PlacementOptimizer) passes() int {
	if o.MaxPasses <= 0 || o.MaxPasses > MaxRefinementPasses {
		return MaxRefinementPasses
	}
	return o.MaxPasses
}

// candidates lists the sides tried against current: the opposite side first,
// then the remaining configured sides in order.
func (o *PlacementOptimizer) candidates(current Side) []Side {
	var out []Side
	opp := current.Opposite()
	for _, s := range o.Sides {
		if s == opp {
			out = append(out, opp)
			break
		}
	}
	for _, s := range o.Sides {
		if s != current && s != opp {
			out = append(out, s)
		}
	}
	return out
}

// Optimize assigns every item a side, keyed by ID. Items sharing an ID
// collapse to the side of the last one; use OptimizeSides when IDs may repeat.
func (o *PlacementOptimizer) Optimize(items []LabelItem) Assignment {
	result := make(Assignment, len(items))
	for i, side := range o.OptimizeSides(items) {
		result[items[i].ID] = side
	}
	return result
}

// OptimizeSides returns the side of items[i] at index i. Items are refined in
// input order and each update is visible to the items after it, so the result
// is deterministic for a given order but may differ between orders.
func (o *PlacementOptimizer) OptimizeSides(items []LabelItem) []Side {
	if len(items) == 0 {
		return nil
	}

	def := o.defaultSide()
	sides := make([]Side, len(items))
	titles := make([]Rect, len(items))
	for i, it := range items {
		sides[i] = def
		titles[i] = it.TitleRect(def)
	}

	if len(items) > 1 {
		for pass := 0; pass < o.passes(); pass++ {
			changed := false
			for i, it := range items {
				if it.Block.Empty() {
					continue
				}
				best := sides[i]
				bestCost := o.cost(i, titles[i], items, titles)
				if bestCost == 0 {
					continue
				}
				for _, cand := range o.candidates(sides[i]) {
					r := it.TitleRect(cand)
					if c := o.cost(i, r, items, titles); c < bestCost {
						best, bestCost = cand, c
					}
				}
				if best != sides[i] {
					sides[i] = best
					titles[i] = it.TitleRect(best)
					changed = true
				}
			}
			if !changed {
				break
			}
		}
	}

	return sides
}

// cost sums the overlap of candidate title r for item i against every other
// title at its current side and every other icon.
func (o *PlacementOptimizer) cost(i int, r Rect, items []LabelItem, titles []Rect) float64 {
	rb := r.Expand(o.Buffer)
	var total float64
	for j := range items {
		if j == i {
			continue
		}
		total += OverlapArea(rb, titles[j])
		total += OverlapArea(rb, items[j].Icon)
	}
	return total
}
