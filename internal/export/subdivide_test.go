package export

import (
	"testing"

	"github.com/piwi3910/StrataLines/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubdivide_SingleSubdivision(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDimension = 4096

	plan, err := Subdivide(cfg, 256, 0)
	require.NoError(t, err)
	require.Len(t, plan.Subdivisions, 1)

	s := plan.Subdivisions[0]
	assert.Equal(t, cfg.Bounds, s.Bounds)
	assert.Equal(t, plan.Width, s.Width)
	assert.Equal(t, plan.Height, s.Height)
	assert.Equal(t, model.SubdivisionPending, s.Status)
}

func TestSubdivide_TilesCompositeExactly(t *testing.T) {
	for _, maxDim := range []int{50, 97, 128, 256, 300, 583} {
		cfg := testConfig()
		cfg.MaxDimension = maxDim

		plan, err := Subdivide(cfg, 256, 0)
		require.NoError(t, err)
		assert.Len(t, plan.Subdivisions, plan.Rows*plan.Cols)

		coverage := make([]int, plan.Width*plan.Height)
		for _, s := range plan.Subdivisions {
			assert.LessOrEqual(t, s.Width, maxDim)
			assert.LessOrEqual(t, s.Height, maxDim)
			assert.Positive(t, s.Width)
			assert.Positive(t, s.Height)
			for y := s.Y; y < s.Y+s.Height; y++ {
				for x := s.X; x < s.X+s.Width; x++ {
					coverage[y*plan.Width+x]++
				}
			}
		}
		for i, c := range coverage {
			if c != 1 {
				t.Fatalf("max %d: pixel (%d,%d) covered %d times", maxDim, i%plan.Width, i/plan.Width, c)
			}
		}
	}
}

func TestSubdivide_TilesBoundsExactly(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDimension = 100
	plan, err := Subdivide(cfg, 256, 0)
	require.NoError(t, err)
	require.Greater(t, plan.Rows, 1)
	require.Greater(t, plan.Cols, 1)

	at := func(r, c int) model.Subdivision { return plan.Subdivisions[r*plan.Cols+c] }

	for r := 0; r < plan.Rows; r++ {
		for c := 0; c < plan.Cols; c++ {
			s := at(r, c)
			assert.Equal(t, r*plan.Cols+c, s.Index)
			assert.False(t, s.Bounds.IsDegenerate())

			if c == 0 {
				assert.Equal(t, cfg.Bounds.West, s.Bounds.West)
			} else {
				assert.Equal(t, at(r, c-1).Bounds.East, s.Bounds.West, "shared vertical edge")
			}
			if c == plan.Cols-1 {
				assert.Equal(t, cfg.Bounds.East, s.Bounds.East)
			}
			if r == 0 {
				assert.Equal(t, cfg.Bounds.North, s.Bounds.North)
			} else {
				assert.Equal(t, at(r-1, c).Bounds.South, s.Bounds.North, "shared horizontal edge")
			}
			if r == plan.Rows-1 {
				assert.Equal(t, cfg.Bounds.South, s.Bounds.South)
			}
		}
	}
}

func TestSubdivide_GeographicEdgesMatchPixels(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDimension = 128
	plan, err := Subdivide(cfg, 256, 0)
	require.NoError(t, err)

	for _, s := range plan.Subdivisions {
		if s.Col == 0 || s.Row == 0 {
			continue
		}
		p := plan.Projection.Project(s.Bounds.NW())
		assert.InDelta(t, float64(s.X), p.X, 1e-6)
		assert.InDelta(t, float64(s.Y), p.Y, 1e-6)
	}
}

func TestSubdivide_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Bounds.East = cfg.Bounds.West
	_, err := Subdivide(cfg, 256, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = testConfig()
	cfg.MaxDimension = 0
	_, err = Subdivide(cfg, 256, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = testConfig()
	cfg.Bounds.West, cfg.Bounds.East = 170, -170
	_, err = Subdivide(cfg, 256, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig, "antimeridian-crossing bounds")
}

func TestSubdivide_RejectsOversizeBeforeAllocating(t *testing.T) {
	cfg := testConfig()
	cfg.Zoom = model.ExplicitZoom(14)
	cfg.MaxDimension = 1

	plan, err := Subdivide(cfg, 256, 1000)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "exceeds the 1000 px limit")
	assert.Nil(t, plan.Subdivisions)
	assert.Zero(t, plan.Rows)

	// Without a pixel limit the grid size is still capped.
	plan, err = Subdivide(cfg, 256, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, plan.Subdivisions)
}

func TestSplitPoints(t *testing.T) {
	assert.Equal(t, []int{0, 3, 6, 10}, splitPoints(10, 3))
	assert.Equal(t, []int{0, 7}, splitPoints(7, 1))
}
