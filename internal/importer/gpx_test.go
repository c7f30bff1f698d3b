package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/StrataLines/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="stratalines-test" xmlns="http://www.topografix.com/GPX/1/1">
  <wpt lat="51.5" lon="-0.1"><name>Cafe</name><sym>star</sym></wpt>
  <wpt lat="51.52" lon="-0.12"><sym>Campground</sym></wpt>
  <rte>
    <name>Loop</name>
    <rtept lat="51.5" lon="-0.1"></rtept>
    <rtept lat="51.51" lon="-0.11"></rtept>
  </rte>
  <trk>
    <name>Ridge</name>
    <trkseg>
      <trkpt lat="51.5" lon="-0.1"></trkpt>
      <trkpt lat="51.6" lon="-0.1"></trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="51.6" lon="-0.1"></trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestParseGPX(t *testing.T) {
	result := ParseGPX([]byte(sampleGPX))
	require.Empty(t, result.Errors)

	require.Len(t, result.Tracks, 2)
	assert.Equal(t, "Ridge (1)", result.Tracks[0].Name)
	assert.Equal(t, []model.LatLng{{Lat: 51.5, Lon: -0.1}, {Lat: 51.6, Lon: -0.1}}, result.Tracks[0].Points)
	assert.InDelta(t, 11.1, result.Tracks[0].Length, 0.1)
	assert.True(t, result.Tracks[0].Visible)
	assert.Equal(t, "Loop", result.Tracks[1].Name)

	require.Len(t, result.Warnings, 1, "single-point segment is skipped")
	assert.Contains(t, result.Warnings[0], "Ridge (2)")

	require.Len(t, result.Places, 2)
	assert.Equal(t, "Cafe", result.Places[0].Title)
	assert.Equal(t, model.IconStar, result.Places[0].Icon)
	assert.Equal(t, "Waypoint 2", result.Places[1].Title)
	assert.Equal(t, model.IconPin, result.Places[1].Icon)
}

func TestParseGPX_Invalid(t *testing.T) {
	result := ParseGPX([]byte("not xml"))
	assert.NotEmpty(t, result.Errors)
	assert.Empty(t, result.Tracks)
}

func TestImportGPX_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ride.gpx")
	require.NoError(t, os.WriteFile(path, []byte(sampleGPX), 0644))

	result := ImportGPX(path)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Tracks, 2)

	missing := ImportGPX(filepath.Join(t.TempDir(), "missing.gpx"))
	assert.NotEmpty(t, missing.Errors)
}
