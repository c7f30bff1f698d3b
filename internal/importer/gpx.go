package importer

import (
	"fmt"
	"os"
	"strings"

	"github.com/piwi3910/StrataLines/internal/model"
	"github.com/tkrajina/gpxgo/gpx"
)

// ImportGPX reads tracks, routes and waypoints from a GPX file.
func ImportGPX(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	return ParseGPX(data)
}

// ParseGPX converts GPX data into tracks and places. Every track segment and
// every route becomes its own track. Waypoints become places, and a waypoint
// symbol naming a known icon style selects that icon.
func ParseGPX(data []byte) ImportResult {
	result := ImportResult{}

	doc, err := gpx.ParseBytes(data)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot parse GPX: %v", err))
		return result
	}

	for ti, trk := range doc.Tracks {
		name := strings.TrimSpace(trk.Name)
		if name == "" {
			name = fmt.Sprintf("Track %d", ti+1)
		}
		for si, seg := range trk.Segments {
			segName := name
			if len(trk.Segments) > 1 {
				segName = fmt.Sprintf("%s (%d)", name, si+1)
			}
			if len(seg.Points) < 2 {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s: skipped segment with %d point(s)", segName, len(seg.Points)))
				continue
			}
			track := model.NewTrack(segName, gpxPoints(seg.Points))
			track.Length = seg.Length2D() / 1000
			result.Tracks = append(result.Tracks, track)
		}
	}

	for ri, rte := range doc.Routes {
		name := strings.TrimSpace(rte.Name)
		if name == "" {
			name = fmt.Sprintf("Route %d", ri+1)
		}
		if len(rte.Points) < 2 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: skipped route with %d point(s)", name, len(rte.Points)))
			continue
		}
		result.Tracks = append(result.Tracks, model.NewTrack(name, gpxPoints(rte.Points)))
	}

	for wi, wpt := range doc.Waypoints {
		title := strings.TrimSpace(wpt.Name)
		if title == "" {
			title = fmt.Sprintf("Waypoint %d", wi+1)
		}
		place := model.NewPlace(title, model.LatLng{Lat: wpt.Latitude, Lon: wpt.Longitude})
		if icon, ok := model.ParseIconStyle(wpt.Symbol); ok {
			place.Icon = icon
		}
		result.Places = append(result.Places, place)
	}

	if len(result.Tracks) == 0 && len(result.Places) == 0 {
		result.Errors = append(result.Errors, "GPX file contains no tracks, routes or waypoints")
	}
	return result
}

func gpxPoints(pts []gpx.GPXPoint) []model.LatLng {
	out := make([]model.LatLng, len(pts))
	for i, p := range pts {
		out[i] = model.LatLng{Lat: p.Latitude, Lon: p.Longitude}
	}
	return out
}
