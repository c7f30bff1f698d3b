package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/piwi3910/StrataLines/internal/model"
)

// GPX 1.1 document written by WriteGPX.
type gpxDocument struct {
	XMLName xml.Name `xml:"gpx"`
	Version string   `xml:"version,attr"`
	Creator string   `xml:"creator,attr"`
	Xmlns   string   `xml:"xmlns,attr"`
	Track   gpxTrack `xml:"trk"`
}

type gpxTrack struct {
	Name    gpxCDATA   `xml:"name"`
	Segment gpxSegment `xml:"trkseg"`
}

type gpxCDATA struct {
	Text string `xml:",cdata"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

// WriteGPX serializes t as a GPX 1.1 document with one trkpt per point in
// order. The track name is written as CDATA.
func WriteGPX(w io.Writer, t model.Track) error {
	doc := gpxDocument{
		Version: "1.1",
		Creator: "StrataLines",
		Xmlns:   "http://www.topografix.com/GPX/1/1",
		Track: gpxTrack{
			Name:    gpxCDATA{Text: t.Name},
			Segment: gpxSegment{Points: make([]gpxPoint, len(t.Points))},
		},
	}
	for i, p := range t.Points {
		doc.Track.Segment.Points[i] = gpxPoint{Lat: p.Lat, Lon: p.Lon}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing GPX: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing GPX: %w", err)
	}
	return enc.Close()
}

// ExportGPX writes t to path.
func ExportGPX(path string, t model.Track) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	if err := WriteGPX(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// GPXFileName derives a file name for t from its name.
func GPXFileName(t model.Track) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(strings.TrimSpace(t.Name), "_"), "_")
	if name == "" {
		name = "track"
	}
	return name + ".gpx"
}
