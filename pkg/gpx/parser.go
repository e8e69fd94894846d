// Package gpx parses GPX 1.1 track files into the track model used by the
// segmentation pipeline. Only the subset needed here is supported: one or
// more <trk>/<trkseg> blocks (concatenated in order) and top-level <wpt>
// elements, which become named markers.
package gpx

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/routecast/routecast-backend/types"
)

const earthRadiusKM = 6371.0

type gpxFile struct {
	XMLName   xml.Name      `xml:"gpx"`
	Waypoints []gpxWaypoint `xml:"wpt"`
	Tracks    []gpxTrack    `xml:"trk"`
}

type gpxWaypoint struct {
	Lat  float64 `xml:"lat,attr"`
	Lon  float64 `xml:"lon,attr"`
	Name string  `xml:"name"`
}

type gpxTrack struct {
	Name     string       `xml:"name"`
	Segments []gpxTrkSeg  `xml:"trkseg"`
}

type gpxTrkSeg struct {
	Points []gpxTrkPt `xml:"trkpt"`
}

type gpxTrkPt struct {
	Lat float64  `xml:"lat,attr"`
	Lon float64  `xml:"lon,attr"`
	Ele *float64 `xml:"ele"`
}

// Parse reads a GPX document and returns the track with cumulative distances
// plus any named waypoint markers.
func Parse(r io.Reader) (*types.Track, []types.NamedMarker, error) {
	var doc gpxFile
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode gpx: %w", err)
	}
	if len(doc.Tracks) == 0 {
		return nil, nil, fmt.Errorf("gpx document contains no track")
	}

	track := &types.Track{Name: doc.Tracks[0].Name}
	var cumulative float64
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			for _, p := range seg.Points {
				if len(track.Points) > 0 {
					prev := track.Points[len(track.Points)-1]
					cumulative += haversineKM(prev.Lat, prev.Lon, p.Lat, p.Lon)
				}
				track.Points = append(track.Points, types.TrackPoint{
					Lat:        p.Lat,
					Lon:        p.Lon,
					ElevationM: p.Ele,
					DistanceKM: cumulative,
				})
			}
		}
	}

	var markers []types.NamedMarker
	for _, w := range doc.Waypoints {
		if w.Name == "" {
			continue
		}
		markers = append(markers, types.NamedMarker{Name: w.Name, Lat: w.Lat, Lon: w.Lon})
	}
	return track, markers, nil
}

// ParseFile opens and parses a GPX file from disk.
func ParseFile(path string) (*types.Track, []types.NamedMarker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open gpx file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}
