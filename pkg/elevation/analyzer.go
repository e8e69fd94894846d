// Package elevation detects prominent peaks and valleys on the elevation
// profile of a hiking track and derives exposed route sections from them.
package elevation

import (
	"math"
	"sort"

	"github.com/routecast/routecast-backend/types"
)

const kmPerDegreeLat = 111.32

// Options controls waypoint detection.
type Options struct {
	// MinProminenceM is the minimum height difference to the surrounding
	// window for a candidate to be kept.
	MinProminenceM float64
	// WindowSize is the half-width, in points, of the symmetric comparison
	// window.
	WindowSize int
	// MinDistanceKM is the minimum distance between two kept waypoints.
	MinDistanceKM float64
	// MaxNameDistanceKM is the matching radius for named markers.
	MaxNameDistanceKM float64
}

// DefaultOptions returns the detection parameters used for alpine hiking
// routes.
func DefaultOptions() Options {
	return Options{
		MinProminenceM:    80,
		WindowSize:        50,
		MinDistanceKM:     0.5,
		MaxNameDistanceKM: 0.5,
	}
}

// DetectWaypoints finds prominent peaks and valleys on the track's elevation
// profile, sorted by distance from the track start. Tracks with fewer than
// 2*WindowSize+1 elevation-carrying points yield an empty result; that is a
// deliberate no-signal outcome for short routes, not an error.
func DetectWaypoints(track types.Track, markers []types.NamedMarker, opts Options) []types.DetectedWaypoint {
	pts := track.Points
	withElevation := 0
	for _, p := range pts {
		if p.ElevationM != nil {
			withElevation++
		}
	}
	if withElevation < 2*opts.WindowSize+1 {
		return nil
	}

	var candidates []types.DetectedWaypoint
	for i := opts.WindowSize; i < len(pts)-opts.WindowSize; i++ {
		if pts[i].ElevationM == nil {
			continue
		}
		own := *pts[i].ElevationM
		winMin, winMax, ok := windowMinMax(pts, i-opts.WindowSize, i+opts.WindowSize)
		if !ok || winMin == winMax {
			continue
		}
		// The equality checks are mutually exclusive when min != max, so a
		// point is never both peak and valley.
		switch {
		case own == winMax:
			candidates = append(candidates, types.DetectedWaypoint{
				Kind:        types.WaypointPeak,
				Point:       pts[i],
				ProminenceM: own - winMin,
			})
		case own == winMin:
			candidates = append(candidates, types.DetectedWaypoint{
				Kind:        types.WaypointValley,
				Point:       pts[i],
				ProminenceM: winMax - own,
			})
		}
	}

	var prominent []types.DetectedWaypoint
	for _, c := range candidates {
		if c.ProminenceM >= opts.MinProminenceM {
			prominent = append(prominent, c)
		}
	}

	kept := filterByDistance(prominent, opts.MinDistanceKM)
	for i := range kept {
		kept[i].Name = matchMarker(kept[i].Point, markers, opts.MaxNameDistanceKM)
	}
	return kept
}

func windowMinMax(pts []types.TrackPoint, lo, hi int) (winMin, winMax float64, ok bool) {
	winMin = math.Inf(1)
	winMax = math.Inf(-1)
	for j := lo; j <= hi; j++ {
		if pts[j].ElevationM == nil {
			continue
		}
		e := *pts[j].ElevationM
		if e < winMin {
			winMin = e
		}
		if e > winMax {
			winMax = e
		}
		ok = true
	}
	return winMin, winMax, ok
}

// filterByDistance applies the greedy single-pass minimum-distance filter:
// a candidate closer than minDistanceKM to the previously kept one replaces
// it only when strictly more prominent. Not globally optimal; ties are rare
// enough in real elevation data that a global pass is not worth it.
func filterByDistance(candidates []types.DetectedWaypoint, minDistanceKM float64) []types.DetectedWaypoint {
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Point.DistanceKM < candidates[j].Point.DistanceKM
	})

	kept := []types.DetectedWaypoint{candidates[0]}
	for _, c := range candidates[1:] {
		last := &kept[len(kept)-1]
		if c.Point.DistanceKM-last.Point.DistanceKM >= minDistanceKM {
			kept = append(kept, c)
		} else if c.ProminenceM > last.ProminenceM {
			*last = c
		}
	}
	return kept
}

// matchMarker returns the name of the closest marker within maxDistanceKM of
// the point, or "" when none qualifies. Markers are not consumed: the same
// marker may label several waypoints.
func matchMarker(p types.TrackPoint, markers []types.NamedMarker, maxDistanceKM float64) string {
	best := ""
	bestDist := maxDistanceKM
	for _, m := range markers {
		d := flatDistanceKM(p.Lat, p.Lon, m.Lat, m.Lon)
		if d <= bestDist {
			best = m.Name
			bestDist = d
		}
	}
	return best
}

// flatDistanceKM is an equirectangular distance approximation, valid for the
// sub-kilometer distances used in marker matching.
func flatDistanceKM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * kmPerDegreeLat
	dLon := (lon2 - lon1) * kmPerDegreeLat * math.Cos(lat1*math.Pi/180)
	return math.Hypot(dLat, dLon)
}
