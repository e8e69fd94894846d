package elevation

import (
	"sort"

	"github.com/routecast/routecast-backend/types"
)

// FindExposedSections derives exposed route intervals from high-elevation
// waypoints. Each qualifying waypoint contributes an interval of
// radiusKM to either side of its position; overlapping intervals are merged,
// keeping the maximum elevation. Peaks map to ridge exposure, valleys above
// the elevation floor to pass exposure.
func FindExposedSections(track types.Track, waypoints []types.DetectedWaypoint, minElevationM, radiusKM float64) []types.ExposedSection {
	total := track.TotalDistanceKM()

	var sections []types.ExposedSection
	for _, wp := range waypoints {
		if wp.Point.ElevationM == nil || *wp.Point.ElevationM < minElevationM {
			continue
		}
		kind := types.ExposureRidge
		if wp.Kind == types.WaypointValley {
			kind = types.ExposurePass
		}
		start := wp.Point.DistanceKM - radiusKM
		if start < 0 {
			start = 0
		}
		end := wp.Point.DistanceKM + radiusKM
		if end > total {
			end = total
		}
		sections = append(sections, types.ExposedSection{
			StartKM:       start,
			EndKM:         end,
			MaxElevationM: *wp.Point.ElevationM,
			Kind:          kind,
		})
	}
	if len(sections) == 0 {
		return nil
	}

	sort.Slice(sections, func(i, j int) bool { return sections[i].StartKM < sections[j].StartKM })

	merged := []types.ExposedSection{sections[0]}
	for _, s := range sections[1:] {
		last := &merged[len(merged)-1]
		if s.StartKM <= last.EndKM {
			if s.EndKM > last.EndKM {
				last.EndKM = s.EndKM
			}
			if s.MaxElevationM > last.MaxElevationM {
				last.MaxElevationM = s.MaxElevationM
				last.Kind = s.Kind
			}
		} else {
			merged = append(merged, s)
		}
	}
	return merged
}
