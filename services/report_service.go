package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/routecast/routecast-backend/errors"
	"github.com/routecast/routecast-backend/logger"
	"github.com/routecast/routecast-backend/pkg/elevation"
	"github.com/routecast/routecast-backend/pkg/gpx"
	"github.com/routecast/routecast-backend/pkg/segmentation"
	"github.com/routecast/routecast-backend/store"
	"github.com/routecast/routecast-backend/types"
)

// Notifier delivers a generated report over one channel (email, console).
type Notifier interface {
	Notify(ctx context.Context, trip types.Trip, report *types.TripReport) error
}

// ConsoleNotifier writes the formatted report to a writer, normally stdout.
type ConsoleNotifier struct {
	Out io.Writer
}

func (n *ConsoleNotifier) Notify(_ context.Context, _ types.Trip, report *types.TripReport) error {
	_, err := io.WriteString(n.Out, FormatReportText(report))
	return err
}

// ReportService runs the full pipeline for a trip: track parsing, waypoint
// detection, time segmentation, boundary optimization, weather fetch, risk
// assessment, change detection against the previous snapshot, and dispatch.
type ReportService struct {
	weather   *WeatherService
	risk      *RiskService
	changes   *ChangeDetector
	snapshots *store.SnapshotStore
	notifiers []Notifier

	elevOpts    elevation.Options
	segCfg      segmentation.Config
	optCfg      segmentation.OptimizerConfig
	exposureMinElevationM float64

	now func() time.Time
}

func NewReportService(
	weather *WeatherService,
	risk *RiskService,
	changes *ChangeDetector,
	snapshots *store.SnapshotStore,
	notifiers ...Notifier,
) *ReportService {
	return &ReportService{
		weather:               weather,
		risk:                  risk,
		changes:               changes,
		snapshots:             snapshots,
		notifiers:             notifiers,
		elevOpts:              elevation.DefaultOptions(),
		segCfg:                segmentation.DefaultConfig(),
		optCfg:                segmentation.DefaultOptimizerConfig(),
		exposureMinElevationM: 2000,
		now:                   time.Now,
	}
}

// GenerateReport builds a report for the trip from an already parsed track.
// A fresh snapshot is persisted afterwards (best-effort) so the next run can
// detect changes.
func (s *ReportService) GenerateReport(ctx context.Context, trip types.Trip, track types.Track, markers []types.NamedMarker) (*types.TripReport, error) {
	log := logger.GetLogger()

	segments := segmentation.BuildSegments(track, s.segCfg, trip.StartTime)
	if len(segments) == 0 {
		return nil, apperrors.New(apperrors.RouteError, "could not compute route segments", "track has fewer than two points")
	}

	waypoints := elevation.DetectWaypoints(track, markers, s.elevOpts)
	segments = segmentation.OptimizeSegments(segments, waypoints, track, s.segCfg, s.optCfg)

	data := s.weather.FetchTripWeather(ctx, segments)
	assessments := s.risk.AssessSegments(data)

	report := &types.TripReport{
		Trip:        trip,
		GeneratedAt: s.now(),
		Waypoints:   waypoints,
		Exposed:     elevation.FindExposedSections(track, waypoints, s.exposureMinElevationM, 0.5),
	}
	for i := range data {
		report.Segments = append(report.Segments, types.SegmentReport{
			Data:       data[i],
			Assessment: assessments[i],
		})
	}

	if old, ok := s.snapshots.Load(ctx, trip.ID); ok {
		report.Changes = s.changes.DetectChanges(old, data)
	}
	s.snapshots.Save(ctx, trip.ID, data, trip.TargetDate)

	log.Infow("Report generated",
		"tripID", trip.ID,
		"segments", len(report.Segments),
		"waypoints", len(waypoints),
		"changes", len(report.Changes),
	)
	return report, nil
}

// GenerateReportFromGPX parses the trip's GPX file and generates the report.
func (s *ReportService) GenerateReportFromGPX(ctx context.Context, trip types.Trip) (*types.TripReport, error) {
	track, markers, err := gpx.ParseFile(trip.GPXPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.RouteError, "failed to parse trip track")
	}
	return s.GenerateReport(ctx, trip, *track, markers)
}

// DispatchReport sends the report through every configured notifier.
// Individual channel failures are logged but do not stop the others.
func (s *ReportService) DispatchReport(ctx context.Context, trip types.Trip, report *types.TripReport) {
	log := logger.GetLogger()
	for _, n := range s.notifiers {
		if err := n.Notify(ctx, trip, report); err != nil {
			log.Errorw("Report dispatch failed",
				"tripID", trip.ID,
				"notifier", fmt.Sprintf("%T", n),
				"error", err,
			)
		}
	}
}

// StartScheduledReports generates and dispatches a report for the trip now
// and then on every tick until the context is cancelled.
func (s *ReportService) StartScheduledReports(ctx context.Context, trip types.Trip, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()

		s.runScheduled(ctx, trip)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runScheduled(ctx, trip)
			}
		}
	}()
}

func (s *ReportService) runScheduled(ctx context.Context, trip types.Trip) {
	log := logger.GetLogger()
	report, err := s.GenerateReportFromGPX(ctx, trip)
	if err != nil {
		log.Errorw("Scheduled report generation failed", "tripID", trip.ID, "error", err)
		return
	}
	s.DispatchReport(ctx, trip, report)
}

// FormatReportText renders a report as plain text, one block per segment.
func FormatReportText(r *types.TripReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weather report for %s (generated %s)\n",
		r.Trip.Name, r.GeneratedAt.UTC().Format(time.RFC3339))

	for _, seg := range r.Segments {
		d := seg.Data
		fmt.Fprintf(&b, "\nSegment %d: %s - %s (%.1f km, +%.0f m / -%.0f m)\n",
			d.Segment.ID,
			d.Segment.StartTime.UTC().Format("Mon 15:04"),
			d.Segment.EndTime.UTC().Format("Mon 15:04"),
			d.Segment.DistanceKM, d.Segment.AscentM, d.Segment.DescentM)
		if d.Segment.AdjustedToWaypoint && d.Segment.Waypoint != nil {
			name := d.Segment.Waypoint.Name
			if name == "" {
				name = string(d.Segment.Waypoint.Kind)
			}
			fmt.Fprintf(&b, "  ends at %s\n", name)
		}
		if sum := d.Summary; sum != nil {
			if sum.TempMinC != nil && sum.TempMaxC != nil {
				fmt.Fprintf(&b, "  temp %.0f..%.0f C", *sum.TempMinC, *sum.TempMaxC)
			}
			if sum.GustMaxKmh != nil {
				fmt.Fprintf(&b, ", gusts up to %.0f km/h", *sum.GustMaxKmh)
			}
			if sum.PrecipitationSumMM != nil {
				fmt.Fprintf(&b, ", %.1f mm precip", *sum.PrecipitationSumMM)
			}
			b.WriteString("\n")
		}
		for _, risk := range seg.Assessment.Risks {
			fmt.Fprintf(&b, "  [%s] %s\n", risk.Level, risk.Type)
		}
	}

	if len(r.Changes) > 0 {
		b.WriteString("\nChanges since last report:\n")
		for _, c := range r.Changes {
			fmt.Fprintf(&b, "  segment %d %s: %.1f -> %.1f (%s)\n",
				c.SegmentID, c.Metric, c.Old, c.New, c.Severity)
		}
	}
	return b.String()
}
