package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/routecast/routecast-backend/errors"
	"github.com/routecast/routecast-backend/logger"
	"github.com/routecast/routecast-backend/store"
	"github.com/routecast/routecast-backend/types"
)

// ReportGenerator is the slice of the report service consumed by HTTP
// handlers.
type ReportGenerator interface {
	GenerateReportFromGPX(ctx context.Context, trip types.Trip) (*types.TripReport, error)
	DispatchReport(ctx context.Context, trip types.Trip, report *types.TripReport)
}

type TripHandler struct {
	trips   store.TripStore
	reports ReportGenerator
}

func NewTripHandler(trips store.TripStore, reports ReportGenerator) *TripHandler {
	return &TripHandler{trips: trips, reports: reports}
}

type createTripRequest struct {
	Name       string    `json:"name" binding:"required"`
	GPXPath    string    `json:"gpx_path" binding:"required"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	TargetDate time.Time `json:"target_date" binding:"required"`
	Recipients []string  `json:"recipients"`
}

// CreateTrip registers a new trip.
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.ValidationFailed("invalid trip payload", err.Error()))
		return
	}

	trip := types.Trip{
		ID:         uuid.New().String(),
		Name:       req.Name,
		GPXPath:    req.GPXPath,
		StartTime:  req.StartTime,
		TargetDate: req.TargetDate,
		Recipients: req.Recipients,
	}
	if err := h.trips.CreateTrip(c.Request.Context(), trip); err != nil {
		respondError(c, apperrors.NewDatabaseError(err))
		return
	}
	c.JSON(http.StatusCreated, trip)
}

// ListTrips returns all registered trips.
func (h *TripHandler) ListTrips(c *gin.Context) {
	trips, err := h.trips.ListTrips(c.Request.Context())
	if err != nil {
		respondError(c, apperrors.NewDatabaseError(err))
		return
	}
	c.JSON(http.StatusOK, trips)
}

// GetTrip returns one trip by id.
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, ok := h.loadTrip(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, trip)
}

// DeleteTrip removes a trip from the registry.
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	if err := h.trips.DeleteTrip(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, apperrors.NotFound("Trip", c.Param("id")))
		} else {
			respondError(c, apperrors.NewDatabaseError(err))
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// TriggerReport generates a report for the trip, dispatches it over the
// configured channels and returns it.
func (h *TripHandler) TriggerReport(c *gin.Context) {
	trip, ok := h.loadTrip(c)
	if !ok {
		return
	}

	report, err := h.reports.GenerateReportFromGPX(c.Request.Context(), *trip)
	if err != nil {
		respondError(c, err)
		return
	}
	h.reports.DispatchReport(c.Request.Context(), *trip, report)
	c.JSON(http.StatusOK, report)
}

// GetRisks generates a report without dispatching it and returns only the
// per-segment risk assessments.
func (h *TripHandler) GetRisks(c *gin.Context) {
	trip, ok := h.loadTrip(c)
	if !ok {
		return
	}

	report, err := h.reports.GenerateReportFromGPX(c.Request.Context(), *trip)
	if err != nil {
		respondError(c, err)
		return
	}
	assessments := make([]types.RiskAssessment, 0, len(report.Segments))
	for _, seg := range report.Segments {
		assessments = append(assessments, seg.Assessment)
	}
	c.JSON(http.StatusOK, assessments)
}

func (h *TripHandler) loadTrip(c *gin.Context) (*types.Trip, bool) {
	trip, err := h.trips.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, apperrors.NotFound("Trip", c.Param("id")))
		} else {
			respondError(c, apperrors.NewDatabaseError(err))
		}
		return nil, false
	}
	return trip, true
}

func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}
	logger.GetLogger().Errorw("Unhandled handler error", "error", err)
	c.JSON(http.StatusInternalServerError, apperrors.InternalServerError("internal server error"))
}
