package services

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
	"github.com/routecast/routecast-backend/config"
	"github.com/routecast/routecast-backend/logger"
	"github.com/routecast/routecast-backend/types"
)

// emailsAPI is the slice of the Resend client used here, extracted for
// test injection.
type emailsAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

// EmailService dispatches trip weather reports via Resend.
type EmailService struct {
	config  *config.EmailConfig
	emails  emailsAPI
	metrics *EmailMetrics
}

var _ Notifier = (*EmailService)(nil)

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return NewEmailServiceWithRegistry(cfg, prometheus.DefaultRegisterer)
}

func NewEmailServiceWithRegistry(cfg *config.EmailConfig, reg prometheus.Registerer) *EmailService {
	logger.GetLogger().Infow("Initializing email service",
		"from", cfg.FromAddress,
		"apikey", logger.MaskSensitiveString(cfg.ResendAPIKey, 3, 2))
	client := resend.NewClient(cfg.ResendAPIKey)
	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "routecast_email_send_duration_seconds",
			Help:    "Time taken to send report emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routecast_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "routecast_emails_sent_total",
			Help: "Total number of report emails sent",
		}),
	}

	reg.MustRegister(metrics.sendLatency)
	reg.MustRegister(metrics.errorCount)
	reg.MustRegister(metrics.sentCount)

	return &EmailService{
		config:  cfg,
		emails:  client.Emails,
		metrics: metrics,
	}
}

// Notify sends the formatted report to every trip recipient.
func (s *EmailService) Notify(ctx context.Context, trip types.Trip, report *types.TripReport) error {
	startTime := time.Now()
	log := logger.GetLogger()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	if len(trip.Recipients) == 0 {
		s.metrics.errorCount.Inc()
		return fmt.Errorf("trip %s has no report recipients", trip.ID)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      trip.Recipients,
		Subject: fmt.Sprintf("Weather report: %s", trip.Name),
		Text:    FormatReportText(report),
	}

	sent, err := s.emails.SendWithContext(ctx, params)
	if err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send report email",
			"tripID", trip.ID,
			"recipients", len(trip.Recipients),
			"error", err,
		)
		return fmt.Errorf("failed to send report email: %w", err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Report email sent",
		"tripID", trip.ID,
		"emailID", sent.Id,
		"to", logger.MaskEmail(trip.Recipients[0]),
	)
	return nil
}
