package alerting

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"surveilens-control-plane/internal/models"
	"surveilens-control-plane/internal/store"
)

var (
	eventsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "surveilens_events_total",
		Help: "Detection events handled, by severity level",
	}, []string{"level"})
	alertsRaised = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "surveilens_alerts_total",
		Help: "Alerts raised from elevated detections",
	})
)

func init() {
	prometheus.MustRegister(eventsProcessed, alertsRaised)
}

// Enricher schedules advisory enrichment for an alert
type Enricher interface {
	Dispatch(alert models.AlertRecord)
}

// Notifier schedules a webhook message for a role
type Notifier interface {
	Notify(role models.NotifyRole, alertID string)
}

// Journal persists status entries under the quiet-window policy
type Journal interface {
	Record(ev models.DetectionEvent) (bool, error)
}

// Service runs each detection event through the alerting pipeline:
// elevated events become stored alerts with enrichment and
// notifications dispatched, and every event reaches the status
// journal.
type Service struct {
	store    *store.Store
	journal  Journal
	enricher Enricher
	notifier Notifier
}

// NewService creates a new alerting service
func NewService(st *store.Store, journal Journal, enricher Enricher, notifier Notifier) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if journal == nil {
		return nil, fmt.Errorf("journal is required")
	}
	if enricher == nil {
		return nil, fmt.Errorf("enricher is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}

	log.Info().Msg("Alerting service initialized")

	return &Service{
		store:    st,
		journal:  journal,
		enricher: enricher,
		notifier: notifier,
	}, nil
}

// HandleEvent processes one detection event and returns the alert id
// it ran under (the event's own, or a freshly minted one). The store
// update and the dispatches happen before the journal write and are
// not rolled back when it fails; the returned error reports the
// journal failure only.
func (s *Service) HandleEvent(ev models.DetectionEvent) (string, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	eventsProcessed.WithLabelValues(string(ev.Level)).Inc()

	if ev.Level.Elevated() {
		rec := recordFromEvent(ev)
		s.store.Upsert(rec)
		s.enricher.Dispatch(rec)

		s.notifier.Notify(models.NotifyRoleOwner, rec.ID)
		if ev.Level == models.SeverityHigh {
			s.notifier.Notify(models.NotifyRoleResponder, rec.ID)
		}

		alertsRaised.Inc()
		log.Info().
			Str("alert_id", rec.ID).
			Str("site_id", rec.SiteID).
			Str("camera_id", rec.CameraID).
			Str("level", string(rec.Level)).
			Float64("risk", rec.Risk).
			Msg("Alert raised")
	}

	if _, err := s.journal.Record(ev); err != nil {
		log.Error().
			Err(err).
			Str("site_id", ev.SiteID).
			Str("camera_id", ev.CameraID).
			Msg("Journal write failed")
		return ev.ID, fmt.Errorf("journal: %w", err)
	}

	return ev.ID, nil
}

func recordFromEvent(ev models.DetectionEvent) models.AlertRecord {
	return models.AlertRecord{
		ID:         ev.ID,
		TS:         ev.TS,
		SiteID:     ev.SiteID,
		CameraID:   ev.CameraID,
		Level:      ev.Level,
		Risk:       ev.RiskLocal,
		FrameID:    ev.FrameID,
		Objects:    ev.Objects,
		Actions:    ev.Actions,
		Zones:      ev.Zones,
		AudioFlags: ev.AudioFlags,
	}
}
