package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"surveilens-control-plane/internal/config"
	"surveilens-control-plane/internal/models"
)

var dropped = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "surveilens_ingest_dropped_total",
	Help: "Detection events dropped before handling, by reason",
}, []string{"reason"})

func init() {
	prometheus.MustRegister(dropped)
}

// Subscriber provides a queue subscription on the event stream
type Subscriber interface {
	QueueSubscribe(subject, queue string, handler func([]byte)) (*nats.Subscription, error)
}

// EventHandler runs one decoded detection event through the pipeline
type EventHandler interface {
	HandleEvent(ev models.DetectionEvent) (string, error)
}

// Service consumes the per-frame detection stream from the edge
// pipeline and feeds it to the alerting pipeline. Unreadable payloads
// are counted and dropped; handler errors never stop the stream.
type Service struct {
	subscriber Subscriber
	handler    EventHandler
	subject    string
	queue      string
	sub        *nats.Subscription
}

// NewService creates a new event intake service
func NewService(cfg *config.Config, subscriber Subscriber, handler EventHandler) (*Service, error) {
	if subscriber == nil {
		return nil, fmt.Errorf("subscriber is required")
	}
	if handler == nil {
		return nil, fmt.Errorf("event handler is required")
	}

	return &Service{
		subscriber: subscriber,
		handler:    handler,
		subject:    cfg.EventsSubject,
		queue:      cfg.EventsQueue,
	}, nil
}

// Start subscribes to the event stream
func (s *Service) Start() error {
	sub, err := s.subscriber.QueueSubscribe(s.subject, s.queue, s.handleMessage)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.subject, err)
	}
	s.sub = sub

	log.Info().
		Str("subject", s.subject).
		Str("queue", s.queue).
		Msg("Event intake subscribed")

	return nil
}

func (s *Service) handleMessage(data []byte) {
	var ev models.DetectionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		dropped.WithLabelValues("bad_json").Inc()
		log.Warn().Err(err).Msg("Dropping unreadable detection event")
		return
	}
	if ev.SiteID == "" || ev.CameraID == "" {
		dropped.WithLabelValues("missing_ids").Inc()
		log.Warn().Msg("Dropping detection event without site or camera id")
		return
	}

	if _, err := s.handler.HandleEvent(ev); err != nil {
		// Logged in detail at the failure site; the stream keeps flowing.
		log.Debug().Err(err).Str("site_id", ev.SiteID).Str("camera_id", ev.CameraID).Msg("Event handling reported an error")
	}
}

// Shutdown stops consuming new events
func (s *Service) Shutdown(ctx context.Context) error {
	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			log.Warn().Err(err).Msg("Failed to unsubscribe event intake")
		}
	}
	return nil
}
