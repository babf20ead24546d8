package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"surveilens-control-plane/internal/config"
	"surveilens-control-plane/internal/models"
)

var notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "surveilens_notifications_total",
	Help: "Notification webhook posts, by role and outcome",
}, []string{"role", "outcome"})

func init() {
	prometheus.MustRegister(notifications)
}

// Service posts short alert messages to the per-role webhooks.
// Delivery is fire-and-forget: no retries, no delivery tracking, and a
// role whose webhook is not configured is silently skipped.
type Service struct {
	hooks  map[models.NotifyRole]string
	client *http.Client
}

// NewService creates a new notification service
func NewService(cfg *config.Config) (*Service, error) {
	s := &Service{
		hooks: map[models.NotifyRole]string{
			models.NotifyRoleOwner:     cfg.OwnerWebhookURL,
			models.NotifyRoleResponder: cfg.ResponderWebhookURL,
		},
		client: &http.Client{Timeout: cfg.WebhookTimeout},
	}

	configured := 0
	for _, hook := range s.hooks {
		if hook != "" {
			configured++
		}
	}
	log.Info().Int("webhooks_configured", configured).Msg("Notification service initialized")

	return s, nil
}

// Notify schedules a message for the role and returns immediately
func (s *Service) Notify(role models.NotifyRole, alertID string) {
	hook := s.hooks[role]
	if hook == "" {
		return
	}
	go s.post(role, hook, alertID)
}

func (s *Service) post(role models.NotifyRole, hook, alertID string) {
	body, err := json.Marshal(map[string]string{"text": message(role, alertID)})
	if err != nil {
		notifications.WithLabelValues(string(role), "encode_error").Inc()
		return
	}

	resp, err := s.client.Post(hook, "application/json", bytes.NewReader(body))
	if err != nil {
		notifications.WithLabelValues(string(role), "transport_error").Inc()
		log.Debug().Err(err).Str("role", string(role)).Str("alert_id", alertID).Msg("Notification delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		notifications.WithLabelValues(string(role), "bad_status").Inc()
		log.Debug().Int("status", resp.StatusCode).Str("role", string(role)).Str("alert_id", alertID).Msg("Notification rejected")
		return
	}
	notifications.WithLabelValues(string(role), "delivered").Inc()
}

func message(role models.NotifyRole, alertID string) string {
	if role == models.NotifyRoleResponder {
		return fmt.Sprintf("Responder escalation %s", alertID)
	}
	return fmt.Sprintf("SurveiLens alert %s", alertID)
}
