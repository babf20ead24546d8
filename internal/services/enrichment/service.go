package enrichment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"surveilens-control-plane/internal/config"
	"surveilens-control-plane/internal/models"
)

var enrichments = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "surveilens_enrichment_total",
	Help: "Enrichment callouts, by outcome",
}, []string{"outcome"})

func init() {
	prometheus.MustRegister(enrichments)
}

// Operating-procedure hints sent with every callout so the analysis
// engine scores observations against site policy.
var sopHints = []string{
	"ATM loiter after-hours threshold 0.70",
	"Escalate if voice raised + concealment",
}

// Merger is the slice of the alert store the dispatcher writes back to
type Merger interface {
	MergeEnrichment(id string, enrichment map[string]interface{}, fallback models.AlertRecord)
}

// Service calls the external analysis engine for each elevated alert
// and merges the advisory result back into the stored record. All work
// runs detached from the alerting path; no failure here is ever
// surfaced to it.
type Service struct {
	endpoint string
	apiKey   string
	store    Merger
	client   *http.Client
}

// NewService creates a new enrichment service. An empty endpoint
// leaves the service constructed but inert.
func NewService(cfg *config.Config, merger Merger) (*Service, error) {
	if merger == nil {
		return nil, fmt.Errorf("record merger is required")
	}

	s := &Service{
		endpoint: cfg.EnrichEndpoint,
		apiKey:   cfg.EnrichAPIKey,
		store:    merger,
		client:   &http.Client{Timeout: cfg.EnrichTimeout},
	}

	if s.endpoint == "" {
		log.Info().Msg("Enrichment disabled, no endpoint configured")
	} else {
		log.Info().
			Str("endpoint", s.endpoint).
			Dur("timeout", cfg.EnrichTimeout).
			Msg("Enrichment service initialized")
	}

	return s, nil
}

// Dispatch schedules enrichment for the alert and returns immediately
func (s *Service) Dispatch(alert models.AlertRecord) {
	if s.endpoint == "" {
		return
	}
	go s.enrich(alert)
}

func (s *Service) enrich(alert models.AlertRecord) {
	body, err := json.Marshal(redactedPayload(alert))
	if err != nil {
		enrichments.WithLabelValues("encode_error").Inc()
		log.Debug().Err(err).Str("alert_id", alert.ID).Msg("Enrichment payload encoding failed")
		return
	}

	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		enrichments.WithLabelValues("encode_error").Inc()
		log.Debug().Err(err).Str("alert_id", alert.ID).Msg("Enrichment request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		enrichments.WithLabelValues("transport_error").Inc()
		log.Debug().Err(err).Str("alert_id", alert.ID).Msg("Enrichment callout failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		enrichments.WithLabelValues("bad_status").Inc()
		log.Debug().Int("status", resp.StatusCode).Str("alert_id", alert.ID).Msg("Enrichment callout rejected")
		return
	}

	var enr map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&enr); err != nil {
		enrichments.WithLabelValues("bad_body").Inc()
		log.Debug().Err(err).Str("alert_id", alert.ID).Msg("Enrichment response not usable")
		return
	}

	s.store.MergeEnrichment(alert.ID, enr, alert)
	enrichments.WithLabelValues("merged").Inc()
	log.Debug().Str("alert_id", alert.ID).Msg("Enrichment merged")
}

// payload is what leaves the building: names and zone labels only,
// never confidences, frame references, or raw media
type payload struct {
	Site         string    `json:"site"`
	Camera       string    `json:"camera"`
	TimeLocal    time.Time `json:"time_local"`
	Objects      []string  `json:"objects"`
	Actions      []string  `json:"actions"`
	Zones        []string  `json:"zones"`
	AudioFlags   []string  `json:"audio_flags"`
	AudioPhrases []string  `json:"audio_phrases"`
	SOPs         []string  `json:"sops"`
}

func redactedPayload(alert models.AlertRecord) payload {
	zones := alert.Zones
	if zones == nil {
		zones = []string{}
	}
	return payload{
		Site:         alert.SiteID,
		Camera:       alert.CameraID,
		TimeLocal:    alert.TS,
		Objects:      names(alert.Objects),
		Actions:      names(alert.Actions),
		Zones:        zones,
		AudioFlags:   names(alert.AudioFlags),
		AudioPhrases: []string{},
		SOPs:         sopHints,
	}
}

func names(obs []models.Observation) []string {
	out := make([]string, 0, len(obs))
	for _, o := range obs {
		out = append(out, o.Name)
	}
	return out
}
