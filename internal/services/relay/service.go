package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"surveilens-control-plane/internal/config"
)

// ErrUpstreamUnavailable marks relay calls that never produced a
// usable acknowledgment from the pipeline worker
var ErrUpstreamUnavailable = errors.New("pipeline worker unavailable")

var commands = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "surveilens_relay_commands_total",
	Help: "Commands relayed to the pipeline worker, by op and outcome",
}, []string{"op", "outcome"})

func init() {
	prometheus.MustRegister(commands)
}

// Ack is the worker's typed acknowledgment for one relayed command.
// OK=false is a worker-level refusal, not a transport failure; callers
// get it back as a value, not an error.
type Ack struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg,omitempty"`
}

// command is the relay wire format
type command struct {
	Op        string          `json:"op"`
	SiteID    string          `json:"site_id"`
	CameraID  string          `json:"camera_id"`
	SourceURI string          `json:"source_uri,omitempty"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// Requester issues one request and returns the raw reply
type Requester interface {
	Request(ctx context.Context, subject string, data []byte) ([]byte, error)
}

// Service relays lifecycle and configuration commands to the pipeline
// worker over request/reply. Each call issues exactly one request; the
// relay never retries on the caller's behalf.
type Service struct {
	requester Requester
	prefix    string
	timeout   time.Duration
}

// NewService creates a new command relay
func NewService(cfg *config.Config, requester Requester) (*Service, error) {
	if requester == nil {
		return nil, fmt.Errorf("requester is required")
	}

	s := &Service{
		requester: requester,
		prefix:    cfg.CommandSubjectPrefix,
		timeout:   cfg.RelayTimeout,
	}

	log.Info().
		Str("subject_prefix", s.prefix).
		Dur("timeout", s.timeout).
		Msg("Command relay initialized")

	return s, nil
}

// StartCamera asks the worker to begin ingesting the camera from
// sourceURI. Callers resolve the source before getting here; the relay
// forwards it verbatim.
func (s *Service) StartCamera(ctx context.Context, site, camera, sourceURI string) (Ack, error) {
	return s.send(ctx, command{Op: "start", SiteID: site, CameraID: camera, SourceURI: sourceURI})
}

// StopCamera asks the worker to stop the camera. Forwarded
// unconditionally; whether the camera is running is the worker's
// concern.
func (s *Service) StopCamera(ctx context.Context, site, camera string) (Ack, error) {
	return s.send(ctx, command{Op: "stop", SiteID: site, CameraID: camera})
}

// SetParams pushes compiled runtime parameters to the worker. The
// params pass through as opaque JSON with no semantic validation.
func (s *Service) SetParams(ctx context.Context, site, camera string, params map[string]interface{}) (Ack, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Ack{}, fmt.Errorf("encode params: %w", err)
	}
	return s.send(ctx, command{Op: "set_params", SiteID: site, CameraID: camera, Params: raw})
}

func (s *Service) send(ctx context.Context, cmd command) (Ack, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return Ack{}, fmt.Errorf("encode %s command: %w", cmd.Op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	subject := fmt.Sprintf("%s.%s.%s", s.prefix, cmd.SiteID, cmd.CameraID)
	reply, err := s.requester.Request(ctx, subject, data)
	if err != nil {
		commands.WithLabelValues(cmd.Op, "unavailable").Inc()
		log.Error().
			Err(err).
			Str("op", cmd.Op).
			Str("site_id", cmd.SiteID).
			Str("camera_id", cmd.CameraID).
			Msg("Command relay failed")
		return Ack{}, fmt.Errorf("%w: %s %s/%s: %v", ErrUpstreamUnavailable, cmd.Op, cmd.SiteID, cmd.CameraID, err)
	}

	var ack Ack
	if err := json.Unmarshal(reply, &ack); err != nil {
		commands.WithLabelValues(cmd.Op, "bad_ack").Inc()
		log.Error().
			Err(err).
			Str("op", cmd.Op).
			Str("site_id", cmd.SiteID).
			Str("camera_id", cmd.CameraID).
			Msg("Command relay got unreadable ack")
		return Ack{}, fmt.Errorf("%w: %s %s/%s: unreadable ack", ErrUpstreamUnavailable, cmd.Op, cmd.SiteID, cmd.CameraID)
	}

	commands.WithLabelValues(cmd.Op, "acked").Inc()
	log.Debug().
		Str("op", cmd.Op).
		Str("site_id", cmd.SiteID).
		Str("camera_id", cmd.CameraID).
		Bool("ok", ack.OK).
		Msg("Command acknowledged")

	return ack, nil
}
