package models

import (
	"time"
)

// Severity represents the locally-assigned threat level of a detection
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Elevated reports whether the severity triggers alerting
func (s Severity) Elevated() bool {
	return s == SeverityMedium || s == SeverityHigh
}

// Observation represents a single named detection with its confidence
type Observation struct {
	Name string  `json:"name"`
	Conf float64 `json:"conf"`
}

// DetectionEvent represents one per-frame detection record from the
// edge pipeline. Events arrive over NATS or the HTTP ingest route.
type DetectionEvent struct {
	ID        string    `json:"id,omitempty"`
	TS        time.Time `json:"ts"`
	SiteID    string    `json:"site_id"`
	CameraID  string    `json:"camera_id"`
	RiskLocal float64   `json:"risk_local"`
	Level     Severity  `json:"level_local"`
	FrameID   int64     `json:"frame_id,omitempty"`

	Objects    []Observation `json:"objects,omitempty"`
	Actions    []Observation `json:"actions,omitempty"`
	Zones      []string      `json:"zones,omitempty"`
	AudioFlags []Observation `json:"audio_flags,omitempty"`
}

// QuietKey returns the quiet-window key for the event's camera
func (e DetectionEvent) QuietKey() QuietKey {
	return QuietKey{SiteID: e.SiteID, CameraID: e.CameraID}
}

// QuietKey identifies the quiet-window state for one camera at one site
type QuietKey struct {
	SiteID   string
	CameraID string
}

// String returns a string representation of the quiet-window key
func (k QuietKey) String() string {
	return k.SiteID + "|" + k.CameraID
}
