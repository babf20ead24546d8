package models

import (
	"time"
)

// LogStatus represents the outcome class a journal entry records
type LogStatus string

const (
	LogStatusThreat   LogStatus = "threat"
	LogStatusNoThreat LogStatus = "no_threat"
)

// LogEntry represents one persisted journal record. Threat entries
// carry the detection summary; quiet-window heartbeats carry only the
// window length.
type LogEntry struct {
	TS       time.Time `json:"ts"`
	SiteID   string    `json:"site_id"`
	CameraID string    `json:"camera_id"`
	Status   LogStatus `json:"status"`

	// Present on threat entries
	Level        Severity      `json:"level,omitempty"`
	Risk         *float64      `json:"risk,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	Objects      []Observation `json:"objects,omitempty"`
	Actions      []Observation `json:"actions,omitempty"`
	Zones        []string      `json:"zones,omitempty"`
	AudioFlags   []Observation `json:"audio_flags,omitempty"`
	AudioPhrases []string      `json:"audio_phrases,omitempty"`

	// Present on no_threat heartbeats
	WindowSec int `json:"window_sec,omitempty"`
}
