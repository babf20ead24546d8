package models

import (
	"time"
)

// AlertRecord represents one stored alert. The identity and detection
// summary fields are written once at creation; Enrichment is the only
// field mutated afterwards (by the enrichment merge).
type AlertRecord struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	SiteID   string    `json:"site_id"`
	CameraID string    `json:"camera_id"`
	Level    Severity  `json:"level"`
	Risk     float64   `json:"risk"`
	FrameID  int64     `json:"frame_id,omitempty"`

	Objects    []Observation `json:"objects,omitempty"`
	Actions    []Observation `json:"actions,omitempty"`
	Zones      []string      `json:"zones,omitempty"`
	AudioFlags []Observation `json:"audio_flags,omitempty"`

	// Enrichment holds the advisory analysis merged in after the fact.
	// Readers may observe the record before or after the merge lands.
	Enrichment map[string]interface{} `json:"enrichment,omitempty"`
}

// QuietKey returns the quiet-window key for the record's camera
func (r AlertRecord) QuietKey() QuietKey {
	return QuietKey{SiteID: r.SiteID, CameraID: r.CameraID}
}

// NotifyRole represents a notification audience
type NotifyRole string

const (
	NotifyRoleOwner     NotifyRole = "owner"
	NotifyRoleResponder NotifyRole = "responder"
)
