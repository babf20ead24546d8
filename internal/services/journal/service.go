package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"surveilens-control-plane/internal/config"
	"surveilens-control-plane/internal/models"
	"surveilens-control-plane/internal/store"
)

var (
	entriesWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "surveilens_journal_entries_total",
		Help: "Journal entries persisted, by status",
	}, []string{"status"})
	entriesSuppressed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "surveilens_journal_suppressed_total",
		Help: "Clear-status events suppressed inside the quiet window",
	})
	writeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "surveilens_journal_write_failures_total",
		Help: "Journal entries that failed to persist",
	})
)

func init() {
	prometheus.MustRegister(entriesWritten, entriesSuppressed, writeFailures)
}

// Service persists the camera status journal: one JSON file per entry,
// threat entries always, no_threat heartbeats at most once per quiet
// window per camera.
type Service struct {
	dir    string
	window time.Duration
	store  *store.Store
	now    func() time.Time
}

// NewService creates a new journal service
func NewService(cfg *config.Config, st *store.Store) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if err := os.MkdirAll(cfg.JournalDir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	s := &Service{
		dir:    cfg.JournalDir,
		window: cfg.QuietWindow,
		store:  st,
		now:    time.Now,
	}

	log.Info().
		Str("dir", s.dir).
		Dur("quiet_window", s.window).
		Msg("Journal service initialized")

	return s, nil
}

// Record applies the quiet-window policy to one detection event and
// returns whether an entry was persisted. Elevated events always
// persist a threat entry; everything else persists a no_threat
// heartbeat only when the camera's window has elapsed. Both paths
// advance the camera's window timestamp, and only after the write
// succeeds, so a failed write does not swallow the next heartbeat.
//
// The window check and the timestamp update are two separate store
// calls with no lock across them; concurrent events for one camera may
// both observe an expired window and both emit.
func (s *Service) Record(ev models.DetectionEvent) (bool, error) {
	key := ev.QuietKey()
	now := s.now()

	if ev.Level.Elevated() {
		if err := s.write(threatEntry(ev)); err != nil {
			writeFailures.Inc()
			return false, err
		}
		s.store.SetLastEmit(key, now)
		entriesWritten.WithLabelValues(string(models.LogStatusThreat)).Inc()
		return true, nil
	}

	if last, ok := s.store.LastEmit(key); ok && now.Sub(last) < s.window {
		entriesSuppressed.Inc()
		return false, nil
	}

	if err := s.write(heartbeatEntry(ev, s.window)); err != nil {
		writeFailures.Inc()
		return false, err
	}
	s.store.SetLastEmit(key, now)
	entriesWritten.WithLabelValues(string(models.LogStatusNoThreat)).Inc()
	return true, nil
}

// Latest returns the most-recently-modified persisted entry for the
// site and camera, or found=false when none exists yet
func (s *Service) Latest(site, camera string) (models.LogEntry, bool, error) {
	prefix := fmt.Sprintf("%s_%s", site, camera)

	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return models.LogEntry{}, false, nil
		}
		return models.LogEntry{}, false, fmt.Errorf("read journal dir: %w", err)
	}

	var latestPath string
	var latestMod time.Time
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if latestPath == "" || info.ModTime().After(latestMod) {
			latestPath = filepath.Join(s.dir, e.Name())
			latestMod = info.ModTime()
		}
	}
	if latestPath == "" {
		return models.LogEntry{}, false, nil
	}

	data, err := os.ReadFile(latestPath)
	if err != nil {
		return models.LogEntry{}, false, fmt.Errorf("read journal entry: %w", err)
	}
	var entry models.LogEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return models.LogEntry{}, false, fmt.Errorf("decode journal entry %s: %w", filepath.Base(latestPath), err)
	}
	return entry, true, nil
}

// write persists one entry as its own file. Same site, camera, and
// timestamp name the same file, so a repeat write overwrites.
func (s *Service) write(entry models.LogEntry) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%s.json", entry.SiteID, entry.CameraID, entry.TS.UTC().Format(time.RFC3339))
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write journal entry: %w", err)
	}

	log.Debug().
		Str("site_id", entry.SiteID).
		Str("camera_id", entry.CameraID).
		Str("status", string(entry.Status)).
		Msg("Journal entry written")

	return nil
}

func threatEntry(ev models.DetectionEvent) models.LogEntry {
	risk := ev.RiskLocal
	return models.LogEntry{
		TS:         ev.TS,
		SiteID:     ev.SiteID,
		CameraID:   ev.CameraID,
		Status:     models.LogStatusThreat,
		Level:      ev.Level,
		Risk:       &risk,
		Reason:     "local_risk",
		Objects:    ev.Objects,
		Actions:    ev.Actions,
		Zones:      ev.Zones,
		AudioFlags: ev.AudioFlags,
	}
}

func heartbeatEntry(ev models.DetectionEvent, window time.Duration) models.LogEntry {
	return models.LogEntry{
		TS:        ev.TS,
		SiteID:    ev.SiteID,
		CameraID:  ev.CameraID,
		Status:    models.LogStatusNoThreat,
		WindowSec: int(window.Seconds()),
	}
}
