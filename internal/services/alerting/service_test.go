package alerting

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveilens-control-plane/internal/models"
	"surveilens-control-plane/internal/store"
)

type fakeEnricher struct {
	alerts []models.AlertRecord
}

func (f *fakeEnricher) Dispatch(alert models.AlertRecord) {
	f.alerts = append(f.alerts, alert)
}

type fakeNotifier struct {
	calls []string
}

func (f *fakeNotifier) Notify(role models.NotifyRole, alertID string) {
	f.calls = append(f.calls, string(role)+":"+alertID)
}

type fakeJournal struct {
	events []models.DetectionEvent
	err    error
}

func (f *fakeJournal) Record(ev models.DetectionEvent) (bool, error) {
	f.events = append(f.events, ev)
	if f.err != nil {
		return false, f.err
	}
	return true, nil
}

func newTestService(t *testing.T) (*Service, *store.Store, *fakeEnricher, *fakeNotifier, *fakeJournal) {
	t.Helper()
	st := store.New(16)
	enr := &fakeEnricher{}
	not := &fakeNotifier{}
	jrn := &fakeJournal{}
	svc, err := NewService(st, jrn, enr, not)
	require.NoError(t, err)
	return svc, st, enr, not, jrn
}

func event(level models.Severity) models.DetectionEvent {
	return models.DetectionEvent{
		TS:        time.Date(2025, 6, 1, 2, 15, 0, 0, time.UTC),
		SiteID:    "s1",
		CameraID:  "cam1",
		RiskLocal: 0.74,
		Level:     level,
		Objects:   []models.Observation{{Name: "person", Conf: 0.91}},
		Zones:     []string{"atm_lobby"},
	}
}

func TestService_ElevatedEventRaisesAlert(t *testing.T) {
	svc, st, enr, not, jrn := newTestService(t)

	id, err := svc.HandleEvent(event(models.SeverityMedium))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, ok := st.Get(id)
	require.True(t, ok)
	assert.Equal(t, models.SeverityMedium, rec.Level)
	assert.Equal(t, 0.74, rec.Risk)
	assert.Equal(t, []string{"atm_lobby"}, rec.Zones)

	require.Len(t, enr.alerts, 1)
	assert.Equal(t, id, enr.alerts[0].ID)

	assert.Equal(t, []string{"owner:" + id}, not.calls)

	require.Len(t, jrn.events, 1)
	assert.Equal(t, id, jrn.events[0].ID, "the journal sees the same id the caller gets back")
}

func TestService_HighSeverityEscalatesToResponder(t *testing.T) {
	svc, _, _, not, _ := newTestService(t)

	id, err := svc.HandleEvent(event(models.SeverityHigh))
	require.NoError(t, err)

	assert.Equal(t, []string{"owner:" + id, "responder:" + id}, not.calls)
}

func TestService_ClearEventOnlyJournals(t *testing.T) {
	svc, st, enr, not, jrn := newTestService(t)

	id, err := svc.HandleEvent(event(models.SeverityNone))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	assert.Equal(t, 0, st.Len())
	assert.Empty(t, enr.alerts)
	assert.Empty(t, not.calls)
	assert.Len(t, jrn.events, 1)
}

func TestService_KeepsUpstreamID(t *testing.T) {
	svc, st, _, _, _ := newTestService(t)

	ev := event(models.SeverityMedium)
	ev.ID = "evt-7"

	id, err := svc.HandleEvent(ev)
	require.NoError(t, err)
	assert.Equal(t, "evt-7", id)

	_, ok := st.Get("evt-7")
	assert.True(t, ok)
}

func TestService_JournalFailureDoesNotRollBack(t *testing.T) {
	svc, st, enr, not, jrn := newTestService(t)
	jrn.err = errors.New("disk full")

	id, err := svc.HandleEvent(event(models.SeverityMedium))
	require.Error(t, err)
	assert.NotEmpty(t, id)

	_, ok := st.Get(id)
	assert.True(t, ok, "the stored alert stands even when the journal write fails")
	assert.Len(t, enr.alerts, 1)
	assert.NotEmpty(t, not.calls)
}
