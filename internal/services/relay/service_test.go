package relay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveilens-control-plane/internal/config"
)

type fakeRequester struct {
	mu       sync.Mutex
	subjects []string
	payloads [][]byte
	reply    []byte
	err      error
}

func (f *fakeRequester) Request(ctx context.Context, subject string, data []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func newTestService(t *testing.T, fake *fakeRequester) *Service {
	t.Helper()
	cfg := &config.Config{CommandSubjectPrefix: "pipeline.commands", RelayTimeout: time.Second}
	svc, err := NewService(cfg, fake)
	require.NoError(t, err)
	return svc
}

func TestService_StartCamera(t *testing.T) {
	fake := &fakeRequester{reply: []byte(`{"ok":true,"msg":"started"}`)}
	svc := newTestService(t, fake)

	ack, err := svc.StartCamera(context.Background(), "s1", "cam1", "rtsp://gw.local/cam1")
	require.NoError(t, err)
	assert.True(t, ack.OK)
	assert.Equal(t, "started", ack.Msg)

	require.Len(t, fake.subjects, 1)
	assert.Equal(t, "pipeline.commands.s1.cam1", fake.subjects[0])

	var cmd map[string]interface{}
	require.NoError(t, json.Unmarshal(fake.payloads[0], &cmd))
	assert.Equal(t, "start", cmd["op"])
	assert.Equal(t, "s1", cmd["site_id"])
	assert.Equal(t, "cam1", cmd["camera_id"])
	assert.Equal(t, "rtsp://gw.local/cam1", cmd["source_uri"])
}

func TestService_StopCameraOmitsSource(t *testing.T) {
	fake := &fakeRequester{reply: []byte(`{"ok":true}`)}
	svc := newTestService(t, fake)

	ack, err := svc.StopCamera(context.Background(), "s1", "cam1")
	require.NoError(t, err)
	assert.True(t, ack.OK)

	var cmd map[string]interface{}
	require.NoError(t, json.Unmarshal(fake.payloads[0], &cmd))
	assert.Equal(t, "stop", cmd["op"])
	assert.NotContains(t, cmd, "source_uri")
	assert.NotContains(t, cmd, "params")
}

func TestService_SetParamsPassesOpaqueJSON(t *testing.T) {
	fake := &fakeRequester{reply: []byte(`{"ok":true}`)}
	svc := newTestService(t, fake)

	params := map[string]interface{}{
		"threshold": 0.7,
		"zones":     []interface{}{"atm_lobby"},
	}
	_, err := svc.SetParams(context.Background(), "s1", "cam1", params)
	require.NoError(t, err)

	var cmd struct {
		Op     string                 `json:"op"`
		Params map[string]interface{} `json:"params"`
	}
	require.NoError(t, json.Unmarshal(fake.payloads[0], &cmd))
	assert.Equal(t, "set_params", cmd.Op)
	assert.Equal(t, params, cmd.Params)
}

// A worker that answers but refuses is not a transport failure: the
// refusal comes back as a value.
func TestService_RefusalAckPassesThrough(t *testing.T) {
	fake := &fakeRequester{reply: []byte(`{"ok":false,"msg":"no capacity"}`)}
	svc := newTestService(t, fake)

	ack, err := svc.StartCamera(context.Background(), "s1", "cam1", "rtsp://gw.local/cam1")
	require.NoError(t, err)
	assert.False(t, ack.OK)
	assert.Equal(t, "no capacity", ack.Msg)
}

func TestService_TransportErrorMapsUnavailable(t *testing.T) {
	fake := &fakeRequester{err: errors.New("nats: timeout")}
	svc := newTestService(t, fake)

	_, err := svc.StartCamera(context.Background(), "s1", "cam1", "rtsp://gw.local/cam1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Len(t, fake.subjects, 1, "one request per call, never a retry")
}

func TestService_UnreadableAckMapsUnavailable(t *testing.T) {
	fake := &fakeRequester{reply: []byte(`not json`)}
	svc := newTestService(t, fake)

	_, err := svc.StopCamera(context.Background(), "s1", "cam1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}
