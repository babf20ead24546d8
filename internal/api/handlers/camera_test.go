package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveilens-control-plane/internal/config"
	"surveilens-control-plane/internal/models"
	"surveilens-control-plane/internal/services/journal"
	"surveilens-control-plane/internal/services/relay"
	"surveilens-control-plane/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pipelineCall struct {
	op     string
	site   string
	camera string
	source string
	params map[string]interface{}
}

type fakePipeline struct {
	calls []pipelineCall
	ack   relay.Ack
	err   error
}

func (f *fakePipeline) StartCamera(_ context.Context, site, camera, sourceURI string) (relay.Ack, error) {
	f.calls = append(f.calls, pipelineCall{op: "start", site: site, camera: camera, source: sourceURI})
	return f.ack, f.err
}

func (f *fakePipeline) StopCamera(_ context.Context, site, camera string) (relay.Ack, error) {
	f.calls = append(f.calls, pipelineCall{op: "stop", site: site, camera: camera})
	return f.ack, f.err
}

func (f *fakePipeline) SetParams(_ context.Context, site, camera string, params map[string]interface{}) (relay.Ack, error) {
	f.calls = append(f.calls, pipelineCall{op: "set_params", site: site, camera: camera, params: params})
	return f.ack, f.err
}

func perform(r *gin.Engine, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newCameraRouter(t *testing.T, pipeline PipelineClient, journal LogReader, defaultRTSP string) *gin.Engine {
	t.Helper()
	h := NewCameraHandler(pipeline, journal, defaultRTSP)
	r := gin.New()
	r.POST("/cameras/:site/:camera/start", h.StartCamera)
	r.POST("/cameras/:site/:camera/stop", h.StopCamera)
	r.GET("/cameras/:site/:camera/status", h.GetStatus)
	return r
}

func newTestJournal(t *testing.T) (*journal.Service, *store.Store) {
	t.Helper()
	st := store.New(16)
	svc, err := journal.NewService(&config.Config{
		JournalDir:  t.TempDir(),
		QuietWindow: 15 * time.Second,
	}, st)
	require.NoError(t, err)
	return svc, st
}

func TestCameraHandler_StartUsesQuerySource(t *testing.T) {
	pipeline := &fakePipeline{ack: relay.Ack{OK: true}}
	r := newCameraRouter(t, pipeline, nil, "")

	w := perform(r, http.MethodPost, "/cameras/s1/cam1/start?rtsp=rtsp://feed/1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	require.Len(t, pipeline.calls, 1)
	assert.Equal(t, pipelineCall{op: "start", site: "s1", camera: "cam1", source: "rtsp://feed/1"}, pipeline.calls[0])
}

func TestCameraHandler_StartFallsBackToDefaultSource(t *testing.T) {
	pipeline := &fakePipeline{ack: relay.Ack{OK: true}}
	r := newCameraRouter(t, pipeline, nil, "rtsp://default/0")

	w := perform(r, http.MethodPost, "/cameras/s1/cam1/start", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, pipeline.calls, 1)
	assert.Equal(t, "rtsp://default/0", pipeline.calls[0].source)
}

func TestCameraHandler_StartRejectsWithoutSource(t *testing.T) {
	pipeline := &fakePipeline{ack: relay.Ack{OK: true}}
	r := newCameraRouter(t, pipeline, nil, "")

	w := perform(r, http.MethodPost, "/cameras/s1/cam1/start", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"no rtsp source provided"}`, w.Body.String())
	assert.Empty(t, pipeline.calls)
}

func TestCameraHandler_StartMapsUpstreamFailure(t *testing.T) {
	pipeline := &fakePipeline{err: relay.ErrUpstreamUnavailable}
	r := newCameraRouter(t, pipeline, nil, "")

	w := perform(r, http.MethodPost, "/cameras/s1/cam1/start?rtsp=rtsp://feed/1", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"pipeline worker unavailable"}`, w.Body.String())
}

func TestCameraHandler_StartPassesRefusalThrough(t *testing.T) {
	pipeline := &fakePipeline{ack: relay.Ack{OK: false, Msg: "already running"}}
	r := newCameraRouter(t, pipeline, nil, "")

	w := perform(r, http.MethodPost, "/cameras/s1/cam1/start?rtsp=rtsp://feed/1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":false,"msg":"already running"}`, w.Body.String())
}

func TestCameraHandler_StopIgnoresAckPayload(t *testing.T) {
	pipeline := &fakePipeline{ack: relay.Ack{OK: false, Msg: "not running"}}
	r := newCameraRouter(t, pipeline, nil, "")

	w := perform(r, http.MethodPost, "/cameras/s1/cam1/stop", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	require.Len(t, pipeline.calls, 1)
	assert.Equal(t, "stop", pipeline.calls[0].op)
}

func TestCameraHandler_StopMapsUpstreamFailure(t *testing.T) {
	pipeline := &fakePipeline{err: errors.New("nats: timeout")}
	r := newCameraRouter(t, pipeline, nil, "")

	w := perform(r, http.MethodPost, "/cameras/s1/cam1/stop", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestCameraHandler_StatusReturnsLatestEntry(t *testing.T) {
	svc, _ := newTestJournal(t)
	_, err := svc.Record(models.DetectionEvent{
		TS:        time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		SiteID:    "s1",
		CameraID:  "cam1",
		RiskLocal: 0.9,
		Level:     models.SeverityHigh,
	})
	require.NoError(t, err)

	r := newCameraRouter(t, &fakePipeline{}, svc, "")

	w := perform(r, http.MethodGet, "/cameras/s1/cam1/status", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"threat"`)
	assert.Contains(t, w.Body.String(), `"camera_id":"cam1"`)
}

func TestCameraHandler_StatusEmptyWhenNoEntries(t *testing.T) {
	svc, _ := newTestJournal(t)
	r := newCameraRouter(t, &fakePipeline{}, svc, "")

	w := perform(r, http.MethodGet, "/cameras/s1/cam1/status", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, w.Body.String())
}
