package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveilens-control-plane/internal/config"
)

func TestService_CapturesTranscriptFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	helloCh := make(chan []byte, 1)
	hold := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, hello, err := conn.ReadMessage()
		if err != nil {
			return
		}
		helloCh <- hello

		_ = conn.WriteMessage(websocket.TextMessage, []byte("suspect raised voice"))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"text":"hand over the cash"}`))
		<-hold
	}))
	defer srv.Close()
	defer close(hold)

	cfg := &config.Config{
		TranscriptWSURL:     "ws" + strings.TrimPrefix(srv.URL, "http"),
		TranscriptReconnect: 50 * time.Millisecond,
	}
	svc, err := NewService(cfg)
	require.NoError(t, err)

	svc.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		assert.NoError(t, svc.Shutdown(ctx))
	}()

	select {
	case hello := <-helloCh:
		assert.JSONEq(t, `{"hello":"world"}`, string(hello))
	case <-time.After(2 * time.Second):
		t.Fatal("no hello frame received")
	}

	require.Eventually(t, func() bool {
		return len(svc.Phrases()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	phrases := svc.Phrases()
	assert.Equal(t, []string{"suspect raised voice", "hand over the cash"}, phrases)
	assert.True(t, svc.Connected())
}

func TestService_PhraseRingIsBounded(t *testing.T) {
	svc, err := NewService(&config.Config{})
	require.NoError(t, err)

	for i := 0; i < phraseRingSize+10; i++ {
		svc.capture([]byte("phrase"))
	}
	assert.Len(t, svc.Phrases(), phraseRingSize)
}

func TestService_DisabledWithoutURL(t *testing.T) {
	svc, err := NewService(&config.Config{})
	require.NoError(t, err)

	svc.Start()
	assert.False(t, svc.Connected())
	assert.Empty(t, svc.Phrases())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, svc.Shutdown(ctx))
}

func TestService_ReconnectsAfterServerDrop(t *testing.T) {
	upgrader := websocket.Upgrader{}
	conns := make(chan struct{}, 8)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- struct{}{}
		conn.Close()
	}))
	defer srv.Close()

	cfg := &config.Config{
		TranscriptWSURL:     "ws" + strings.TrimPrefix(srv.URL, "http"),
		TranscriptReconnect: 20 * time.Millisecond,
	}
	svc, err := NewService(cfg)
	require.NoError(t, err)

	svc.Start()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = svc.Shutdown(ctx)
	}()

	require.Eventually(t, func() bool {
		return len(conns) >= 2
	}, 2*time.Second, 10*time.Millisecond, "a dropped stream is re-dialed")
}
