package transcribe

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"surveilens-control-plane/internal/config"
)

// phraseRingSize bounds the retained transcript snippets
const phraseRingSize = 32

// Service listens to the speech-transcription stream when a URL is
// configured. Recent transcript text is kept in a small in-memory ring
// for the diagnostics surface; nothing on the alerting path depends on
// this stream, and a dead stream only means reconnect attempts.
type Service struct {
	url           string
	reconnectWait time.Duration

	mu        sync.RWMutex
	phrases   []string
	connected bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new transcript intake service
func NewService(cfg *config.Config) (*Service, error) {
	s := &Service{
		url:           cfg.TranscriptWSURL,
		reconnectWait: cfg.TranscriptReconnect,
	}

	if s.url == "" {
		log.Info().Msg("Transcript intake disabled, no URL configured")
	} else {
		log.Info().Str("url", s.url).Msg("Transcript intake initialized")
	}

	return s, nil
}

// Start launches the listener loop. A no-op while disabled.
func (s *Service) Start() {
	if s.url == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx)
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	for {
		if err := s.listen(ctx); err != nil && ctx.Err() == nil {
			log.Debug().Err(err).Msg("Transcript stream closed, reconnecting")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.reconnectWait):
		}
	}
}

func (s *Service) listen(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	s.setConnected(true)
	defer s.setConnected(false)

	// Unblock the read loop when shutdown lands mid-read.
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stopped:
		}
	}()

	hello, err := json.Marshal(map[string]string{"hello": "world"})
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		return err
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		s.capture(data)
	}
}

// capture accepts either bare text frames or {"text": "..."} payloads
func (s *Service) capture(data []byte) {
	text := string(data)
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Text != "" {
		text = payload.Text
	}

	s.mu.Lock()
	s.phrases = append(s.phrases, text)
	if len(s.phrases) > phraseRingSize {
		s.phrases = s.phrases[len(s.phrases)-phraseRingSize:]
	}
	s.mu.Unlock()
}

func (s *Service) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}

// Connected reports whether the stream is currently attached
func (s *Service) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Phrases returns the retained transcript snippets, oldest first
func (s *Service) Phrases() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.phrases))
	copy(out, s.phrases)
	return out
}

// Shutdown stops the listener loop
func (s *Service) Shutdown(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
