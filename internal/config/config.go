package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Application
	Version     string
	Environment string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// NATS (for messaging and the command relay)
	// Default: nats://localhost:4222 (works with Docker Compose setup)
	// Docker: Use nats://nats:4222 if running in Docker
	NatsURL            string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	NatsDrainTimeout   time.Duration // For graceful shutdown

	// Detection event intake
	EventsSubject string
	EventsQueue   string

	// Command relay to the edge pipeline
	CommandSubjectPrefix string
	RelayTimeout         time.Duration
	DefaultRTSP          string

	// Alert retention (in-memory, LRU-bounded)
	AlertsCapacity int

	// Status journal
	JournalDir  string
	QuietWindow time.Duration

	// Enrichment callout (disabled while the endpoint is empty)
	EnrichEndpoint string
	EnrichAPIKey   string
	EnrichTimeout  time.Duration

	// Notification webhooks (each role disabled while its URL is empty)
	OwnerWebhookURL     string
	ResponderWebhookURL string
	WebhookTimeout      time.Duration

	// Speech transcript intake (disabled while the URL is empty)
	TranscriptWSURL     string
	TranscriptReconnect time.Duration

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found or error loading .env file, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	return &Config{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnvInt("PORT", 8080),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy (lightweight web log viewer)
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", true),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8081),

		// NATS (configured for Docker Compose setup)
		NatsURL:            getNatsURL(),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", -1), // -1 = unlimited
		NatsDrainTimeout:   getEnvDuration("NATS_DRAIN_TIMEOUT", 5*time.Second),

		// Detection event intake
		EventsSubject: getEnv("EVENTS_SUBJECT", "pipeline.events"),
		EventsQueue:   getEnv("EVENTS_QUEUE", "control-plane"),

		// Command relay
		CommandSubjectPrefix: getEnv("COMMAND_SUBJECT_PREFIX", "pipeline.commands"),
		RelayTimeout:         getEnvDuration("RELAY_TIMEOUT", 10*time.Second),
		DefaultRTSP:          getEnv("DEFAULT_RTSP", ""),

		// Alert retention
		AlertsCapacity: getEnvInt("ALERTS_CAPACITY", 1024),

		// Status journal
		JournalDir:  getEnv("JSONLOG_DIR", "data/jsonlogs"),
		QuietWindow: getEnvDuration("QUIET_WINDOW", 15*time.Second),

		// Enrichment
		EnrichEndpoint: getEnv("NEURALSEEK_ENDPOINT", ""),
		EnrichAPIKey:   getEnv("NEURALSEEK_API_KEY", ""),
		EnrichTimeout:  getEnvDuration("ENRICH_TIMEOUT", 5*time.Second),

		// Notification webhooks
		OwnerWebhookURL:     getEnv("SLACK_WEBHOOK_URL", ""),
		ResponderWebhookURL: getEnv("SLACK_WEBHOOK_URL_RESPONDER", ""),
		WebhookTimeout:      getEnvDuration("WEBHOOK_TIMEOUT", 10*time.Second),

		// Speech transcript intake
		TranscriptWSURL:     getEnv("ELEVENLABS_WS_URL", ""),
		TranscriptReconnect: getEnvDuration("STT_RECONNECT_WAIT", 5*time.Second),

		// Graceful Shutdown
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Helper functions for Docker environment detection
func isRunningInDocker() bool {
	// Check for Docker-specific environment indicators
	if os.Getenv("DOCKER_CONTAINER") == "true" {
		return true
	}

	// Check for .dockerenv file
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	return false
}

// getNatsURL returns the appropriate NATS URL based on environment
func getNatsURL() string {
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		return envURL
	}

	// If running in Docker, use service name; otherwise use localhost
	if isRunningInDocker() {
		return "nats://nats:4222"
	}

	return "nats://localhost:4222"
}
