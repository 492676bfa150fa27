package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPebble   = "pebble"
	BackendPostgres = "postgres"
)

type Config struct {
	ServiceName string
	LogLevel    string
	HTTPAddr    string
	GRPCAddr    string
	ObsHTTPAddr string

	StoreBackend   string
	PebblePath     string
	DatabaseURL    string
	OpTimeout      time.Duration
	CASMaxAttempts int

	RedisAddr string
	CacheTTL  time.Duration

	KafkaBrokers        []string
	KafkaTopic          string
	EventsEnabled       bool
	RepairWorkerEnabled bool
	RepairGroupID       string
	RepairBackoff       time.Duration

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	TracingEnabled bool
	JaegerURL      string
}

// Load reads the configuration from the environment after merging an
// optional .env file from the working directory. Variables already set in
// the environment win over the file.
func Load() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "convsync"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPAddr:    fixPort(getEnv("HTTP_ADDR", ":8080")),
		GRPCAddr:    fixPort(getEnv("GRPC_ADDR", ":50060")),
		ObsHTTPAddr: fixPort(getEnv("OBS_HTTP_ADDR", ":8090")),

		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		PebblePath:     getEnv("PEBBLE_PATH", "./data/convsync"),
		OpTimeout:      getEnvDuration("OP_TIMEOUT", 5*time.Second),
		CASMaxAttempts: getEnvInt("CAS_MAX_ATTEMPTS", 8),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		CacheTTL:  getEnvDuration("CACHE_TTL", 10*time.Minute),

		KafkaBrokers:        splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "conversation-events"),
		EventsEnabled:       getEnvBool("EVENTS_ENABLED", false),
		RepairWorkerEnabled: getEnvBool("REPAIR_WORKER_ENABLED", false),
		RepairGroupID:       getEnv("REPAIR_GROUP_ID", "convsync-repair"),
		RepairBackoff:       getEnvDuration("REPAIR_BACKOFF", time.Second),

		JWTSecret:   mustEnv("JWT_SECRET"),
		JWTIssuer:   getEnv("JWT_ISSUER", ""),
		JWTAudience: getEnv("JWT_AUDIENCE", ""),

		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		JaegerURL:      getEnv("JAEGER_URL", "http://localhost:14268/api/traces"),
	}

	switch cfg.StoreBackend {
	case BackendMemory, BackendPebble:
	case BackendPostgres:
		cfg.DatabaseURL = mustEnv("DATABASE_URL")
	default:
		panic("unknown STORE_BACKEND: " + cfg.StoreBackend)
	}
	if (cfg.EventsEnabled || cfg.RepairWorkerEnabled) && len(cfg.KafkaBrokers) == 0 {
		panic("KAFKA_BROKERS is required when events or the repair worker are enabled")
	}

	return cfg
}

func fixPort(port string) string {
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v == "true"
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic("invalid integer in env " + key + ": " + v)
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic("invalid duration in env " + key + ": " + v)
	}
	return d
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing required env: " + k)
	}
	return v
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
