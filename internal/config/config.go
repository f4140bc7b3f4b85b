package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Keys      APIKeys
	Ai        AIConfig
	Synthesis SynthesisConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	LogLevel           string
	EventLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	NatsStreamMaxAge   time.Duration
	NatsDedupeWindow   time.Duration
	RedisURL           string
	JwtSecret          string
	AuthEnabled        bool
}

type APIKeys struct {
	HuggingFace string
	Anthropic   string
	OpenAI      string
}

// ChannelBackendConfig selects the LLM provider behind one synthesis channel
type ChannelBackendConfig struct {
	Provider  string // "ollama", "huggingface", "anthropic", "openai"
	Model     string
	BaseURL   string
	MaxTokens int
}

type AIConfig struct {
	OllamaBaseURL string
	OpenAIBaseURL string
	Channels      map[string]ChannelBackendConfig // keyed by channel name
}

type SynthesisConfig struct {
	TuningFile      string
	DispatchTimeout time.Duration // overrides the tuning file when > 0
	CacheTTL        time.Duration
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	SampleRatio float64
}

// ChannelNames are the env prefixes read for per-channel backends
var ChannelNames = []string{"emotional", "analytical", "transcendent"}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	ollamaBaseURL := getEnv("OLLAMA_BASE_URL", "http://localhost:11434")
	defaultProvider := getEnv("LLM_PROVIDER", "ollama")
	defaultModel := getEnv("LLM_MODEL", "llama3")

	channels := make(map[string]ChannelBackendConfig, len(ChannelNames))
	for _, name := range ChannelNames {
		prefix := "CHANNEL_" + strings.ToUpper(name) + "_"
		channels[name] = ChannelBackendConfig{
			Provider:  getEnv(prefix+"PROVIDER", defaultProvider),
			Model:     getEnv(prefix+"MODEL", defaultModel),
			BaseURL:   getEnv(prefix+"BASE_URL", ""),
			MaxTokens: getEnvAsInt(prefix+"MAX_TOKENS", 400),
		}
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LogLevel:           getEnv("LOG_LEVEL", ""),
			EventLogFilePath:   getEnv("EVENT_LOG_FILE_PATH", "logs/synthesis_events.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			NatsStreamMaxAge:   getEnvAsDuration("NATS_STREAM_MAX_AGE", 7*24*time.Hour),
			NatsDedupeWindow:   getEnvAsDuration("NATS_DEDUPE_WINDOW", 2*time.Minute),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			AuthEnabled:        getEnvAsBool("AUTH_ENABLED", false),
		},
		Keys: APIKeys{
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
			Anthropic:   getEnv("ANTHROPIC_API_KEY", ""),
			OpenAI:      getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			OllamaBaseURL: ollamaBaseURL,
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			Channels:      channels,
		},
		Synthesis: SynthesisConfig{
			TuningFile:      getEnv("SYNTHESIS_TUNING_FILE", "configs/tuning.yaml"),
			DispatchTimeout: getEnvAsDuration("SYNTHESIS_DISPATCH_TIMEOUT", 0),
			CacheTTL:        getEnvAsDuration("SYNTHESIS_CACHE_TTL", 30*time.Minute),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "ai-synthesis-backend"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1.0),
		},
	}
}

// ErrMissingJwtSecret is returned by Validate when AUTH_ENABLED is set without JWT_SECRET
var ErrMissingJwtSecret = errors.New("AUTH_ENABLED requires JWT_SECRET")

// Validate reports settings that cannot start a safe server
func (c *Config) Validate() error {
	if c.App.AuthEnabled && c.App.JwtSecret == "" {
		return ErrMissingJwtSecret
	}
	return nil
}

// IsProduction reports whether GO_ENV is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
