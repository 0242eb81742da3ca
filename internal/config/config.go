// Package config loads the service configuration from an optional YAML file
// overlaid by TRIAGE_* environment variables. A .env file in the working
// directory is read first and never overrides variables already set.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/triage/internal/logging"
	"github.com/aretw0/triage/internal/retry"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "triage.yaml"

// Backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPGVector = "pgvector"

	EmbedderHashing = "hashing"
	EmbedderOllama  = "ollama"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Reasoner  ReasonerConfig  `yaml:"reasoner"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Reference ReferenceConfig `yaml:"reference"`
	Store     StoreConfig     `yaml:"store"`
	Intake    IntakeConfig    `yaml:"intake"`

	StageTimeout time.Duration   `yaml:"stage_timeout"`
	Retry        retry.Policy    `yaml:"retry"`
	Log          logging.Options `yaml:"log"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	APIKey          string        `yaml:"api_key"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Metrics         bool          `yaml:"metrics"`
}

// ReasonerConfig configures the OpenAI-compatible reasoning service.
type ReasonerConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// EmbeddingConfig selects the embedder used by the reference store.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// ReferenceConfig selects the reference store.
type ReferenceConfig struct {
	Backend string `yaml:"backend"`
	DSN     string `yaml:"dsn"`
	TopK    int    `yaml:"top_k"`
	// AutoSeed indexes the seed documents on startup when a collection is short.
	AutoSeed bool `yaml:"auto_seed"`
}

// StoreConfig selects the session and result stores.
type StoreConfig struct {
	Backend    string        `yaml:"backend"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	ResultTTL  time.Duration `yaml:"result_ttl"`
	Redis      RedisConfig   `yaml:"redis"`

	// EncryptionKey seals stored answers when set (32 bytes, hex or base64).
	EncryptionKey   string   `yaml:"encryption_key"`
	FallbackKeys    []string `yaml:"fallback_keys"`
	DistributedLock bool     `yaml:"distributed_lock"`
	// LockTTL is the lease of the distributed session lock.
	LockTTL time.Duration `yaml:"lock_ttl"`
	// CleanupInterval is how often the memory stores purge expired entries.
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// IntakeConfig tunes the questionnaire.
type IntakeConfig struct {
	MaxInputSize int `yaml:"max_input_size"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 15 * time.Second,
			Metrics:         true,
		},
		Reasoner: ReasonerConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0.2,
			Timeout:     60 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Provider:   EmbedderHashing,
			BaseURL:    "http://localhost:11434",
			Model:      "nomic-embed-text",
			Dimensions: 768,
		},
		Reference: ReferenceConfig{
			Backend:  BackendMemory,
			TopK:     5,
			AutoSeed: true,
		},
		Store: StoreConfig{
			Backend:    BackendMemory,
			SessionTTL:      24 * time.Hour,
			ResultTTL:       24 * time.Hour,
			LockTTL:         30 * time.Second,
			CleanupInterval: 10 * time.Minute,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "triage:",
			},
		},
		Intake:       IntakeConfig{MaxInputSize: 4096},
		StageTimeout: 60 * time.Second,
		Retry:        retry.DefaultPolicy(),
		Log: logging.Options{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (or
// DefaultFile when path is empty and the file exists), the given .env files
// and the environment, in that order of precedence.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.readFile(path, explicit); err != nil {
		return nil, err
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Store.Backend != BackendMemory && c.Store.Backend != BackendRedis {
		errs = append(errs, fmt.Errorf("store.backend must be %q or %q, got %q", BackendMemory, BackendRedis, c.Store.Backend))
	}
	if c.Reference.Backend != BackendMemory && c.Reference.Backend != BackendPGVector {
		errs = append(errs, fmt.Errorf("reference.backend must be %q or %q, got %q", BackendMemory, BackendPGVector, c.Reference.Backend))
	}
	if c.Reference.Backend == BackendPGVector && c.Reference.DSN == "" {
		errs = append(errs, errors.New("reference.dsn is required for the pgvector backend"))
	}
	if c.Embedding.Provider != EmbedderHashing && c.Embedding.Provider != EmbedderOllama {
		errs = append(errs, fmt.Errorf("embedding.provider must be %q or %q, got %q", EmbedderHashing, EmbedderOllama, c.Embedding.Provider))
	}
	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, errors.New("embedding.dimensions must be positive"))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry.max_attempts must be at least 1"))
	}
	if c.Store.SessionTTL <= 0 {
		errs = append(errs, errors.New("store.session_ttl must be positive"))
	}
	if c.Store.LockTTL <= 0 {
		errs = append(errs, errors.New("store.lock_ttl must be positive"))
	}
	if c.Store.CleanupInterval <= 0 {
		errs = append(errs, errors.New("store.cleanup_interval must be positive"))
	}
	if c.Intake.MaxInputSize <= 0 {
		errs = append(errs, errors.New("intake.max_input_size must be positive"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

type lookupFunc func(string) (string, bool)

// applyEnv overlays TRIAGE_* variables. OPENAI_API_KEY is honored when
// TRIAGE_REASONER_API_KEY is unset.
func (c *Config) applyEnv(lookup lookupFunc) error {
	e := envReader{lookup: lookup}

	e.str("TRIAGE_SERVER_ADDR", &c.Server.Addr)
	e.str("TRIAGE_API_KEY", &c.Server.APIKey)
	e.list("TRIAGE_CORS_ORIGINS", &c.Server.CORSOrigins)
	e.duration("TRIAGE_SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)
	e.boolean("TRIAGE_METRICS", &c.Server.Metrics)

	e.str("TRIAGE_REASONER_BASE_URL", &c.Reasoner.BaseURL)
	if _, ok := lookup("TRIAGE_REASONER_API_KEY"); ok {
		e.str("TRIAGE_REASONER_API_KEY", &c.Reasoner.APIKey)
	} else if c.Reasoner.APIKey == "" {
		e.str("OPENAI_API_KEY", &c.Reasoner.APIKey)
	}
	e.str("TRIAGE_REASONER_MODEL", &c.Reasoner.Model)
	e.integer("TRIAGE_REASONER_MAX_TOKENS", &c.Reasoner.MaxTokens)
	e.float("TRIAGE_REASONER_TEMPERATURE", &c.Reasoner.Temperature)
	e.duration("TRIAGE_REASONER_TIMEOUT", &c.Reasoner.Timeout)

	e.str("TRIAGE_EMBEDDING_PROVIDER", &c.Embedding.Provider)
	e.str("TRIAGE_EMBEDDING_BASE_URL", &c.Embedding.BaseURL)
	e.str("TRIAGE_EMBEDDING_MODEL", &c.Embedding.Model)
	e.integer("TRIAGE_EMBEDDING_DIMENSIONS", &c.Embedding.Dimensions)

	e.str("TRIAGE_REFERENCE_BACKEND", &c.Reference.Backend)
	e.str("TRIAGE_REFERENCE_DSN", &c.Reference.DSN)
	e.integer("TRIAGE_REFERENCE_TOP_K", &c.Reference.TopK)
	e.boolean("TRIAGE_REFERENCE_AUTO_SEED", &c.Reference.AutoSeed)

	e.str("TRIAGE_STORE_BACKEND", &c.Store.Backend)
	e.duration("TRIAGE_SESSION_TTL", &c.Store.SessionTTL)
	e.duration("TRIAGE_RESULT_TTL", &c.Store.ResultTTL)
	e.str("TRIAGE_REDIS_ADDR", &c.Store.Redis.Addr)
	e.str("TRIAGE_REDIS_PASSWORD", &c.Store.Redis.Password)
	e.integer("TRIAGE_REDIS_DB", &c.Store.Redis.DB)
	e.str("TRIAGE_REDIS_PREFIX", &c.Store.Redis.Prefix)
	e.str("TRIAGE_ENCRYPTION_KEY", &c.Store.EncryptionKey)
	e.list("TRIAGE_ENCRYPTION_FALLBACK_KEYS", &c.Store.FallbackKeys)
	e.boolean("TRIAGE_DISTRIBUTED_LOCK", &c.Store.DistributedLock)
	e.duration("TRIAGE_LOCK_TTL", &c.Store.LockTTL)
	e.duration("TRIAGE_CLEANUP_INTERVAL", &c.Store.CleanupInterval)

	e.integer("TRIAGE_MAX_INPUT_SIZE", &c.Intake.MaxInputSize)
	e.duration("TRIAGE_STAGE_TIMEOUT", &c.StageTimeout)
	e.integer("TRIAGE_RETRY_MAX_ATTEMPTS", &c.Retry.MaxAttempts)
	e.duration("TRIAGE_RETRY_INITIAL_DELAY", &c.Retry.InitialDelay)
	e.duration("TRIAGE_RETRY_MAX_DELAY", &c.Retry.MaxDelay)

	e.str("TRIAGE_LOG_LEVEL", &c.Log.Level)
	e.str("TRIAGE_LOG_FORMAT", &c.Log.Format)
	e.str("TRIAGE_LOG_FILE", &c.Log.File)

	return errors.Join(e.errs...)
}

// envReader collects parse errors so a bad variable names itself.
type envReader struct {
	lookup lookupFunc
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *envReader) fail(key string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) list(key string, dst *[]string) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func (e *envReader) integer(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float32) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = float32(f)
}

func (e *envReader) boolean(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = b
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = d
}
