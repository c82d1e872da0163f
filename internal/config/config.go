package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the helpdesk configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Logging     LoggingConfig     `yaml:"logging"`
	Auth        AuthConfig        `yaml:"auth"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Corpus      CorpusConfig      `yaml:"corpus"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Generation  GenerationConfig  `yaml:"generation"`
	Reindex     ReindexConfig     `yaml:"reindex"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: determined by env)
	Format string `yaml:"format"` // json or console (default: determined by env)
}

// AuthConfig holds bearer keys for the admin endpoints.
type AuthConfig struct {
	AdminAPIKeys []string `yaml:"admin_api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// RateLimitConfig limits /api requests. RPS <= 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// HTMLSourceConfig describes one markup document of the corpus.
type HTMLSourceConfig struct {
	Name             string `yaml:"name"`
	Path             string `yaml:"path"`
	QuestionSections bool   `yaml:"question_sections"` // <section id="qN"> blocks instead of headings
}

// CorpusConfig lists the content sources. Every source is optional.
type CorpusConfig struct {
	FAQFiles           []string           `yaml:"faq_files"`
	HTML               []HTMLSourceConfig `yaml:"html"`
	DocumentationFiles []string           `yaml:"documentation_files"`
	EmailDir           string             `yaml:"email_dir"`
	CacheTTLSec        int                `yaml:"cache_ttl_sec"` // 0 = rebuild on every search
	Watch              bool               `yaml:"watch"`
}

// ScoringConfig holds lexical scorer weights. Nil weights take reference values.
type ScoringConfig struct {
	TitleExact   *float64 `yaml:"title_exact"`
	BodyExact    *float64 `yaml:"body_exact"`
	TitleToken   *float64 `yaml:"title_token"`
	BodyToken    *float64 `yaml:"body_token"`
	Vocabulary   *float64 `yaml:"vocabulary"`
	GuideBoost   *float64 `yaml:"guide_boost"`
	Terms        []string `yaml:"vocabulary_terms"`
	GeneralTopK  int      `yaml:"general_top_k"`
	FallbackTopK int      `yaml:"fallback_top_k"`
}

// VectorStoreConfig holds the vector index connection settings.
// Empty Addrs disables the semantic tier.
type VectorStoreConfig struct {
	Addrs             []string `yaml:"addrs"`
	Username          string   `yaml:"username"`
	Password          string   `yaml:"password"`
	IndexName         string   `yaml:"index_name"`
	KeyPrefix         string   `yaml:"key_prefix"`
	ConnectAttempts   int      `yaml:"connect_attempts"`
	ConnectTimeoutSec int      `yaml:"connect_timeout_sec"`
	RetryDelayMs      int      `yaml:"retry_delay_ms"`
	CooldownSec       int      `yaml:"cooldown_sec"` // 0 = retry on every call
	QueryTimeoutSec   int      `yaml:"query_timeout_sec"`
	HNSWM             int      `yaml:"hnsw_m"`
	HNSWEFConstruct   int      `yaml:"hnsw_ef_construction"`
	TopK              int      `yaml:"top_k"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	TimeoutSec int    `yaml:"timeout_sec"`
	Cache      bool   `yaml:"cache"`
	// Cached embeddings expire after CacheTTLHours; 0 keeps them.
	CacheTTLHours int `yaml:"cache_ttl_hours"`
}

// GenerationConfig holds answer generation settings. Empty APIKey disables generation.
type GenerationConfig struct {
	APIKey      string   `yaml:"api_key"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	Temperature *float32 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	TimeoutSec  int      `yaml:"timeout_sec"`
}

// ReindexConfig holds administrative re-index settings.
type ReindexConfig struct {
	BatchSize   int `yaml:"batch_size"`
	Concurrency int `yaml:"concurrency"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	if err := LoadDotEnv(".env.local", ".env"); err != nil {
		return Config{}, err
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from the given dotenv files in order.
// Missing files are skipped; variables already set are never overridden,
// so earlier files win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = int(c.RateLimit.RPS) + 1
	}

	c.Scoring.applyDefaults()
	c.VectorStore.applyDefaults()

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = "https://api.openai.com/v1"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 10
	}

	if c.Generation.BaseURL == "" {
		c.Generation.BaseURL = c.Embedding.BaseURL
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "gpt-3.5-turbo"
	}
	if c.Generation.Temperature == nil {
		t := float32(0.7)
		c.Generation.Temperature = &t
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 500
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 30
	}

	if c.Reindex.BatchSize <= 0 {
		c.Reindex.BatchSize = 100
	}
	if c.Reindex.Concurrency <= 0 {
		c.Reindex.Concurrency = 4
	}
}

func (s *ScoringConfig) applyDefaults() {
	defaultWeight(&s.TitleExact, 3.0)
	defaultWeight(&s.BodyExact, 2.0)
	defaultWeight(&s.TitleToken, 1.0)
	defaultWeight(&s.BodyToken, 0.5)
	defaultWeight(&s.Vocabulary, 0.3)
	defaultWeight(&s.GuideBoost, 0)
	if s.GeneralTopK <= 0 {
		s.GeneralTopK = 10
	}
	if s.FallbackTopK <= 0 {
		s.FallbackTopK = 5
	}
}

func defaultWeight(p **float64, v float64) {
	if *p == nil {
		*p = &v
	}
}

func (v *VectorStoreConfig) applyDefaults() {
	if v.IndexName == "" {
		v.IndexName = "helpdesk:idx"
	}
	if v.KeyPrefix == "" {
		v.KeyPrefix = "helpdesk:item:"
	}
	if v.ConnectAttempts <= 0 {
		v.ConnectAttempts = 3
	}
	if v.ConnectTimeoutSec <= 0 {
		v.ConnectTimeoutSec = 10
	}
	if v.RetryDelayMs <= 0 {
		v.RetryDelayMs = 2000
	}
	if v.QueryTimeoutSec <= 0 {
		v.QueryTimeoutSec = 10
	}
	if v.HNSWM <= 0 {
		v.HNSWM = 16
	}
	if v.HNSWEFConstruct <= 0 {
		v.HNSWEFConstruct = 200
	}
	if v.TopK <= 0 {
		v.TopK = 5
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("rate_limit.rps must not be negative, got %g", c.RateLimit.RPS)
	}
	for i, h := range c.Corpus.HTML {
		if h.Path == "" {
			return fmt.Errorf("corpus.html[%d].path is required", i)
		}
	}
	if c.Corpus.CacheTTLSec < 0 {
		return fmt.Errorf("corpus.cache_ttl_sec must not be negative, got %d", c.Corpus.CacheTTLSec)
	}
	for name, w := range map[string]*float64{
		"title_exact": c.Scoring.TitleExact,
		"body_exact":  c.Scoring.BodyExact,
		"title_token": c.Scoring.TitleToken,
		"body_token":  c.Scoring.BodyToken,
		"vocabulary":  c.Scoring.Vocabulary,
		"guide_boost": c.Scoring.GuideBoost,
	} {
		if w != nil && *w < 0 {
			return fmt.Errorf("scoring.%s must not be negative, got %g", name, *w)
		}
	}
	if c.Embedding.CacheTTLHours < 0 {
		return fmt.Errorf("embedding.cache_ttl_hours must not be negative, got %d", c.Embedding.CacheTTLHours)
	}
	if len(c.VectorStore.Addrs) > 0 && c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required when vector_store.addrs is set")
	}
	return nil
}

// SemanticEnabled reports whether the vector index tier is configured.
func (c *Config) SemanticEnabled() bool {
	return len(c.VectorStore.Addrs) > 0
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// Relative to the source file, for `go test` from package dirs.
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
