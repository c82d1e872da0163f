package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 0}}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_VectorStoreRequiresEmbeddingKey(t *testing.T) {
	cfg := Config{
		HTTP:        HTTPConfig{Port: 8080},
		VectorStore: VectorStoreConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing embedding api key")
	}
	expected := "embedding.api_key is required when vector_store.addrs is set"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_SemanticTierOptional(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SemanticEnabled() {
		t.Error("semantic tier should be disabled without addrs")
	}
}

func TestValidate_NegativeWeight(t *testing.T) {
	w := -1.0
	cfg := Config{
		HTTP:    HTTPConfig{Port: 8080},
		Scoring: ScoringConfig{BodyToken: &w},
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative weight")
	}
}

func TestValidate_HTMLPathRequired(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{Port: 8080},
		Corpus: CorpusConfig{HTML: []HTMLSourceConfig{{Name: "docs"}}},
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for html source without path")
	}
}

func TestValidate_NegativeCacheTTL(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Embedding: EmbeddingConfig{CacheTTLHours: -1},
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative cache ttl")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	t.Setenv("HTTP_PORT", "9191")

	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9191 {
		t.Errorf("expected port from env, got %d", cfg.HTTP.Port)
	}
	if cfg.SemanticEnabled() {
		t.Error("local config should run without a vector store")
	}
	if len(cfg.Corpus.HTML) != 2 || !cfg.Corpus.HTML[1].QuestionSections {
		t.Errorf("unexpected html sources: %+v", cfg.Corpus.HTML)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if *cfg.Scoring.TitleExact != 3.0 || *cfg.Scoring.BodyExact != 2.0 {
		t.Errorf("unexpected exact weights: %v/%v", *cfg.Scoring.TitleExact, *cfg.Scoring.BodyExact)
	}
	if *cfg.Scoring.TitleToken != 1.0 || *cfg.Scoring.BodyToken != 0.5 {
		t.Errorf("unexpected token weights: %v/%v", *cfg.Scoring.TitleToken, *cfg.Scoring.BodyToken)
	}
	if *cfg.Scoring.Vocabulary != 0.3 {
		t.Errorf("expected Vocabulary=0.3, got %v", *cfg.Scoring.Vocabulary)
	}
	if *cfg.Scoring.GuideBoost != 0 {
		t.Errorf("expected GuideBoost=0, got %v", *cfg.Scoring.GuideBoost)
	}
	if cfg.Scoring.GeneralTopK != 10 || cfg.Scoring.FallbackTopK != 5 {
		t.Errorf("unexpected topK: %d/%d", cfg.Scoring.GeneralTopK, cfg.Scoring.FallbackTopK)
	}
	if cfg.VectorStore.ConnectAttempts != 3 {
		t.Errorf("expected ConnectAttempts=3, got %d", cfg.VectorStore.ConnectAttempts)
	}
	if cfg.VectorStore.RetryDelayMs != 2000 {
		t.Errorf("expected RetryDelayMs=2000, got %d", cfg.VectorStore.RetryDelayMs)
	}
	if cfg.VectorStore.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.VectorStore.TopK)
	}
	if cfg.Generation.Model != "gpt-3.5-turbo" {
		t.Errorf("expected gpt-3.5-turbo, got %q", cfg.Generation.Model)
	}
	if *cfg.Generation.Temperature != 0.7 {
		t.Errorf("expected Temperature=0.7, got %v", *cfg.Generation.Temperature)
	}
	if cfg.Generation.MaxTokens != 500 {
		t.Errorf("expected MaxTokens=500, got %d", cfg.Generation.MaxTokens)
	}
	if cfg.Reindex.BatchSize != 100 {
		t.Errorf("expected BatchSize=100, got %d", cfg.Reindex.BatchSize)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	zero := 0.0
	cfg := Config{
		HTTP:        HTTPConfig{ReadTimeoutSec: 30},
		Scoring:     ScoringConfig{Vocabulary: &zero, FallbackTopK: 3},
		VectorStore: VectorStoreConfig{KeyPrefix: "custom:", ConnectAttempts: 1},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if *cfg.Scoring.Vocabulary != 0 {
		t.Errorf("explicit zero weight was overridden: %v", *cfg.Scoring.Vocabulary)
	}
	if cfg.Scoring.FallbackTopK != 3 {
		t.Errorf("expected FallbackTopK=3, got %d", cfg.Scoring.FallbackTopK)
	}
	if cfg.VectorStore.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.VectorStore.KeyPrefix)
	}
	if cfg.VectorStore.ConnectAttempts != 1 {
		t.Errorf("expected ConnectAttempts=1, got %d", cfg.VectorStore.ConnectAttempts)
	}
}

func TestRateLimitBurstDefault(t *testing.T) {
	cfg := Config{RateLimit: RateLimitConfig{RPS: 4}}
	cfg.ApplyDefaults()

	if cfg.RateLimit.Burst != 5 {
		t.Errorf("expected Burst=5, got %d", cfg.RateLimit.Burst)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("HELPDESK_TEST_PORT", "9090")

	got := string(expandEnvVars([]byte("port: ${HELPDESK_TEST_PORT}\nkey: ${HELPDESK_TEST_MISSING:-fallback}\n")))
	want := "port: 9090\nkey: fallback\n"
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	base := filepath.Join(dir, ".env")
	if err := os.WriteFile(local, []byte("HELPDESK_DOTENV_A=local\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(base, []byte("HELPDESK_DOTENV_A=base\nHELPDESK_DOTENV_B=base\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("HELPDESK_DOTENV_A")
		os.Unsetenv("HELPDESK_DOTENV_B")
	})

	if err := LoadDotEnv(local, base, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("HELPDESK_DOTENV_A"); got != "local" {
		t.Errorf("expected .env.local to win, got %q", got)
	}
	if got := os.Getenv("HELPDESK_DOTENV_B"); got != "base" {
		t.Errorf("expected value from .env, got %q", got)
	}
}
