package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RAG.ChunkSize != 600 {
		t.Errorf("expected ChunkSize=600, got %d", cfg.RAG.ChunkSize)
	}
	if cfg.RAG.ChunkOverlap != 100 {
		t.Errorf("expected ChunkOverlap=100, got %d", cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.RAG.TopK)
	}
	if cfg.RAG.Splitter != "window" {
		t.Errorf("expected window splitter, got %q", cfg.RAG.Splitter)
	}
	if cfg.EmbedLLM.Provider != ProviderGoogleAI || cfg.EmbedLLM.Model != "embedding-001" {
		t.Errorf("unexpected embed config: %+v", cfg.EmbedLLM)
	}
	if cfg.InferenceLLM.Model != "gemini-2.0-flash" {
		t.Errorf("unexpected inference model %q", cfg.InferenceLLM.Model)
	}
	if cfg.EmbedLLM.KeyEnv != "GOOGLE_API_KEY" {
		t.Errorf("expected GOOGLE_API_KEY, got %q", cfg.EmbedLLM.KeyEnv)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfig_NonExistent(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for non-existent file, got %v", err)
	}
	if cfg.RAG.IndexPath != defaultIndexPath {
		t.Errorf("expected default index path, got %q", cfg.RAG.IndexPath)
	}
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	content := `
embed_llm:
  provider: ollama
  base_url: http://localhost:11434
  model: nomic-embed-text
inference_llm:
  provider: openai
  base_url: https://openrouter.ai/api/v1
  model: google/gemini-2.0-flash-001
rag:
  chunk_size: 800
  chunk_overlap: 200
  top_k: 3
  splitter: recursive
  cache_ttl: 5m
log:
  level: info
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.EmbedLLM.Provider != ProviderOllama || cfg.EmbedLLM.Model != "nomic-embed-text" {
		t.Errorf("unexpected embed config: %+v", cfg.EmbedLLM)
	}
	if cfg.EmbedLLM.KeyEnv != "" {
		t.Errorf("ollama needs no key env, got %q", cfg.EmbedLLM.KeyEnv)
	}
	if cfg.InferenceLLM.KeyEnv != "OPENAI_API_KEY" {
		t.Errorf("expected OPENAI_API_KEY, got %q", cfg.InferenceLLM.KeyEnv)
	}
	if cfg.RAG.ChunkSize != 800 || cfg.RAG.ChunkOverlap != 200 || cfg.RAG.TopK != 3 {
		t.Errorf("unexpected rag config: %+v", cfg.RAG)
	}
	if cfg.RAG.Splitter != "recursive" {
		t.Errorf("expected recursive splitter, got %q", cfg.RAG.Splitter)
	}
	if cfg.RAG.CacheTTL != 5*time.Minute {
		t.Errorf("expected 5m cache ttl, got %v", cfg.RAG.CacheTTL)
	}
	// unset values keep their defaults
	if cfg.RAG.UploadDir != defaultUploadDir {
		t.Errorf("expected default upload dir, got %q", cfg.RAG.UploadDir)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected info log level, got %q", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestLoadConfig_SmallChunkSize(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("rag:\n  chunk_size: 80\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RAG.ChunkOverlap != 40 {
		t.Errorf("expected ChunkOverlap=40, got %d", cfg.RAG.ChunkOverlap)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("rag: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(configPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"overlap equals size", func(c *Config) { c.RAG.ChunkOverlap = c.RAG.ChunkSize }, "chunk_overlap"},
		{"negative overlap", func(c *Config) { c.RAG.ChunkOverlap = -1 }, "chunk_overlap"},
		{"negative size", func(c *Config) { c.RAG.ChunkSize = -5 }, "chunk_size"},
		{"negative top k", func(c *Config) { c.RAG.TopK = -1 }, "top_k"},
		{"unknown splitter", func(c *Config) { c.RAG.Splitter = "sentence" }, "splitter"},
		{"short key", func(c *Config) { c.RAG.EncryptionKey = "short" }, "encryption_key"},
		{"unknown provider", func(c *Config) { c.EmbedLLM.Provider = "bedrock" }, "unknown provider"},
		{"missing model", func(c *Config) { c.InferenceLLM.Model = "" }, "model is required"},
		{"mock inference", func(c *Config) { c.InferenceLLM.Provider = ProviderMock }, "only be used for embeddings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv("EDU_RAG_TEST_KEY", "from-env")

	c := LLMConfig{KeyEnv: "EDU_RAG_TEST_KEY"}
	if got := c.APIKey(); got != "from-env" {
		t.Errorf("expected key from env, got %q", got)
	}

	c.Key = "explicit"
	if got := c.APIKey(); got != "explicit" {
		t.Errorf("explicit key should win, got %q", got)
	}

	empty := LLMConfig{}
	if got := empty.APIKey(); got != "" {
		t.Errorf("expected empty key, got %q", got)
	}
}
