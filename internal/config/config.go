package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"edu-rag/internal/models"
)

const (
	ProviderGoogleAI = "googleai"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
	ProviderMock     = "mock"
)

type Config struct {
	EmbedLLM     LLMConfig `yaml:"embed_llm"`
	InferenceLLM LLMConfig `yaml:"inference_llm"`
	RAG          RAGConfig `yaml:"rag"`
	Log          LogConfig `yaml:"log"`
}

// LLMConfig describes one remote model. Key may be left empty, in which case
// it is read from the environment variable named by KeyEnv.
type LLMConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Key      string `yaml:"key"`
	KeyEnv   string `yaml:"key_env"`
}

type RAGConfig struct {
	ChunkSize      int           `yaml:"chunk_size"`
	ChunkOverlap   int           `yaml:"chunk_overlap"`
	TopK           int           `yaml:"top_k"`
	Splitter       string        `yaml:"splitter"`
	EmbedBatchSize int           `yaml:"embed_batch_size"`
	IndexPath      string        `yaml:"index_path"`
	UploadDir      string        `yaml:"upload_dir"`
	Collection     string        `yaml:"collection"`
	EncryptionKey  string        `yaml:"encryption_key"`
	Compress       bool          `yaml:"compress"`
	CacheSize      int           `yaml:"cache_size"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	defaultChunkSize      = 600
	defaultChunkOverlap   = 100
	defaultEmbedBatchSize = 32
	defaultIndexPath      = "faiss_index/index.gob"
	defaultUploadDir      = "uploaded_docs"
	defaultCollection     = "edu_collection"
	defaultCacheSize      = 100
	defaultCacheTTL       = 30 * time.Minute
	defaultLogLevel       = "debug"

	defaultEmbeddingModel = "embedding-001"
	defaultInferenceModel = "gemini-2.0-flash"
)

// DefaultConfig mirrors the values the demo application shipped with.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig reads a YAML config. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = ProviderGoogleAI
	}
	if cfg.EmbedLLM.Model == "" && cfg.EmbedLLM.Provider == ProviderGoogleAI {
		cfg.EmbedLLM.Model = defaultEmbeddingModel
	}
	if cfg.InferenceLLM.Provider == "" {
		cfg.InferenceLLM.Provider = ProviderGoogleAI
	}
	if cfg.InferenceLLM.Model == "" && cfg.InferenceLLM.Provider == ProviderGoogleAI {
		cfg.InferenceLLM.Model = defaultInferenceModel
	}
	setDefaultKeyEnv(&cfg.EmbedLLM)
	setDefaultKeyEnv(&cfg.InferenceLLM)

	r := &cfg.RAG
	if r.ChunkSize == 0 {
		r.ChunkSize = defaultChunkSize
	}
	if r.ChunkOverlap == 0 {
		// keep the default below a small configured size
		r.ChunkOverlap = min(defaultChunkOverlap, r.ChunkSize/2)
	}
	if r.TopK == 0 {
		r.TopK = models.DefaultTopK
	}
	if r.Splitter == "" {
		r.Splitter = models.SplitterWindow
	}
	if r.EmbedBatchSize == 0 {
		r.EmbedBatchSize = defaultEmbedBatchSize
	}
	if r.IndexPath == "" {
		r.IndexPath = defaultIndexPath
	}
	if r.UploadDir == "" {
		r.UploadDir = defaultUploadDir
	}
	if r.Collection == "" {
		r.Collection = defaultCollection
	}
	if r.CacheSize == 0 {
		r.CacheSize = defaultCacheSize
	}
	if r.CacheTTL == 0 {
		r.CacheTTL = defaultCacheTTL
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
}

func setDefaultKeyEnv(c *LLMConfig) {
	if c.KeyEnv != "" {
		return
	}
	switch c.Provider {
	case ProviderGoogleAI:
		c.KeyEnv = "GOOGLE_API_KEY"
	case ProviderOpenAI:
		c.KeyEnv = "OPENAI_API_KEY"
	}
}

// APIKey returns the configured key, falling back to the environment.
func (c *LLMConfig) APIKey() string {
	if c.Key != "" {
		return c.Key
	}
	if c.KeyEnv == "" {
		return ""
	}
	return os.Getenv(c.KeyEnv)
}

func (c *Config) Validate() error {
	if err := c.EmbedLLM.validate("embed_llm"); err != nil {
		return err
	}
	if err := c.InferenceLLM.validate("inference_llm"); err != nil {
		return err
	}
	if c.InferenceLLM.Provider == ProviderMock {
		return fmt.Errorf("inference_llm: provider %q can only be used for embeddings", ProviderMock)
	}

	r := c.RAG
	if r.ChunkSize <= 0 {
		return fmt.Errorf("rag.chunk_size must be positive, got %d", r.ChunkSize)
	}
	if r.ChunkOverlap < 0 || r.ChunkOverlap >= r.ChunkSize {
		return fmt.Errorf("rag.chunk_overlap must be in [0, %d), got %d", r.ChunkSize, r.ChunkOverlap)
	}
	if r.TopK <= 0 {
		return fmt.Errorf("rag.top_k must be positive, got %d", r.TopK)
	}
	if r.Splitter != models.SplitterWindow && r.Splitter != models.SplitterRecursive {
		return fmt.Errorf("rag.splitter must be %q or %q, got %q", models.SplitterWindow, models.SplitterRecursive, r.Splitter)
	}
	if r.EmbedBatchSize <= 0 {
		return fmt.Errorf("rag.embed_batch_size must be positive, got %d", r.EmbedBatchSize)
	}
	// chromem-go only accepts AES-256 keys
	if r.EncryptionKey != "" && len(r.EncryptionKey) != 32 {
		return fmt.Errorf("rag.encryption_key must be 32 bytes, got %d", len(r.EncryptionKey))
	}
	return nil
}

func (c *LLMConfig) validate(name string) error {
	switch c.Provider {
	case ProviderGoogleAI, ProviderOpenAI, ProviderOllama, ProviderMock:
	default:
		return fmt.Errorf("%s: unknown provider %q", name, c.Provider)
	}
	if c.Model == "" && c.Provider != ProviderMock {
		return fmt.Errorf("%s: model is required", name)
	}
	return nil
}
