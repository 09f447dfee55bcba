package rag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"edu-rag/internal/chromemdb"
	"edu-rag/internal/config"
	"edu-rag/internal/embedding"
	"edu-rag/internal/helper"
	"edu-rag/internal/llmservice"
	"edu-rag/internal/models"
	"edu-rag/internal/parser"
)

// RAG ties extraction, indexing, retrieval and generation together. The
// loaded index is reused until the file on disk changes.
type RAG struct {
	embedder embeddings.Embedder
	llm      llms.Model
	cfg      *config.Config
	model    string
	chunker  *parser.Chunker
	cache    *responseCache

	mu        sync.Mutex
	index     *chromemdb.VectorDBManager
	indexMod  time.Time
	indexSize int64
}

// NewRAG creates the pipeline. llm may be nil when only indexing and
// retrieval are needed.
func NewRAG(embedder embeddings.Embedder, llm llms.Model, cfg *config.Config) *RAG {
	return &RAG{
		embedder: embedder,
		llm:      llm,
		cfg:      cfg,
		model:    embedding.ModelName(&cfg.EmbedLLM),
		chunker:  parser.NewChunker(cfg.RAG.Splitter, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap),
		cache:    newResponseCache(cfg.RAG.CacheSize, cfg.RAG.CacheTTL),
	}
}

// IndexFile extracts the text of filePath and rebuilds the index from it.
// A file without text yields an empty index and a warning.
func (r *RAG) IndexFile(ctx context.Context, filePath string, progress func(done, total int)) (*models.IndexResult, error) {
	ctx, _ = helper.WithRequestID(ctx)
	logger := helper.Logger(ctx)

	var warning string
	text, err := parser.ExtractText(filePath)
	if err != nil {
		if !errors.Is(err, models.ErrEmptyExtraction) {
			return nil, err
		}
		warning = models.ErrEmptyExtraction.Error()
		logger.Warn().Str("file", filePath).Msg("No text extracted from the document")
	}

	result, err := r.BuildIndex(ctx, text, filepath.Base(filePath), progress)
	if err != nil {
		return nil, err
	}
	result.Path = filePath
	if warning != "" {
		result.Warning = warning
	}
	return result, nil
}

// BuildIndex chunks text and replaces the index with its embeddings.
func (r *RAG) BuildIndex(ctx context.Context, text, source string, progress func(done, total int)) (*models.IndexResult, error) {
	logger := helper.Logger(ctx)
	result := &models.IndexResult{IndexPath: r.cfg.RAG.IndexPath}

	chunks, err := r.chunker.Chunk(text)
	if err != nil {
		if !errors.Is(err, models.ErrEmptyChunking) {
			return nil, err
		}
		result.Warning = models.ErrEmptyChunking.Error()
		logger.Warn().Str("source", source).Msg("Nothing to index")
	}
	logger.Debug().Str("source", source).Int("chunks", len(chunks)).Str("splitter", r.chunker.Splitter).Msg("Chunked document")

	n, err := chromemdb.Build(ctx, r.cfg.RAG.IndexPath, chunks, r.embedder, chromemdb.BuildOptions{
		Collection:    r.cfg.RAG.Collection,
		Source:        source,
		Model:         r.model,
		BatchSize:     r.cfg.RAG.EmbedBatchSize,
		Compress:      r.cfg.RAG.Compress,
		EncryptionKey: r.cfg.RAG.EncryptionKey,
		Progress:      progress,
	})
	if err != nil {
		return nil, err
	}
	r.dropIndex()

	result.Chunks = n
	logger.Info().Int("chunks", n).Str("index", r.cfg.RAG.IndexPath).Msg("Index built")
	return result, nil
}

// Retrieve returns up to topK indexed chunks closest to query, most similar
// first. topK <= 0 uses the configured default.
func (r *RAG) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
	logger := helper.Logger(ctx)
	if strings.TrimSpace(query) == "" {
		return nil, models.ErrEmptyQuery
	}
	if topK <= 0 {
		topK = r.cfg.RAG.TopK
	}
	if topK <= 0 {
		topK = models.DefaultTopK
	}

	index, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	queryEmbedding, err := embedding.EmbedQuery(ctx, r.embedder, query)
	if err != nil {
		return nil, err
	}
	results, err := index.SearchByEmbedding(ctx, queryEmbedding, topK)
	if err != nil {
		return nil, err
	}

	chunks := make([]models.RetrievedChunk, 0, len(results))
	for _, res := range results {
		id, _ := strconv.Atoi(res.Metadata[models.MetaChunkID])
		chunks = append(chunks, models.RetrievedChunk{
			Chunk:      models.Chunk{ChunkID: id, Content: res.Content},
			Similarity: res.Similarity,
		})
	}
	if len(chunks) == 0 {
		logger.Warn().Str("query", query).Msg("No relevant content found in the index")
	}
	logger.Debug().Int("top_k", topK).Int("results", len(chunks)).Msg("Retrieved chunks")
	return chunks, nil
}

// Generate asks the model for content built from query and the retrieved
// chunk texts. Identical requests against the same index are answered from
// memory.
func (r *RAG) Generate(ctx context.Context, q models.Query, chunks []string) (string, error) {
	if r.llm == nil {
		return "", fmt.Errorf("no inference model configured")
	}
	logger := helper.Logger(ctx)

	key := cacheKey(q, chunks)
	if content, ok := r.cache.Get(key); ok {
		logger.Debug().Msg("Serving cached response")
		return content, nil
	}

	prompt := BuildPrompt(q, chunks)
	logger.Debug().Str("content_type", q.ContentType).Int("prompt_chars", len(prompt)).Msg("Generating content")
	content, err := llmservice.GenerateText(ctx, r.llm, prompt)
	if err != nil {
		return "", err
	}
	r.cache.Set(key, content)
	return content, nil
}

// Query runs retrieval and generation for one user request. Finding nothing
// relevant is not an error: the response carries a warning instead.
func (r *RAG) Query(ctx context.Context, q models.Query) (*models.PromptResponse, error) {
	ctx, _ = helper.WithRequestID(ctx)
	logger := helper.Logger(ctx)

	q, err := normalizeQuery(q)
	if err != nil {
		return nil, err
	}

	chunks, err := r.Retrieve(ctx, q.Text, q.TopK)
	if err != nil {
		return nil, err
	}
	response := &models.PromptResponse{Query: q.Text}
	if len(chunks) == 0 {
		response.Warning = models.ErrNoResults.Error()
		return response, nil
	}

	for _, c := range chunks {
		response.Source = append(response.Source, c.Content)
	}
	response.Content, err = r.Generate(ctx, q, response.Source)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("content_type", q.ContentType).Int("sources", len(response.Source)).Msg("Generated content")
	return response, nil
}

// HasIndex reports whether an index file exists.
func (r *RAG) HasIndex() bool {
	_, err := os.Stat(r.cfg.RAG.IndexPath)
	return err == nil
}

func normalizeQuery(q models.Query) (models.Query, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return q, models.ErrEmptyQuery
	}
	if q.ContentType == "" {
		q.ContentType = models.ContentTopicExplanations
	}
	contentType, ok := models.ParseContentType(q.ContentType)
	if !ok {
		return q, fmt.Errorf("unknown content type %q, expected one of %s", q.ContentType, strings.Join(models.ContentTypes, ", "))
	}
	q.ContentType = contentType

	if !models.UsesDifficulty(q.ContentType) {
		q.Difficulty = ""
	} else if q.Difficulty != "" {
		difficulty, ok := models.ParseDifficulty(q.Difficulty)
		if !ok {
			return q, fmt.Errorf("unknown difficulty %q, expected one of %s", q.Difficulty, strings.Join(models.Difficulties, ", "))
		}
		q.Difficulty = difficulty
	}
	return q, nil
}

// loadIndex returns the cached index, reloading it when the file changed.
func (r *RAG) loadIndex(ctx context.Context) (*chromemdb.VectorDBManager, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.cfg.RAG.IndexPath
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.index = nil
			return nil, fmt.Errorf("%w: %s", models.ErrIndexNotFound, path)
		}
		return nil, err
	}
	if r.index != nil && info.ModTime().Equal(r.indexMod) && info.Size() == r.indexSize {
		return r.index, nil
	}

	index, err := chromemdb.Load(path, r.cfg.RAG.Collection, r.cfg.RAG.Compress, r.cfg.RAG.EncryptionKey)
	if err != nil {
		return nil, err
	}
	r.index = index
	r.indexMod = info.ModTime()
	r.indexSize = info.Size()
	r.cache.Invalidate()
	helper.Logger(ctx).Debug().Str("index", path).Int("documents", index.Count()).Msg("Index loaded")
	return index, nil
}

func (r *RAG) dropIndex() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = nil
}
