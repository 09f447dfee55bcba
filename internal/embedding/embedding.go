package embedding

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"edu-rag/internal/config"
	"edu-rag/internal/llmservice"
	"edu-rag/internal/models"
)

const defaultMockDimension = 256

// NewEmbedder creates the embedder configured in embedConfig. Vectors for
// documents are requested in batches of batchSize.
func NewEmbedder(ctx context.Context, embedConfig *config.LLMConfig, batchSize int) (embeddings.Embedder, error) {
	if embedConfig.Provider == config.ProviderMock {
		log.Warn().Msg("Using mock embedder, retrieval quality is keyword based")
		return NewMockEmbedder(defaultMockDimension), nil
	}

	client, err := llmservice.NewClient(ctx, embedConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	opts := []embeddings.Option{embeddings.WithStripNewLines(false)}
	if batchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(batchSize))
	}
	embedder, err := embeddings.NewEmbedder(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

// ModelName identifies the embedding model in index metadata.
func ModelName(embedConfig *config.LLMConfig) string {
	if embedConfig.Provider == config.ProviderMock {
		return fmt.Sprintf("%s/%d", config.ProviderMock, defaultMockDimension)
	}
	return embedConfig.Provider + "/" + embedConfig.Model
}

// GenerateEmbeddings embeds the chunks in batches of batchSize, calling
// progress after each batch.
func GenerateEmbeddings(ctx context.Context, embedder embeddings.Embedder, chunks []models.Chunk, batchSize int, progress func(done, total int)) ([][]float32, error) {
	if len(chunks) == 0 {
		log.Info().Msg("No chunks generated from content")
		return nil, nil
	}
	if batchSize <= 0 {
		batchSize = len(chunks)
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		batch, err := embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: embedding chunks %d-%d: %v", models.ErrExternalAPI, start, end-1, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("%w: expected %d embeddings, got %d", models.ErrExternalAPI, len(texts), len(batch))
		}
		vectors = append(vectors, batch...)

		if progress != nil {
			progress(len(vectors), len(chunks))
		}
	}
	return vectors, nil
}

// EmbedQuery embeds a single query string.
func EmbedQuery(ctx context.Context, embedder embeddings.Embedder, query string) ([]float32, error) {
	vec, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", models.ErrExternalAPI, err)
	}
	return vec, nil
}
