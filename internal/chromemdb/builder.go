package chromemdb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"edu-rag/internal/embedding"
	"edu-rag/internal/models"
)

type BuildOptions struct {
	Collection    string
	Source        string
	Model         string
	BatchSize     int
	Compress      bool
	EncryptionKey string
	Progress      func(done, total int)
}

// Build embeds every chunk and writes a fresh index to path, overwriting any
// previous one. Zero chunks produce an empty index. It returns the number of
// chunks indexed.
func Build(ctx context.Context, path string, chunks []models.Chunk, embedder embeddings.Embedder, opts BuildOptions) (int, error) {
	vectors, err := embedding.GenerateEmbeddings(ctx, embedder, chunks, opts.BatchSize, opts.Progress)
	if err != nil {
		return 0, err
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for i, chunk := range chunks {
		if i > 0 && len(vectors[i]) != len(vectors[0]) {
			return 0, fmt.Errorf("%w: chunk %d has %d dimensions, chunk 0 has %d",
				models.ErrDimensionMismatch, chunk.ChunkID, len(vectors[i]), len(vectors[0]))
		}
		docs = append(docs, chromem.Document{
			ID:      DocumentID(i),
			Content: chunk.Content,
			Metadata: map[string]string{
				models.MetaChunkID: strconv.Itoa(chunk.ChunkID),
				models.MetaSource:  opts.Source,
				models.MetaModel:   opts.Model,
				models.MetaDim:     strconv.Itoa(len(vectors[i])),
			},
			Embedding: vectors[i],
		})
	}

	m, err := NewVectorDBManager(path, opts.Collection, opts.Compress, opts.EncryptionKey)
	if err != nil {
		return 0, err
	}
	log.Info().Msgf("Adding %d documents to vector database", len(docs))
	if err := m.CreateDocs(ctx, docs); err != nil {
		return 0, err
	}
	if err := m.Export(); err != nil {
		return 0, err
	}
	return len(docs), nil
}
