package chromemdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"edu-rag/internal/helper"
	"edu-rag/internal/models"
)

// Documents are searched by vector only; the collection never embeds text itself.
var errTextQuery = errors.New("text queries are not supported, embed the query first")

func noTextEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, errTextQuery
}

// VectorDBManager encapsulates the chromem-go database operations
type VectorDBManager struct {
	db            *chromem.DB
	collection    *chromem.Collection
	filePath      string
	compress      bool
	encryptionKey string
}

// NewVectorDBManager creates an empty in-memory index that Export writes to filePath.
func NewVectorDBManager(filePath, collectionName string, compress bool, encryptionKey string) (*VectorDBManager, error) {
	db := chromem.NewDB()
	c, err := db.CreateCollection(collectionName, nil, noTextEmbedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %v", err)
	}
	return &VectorDBManager{
		db:            db,
		collection:    c,
		filePath:      filePath,
		compress:      compress,
		encryptionKey: encryptionKey,
	}, nil
}

// Load imports the index stored at filePath. A missing file is reported as
// models.ErrIndexNotFound.
func Load(filePath, collectionName string, compress bool, encryptionKey string) (*VectorDBManager, error) {
	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrIndexNotFound, filePath)
		}
		return nil, err
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(filePath, encryptionKey, collectionName); err != nil {
		return nil, fmt.Errorf("failed to import index %s: %w", filePath, err)
	}
	c := db.GetCollection(collectionName, noTextEmbedding)
	if c == nil {
		return nil, fmt.Errorf("%w: collection %q missing from %s", models.ErrIndexNotFound, collectionName, filePath)
	}
	log.Debug().Str("file", filePath).Int("documents", c.Count()).Msg("Loaded vector index")

	return &VectorDBManager{
		db:            db,
		collection:    c,
		filePath:      filePath,
		compress:      compress,
		encryptionKey: encryptionKey,
	}, nil
}

// add multiple documents
func (m *VectorDBManager) CreateDocs(ctx context.Context, documents []chromem.Document) error {
	if len(documents) == 0 {
		return nil
	}
	err := m.collection.AddDocuments(ctx, documents, runtime.NumCPU())
	if err != nil {
		return fmt.Errorf("failed to add document: %v", err)
	}
	return nil
}

func (m *VectorDBManager) Count() int {
	return m.collection.Count()
}

// SearchByEmbedding returns up to k documents, most similar first. k larger
// than the index is clamped; an empty index returns no results.
func (m *VectorDBManager) SearchByEmbedding(ctx context.Context, embedding []float32, k int) ([]chromem.Result, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("query embedding must be provided")
	}
	k = min(k, m.collection.Count())
	if k <= 0 {
		return nil, nil
	}

	if model, dim, err := m.Dimension(ctx); err == nil && dim != len(embedding) {
		return nil, fmt.Errorf("%w: index %s has %d dimensions, query has %d", models.ErrDimensionMismatch, model, dim, len(embedding))
	}

	results, err := m.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: embedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}
	return results, nil
}

// Dimension reports the embedding model and vector size recorded with the
// first indexed chunk.
func (m *VectorDBManager) Dimension(ctx context.Context) (string, int, error) {
	doc, err := m.collection.GetByID(ctx, DocumentID(0))
	if err != nil {
		return "", 0, err
	}
	dim, err := strconv.Atoi(doc.Metadata[models.MetaDim])
	if err != nil {
		return "", 0, fmt.Errorf("invalid %s metadata: %v", models.MetaDim, err)
	}
	return doc.Metadata[models.MetaModel], dim, nil
}

// Export writes the collection to the manager's file. The new index replaces
// any previous file in one rename.
func (m *VectorDBManager) Export() error {
	if m.filePath == "" {
		return fmt.Errorf("index path is required")
	}
	dir := filepath.Dir(m.filePath)
	if err := helper.CreateFolder(dir); err != nil {
		return err
	}

	// keep the base name so chromem sees the same file suffix
	tmp := filepath.Join(dir, ".tmp-"+filepath.Base(m.filePath))
	log.Debug().
		Str("collection", m.collection.Name).
		Str("file", m.filePath).
		Bool("compress", m.compress).
		Bool("encrypted", m.encryptionKey != "").
		Msg("Exporting vector index")
	if err := m.db.ExportToFile(tmp, m.compress, m.encryptionKey, m.collection.Name); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to export database: %v", err)
	}
	if err := os.Rename(tmp, m.filePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace index %s: %v", m.filePath, err)
	}
	return nil
}

// DocumentID is the id under which chunk i is stored.
func DocumentID(chunkID int) string {
	return fmt.Sprintf("chunk-%06d", chunkID)
}
