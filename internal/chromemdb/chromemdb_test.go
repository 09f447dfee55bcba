package chromemdb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"edu-rag/internal/embedding"
	"edu-rag/internal/models"
)

const testCollection = "test_collection"

type failingEmbedder struct{}

func (failingEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("quota exceeded")
}

func (failingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("quota exceeded")
}

func toChunks(texts ...string) []models.Chunk {
	chunks := make([]models.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = models.Chunk{ChunkID: i, Content: text}
	}
	return chunks
}

func buildIndex(t *testing.T, path string, texts ...string) int {
	t.Helper()
	n, err := Build(context.Background(), path, toChunks(texts...), embedding.NewMockEmbedder(64), BuildOptions{
		Collection: testCollection,
		Source:     "science.pdf",
		Model:      "mock/64",
		BatchSize:  2,
	})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return n
}

func TestBuildAndSearch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index", "index.gob")

	n := buildIndex(t, path,
		"The sun is a star at the centre of the solar system.",
		"Plants use photosynthesis to make food from sunlight and water.",
		"The moon orbits the earth once a month.",
	)
	if n != 3 {
		t.Fatalf("expected 3 chunks indexed, got %d", n)
	}

	m, err := Load(path, testCollection, false, "")
	if err != nil {
		t.Fatal(err)
	}
	if m.Count() != 3 {
		t.Fatalf("expected 3 documents, got %d", m.Count())
	}

	query, err := embedding.NewMockEmbedder(64).EmbedQuery(ctx, "how do plants use photosynthesis")
	if err != nil {
		t.Fatal(err)
	}
	results, err := m.SearchByEmbedding(ctx, query, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !strings.Contains(results[0].Content, "photosynthesis") {
		t.Errorf("expected photosynthesis chunk first, got %q", results[0].Content)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Errorf("results not ordered by similarity: %v < %v", results[0].Similarity, results[1].Similarity)
	}
	if results[0].Metadata[models.MetaSource] != "science.pdf" {
		t.Errorf("unexpected source metadata %q", results[0].Metadata[models.MetaSource])
	}
}

func TestSearchTopKLargerThanIndex(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.gob")
	buildIndex(t, path, "acids taste sour", "bases taste bitter")

	m, err := Load(path, testCollection, false, "")
	if err != nil {
		t.Fatal(err)
	}
	query, _ := embedding.NewMockEmbedder(64).EmbedQuery(ctx, "sour acids")
	results, err := m.SearchByEmbedding(ctx, query, 10)
	if err != nil {
		t.Fatalf("top_k larger than index must not fail: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestRebuildOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")
	buildIndex(t, path, "one", "two", "three")
	buildIndex(t, path, "only chunk")

	m, err := Load(path, testCollection, false, "")
	if err != nil {
		t.Fatal(err)
	}
	if m.Count() != 1 {
		t.Errorf("expected rebuilt index to hold 1 document, got %d", m.Count())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the index file, found %d entries", len(entries))
	}
}

func TestBuildEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.gob")

	n, err := Build(ctx, path, nil, embedding.NewMockEmbedder(64), BuildOptions{Collection: testCollection})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected 0 chunks, got %d", n)
	}

	m, err := Load(path, testCollection, false, "")
	if err != nil {
		t.Fatal(err)
	}
	results, err := m.SearchByEmbedding(ctx, []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("searching an empty index must not fail: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestBuildEmbedderFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.gob")
	_, err := Build(context.Background(), path, toChunks("text"), failingEmbedder{}, BuildOptions{Collection: testCollection})
	if !errors.Is(err, models.ErrExternalAPI) {
		t.Errorf("expected ErrExternalAPI, got %v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected underlying message, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("no index should be written when embedding fails")
	}
}

func TestBuildProgress(t *testing.T) {
	var calls [][2]int
	_, err := Build(context.Background(), filepath.Join(t.TempDir(), "index.gob"),
		toChunks("a", "b", "c", "d", "e"), embedding.NewMockEmbedder(16), BuildOptions{
			Collection: testCollection,
			BatchSize:  2,
			Progress: func(done, total int) {
				calls = append(calls, [2]int{done, total})
			},
		})
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]int{{2, 5}, {4, 5}, {5, 5}}
	if len(calls) != len(want) {
		t.Fatalf("expected %d progress calls, got %v", len(want), calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("progress call %d: expected %v, got %v", i, want[i], calls[i])
		}
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.gob"), testCollection, false, "")
	if !errors.Is(err, models.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.gob")
	buildIndex(t, path, "light travels in straight lines")

	m, err := Load(path, testCollection, false, "")
	if err != nil {
		t.Fatal(err)
	}
	model, dim, err := m.Dimension(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if model != "mock/64" || dim != 64 {
		t.Errorf("unexpected index model %q dim %d", model, dim)
	}

	query, _ := embedding.NewMockEmbedder(32).EmbedQuery(ctx, "light")
	_, err = m.SearchByEmbedding(ctx, query, 1)
	if !errors.Is(err, models.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestEncryptedIndex(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.gob.enc")
	key := strings.Repeat("k", 32)

	_, err := Build(ctx, path, toChunks("sound needs a medium"), embedding.NewMockEmbedder(16), BuildOptions{
		Collection:    testCollection,
		EncryptionKey: key,
	})
	if err != nil {
		t.Fatal(err)
	}

	m, err := Load(path, testCollection, false, key)
	if err != nil {
		t.Fatal(err)
	}
	if m.Count() != 1 {
		t.Errorf("expected 1 document, got %d", m.Count())
	}

	if _, err := Load(path, testCollection, false, strings.Repeat("x", 32)); err == nil {
		t.Error("expected error with the wrong key")
	}
}
