package models

// Chunk is one window of an extracted document. ChunkID is its position in
// the split sequence, starting at 0.
type Chunk struct {
	ChunkID int
	Content string
}

// RetrievedChunk is a chunk returned from the vector index.
type RetrievedChunk struct {
	Chunk
	Similarity float32
}

// Query is what the presentation layer collects from the user.
type Query struct {
	Text        string
	Grade       string
	Chapter     string
	ContentType string
	Difficulty  string
	TopK        int
}

type PromptResponse struct {
	Query   string
	Source  []string
	Content string
	Warning string
}

type IndexResult struct {
	Path      string
	Chunks    int
	IndexPath string
	Warning   string
}
