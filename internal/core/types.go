package core

const (
	AppName       = "docchat"
	AppUserAgent  = "docchat/0.1"
	RepositoryURL = "https://github.com/sandevgo/docchat"
	AppVersion    = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Document is a loaded source document. Immutable once loaded.
type Document struct {
	Content  string
	Metadata DocumentMetadata
}

type DocumentMetadata struct {
	Source string `json:"source"`
}

// Chunk is a bounded substring of a Document, the unit of embedding and retrieval.
type Chunk struct {
	ID       string        `json:"id,omitempty"`
	Content  string        `json:"pageContent"`
	Metadata ChunkMetadata `json:"metadata"`
}

type ChunkMetadata struct {
	Source string `json:"source"`
	// Offset is the rune offset of the chunk within the source document.
	Offset int `json:"offset"`
	Index  int `json:"index"`
	// Tokens is the chunk length in model tokens, zero when not counted.
	Tokens int `json:"tokens,omitempty"`
}

// Vector is an embedding. Only its dimensionality matters to this module.
type Vector []float32

// ScoredChunk serializes flat: the chunk fields plus its similarity score.
type ScoredChunk struct {
	Chunk
	Score float32 `json:"score"`
}

// Exchange is one settled (question, answer) pair of a chat.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ChatHistory is append-only during a session and only feeds condensation.
type ChatHistory []Exchange

type Message struct {
	Role    string        `json:"role"`
	Text    string        `json:"text"`
	Sources []ScoredChunk `json:"sources,omitempty"`
}

type IngestResult struct {
	ChunkCount int `json:"chunkCount"`
}

// Chunks flattens scored results back to their chunks.
func Chunks(scored []ScoredChunk) []Chunk {
	out := make([]Chunk, len(scored))
	for i, sc := range scored {
		out[i] = sc.Chunk
	}
	return out
}

type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length,omitempty"`
}
