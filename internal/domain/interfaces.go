package domain

// GameRecord is one parsed game from an archive: a synthesized text
// description (headers plus the move sequence) and the file it came from.
type GameRecord struct {
	Description string
	Source      string
}

// Chunk is a bounded-size slice of a GameRecord's description submitted
// for embedding. Records short enough to fit the token budget produce a
// single chunk equal to the description.
type Chunk struct {
	Text   string
	Source string
}

// SearchHit is a matching chunk with its squared Euclidean distance from
// the query vector. Rank starts at 1 for the closest hit.
type SearchHit struct {
	Chunk    Chunk
	Distance float64
	Rank     int
}

// Embedder converts free text into a fixed-dimension vector. The model
// identifier is bound at construction; the same identifier must be used
// at build time and query time for a given index.
type Embedder interface {
	Model() string
	Dimension() int
	Embed(text string) ([]float64, error)
}

// ChatMessage is a single role-tagged message for text generation.
type ChatMessage struct {
	Role    string
	Content string
}

// GenRequest describes one text-generation call.
type GenRequest struct {
	System      string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// Generator produces text from a system prompt and messages. Used only
// for post-retrieval formatting; raw search does not require it.
type Generator interface {
	Model() string
	Generate(req GenRequest) (string, error)
}

// Summarizer condenses a set of retrieved texts into a short digest.
type Summarizer interface {
	Summarize(texts []string, maxItems int) (string, error)
}
