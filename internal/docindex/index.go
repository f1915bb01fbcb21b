// Package docindex provides an in-memory retrieval store over extracted
// document text: fixed-size overlapping chunks indexed by normalized term
// vectors and queried by cosine similarity.
package docindex

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/sells-group/credit-cli/internal/extract"
)

// Chunk is one indexed slice of a document plus its similarity to the query.
type Chunk struct {
	Text     string
	Metadata map[string]string
	Score    float64
}

// Index is a per-request retrieval store. It is not safe for concurrent use;
// each pipeline run owns its own instance.
type Index struct {
	chunkSize    int
	chunkOverlap int
	threshold    float64

	chunks  []string
	meta    []map[string]string
	vectors []map[string]float64
}

// New creates an Index. Zero or negative parameters fall back to defaults
// (chunk size 1000, overlap 200, threshold 0.7).
func New(chunkSize, chunkOverlap int, threshold float64) *Index {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 200
		if chunkOverlap >= chunkSize {
			chunkOverlap = chunkSize / 5
		}
	}
	if threshold <= 0 {
		threshold = 0.7
	}
	return &Index{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		threshold:    threshold,
	}
}

// Add splits text into chunks and indexes each one with the given metadata.
func (ix *Index) Add(text string, metadata map[string]string) {
	for _, chunk := range splitChunks(text, ix.chunkSize, ix.chunkOverlap) {
		vec := termVector(chunk)
		if len(vec) == 0 {
			continue
		}
		ix.chunks = append(ix.chunks, chunk)
		ix.meta = append(ix.meta, metadata)
		ix.vectors = append(ix.vectors, vec)
	}
}

// Query returns up to topK chunks whose similarity to the question meets the
// threshold, most similar first. An empty index returns no results.
func (ix *Index) Query(question string, topK int) []Chunk {
	if len(ix.chunks) == 0 || topK <= 0 {
		return nil
	}

	qv := termVector(question)
	if len(qv) == 0 {
		return nil
	}

	var hits []Chunk
	for i, vec := range ix.vectors {
		score := cosine(qv, vec)
		if score < ix.threshold {
			continue
		}
		hits = append(hits, Chunk{
			Text:     ix.chunks[i],
			Metadata: ix.meta[i],
			Score:    score,
		})
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.chunks)
}

// Clear drops all indexed content.
func (ix *Index) Clear() {
	ix.chunks = nil
	ix.meta = nil
	ix.vectors = nil
}

func splitChunks(text string, size, overlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// termVector builds an L2-normalized term-frequency vector over folded
// tokens of at least three characters.
func termVector(text string) map[string]float64 {
	tokens := strings.FieldsFunc(extract.Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	vec := make(map[string]float64)
	for _, tok := range tokens {
		if len(tok) < 3 {
			continue
		}
		vec[tok]++
	}
	if len(vec) == 0 {
		return nil
	}

	var norm float64
	for _, f := range vec {
		norm += f * f
	}
	norm = math.Sqrt(norm)
	for tok := range vec {
		vec[tok] /= norm
	}
	return vec
}

func cosine(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for tok, fa := range a {
		if fb, ok := b[tok]; ok {
			dot += fa * fb
		}
	}
	return dot
}
