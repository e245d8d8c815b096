package splitter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"docqa/internal/domain"
)

// Splitter slides a window of chunkSize units across a cleaned document,
// advancing chunkSize-overlap units per step. The final chunk may be
// shorter; trailing content is never dropped and no chunk is ever empty.
type Splitter struct {
	unit      string
	chunkSize int
	overlap   int
}

// New validates the configuration and returns a splitter. Overlap must stay
// strictly below chunk size or the window could not advance.
func New(unit string, chunkSize, overlap int) (*Splitter, error) {
	if unit != "word" && unit != "sentence" {
		return nil, fmt.Errorf("unsupported split unit: %q", unit)
	}
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be > 0, got %d", chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("overlap must satisfy 0 <= overlap < chunk_size, got %d", overlap)
	}
	return &Splitter{unit: unit, chunkSize: chunkSize, overlap: overlap}, nil
}

func (s *Splitter) Split(doc domain.Document) ([]domain.Chunk, error) {
	units := s.tokenize(doc.Content)
	if len(units) == 0 {
		return nil, nil
	}

	// Word offset of each unit boundary, so chunks carry word spans even in
	// sentence mode.
	wordsBefore := make([]int, len(units)+1)
	for i, u := range units {
		wordsBefore[i+1] = wordsBefore[i] + len(strings.Fields(u))
	}

	step := s.chunkSize - s.overlap
	var chunks []domain.Chunk

	for start := 0; start < len(units); start += step {
		end := start + s.chunkSize
		if end > len(units) {
			end = len(units)
		}

		overlapWords := 0
		if len(chunks) > 0 {
			overlapEnd := start + s.overlap
			if overlapEnd > end {
				overlapEnd = end
			}
			overlapWords = wordsBefore[overlapEnd] - wordsBefore[start]
		}

		seq := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:           chunkID(doc.ID, seq),
			DocumentID:   doc.ID,
			Sequence:     seq,
			Content:      strings.Join(units[start:end], " "),
			WordStart:    wordsBefore[start],
			WordEnd:      wordsBefore[end],
			OverlapWords: overlapWords,
		})

		if end == len(units) {
			break
		}
	}

	return chunks, nil
}

func (s *Splitter) tokenize(content string) []string {
	if s.unit == "sentence" {
		return splitSentences(content)
	}
	return strings.Fields(content)
}

// splitSentences cuts on terminal punctuation followed by whitespace. The
// terminator stays attached to its sentence.
func splitSentences(content string) []string {
	fields := strings.Fields(content)
	var sentences []string
	var current []string

	for _, w := range fields {
		current = append(current, w)
		if strings.HasSuffix(w, ".") || strings.HasSuffix(w, "!") || strings.HasSuffix(w, "?") {
			sentences = append(sentences, strings.Join(current, " "))
			current = current[:0]
		}
	}
	if len(current) > 0 {
		sentences = append(sentences, strings.Join(current, " "))
	}
	return sentences
}

func chunkID(docID string, seq int) string {
	data := fmt.Sprintf("%s:%d", docID, seq)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
