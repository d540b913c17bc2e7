package ingest

import "strings"

const (
	// chunkTokenBudget caps the estimated token count of a chunk so it
	// stays within the embedding service's input limit.
	chunkTokenBudget = 8192
	// chunkOverlapWords carries trailing words into the next chunk for
	// context continuity.
	chunkOverlapWords = 75
)

// ChunkText splits free text into word-window chunks within the token
// budget, with overlap between consecutive chunks. Token counts are
// estimated from word length, which is close enough for sizing.
func ChunkText(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	estimate := 0.0

	for _, word := range words {
		estimate += float64(len(word))/4 + 1
		if estimate > chunkTokenBudget-chunkOverlapWords && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			keep := chunkOverlapWords
			if keep > len(current) {
				keep = len(current)
			}
			current = append([]string(nil), current[len(current)-keep:]...)
			estimate = 0
			for _, w := range current {
				estimate += float64(len(w))/4 + 1
			}
		}
		current = append(current, word)
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}
