package rag

import "strings"

// Chunking defaults for the knowledge base. Chosen for short course
// documents: chunks small enough to embed cheaply, overlap large enough that
// a fact straddling a boundary lands whole in at least one chunk.
const (
	defaultChunkSize = 1000
	defaultOverlap   = 100
)

var separators = []string{"\n\n", "\n", " ", ""}

// SplitText recursively splits text on paragraph, line, word and finally
// character boundaries so that every chunk fits chunkSize, with roughly
// overlap characters repeated between neighboring chunks.
func SplitText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = defaultOverlap
	}
	pieces := splitRecursive(text, separators, chunkSize)
	return mergePieces(pieces, chunkSize, overlap)
}

// splitRecursive cuts text into pieces no longer than chunkSize, preferring
// the earliest separator that appears in the text.
func splitRecursive(text string, seps []string, chunkSize int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}
	if len(seps) == 0 || seps[0] == "" {
		// character-level fallback: fixed windows
		var out []string
		for start := 0; start < len(text); start += chunkSize {
			end := start + chunkSize
			if end > len(text) {
				end = len(text)
			}
			out = append(out, text[start:end])
		}
		return out
	}

	sep := seps[0]
	if !strings.Contains(text, sep) {
		return splitRecursive(text, seps[1:], chunkSize)
	}

	var out []string
	for _, part := range strings.Split(text, sep) {
		if part == "" {
			continue
		}
		out = append(out, splitRecursive(part, seps[1:], chunkSize)...)
	}
	return out
}

// mergePieces greedily packs pieces into chunks up to chunkSize, carrying a
// tail of the previous chunk into the next one as overlap.
func mergePieces(pieces []string, chunkSize, overlap int) []string {
	var (
		chunks  []string
		current strings.Builder
	)

	flush := func() string {
		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		return chunk
	}

	for _, p := range pieces {
		if current.Len() > 0 && current.Len()+1+len(p) > chunkSize {
			prev := flush()
			if overlap > 0 && len(prev) > overlap {
				current.WriteString(prev[len(prev)-overlap:])
			}
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(p)
	}
	flush()
	return chunks
}
