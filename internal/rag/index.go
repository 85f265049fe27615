package rag

import (
	"math"
	"sort"
)

// Index is a small in-process vector index over knowledge-base chunks.
// Built once at startup, read-only afterwards.
type Index struct {
	docs []document
}

type document struct {
	text string
	vec  []float32
}

func NewIndex() *Index { return &Index{} }

func (ix *Index) Add(text string, vec []float32) {
	ix.docs = append(ix.docs, document{text: text, vec: vec})
}

func (ix *Index) Len() int { return len(ix.docs) }

// Search returns the texts of the k chunks most similar to the query
// vector, best first.
func (ix *Index) Search(query []float32, k int) []string {
	type scored struct {
		text  string
		score float64
	}
	results := make([]scored, 0, len(ix.docs))
	for _, d := range ix.docs {
		results = append(results, scored{text: d.text, score: cosine(query, d.vec)})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	if k > len(results) {
		k = len(results)
	}
	out := make([]string, 0, k)
	for _, r := range results[:k] {
		out = append(out, r.text)
	}
	return out
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
