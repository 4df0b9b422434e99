package memory

import (
	"context"
	"legal-chatbot-be/pkg/vectorindex"
	"sort"
	"sync"
)

// Index is a simple in-memory vector store using brute-force cosine similarity.
// Vectors are assumed L2-normalized, so the dot product is the cosine.
type Index struct {
	mu      sync.RWMutex
	records []vectorindex.Record
}

var _ vectorindex.Index = (*Index)(nil)

func NewIndex() *Index { return &Index{} }

func (s *Index) ReplaceSource(_ context.Context, source string, records []vectorindex.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, r := range s.records {
		if r.Source != source {
			kept = append(kept, r)
		}
	}
	s.records = append(kept, records...)
	return nil
}

func (s *Index) Query(_ context.Context, vector []float32, topK int) ([]vectorindex.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 {
		topK = 10
	}
	matches := make([]vectorindex.Match, len(s.records))
	for i, r := range s.records {
		matches[i] = vectorindex.Match{Text: r.Text, Source: r.Source, Score: dot(r.Vector, vector)}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK > len(matches) {
		topK = len(matches)
	}
	return matches[:topK], nil
}

// Len reports the number of stored chunks.
func (s *Index) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
