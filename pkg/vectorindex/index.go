package vectorindex

import (
	"context"
	"errors"
)

var ErrLengthMismatch = errors.New("records and vectors length mismatch")

// Record is one chunk to store, keyed by its source file and position in it.
type Record struct {
	Source   string
	Index    int
	Text     string
	Vector   []float32
	Metadata map[string]any
}

// Match is one search hit. Score is cosine similarity, higher is closer.
type Match struct {
	Text   string
	Source string
	Score  float64
}

// Index is the query side used per chat turn plus the write side used by ingestion.
type Index interface {
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
	// ReplaceSource drops every chunk of source and stores records in its place.
	ReplaceSource(ctx context.Context, source string, records []Record) error
}
