// Package vectorstore provides nearest-neighbor lookups against the vector
// database holding the indexed source corpus.
package vectorstore

import "context"

// Candidate is a single hit returned by the vector store before any
// relevance filtering.
type Candidate struct {
	// Path is the corpus-relative file path stored in the point payload.
	Path string
	// Score is the similarity score, higher is better.
	Score float32
}

// Store answers nearest-neighbor queries ordered by descending score.
type Store interface {
	Query(ctx context.Context, vector []float32, limit int) ([]Candidate, error)
	Close() error
}
