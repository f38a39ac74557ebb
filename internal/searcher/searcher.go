// Package searcher orchestrates the retrieval pipeline: query text is
// embedded, nearest candidates are fetched from the vector store with
// oversampling, and survivors of score and relevance filtering are turned
// into bounded file excerpts.
package searcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/searchctx/queryqdrant/internal/embedder"
	"github.com/searchctx/queryqdrant/internal/extract"
	"github.com/searchctx/queryqdrant/internal/relevance"
	"github.com/searchctx/queryqdrant/internal/vectorstore"
)

// DefaultTopK is the result count when the caller does not specify one.
const DefaultTopK = 5

// Result is one search hit returned to the caller.
type Result struct {
	Path    string
	Score   float32
	Content string
	Reason  string
}

// Options tune the pipeline's filtering behavior.
type Options struct {
	// MinScore is the similarity floor; lower-scored candidates are skipped
	// before classification and never count toward top_k.
	MinScore float32
	// Oversample multiplies top_k for the vector-store request so filtering
	// losses can be absorbed. Values below 2 are raised to 2.
	Oversample int
	// Timeout bounds one search end to end. Zero disables the bound.
	Timeout time.Duration
	// Logger defaults to a nop logger when nil.
	Logger *zap.Logger
}

// Searcher runs the retrieval pipeline. All dependencies are injected so the
// pipeline can be exercised with substitute backends.
type Searcher struct {
	embedder   embedder.Embedder
	store      vectorstore.Store
	rules      relevance.Ruleset
	extractor  *extract.Extractor
	minScore   float32
	oversample int
	timeout    time.Duration
	logger     *zap.Logger
}

// New creates a Searcher.
func New(emb embedder.Embedder, store vectorstore.Store, rules relevance.Ruleset, ex *extract.Extractor, opts Options) *Searcher {
	oversample := opts.Oversample
	if oversample < 2 {
		oversample = 2
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Searcher{
		embedder:   emb,
		store:      store,
		rules:      rules,
		extractor:  ex,
		minScore:   opts.MinScore,
		oversample: oversample,
		timeout:    opts.Timeout,
		logger:     log,
	}
}

// Search returns up to topK results ordered by descending score. Backend
// failures (embedding or vector store) are returned to the caller and fail
// this request only; unreadable files degrade into diagnostic excerpts
// instead of failing the request.
func (s *Searcher) Search(ctx context.Context, query string, topK int) ([]Result, error) {
	if topK < 1 {
		topK = DefaultTopK
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	// Request more candidates than needed so post-filtering can still fill
	// the requested count.
	searchLimit := topK * s.oversample

	candidates, err := s.store.Query(ctx, vector, searchLimit)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("vector store returned candidates",
		zap.Int("count", len(candidates)),
		zap.Int("limit", searchLimit))

	results := make([]Result, 0, topK)
	for _, c := range candidates {
		if c.Score < s.minScore {
			s.logger.Debug("skipping candidate below score threshold",
				zap.String("path", c.Path),
				zap.Float32("score", c.Score))
			continue
		}

		verdict := s.rules.Classify(c.Path, query)
		if !verdict.Included {
			s.logger.Debug("filtered out candidate",
				zap.String("path", c.Path),
				zap.String("reason", verdict.Reason))
			continue
		}

		excerpt := s.extractor.Extract(c.Path, query)

		results = append(results, Result{
			Path:    c.Path,
			Score:   c.Score,
			Content: excerpt.Content,
			Reason:  verdict.Reason,
		})

		if len(results) >= topK {
			break
		}
	}

	s.logger.Debug("search complete",
		zap.String("query", query),
		zap.Int("results", len(results)))
	return results, nil
}
