// Package search exposes the ranked task search engine. An Engine owns the
// current index snapshot behind an atomic pointer: queries always read a
// fully-built index, and a rebuild publishes a brand-new snapshot in a single
// swap without blocking in-flight readers.
package search

import (
	"log/slog"
	"math"
	"sort"
	"sync/atomic"

	"github.com/cityu-campus/tasks-api/internal/search/index"
	"github.com/cityu-campus/tasks-api/internal/search/tokenizer"
)

// Result is a single ranked search hit.
type Result struct {
	TaskID string  `json:"task_id"`
	Title  string  `json:"title"`
	Score  float64 `json:"score"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// Engine ranks documents by BM25 relevance over the current index snapshot.
type Engine struct {
	builder index.Builder
	current atomic.Pointer[index.Index]
	logger  *slog.Logger
}

// NewEngine creates an Engine with an empty index. Build must be called
// before queries return any results.
func NewEngine(builder index.Builder) *Engine {
	e := &Engine{
		builder: builder,
		logger:  slog.Default().With("component", "search-engine"),
	}
	e.current.Store(builder.Build(nil))
	return e
}

// Build constructs a new index from the corpus and atomically publishes it,
// replacing the previous snapshot. Queries running concurrently keep reading
// the old snapshot until they finish.
func (e *Engine) Build(docs []index.Document) {
	idx := e.builder.Build(docs)
	e.current.Store(idx)
	e.logger.Info("index built",
		"documents", idx.Size(),
		"vocabulary", idx.VocabularySize(),
		"avg_doc_length", idx.AvgDocLength(),
	)
}

// Index returns the current snapshot.
func (e *Engine) Index() *index.Index {
	return e.current.Load()
}

// Tokenize exposes the engine's query tokenization.
func (e *Engine) Tokenize(query string) []string {
	return tokenizer.Tokenize(query)
}

// Search scores every indexed document against the query, keeps only
// strictly positive scores, sorts descending with ties resolved by corpus
// order, and returns at most topN results with scores rounded to four
// decimal places. An empty index, an empty query, or topN <= 0 yield an
// empty slice; none of these are errors.
func (e *Engine) Search(query string, topN int) []Result {
	idx := e.current.Load()
	if idx.Size() == 0 || topN <= 0 {
		return []Result{}
	}
	queryTerms := tokenizer.Tokenize(query)
	if len(queryTerms) == 0 {
		return []Result{}
	}

	results := make([]Result, 0, 16)
	for i := 0; i < idx.Size(); i++ {
		score := idx.Score(queryTerms, i)
		if score <= 0 {
			continue
		}
		doc := idx.Document(i)
		results = append(results, Result{
			TaskID: doc.ID,
			Title:  doc.Title,
			Score:  math.Round(score*10000) / 10000,
			Lat:    doc.Lat,
			Lng:    doc.Lng,
		})
	}

	// Stable sort: equal scores keep original corpus order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topN {
		results = results[:topN]
	}
	return results
}
