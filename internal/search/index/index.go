// Package index builds immutable BM25 statistics over a task corpus and
// scores documents against tokenized queries. An Index is constructed once
// by a Builder and is read-only afterwards, so any number of goroutines may
// score against it without locking.
package index

import (
	"math"

	"github.com/cityu-campus/tasks-api/internal/search/tokenizer"
)

// Default BM25 tuning constants. K1 controls term-frequency saturation and
// B controls document-length normalisation strength.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// Document is a single corpus entry. Lat and Lng are passthrough fields
// carried for result enrichment and never tokenized.
type Document struct {
	ID          string
	Title       string
	Description string
	Lat         float64
	Lng         float64
}

// Index is an immutable snapshot of BM25 corpus statistics.
type Index struct {
	docs     []Document
	docFreqs map[string]int
	idf      map[string]float64
	docLens  []int
	avgdl    float64
	k1       float64
	b        float64
}

// Builder constructs Index snapshots with fixed tuning parameters. The
// parameters are used as given, so B = 0 disables length normalisation;
// use NewBuilder for the defaults.
type Builder struct {
	K1 float64
	B  float64
}

// NewBuilder returns a Builder with the default BM25 constants.
func NewBuilder() Builder {
	return Builder{K1: DefaultK1, B: DefaultB}
}

// Build tokenizes every document's title and description and aggregates
// document frequencies, per-document lengths, the corpus average length,
// and per-term IDF. It never fails: an empty corpus yields an index that
// answers every query with no results.
func (bl Builder) Build(docs []Document) *Index {
	idx := &Index{
		docs:     docs,
		docFreqs: make(map[string]int),
		docLens:  make([]int, 0, len(docs)),
		k1:       bl.K1,
		b:        bl.B,
	}

	totalLen := 0
	for _, doc := range docs {
		terms := tokenizer.Tokenize(doc.Title + " " + doc.Description)
		idx.docLens = append(idx.docLens, len(terms))
		totalLen += len(terms)

		// Document frequency counts documents, not occurrences.
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			idx.docFreqs[term]++
		}
	}

	if len(docs) > 0 {
		idx.avgdl = float64(totalLen) / float64(len(docs))
	}

	// BM25 IDF: ln((N - df + 0.5) / (df + 0.5)). Negative for terms in
	// more than half the corpus, which is standard BM25 behaviour and
	// deliberately not clamped.
	n := float64(len(docs))
	idx.idf = make(map[string]float64, len(idx.docFreqs))
	for term, df := range idx.docFreqs {
		idx.idf[term] = math.Log((n - float64(df) + 0.5) / (float64(df) + 0.5))
	}
	return idx
}

// Size returns the number of documents in the corpus.
func (idx *Index) Size() int {
	return len(idx.docs)
}

// VocabularySize returns the number of distinct terms in the corpus.
func (idx *Index) VocabularySize() int {
	return len(idx.idf)
}

// AvgDocLength returns the corpus-wide average document length in tokens.
func (idx *Index) AvgDocLength() float64 {
	return idx.avgdl
}

// Document returns the document at position i.
func (idx *Index) Document(i int) Document {
	return idx.docs[i]
}

// DocFreq returns the number of documents containing term.
func (idx *Index) DocFreq(term string) int {
	return idx.docFreqs[term]
}

// Score computes the BM25 score of the document at position i against the
// given query terms. Terms absent from the corpus vocabulary, or absent from
// the document, contribute zero. The total can be negative when a query term
// occurs in more than half the corpus.
func (idx *Index) Score(queryTerms []string, i int) float64 {
	if len(idx.docs) == 0 || idx.avgdl == 0 {
		return 0
	}
	doc := idx.docs[i]
	terms := tokenizer.Tokenize(doc.Title + " " + doc.Description)
	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}
	docLen := float64(idx.docLens[i])

	score := 0.0
	for _, term := range queryTerms {
		idf, ok := idx.idf[term]
		if !ok {
			continue
		}
		tf := float64(counts[term])
		if tf == 0 {
			continue
		}
		numerator := tf * (idx.k1 + 1)
		denominator := tf + idx.k1*(1-idx.b+idx.b*(docLen/idx.avgdl))
		score += idf * (numerator / denominator)
	}
	return score
}
