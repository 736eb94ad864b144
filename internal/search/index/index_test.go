package index

import (
	"math"
	"testing"
)

func testCorpus() []Document {
	return []Document{
		{ID: "T001", Title: "图书馆打卡", Description: "在图书馆完成学习任务"},
		{ID: "T002", Title: "食堂用餐", Description: "体验校园美食"},
		{ID: "T003", Title: "实验室预约", Description: "预约化学实验室设备"},
	}
}

func TestBuildStats(t *testing.T) {
	idx := NewBuilder().Build(testCorpus())

	if got := idx.Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
	// Doc lengths are 15, 10, and 14 tokens.
	if got, want := idx.AvgDocLength(), 13.0; got != want {
		t.Errorf("AvgDocLength() = %v, want %v", got, want)
	}
	if got := idx.VocabularySize(); got == 0 {
		t.Fatal("VocabularySize() = 0, want non-zero")
	}

	tests := []struct {
		term string
		df   int
	}{
		{"图", 1},
		{"书", 1},
		{"馆", 1},
		{"学", 2}, // 学习 in T001, 化学 in T003
		{"验", 2}, // 体验 in T002, 实验 in T003
		{"食", 1}, // twice in T002 but df counts documents
		{"火", 0},
	}
	for _, tt := range tests {
		if got := idx.DocFreq(tt.term); got != tt.df {
			t.Errorf("DocFreq(%q) = %d, want %d", tt.term, got, tt.df)
		}
	}
}

// TestScoreMatchesFormula recomputes one document's score by hand and
// checks the index agrees.
func TestScoreMatchesFormula(t *testing.T) {
	idx := NewBuilder().Build(testCorpus())

	// Query 图书馆 against T001: each of 图, 书, 馆 occurs twice in the
	// document (title and description), df = 1 for all three.
	n, df := 3.0, 1.0
	idf := math.Log((n - df + 0.5) / (df + 0.5))
	tf, docLen, avgdl := 2.0, 15.0, 13.0
	perTerm := idf * (tf * (DefaultK1 + 1)) / (tf + DefaultK1*(1-DefaultB+DefaultB*(docLen/avgdl)))
	want := 3 * perTerm

	got := idx.Score([]string{"图", "书", "馆"}, 0)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Score = %v, want %v", got, want)
	}
}

func TestScoreSkipsUnknownAndAbsentTerms(t *testing.T) {
	idx := NewBuilder().Build(testCorpus())

	// Term never seen during build contributes nothing.
	if got := idx.Score([]string{"火"}, 0); got != 0 {
		t.Errorf("Score(unknown term) = %v, want 0", got)
	}
	// Term in the vocabulary but absent from this document contributes nothing.
	if got := idx.Score([]string{"食"}, 0); got != 0 {
		t.Errorf("Score(term absent from doc) = %v, want 0", got)
	}
}

// TestNegativeIDF verifies that a term in more than half the corpus gets a
// negative weight and is not clamped to zero.
func TestNegativeIDF(t *testing.T) {
	docs := []Document{
		{ID: "A", Title: "晨跑打卡", Description: ""},
		{ID: "B", Title: "晨跑签到", Description: ""},
		{ID: "C", Title: "晚间自习", Description: ""},
	}
	idx := NewBuilder().Build(docs)

	// 晨 and 跑 occur in 2 of 3 documents: idf = ln(1.5/2.5) < 0.
	if got := idx.Score([]string{"晨"}, 0); got >= 0 {
		t.Errorf("Score with df > N/2 = %v, want negative", got)
	}
}

func TestEmptyCorpus(t *testing.T) {
	idx := NewBuilder().Build(nil)

	if got := idx.Size(); got != 0 {
		t.Errorf("Size() = %d, want 0", got)
	}
	if got := idx.AvgDocLength(); got != 0 {
		t.Errorf("AvgDocLength() = %v, want 0", got)
	}
	if got := idx.Score([]string{"图"}, 0); got != 0 {
		t.Errorf("Score on empty corpus = %v, want 0", got)
	}
}

// TestZeroBDisablesLengthNormalisation verifies an explicit b of zero is
// honoured rather than coerced to the default: scores then depend only on
// term frequency, so documents of different lengths tie.
func TestZeroBDisablesLengthNormalisation(t *testing.T) {
	docs := []Document{
		{ID: "D1", Title: "晨跑打卡", Description: ""},
		{ID: "D2", Title: "晨跑签到活动安排说明", Description: ""},
		{ID: "D3", Title: "实验室预约", Description: ""},
		{ID: "D4", Title: "食堂用餐", Description: ""},
		{ID: "D5", Title: "图书馆学习", Description: ""},
	}
	flat := Builder{K1: DefaultK1, B: 0}.Build(docs)

	// 晨 and 跑 occur once in both D1 (4 tokens) and D2 (10 tokens).
	query := []string{"晨", "跑"}
	s1, s2 := flat.Score(query, 0), flat.Score(query, 1)
	if s1 != s2 {
		t.Errorf("scores with b=0 differ by length: D1=%v D2=%v", s1, s2)
	}
	if s1 <= 0 {
		t.Errorf("score = %v, want positive", s1)
	}

	// With the default b the shorter document scores higher.
	base := NewBuilder().Build(docs)
	if base.Score(query, 0) <= base.Score(query, 1) {
		t.Errorf("default b did not favour the shorter document: D1=%v D2=%v",
			base.Score(query, 0), base.Score(query, 1))
	}
}

func TestCustomTuning(t *testing.T) {
	corpus := testCorpus()
	base := NewBuilder().Build(corpus)
	// b=0 disables length normalisation, so a longer-than-average document
	// scores higher than with the default b.
	flat := Builder{K1: DefaultK1, B: 0}.Build(corpus)

	query := []string{"图", "书", "馆"}
	if base.Score(query, 0) >= flat.Score(query, 0) {
		t.Errorf("length normalisation did not penalise long document: base=%v flat=%v",
			base.Score(query, 0), flat.Score(query, 0))
	}
}
