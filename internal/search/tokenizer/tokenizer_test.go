package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
		{
			name: "whitespace only",
			in:   "   \t\n",
			want: []string{},
		},
		{
			name: "latin words lowercased",
			in:   "Library Check-In",
			want: []string{"library", "check", "in"},
		},
		{
			name: "digits kept in runs",
			in:   "room B4402 at 9am",
			want: []string{"room", "b4402", "at", "9am"},
		},
		{
			name: "cjk split per character",
			in:   "图书馆",
			want: []string{"图", "书", "馆"},
		},
		{
			name: "mixed cjk and latin",
			in:   "在图书馆完成CS1302任务",
			want: []string{"在", "图", "书", "馆", "完", "成", "cs1302", "任", "务"},
		},
		{
			name: "cjk adjacent to latin splits the run",
			in:   "ab图cd",
			want: []string{"ab", "图", "cd"},
		},
		{
			name: "punctuation and symbols discarded",
			in:   "你好，世界! (hello)",
			want: []string{"你", "好", "世", "界", "hello"},
		},
		{
			name: "punctuation only",
			in:   "，。！？",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if tt.want == nil {
				if len(got) != 0 {
					t.Fatalf("Tokenize(%q) = %v, want empty", tt.in, got)
				}
				return
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestTokenizeDeterministic verifies repeated calls yield identical output.
func TestTokenizeDeterministic(t *testing.T) {
	in := "在图书馆完成学习任务 study session 101"
	first := Tokenize(in)
	for i := 0; i < 10; i++ {
		if got := Tokenize(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: Tokenize not deterministic: %v vs %v", i, got, first)
		}
	}
}

// TestTokenizeNonCJKUnicode verifies that letters outside the handled
// ranges (accented Latin, Hangul, kana) are discarded rather than emitted.
func TestTokenizeNonCJKUnicode(t *testing.T) {
	got := Tokenize("café한국어テスト")
	want := []string{"caf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
}
