package tokenize

import (
	"context"
	"slices"
	"strings"
	"testing"
)

func TestWords(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expected    []Token
	}{
		{"Numbers are dropped", "Cat cat dog dog fish 2024", []Token{"cat", "cat", "dog", "dog", "fish"}},
		{"Punctuation is skipped", "Hello, world! How are you?", []Token{"hello", "world", "how", "are", "you"}},
		{"Decimals are numeric", "pi is 3.14 or 1,000", []Token{"pi", "is", "or"}},
		{"Mixed letters and digits stay", "utf8 word2vec 42", []Token{"utf8", "word2vec"}},
		{"Contractions stay whole", "don't stop", []Token{"don't", "stop"}},
		{"Unicode letters are lowercased", "Émile ÉCOLE", []Token{"émile", "école"}},
		{"Multiple lines", "first line\nsecond line", []Token{"first", "line", "second", "line"}},
		{"Han splits per character", "日本語", []Token{"日", "本", "語"}},
		{"Empty text", "", nil},
		{"Only whitespace", "  \t\n ", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			got := Collect(Words(context.Background(), tc.input, 0))
			if !slices.Equal(got, tc.expected) {
				t.Errorf("Words(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestWordsMaxCount(t *testing.T) {
	text := strings.Repeat("alpha beta gamma ", 100)

	for _, limit := range []int{1, 2, 7, 299, 300} {
		got := Collect(Words(context.Background(), text, limit))
		if len(got) != limit {
			t.Errorf("limit %d: got %d tokens", limit, len(got))
		}
	}

	got := Collect(Words(context.Background(), text, 1000))
	if len(got) != 300 {
		t.Errorf("limit above token count: got %d tokens, expected 300", len(got))
	}
}

func TestWordsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := Collect(Words(ctx, "one two three", 0)); len(got) != 0 {
		t.Errorf("cancelled context yielded %v", got)
	}
}

func TestWordsCancelMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []Token
	for tok := range Words(ctx, "one two three four five", 0) {
		got = append(got, tok)
		if len(got) == 2 {
			cancel()
		}
	}
	if len(got) != 2 {
		t.Errorf("expected scanning to stop after cancel, got %v", got)
	}
}

func TestWordsIdempotent(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. The dog sleeps."
	first := Collect(Words(context.Background(), text, 0))
	second := Collect(Words(context.Background(), text, 0))

	slices.Sort(first)
	slices.Sort(second)
	if !slices.Equal(first, second) {
		t.Errorf("tokenizing twice differs: %v vs %v", first, second)
	}
}

func TestIsNumeric(t *testing.T) {
	testCases := []struct {
		input    string
		expected bool
	}{
		{"2024", true},
		{"3.14", true},
		{"1,000", true},
		{"٣٤", true},
		{"utf8", false},
		{"...", false},
		{"", false},
		{"abc", false},
	}

	for _, tc := range testCases {
		if got := IsNumeric(tc.input); got != tc.expected {
			t.Errorf("IsNumeric(%q) = %v, expected %v", tc.input, got, tc.expected)
		}
	}
}

func TestFragmentBefore(t *testing.T) {
	testCases := []struct {
		description string
		text        string
		cursor      int
		fragment    string
		ok          bool
	}{
		{"Word at end", "I like do", 9, "do", true},
		{"Inside a word", "I like doing", 9, "do", true},
		{"After a space", "I like do ", 10, "", false},
		{"Document start", "hello", 0, "", false},
		{"Empty text", "", 3, "", false},
		{"After punctuation", "hello,", 6, "", false},
		{"After a number", "room 42", 7, "", false},
		{"Cursor beyond end", "abc", 99, "abc", true},
		{"Negative cursor", "abc", -1, "", false},
		{"Second line", "first\nsec", 9, "sec", true},
		{"Start of line", "first\n", 6, "", false},
		{"Keeps case", "Hello Wor", 9, "Wor", true},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			fragment, ok := FragmentBefore(tc.text, tc.cursor)
			if fragment != tc.fragment || ok != tc.ok {
				t.Errorf("FragmentBefore(%q, %d) = (%q, %v), expected (%q, %v)",
					tc.text, tc.cursor, fragment, ok, tc.fragment, tc.ok)
			}
		})
	}
}

func TestClampOffset(t *testing.T) {
	text := "aé" // 'é' spans bytes 1..2
	if got := ClampOffset(text, 2); got != 1 {
		t.Errorf("ClampOffset inside rune = %d, expected 1", got)
	}
	if got := ClampOffset(text, 3); got != 3 {
		t.Errorf("ClampOffset at end = %d, expected 3", got)
	}
}

func BenchmarkWords(b *testing.B) {
	text := strings.Repeat("lorem ipsum dolor sit amet consectetur 2024 ", 200)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for range Words(ctx, text, DefaultMaxTokens) {
		}
	}
}
