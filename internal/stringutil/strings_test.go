package stringutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate_ShortStringUnchanged(t *testing.T) {
	t.Parallel()

	if got := Truncate("tuition fees", 50); got != "tuition fees" {
		t.Errorf("Truncate() = %q, want unchanged input", got)
	}
}

func TestTruncate_CutsAtWordBoundary(t *testing.T) {
	t.Parallel()

	s := "the engineering college offers five departments"
	got := Truncate(s, 20)

	if !strings.HasSuffix(got, Ellipsis) {
		t.Fatalf("Truncate() = %q, want ellipsis suffix", got)
	}
	body := strings.TrimSuffix(got, Ellipsis)
	if strings.HasSuffix(body, " ") {
		t.Errorf("body %q has trailing space", body)
	}
	// The cut must land between words, never inside one.
	if !strings.HasPrefix(s, body) {
		t.Fatalf("body %q is not a prefix of input", body)
	}
	rest := s[len(body):]
	if rest != "" && rest[0] != ' ' {
		t.Errorf("cut split a word: body %q, rest %q", body, rest)
	}
}

func TestTruncate_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"the engineering college offers five departments and many programs",
		"registrationfeesforinternationalstudents",
		"بەشی ئەندازیاری کۆمپیوتەر لە زانکۆی سلێمانی",
	}
	for _, s := range inputs {
		for _, limit := range []int{5, 10, 20} {
			once := Truncate(s, limit)
			twice := Truncate(once, limit)
			if once != twice {
				t.Errorf("Truncate(%q, %d) not idempotent: %q then %q", s, limit, once, twice)
			}
		}
	}
}

func TestTruncate_NeverSplitsRune(t *testing.T) {
	t.Parallel()

	s := "زانکۆی سلێمانی زانکۆیەکی گشتییە لە هەرێمی کوردستان"
	for limit := 1; limit < 30; limit++ {
		got := Truncate(s, limit)
		if !utf8.ValidString(got) {
			t.Fatalf("Truncate(%q, %d) produced invalid UTF-8: %q", s, limit, got)
		}
		if utf8.RuneCountInString(got) > limit {
			t.Errorf("Truncate(_, %d) returned %d runes", limit, utf8.RuneCountInString(got))
		}
	}
}

func TestTruncate_NoWhitespaceHardCut(t *testing.T) {
	t.Parallel()

	s := strings.Repeat("a", 100)
	got := Truncate(s, 10)
	want := strings.Repeat("a", 9) + Ellipsis
	if got != want {
		t.Errorf("Truncate() = %q, want %q", got, want)
	}
}

func TestTruncate_ZeroLimit(t *testing.T) {
	t.Parallel()

	if got := Truncate("anything", 0); got != "" {
		t.Errorf("Truncate(_, 0) = %q, want empty", got)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"  hello   world  ", "hello world"},
		{"one\ttwo\nthree", "one two three"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWordCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"hello", 1},
		{"what are the engineering department registration fees", 7},
		{"  padded   words  ", 2},
	}
	for _, tt := range tests {
		if got := WordCount(tt.in); got != tt.want {
			t.Errorf("WordCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestContainsFold(t *testing.T) {
	t.Parallel()

	if !ContainsFold("What are the FEES?", "fees") {
		t.Error("ContainsFold should match case-insensitively")
	}
	if ContainsFold("tuition", "fees") {
		t.Error("ContainsFold matched absent substring")
	}
}
