package text

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("Black-cherry, 2015 vintage; a_b x Côte-Rôtie!")
	want := []string{"Black", "cherry", "2015", "vintage", "a_b", "Côte", "Rôtie"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %q, want %q", got, want)
	}
	if got := Tokenize("a b c"); len(got) != 0 {
		t.Fatalf("single-rune tokens should be dropped, got %q", got)
	}
}

func TestNGrams(t *testing.T) {
	toks := []string{"ripe", "black", "fruit"}
	got := NGrams(toks, 1, 2)
	want := []string{"ripe", "black", "fruit", "ripe black", "black fruit"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NGrams(1,2) = %q, want %q", got, want)
	}
	if got := NGrams(toks, 2, 2); !reflect.DeepEqual(got, []string{"ripe black", "black fruit"}) {
		t.Fatalf("NGrams(2,2) = %q", got)
	}
	if got := NGrams(toks, 0, 0); !reflect.DeepEqual(got, toks) {
		t.Fatalf("NGrams(0,0) should be unigrams, got %q", got)
	}
	if got := NGrams(toks, 4, 4); len(got) != 0 {
		t.Fatalf("n longer than input should be empty, got %q", got)
	}
}

func TestAnalyze_StopWordsBeforeBigrams(t *testing.T) {
	sw, ok := StopWords("english")
	if !ok {
		t.Fatal("english stop words missing")
	}
	a := Analyzer{NGramMin: 1, NGramMax: 2, Lowercase: true, StopWords: sw}
	got := a.Analyze("Notes of CHERRY and the Plum")
	// "of", "and", "the" are removed first, so "cherry plum" becomes a bigram.
	want := []string{"notes", "cherry", "plum", "notes cherry", "cherry plum"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Analyze = %q, want %q", got, want)
	}
}

func TestAnalyze_KeepCase(t *testing.T) {
	a := Analyzer{NGramMin: 1, NGramMax: 1}
	if got := a.Analyze("Pinot Noir"); !reflect.DeepEqual(got, []string{"Pinot", "Noir"}) {
		t.Fatalf("Analyze = %q", got)
	}
}

func TestStopWords(t *testing.T) {
	if sw, ok := StopWords(""); !ok || sw != nil {
		t.Fatalf("empty name should mean no stop words")
	}
	if sw, ok := StopWords("None"); !ok || sw != nil {
		t.Fatalf("none should mean no stop words")
	}
	if _, ok := StopWords("french"); ok {
		t.Fatalf("unknown list should not resolve")
	}
	for _, w := range []string{"the", "and", "with", "of"} {
		if _, ok := EnglishStopWords[w]; !ok {
			t.Errorf("%q should be a stop word", w)
		}
	}
	for _, w := range []string{"cherry", "tannins", "wine"} {
		if _, ok := EnglishStopWords[w]; ok {
			t.Errorf("%q should not be a stop word", w)
		}
	}
}
