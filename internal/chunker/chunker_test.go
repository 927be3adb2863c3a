package chunker

import (
	"strings"
	"testing"
)

func TestSplit_ZeroLimit(t *testing.T) {
	if _, _, err := Split("hello", 0); err != ErrZeroLimit {
		t.Errorf("expected ErrZeroLimit, got %v", err)
	}
	if _, _, err := Split("hello", -3); err != ErrZeroLimit {
		t.Errorf("expected ErrZeroLimit for negative limit, got %v", err)
	}
}

func TestSplit_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t \n"} {
		chunks, truncated, err := Split(text, 100)
		if err != nil {
			t.Errorf("Split(%q) unexpected error: %v", text, err)
		}
		if len(chunks) != 0 {
			t.Errorf("Split(%q) expected no chunks, got %v", text, chunks)
		}
		if truncated {
			t.Errorf("Split(%q) should not report truncation", text)
		}
	}
}

func TestSplit_ShortTextSingleChunk(t *testing.T) {
	chunks, _, err := Split("Hello there.", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != "Hello there." {
		t.Errorf("expected single chunk, got %v", chunks)
	}
}

func TestSplit_SentenceBoundaries(t *testing.T) {
	chunks, truncated, err := Split("Hello world. This is a test!", 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if truncated {
		t.Error("unexpected truncation")
	}
	want := []string{"Hello world.", "This is a test!"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %v", len(want), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestSplit_PacksMultipleSentencesPerChunk(t *testing.T) {
	chunks, _, err := Split("One. Two. Three. Four. Five.", 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "One. Two." fits in 12; the rest packs into two more chunks.
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %v", chunks)
	}
	if chunks[0] != "One. Two." {
		t.Errorf("expected sentences packed together, got %q", chunks[0])
	}
}

func TestSplit_NewlineTerminators(t *testing.T) {
	chunks, _, err := Split("First line here!\nSecond line goes on.", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %v", chunks)
	}
	if chunks[0] != "First line here!" {
		t.Errorf("expected newline boundary split, got %q", chunks[0])
	}
}

func TestSplit_WordFallbackForLongSentence(t *testing.T) {
	text := "this sentence has no terminators at all and keeps going well past the limit"
	chunks, truncated, err := Split(text, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if truncated {
		t.Error("no single word exceeds the limit, should not truncate")
	}
	for i, c := range chunks {
		if len(c) > 20 {
			t.Errorf("chunk %d exceeds limit: %q (%d bytes)", i, c, len(c))
		}
	}
	if joined := strings.Join(chunks, " "); joined != text {
		t.Errorf("joined chunks differ from input:\n got %q\nwant %q", joined, text)
	}
}

func TestSplit_OversizedWordTruncated(t *testing.T) {
	long := strings.Repeat("x", 50)
	chunks, truncated, err := Split("short words then "+long+" more", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !truncated {
		t.Error("expected truncation to be reported")
	}
	found := false
	for _, c := range chunks {
		if len(c) > 10 {
			t.Errorf("chunk exceeds limit even with truncation: %q", c)
		}
		if c == strings.Repeat("x", 10) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected hard-truncated word chunk, got %v", chunks)
	}
}

func TestSplit_LengthInvariant(t *testing.T) {
	texts := []string{
		"The quick brown fox jumps over the lazy dog. Pack my box with five dozen liquor jugs! How vexingly quick daft zebras jump?",
		"No terminators here just a very long run of words that will need to be packed by the word level fallback instead",
		"Tiny. Bits. Of. Text. Every. Word. Ends. A. Sentence. Here. And. So. On. Forever.",
	}
	for _, text := range texts {
		for _, maxLen := range []int{5, 10, 25, 60, 200} {
			chunks, _, err := Split(text, maxLen)
			if err != nil {
				t.Fatalf("Split(maxLen=%d) error: %v", maxLen, err)
			}
			for i, c := range chunks {
				if len(c) > maxLen {
					t.Errorf("maxLen=%d chunk %d too long: %q", maxLen, i, c)
				}
				if strings.TrimSpace(c) == "" {
					t.Errorf("maxLen=%d chunk %d is whitespace-only", maxLen, i)
				}
				if c != strings.TrimSpace(c) {
					t.Errorf("maxLen=%d chunk %d not trimmed: %q", maxLen, i, c)
				}
			}
		}
	}
}

func TestSplit_OrderInvariant(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon zeta! Eta theta iota? Kappa lambda mu.\nNu xi omicron pi."
	chunks, truncated, err := Split(text, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if truncated {
		t.Fatal("unexpected truncation")
	}

	normalize := func(s string) string { return strings.Join(strings.Fields(s), " ") }
	if normalize(strings.Join(chunks, " ")) != normalize(text) {
		t.Errorf("normalized join differs from input:\n got %q\nwant %q",
			normalize(strings.Join(chunks, " ")), normalize(text))
	}
}
