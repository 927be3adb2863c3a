// Package chunker splits arbitrary-length text into synthesizer-safe chunks,
// preferring sentence boundaries over mid-sentence cuts.
package chunker

import (
	"errors"
	"strings"
)

// ErrZeroLimit is returned when the chunk limit is not positive.
var ErrZeroLimit = errors.New("chunk limit must be positive")

// enders are the sentence terminators checked in order when scanning for the
// nearest boundary. Each is a terminator punctuation followed by a space or
// newline.
var enders = []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}

// Split divides text into ordered chunks of at most maxLen bytes each.
//
// Whole sentences are packed greedily into chunks; a sentence longer than
// maxLen falls back to word-level packing. A single word longer than maxLen
// is hard-truncated, which is lossy; truncated reports whether that happened.
// Chunks are trimmed and never empty. Empty or whitespace-only input yields
// no chunks and no error.
func Split(text string, maxLen int) (chunks []string, truncated bool, err error) {
	if maxLen <= 0 {
		return nil, false, ErrZeroLimit
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false, nil
	}
	if len(text) <= maxLen {
		return []string{text}, false, nil
	}

	var buf strings.Builder
	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			chunks = append(chunks, s)
		}
		buf.Reset()
	}

	for _, seg := range sentences(text) {
		if buf.Len()+len(seg) > maxLen {
			flush()
		}
		if len(strings.TrimSpace(seg)) > maxLen {
			// Sentence alone exceeds the limit; pack its words instead.
			words, wordTruncated := packWords(strings.TrimSpace(seg), maxLen)
			truncated = truncated || wordTruncated
			chunks = append(chunks, words...)
			continue
		}
		buf.WriteString(seg)
	}
	flush()

	return chunks, truncated, nil
}

// sentences cuts text into segments at the nearest upcoming terminator from
// the enders set, keeping the terminator with the preceding segment. Text
// with no terminators is returned as a single segment.
func sentences(text string) []string {
	var segs []string
	start := 0

	for i := 0; i < len(text)-1; i++ {
		pair := text[i : i+2]
		for _, e := range enders {
			if pair == e {
				segs = append(segs, text[start:i+2])
				start = i + 2
				i++ // skip the space/newline just consumed
				break
			}
		}
	}
	if start < len(text) {
		segs = append(segs, text[start:])
	}
	return segs
}

// packWords greedily packs whitespace-delimited words into sub-chunks of at
// most maxLen bytes. A single word longer than maxLen is truncated to maxLen
// as a last resort.
func packWords(seg string, maxLen int) (chunks []string, truncated bool) {
	var buf strings.Builder

	for _, word := range strings.Fields(seg) {
		if len(word) > maxLen {
			if buf.Len() > 0 {
				chunks = append(chunks, buf.String())
				buf.Reset()
			}
			chunks = append(chunks, word[:maxLen])
			truncated = true
			continue
		}
		if buf.Len() > 0 && buf.Len()+1+len(word) > maxLen {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(word)
	}
	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}
	return chunks, truncated
}
