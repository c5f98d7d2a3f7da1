package chunking

import (
	"strings"
)

// legacyChunks slices page text into fixed rune windows with rune overlap.
// No segmentation or tokenization is involved, so this tier cannot fail for
// well-formed string input; the pipeline relies on that as its floor.
// Token approximation: ~4 chars per token.
func legacyChunks(pages []Page, targetTokens, overlapTokens int) []Chunk {
	if targetTokens <= 0 {
		targetTokens = 600
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	targetChars := targetTokens * 4
	overlapChars := overlapTokens * 4

	chunks := make([]Chunk, 0, 128)
	for _, page := range pages {
		text := strings.TrimSpace(page.Text)
		if text == "" {
			continue
		}
		runes := []rune(text)
		for startRune := 0; startRune < len(runes); {
			endRune := startRune + targetChars
			if endRune > len(runes) {
				endRune = len(runes)
			}
			window := string(runes[startRune:endRune])
			chunks = append(chunks, Chunk{
				Text:       window,
				PageNumber: page.Number,
				Tokens:     (endRune - startRune + 3) / 4,
			})
			if endRune == len(runes) {
				break
			}
			// Advance with overlap (by runes)
			nextStartRune := endRune - overlapChars
			if nextStartRune <= startRune {
				nextStartRune = endRune
			}
			startRune = nextStartRune
		}
	}
	return chunks
}
