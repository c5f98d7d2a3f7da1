package chunking

import (
	"fmt"
	"sort"
	"strings"
)

// Assemble produces the final ordered chunk list from counted sentences.
// Pages are processed independently in ascending page-number order and a
// chunk never crosses the page it starts on, keeping page provenance exact.
//
// Every sentence text must be present in the index; a miss is an internal
// bug, not a recoverable condition.
func Assemble(pages map[int][]Sentence, index TokenCountIndex, cfg Config) ([]Chunk, error) {
	numbers := make([]int, 0, len(pages))
	for n := range pages {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	var chunks []Chunk
	for _, n := range numbers {
		pageChunks, err := assemblePage(pages[n], index, cfg)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, pageChunks...)
	}
	if chunks == nil {
		chunks = []Chunk{}
	}
	return chunks, nil
}

// assemblePage runs the greedy single-pass budget walk over one page.
//
// A sentence whose own count exceeds TargetTokens closes any pending buffer
// as-is and is emitted alone (escape valve); overlap is never seeded into an
// oversized chunk, which keeps the bound "multi-sentence chunks stay within
// TargetTokens" intact.
func assemblePage(sents []Sentence, index TokenCountIndex, cfg Config) ([]Chunk, error) {
	var (
		buffer []Sentence
		sum    int
		chunks []Chunk
	)
	for _, s := range sents {
		count, ok := index[s.Text]
		if !ok {
			return nil, fmt.Errorf("%w: no token count for sentence on page %d", ErrAssemblyInvariant, s.PageNumber)
		}
		s.Tokens = count

		if count > cfg.TargetTokens {
			if len(buffer) > 0 {
				chunks = append(chunks, newChunk(buffer, sum))
				buffer, sum = nil, 0
			}
			chunks = append(chunks, Chunk{Text: s.Text, PageNumber: s.PageNumber, Tokens: count})
			continue
		}

		if sum+count > cfg.TargetTokens && len(buffer) > 0 {
			chunks = append(chunks, newChunk(buffer, sum))
			buffer, sum = overlapSeed(buffer, cfg.OverlapTokens)
			// The seed plus the incoming sentence may still exceed the
			// budget; shed seed sentences from the front until it fits.
			for len(buffer) > 0 && sum+count > cfg.TargetTokens {
				sum -= buffer[0].Tokens
				buffer = buffer[1:]
			}
		}
		buffer = append(buffer, s)
		sum += count
	}
	if len(buffer) > 0 {
		chunks = append(chunks, newChunk(buffer, sum))
	}
	return chunks, nil
}

// overlapSeed returns the largest sentence-aligned suffix of the closed
// buffer whose token sum does not exceed budget, in original order. Overlap
// is whole sentences only, rounded down: an empty seed is legal when even
// the last sentence is bigger than the budget.
func overlapSeed(buffer []Sentence, budget int) ([]Sentence, int) {
	if budget <= 0 {
		return nil, 0
	}
	sum := 0
	i := len(buffer)
	for i > 0 {
		if sum+buffer[i-1].Tokens > budget {
			break
		}
		sum += buffer[i-1].Tokens
		i--
	}
	if i == len(buffer) {
		return nil, 0
	}
	seed := make([]Sentence, len(buffer)-i)
	copy(seed, buffer[i:])
	return seed, sum
}

func newChunk(buffer []Sentence, sum int) Chunk {
	texts := make([]string, len(buffer))
	for i, s := range buffer {
		texts[i] = s.Text
	}
	return Chunk{
		Text:       strings.Join(texts, " "),
		PageNumber: buffer[0].PageNumber,
		Tokens:     sum,
	}
}
