// Package text prepares request text for segment-wise synthesis: whitespace
// normalization, abbreviation expansion, and sentence splitting.
package text

import (
	"regexp"
	"strings"
)

const whitespaceRegexPattern = `\s+`

// Sentence-terminal runes that end a synthesis chunk.
const terminalRunes = ".!?"

// Chunker splits input text into sentence-sized chunks for the backend.
// Chunk order always matches the original text order.
type Chunker struct {
	whitespacePattern    *regexp.Regexp
	abbreviationReplacer *strings.Replacer
}

// NewChunker creates a chunker with compiled patterns and replacers set up once.
func NewChunker() *Chunker {
	// Expanding abbreviations before splitting keeps "Dr. Smith" in one chunk.
	abbreviations := []string{
		"Mr.", "Mister",
		"Mrs.", "Misses",
		"Ms.", "Miss",
		"Dr.", "Doctor",
		"St.", "Saint",
		"Co.", "Company",
		"Ltd.", "Limited",
		"Corp.", "Corporation",
		"Inc.", "Incorporated",
	}

	return &Chunker{
		whitespacePattern:    regexp.MustCompile(whitespaceRegexPattern),
		abbreviationReplacer: strings.NewReplacer(abbreviations...),
	}
}

// Normalize collapses runs of whitespace, expands common abbreviations, and
// trims the result.
func (c *Chunker) Normalize(text string) string {
	if text == "" {
		return text
	}

	normalized := c.abbreviationReplacer.Replace(text)
	normalized = c.whitespacePattern.ReplaceAllString(normalized, " ")

	return strings.TrimSpace(normalized)
}

// Split breaks normalized text into sentence chunks at terminal punctuation.
// Text without terminal punctuation comes back as a single chunk; empty input
// yields no chunks.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var (
		chunks  []string
		current strings.Builder
	)

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)

		if !strings.ContainsRune(terminalRunes, r) {
			continue
		}

		// Consume runs of terminal punctuation ("...", "?!") as one boundary.
		if i+1 < len(runes) && strings.ContainsRune(terminalRunes, runes[i+1]) {
			continue
		}

		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		current.Reset()
	}

	tail := strings.TrimSpace(current.String())
	if tail != "" {
		chunks = append(chunks, tail)
	}

	return chunks
}
