package ingest

import (
	"fmt"
	"regexp"

	"github.com/tahazakir/corpusqa/internal/models"
)

var sentenceBoundary = regexp.MustCompile(`(?:[.!?])\s+`)

// Chunker splits parsed sections into sized chunks with sentence-boundary
// overlap. Chunk IDs are "<source_id>_cNN", numbered across the whole
// document, so re-ingesting unchanged input yields identical IDs.
type Chunker struct {
	targetChars  int
	overlapChars int
}

// NewChunker creates a Chunker; non-positive arguments fall back to the
// ~1024-token / ~100-token defaults at 4 chars per token.
func NewChunker(targetChars, overlapChars int) *Chunker {
	if targetChars <= 0 {
		targetChars = 4096
	}
	if overlapChars < 0 {
		overlapChars = 400
	}
	return &Chunker{targetChars: targetChars, overlapChars: overlapChars}
}

// ChunkDocument converts a document's sections into chunks with metadata.
func (c *Chunker) ChunkDocument(doc models.Document) []models.Chunk {
	var chunks []models.Chunk
	counter := 1

	for _, section := range doc.Sections {
		for _, text := range c.splitSection(section.Text) {
			chunks = append(chunks, models.Chunk{
				ChunkID:      fmt.Sprintf("%s_c%02d", doc.Meta.SourceID, counter),
				SourceID:     doc.Meta.SourceID,
				SectionTitle: section.Title,
				Text:         text,
			})
			counter++
		}
	}
	return chunks
}

// splitSection splits a section exceeding targetChars on sentence
// boundaries, carrying trailing sentences up to overlapChars into the
// next chunk.
func (c *Chunker) splitSection(text string) []string {
	if len(text) <= c.targetChars {
		return []string{text}
	}

	sentences := splitSentences(text)
	var chunks []string
	var current []string
	currentLen := 0

	for _, sentence := range sentences {
		slen := len(sentence)
		if currentLen+slen > c.targetChars && len(current) > 0 {
			chunks = append(chunks, joinSentences(current))

			// Overlap: keep trailing sentences up to overlapChars.
			var overlap []string
			overlapLen := 0
			for i := len(current) - 1; i >= 0; i-- {
				if overlapLen+len(current[i]) > c.overlapChars {
					break
				}
				overlap = append([]string{current[i]}, overlap...)
				overlapLen += len(current[i])
			}
			current = overlap
			currentLen = overlapLen
		}

		current = append(current, sentence)
		currentLen += slen
	}

	if len(current) > 0 {
		chunks = append(chunks, joinSentences(current))
	}
	return chunks
}

func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceBoundary.FindAllStringIndex(text, -1) {
		// Keep the terminating punctuation with its sentence.
		sentences = append(sentences, text[last:loc[0]+1])
		last = loc[1]
	}
	if last < len(text) {
		sentences = append(sentences, text[last:])
	}
	return sentences
}

func joinSentences(sentences []string) string {
	out := ""
	for i, s := range sentences {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}
