package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tahazakir/corpusqa/internal/models"
)

func testDoc(sections ...models.Section) models.Document {
	return models.Document{
		Meta:     models.SourceMetadata{SourceID: "harmbench", Title: "HarmBench"},
		Sections: sections,
	}
}

func TestChunkDocumentIDsNumberedAcrossSections(t *testing.T) {
	chunker := NewChunker(4096, 400)
	doc := testDoc(
		models.Section{Title: "Abstract", Text: "Short abstract."},
		models.Section{Title: "Method", Text: "Short method."},
	)

	chunks := chunker.ChunkDocument(doc)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].ChunkID != "harmbench_c01" || chunks[1].ChunkID != "harmbench_c02" {
		t.Errorf("unexpected chunk IDs: %s, %s", chunks[0].ChunkID, chunks[1].ChunkID)
	}
	if chunks[1].SectionTitle != "Method" {
		t.Errorf("expected section title Method, got %q", chunks[1].SectionTitle)
	}
}

func TestChunkDocumentStableAcrossRuns(t *testing.T) {
	chunker := NewChunker(200, 40)
	doc := testDoc(models.Section{Title: "Body", Text: strings.Repeat("One sentence here. ", 60)})

	first := chunker.ChunkDocument(doc)
	second := chunker.ChunkDocument(doc)

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ChunkID != second[i].ChunkID || first[i].Text != second[i].Text {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitSectionRespectsTargetAndOverlap(t *testing.T) {
	chunker := NewChunker(200, 60)

	var sentences []string
	for i := 0; i < 20; i++ {
		sentences = append(sentences, fmt.Sprintf("Sentence number %02d has some words in it.", i))
	}
	text := strings.Join(sentences, " ")

	parts := chunker.splitSection(text)
	if len(parts) < 2 {
		t.Fatalf("expected multiple chunks for %d chars, got %d", len(text), len(parts))
	}

	for i, p := range parts {
		// Overlap can push a chunk past the target by at most one sentence.
		if len(p) > 200+60 {
			t.Errorf("chunk %d too large: %d chars", i, len(p))
		}
	}

	// Adjacent chunks share trailing/leading sentences.
	lastSentence := "Sentence number"
	if !strings.Contains(parts[1], lastSentence) {
		t.Errorf("expected sentence text in second chunk, got %q", parts[1])
	}
	firstOfSecond := parts[1][:20]
	if !strings.Contains(parts[0], firstOfSecond) {
		t.Errorf("expected overlap between chunks, first=%q second starts %q", parts[0], firstOfSecond)
	}
}

func TestSplitSectionShortTextSingleChunk(t *testing.T) {
	chunker := NewChunker(4096, 400)
	parts := chunker.splitSection("Just one short paragraph.")
	if len(parts) != 1 || parts[0] != "Just one short paragraph." {
		t.Errorf("unexpected result: %#v", parts)
	}
}

func TestParseFileSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.md")
	content := "Preamble before any heading.\n\n# Introduction\n\nIntro text.\n\n## Threat Model\n\nThreat text.\n\n#NotAHeading\nmore intro\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	meta := models.SourceMetadata{SourceID: "paper", Title: "A Paper"}
	doc, err := ParseFile(path, meta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d: %+v", len(doc.Sections), doc.Sections)
	}
	if doc.Sections[0].Title != "A Paper" {
		t.Errorf("preamble should fall under the document title, got %q", doc.Sections[0].Title)
	}
	if doc.Sections[1].Title != "Introduction" || doc.Sections[2].Title != "Threat Model" {
		t.Errorf("unexpected section titles: %q, %q", doc.Sections[1].Title, doc.Sections[2].Title)
	}
	if !strings.Contains(doc.Sections[2].Text, "#NotAHeading") {
		t.Errorf("bare # line should be treated as text, got %q", doc.Sections[2].Text)
	}
}

func TestLoadManifestRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	content := `{"sources":[{"source_id":"a","filename":"a.md","title":"A"},{"source_id":"a","filename":"b.md","title":"B"}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadManifest(path); err == nil {
		t.Fatal("expected error for duplicate source_id")
	}
}

func TestManifestMatchAuthor(t *testing.T) {
	m := &Manifest{Sources: []models.SourceMetadata{
		{SourceID: "harmbench", Authors: []string{"Mantas Mazeika", "Long Phan"}},
		{SourceID: "jailbreakbench", Authors: []string{"Patrick Chao"}},
	}}

	ids := m.MatchAuthor("mazeika")
	if len(ids) != 1 || ids[0] != "harmbench" {
		t.Errorf("unexpected match: %v", ids)
	}
	if got := m.MatchAuthor("nobody"); got != nil {
		t.Errorf("expected no matches, got %v", got)
	}
}
