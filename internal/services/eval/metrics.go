// Package eval scores pipeline output: citation validity against the
// indexed chunk universe, groundedness against the retrieved context,
// and evidence-missing handling for edge-case queries.
package eval

import (
	"regexp"
	"strings"

	"github.com/tahazakir/corpusqa/internal/models"
)

// Citations look like [source_id, chunk_id], e.g. [harmbench, harmbench_c05].
var (
	citationPattern   = regexp.MustCompile(`(?i)\[([a-z0-9_.\- ]+),\s*([a-z0-9_]+_c\d+)\]`)
	standalonePattern = regexp.MustCompile(`(?i)\[([a-z0-9_]+_c\d+)\]`)
)

// Citation is one parsed [source_id, chunk_id] reference.
type Citation struct {
	SourceID string
	ChunkID  string
}

// ExtractCitations parses citations from an answer, falling back to
// standalone [chunk_id] references when none match the full format.
func ExtractCitations(answer string) []Citation {
	var citations []Citation
	for _, m := range citationPattern.FindAllStringSubmatch(answer, -1) {
		citations = append(citations, Citation{SourceID: strings.TrimSpace(m[1]), ChunkID: m[2]})
	}
	if len(citations) > 0 {
		return citations
	}
	for _, m := range standalonePattern.FindAllStringSubmatch(answer, -1) {
		citations = append(citations, Citation{ChunkID: m[1]})
	}
	return citations
}

// ExtractChunkIDs returns just the chunk IDs from an answer's citations.
func ExtractChunkIDs(answer string) []string {
	citations := ExtractCitations(answer)
	ids := make([]string, len(citations))
	for i, c := range citations {
		ids[i] = c.ChunkID
	}
	return ids
}

// CitationValidity reports whether cited chunk IDs exist in the index.
type CitationValidity struct {
	TotalCitations    int      `json:"total_citations"`
	ValidCitations    int      `json:"valid_citations"`
	InvalidCitations  int      `json:"invalid_citations"`
	CitationPrecision float64  `json:"citation_precision"`
	CitedIDs          []string `json:"cited_ids"`
	InvalidIDs        []string `json:"invalid_ids"`
}

// ComputeCitationValidity checks cited chunk IDs against the set of
// IDs actually present in the vector store.
func ComputeCitationValidity(answer string, validChunkIDs map[string]bool) CitationValidity {
	citedIDs := ExtractChunkIDs(answer)
	if len(citedIDs) == 0 {
		return CitationValidity{}
	}

	var invalid []string
	valid := 0
	for _, id := range citedIDs {
		if validChunkIDs[id] {
			valid++
		} else {
			invalid = append(invalid, id)
		}
	}

	return CitationValidity{
		TotalCitations:    len(citedIDs),
		ValidCitations:    valid,
		InvalidCitations:  len(invalid),
		CitationPrecision: float64(valid) / float64(len(citedIDs)),
		CitedIDs:          citedIDs,
		InvalidIDs:        invalid,
	}
}

// Groundedness reports whether an answer only cites chunks that were
// actually retrieved for it.
type Groundedness struct {
	IsGrounded           bool     `json:"is_grounded"`
	GroundedCitations    int      `json:"grounded_citations"`
	UngroundedCitations  int      `json:"ungrounded_citations"`
	GroundednessScore    float64  `json:"groundedness_score"`
	UngroundedIDs        []string `json:"ungrounded_ids,omitempty"`
	Note                 string   `json:"note,omitempty"`
}

// CheckGroundedness compares an answer's citations to the retrieved set.
func CheckGroundedness(answer string, retrieved []models.RetrievedChunk) Groundedness {
	retrievedIDs := make(map[string]bool, len(retrieved))
	for _, c := range retrieved {
		retrievedIDs[c.ChunkID] = true
	}

	cited := make(map[string]bool)
	for _, id := range ExtractChunkIDs(answer) {
		cited[id] = true
	}
	if len(cited) == 0 {
		return Groundedness{Note: "No citations found in answer"}
	}

	grounded := 0
	var ungrounded []string
	for id := range cited {
		if retrievedIDs[id] {
			grounded++
		} else {
			ungrounded = append(ungrounded, id)
		}
	}

	return Groundedness{
		IsGrounded:          len(ungrounded) == 0,
		GroundedCitations:   grounded,
		UngroundedCitations: len(ungrounded),
		GroundednessScore:   float64(grounded) / float64(len(cited)),
		UngroundedIDs:       ungrounded,
	}
}

// EvidenceHandling reports how an answer handled a query with no
// expected sources. CorrectlyFlagsMissing is nil when flagging was not
// expected.
type EvidenceHandling struct {
	ShouldFlagMissing     bool  `json:"should_flag_missing"`
	CorrectlyFlagsMissing *bool `json:"correctly_flags_missing"`
}

// CheckEvidenceMissingHandling checks whether an edge-case query (no
// expected sources) was correctly flagged as lacking evidence.
func CheckEvidenceMissingHandling(answer string, expectedSources []string) EvidenceHandling {
	lower := strings.ToLower(answer)
	flagsMissing := strings.Contains(lower, "evidence missing") ||
		strings.Contains(lower, "not contain") ||
		strings.Contains(lower, "no evidence") ||
		strings.Contains(lower, "insufficient evidence")

	if len(expectedSources) == 0 {
		return EvidenceHandling{ShouldFlagMissing: true, CorrectlyFlagsMissing: &flagsMissing}
	}
	return EvidenceHandling{ShouldFlagMissing: false}
}
