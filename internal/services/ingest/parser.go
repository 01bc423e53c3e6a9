package ingest

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/tahazakir/corpusqa/internal/models"
)

// ParseFile reads a markdown or plain-text research document and splits
// it into heading-delimited sections. Text before the first heading is
// collected under the document title. Corpus documents are expected to
// be pre-converted to markdown by the layout pipeline.
func ParseFile(path string, meta models.SourceMetadata) (models.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to open document %s: %w", path, err)
	}
	defer f.Close()

	var sections []models.Section
	current := models.Section{Title: meta.Title}
	var buf strings.Builder

	flush := func() {
		text := strings.TrimSpace(buf.String())
		if text != "" {
			current.Text = text
			sections = append(sections, current)
		}
		buf.Reset()
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if title, ok := headingTitle(line); ok {
			flush()
			current = models.Section{Title: title}
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return models.Document{}, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	flush()

	return models.Document{Meta: meta, Sections: sections}, nil
}

// headingTitle reports whether line is a markdown ATX heading and
// returns its text.
func headingTitle(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "#") {
		return "", false
	}
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level > 6 || level == len(trimmed) || trimmed[level] != ' ' {
		return "", false
	}
	return strings.TrimSpace(trimmed[level:]), true
}
