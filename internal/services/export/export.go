// Package export renders research artifacts into downloadable formats.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tahazakir/corpusqa/internal/models"
)

var tableSeparator = regexp.MustCompile(`^\|[\s\-:|]+\|$`)

// Markdown wraps content in a markdown document with a title and a
// generation timestamp.
func Markdown(content, title string) string {
	timestamp := time.Now().Format("2006-01-02 15:04")
	return fmt.Sprintf("# %s\n\n*Generated: %s*\n\n%s", title, timestamp, content)
}

// CSVFromMarkdownTable converts a markdown table into CSV. Separator
// rows (|---|---|) are skipped; non-table lines are ignored.
func CSVFromMarkdownTable(markdownTable string) (string, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	for _, line := range strings.Split(strings.TrimSpace(markdownTable), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || tableSeparator.MatchString(line) {
			continue
		}
		if !strings.HasPrefix(line, "|") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 3 {
			continue
		}
		cells := make([]string, 0, len(parts)-2)
		for _, cell := range parts[1 : len(parts)-1] {
			cells = append(cells, strings.TrimSpace(cell))
		}
		if err := writer.Write(cells); err != nil {
			return "", models.NewInternalError("failed to write CSV row", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", models.NewInternalError("failed to flush CSV output", err)
	}
	return buf.String(), nil
}

// SaveArtifact writes an exported artifact under dir and returns the
// full path.
func SaveArtifact(dir, filename string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", models.NewWriteError("failed to create outputs directory", err)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", models.NewWriteError("failed to save artifact "+filename, err)
	}
	return path, nil
}
