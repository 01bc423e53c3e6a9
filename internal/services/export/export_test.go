package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarkdownWrapsTitleAndContent(t *testing.T) {
	out := Markdown("Body text here.", "Evidence Table")

	if !strings.HasPrefix(out, "# Evidence Table\n") {
		t.Errorf("expected title heading, got %q", out)
	}
	if !strings.Contains(out, "*Generated: ") {
		t.Errorf("expected generation timestamp, got %q", out)
	}
	if !strings.HasSuffix(out, "Body text here.") {
		t.Errorf("expected content at end, got %q", out)
	}
}

func TestCSVFromMarkdownTable(t *testing.T) {
	table := `| Claim | Source | Strength |
|-------|--------|----------|
| Models are jailbreakable | [harmbench, harmbench_c02] | strong |
| Defenses transfer poorly | [jailbreakbench, jailbreakbench_c05] | moderate |`

	out, err := CSVFromMarkdownTable(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 CSV rows (header + 2 data), got %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Claim,Source,Strength") {
		t.Errorf("unexpected header row: %q", lines[0])
	}
	if !strings.Contains(lines[1], "Models are jailbreakable") {
		t.Errorf("unexpected first data row: %q", lines[1])
	}
}

func TestCSVFromMarkdownTableSkipsProse(t *testing.T) {
	input := "Here is the table:\n\n| A | B |\n|---|---|\n| 1 | 2 |\n\nSome trailing notes."

	out, err := CSVFromMarkdownTable(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 CSV rows, got %d: %q", len(lines), out)
	}
}

func TestSaveArtifact(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveArtifact(dir, "memo.md", []byte("# Memo\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != filepath.Join(dir, "memo.md") {
		t.Errorf("unexpected path %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read saved artifact: %v", err)
	}
	if string(data) != "# Memo\n" {
		t.Errorf("unexpected content %q", data)
	}
}
