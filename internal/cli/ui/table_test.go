package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestTable(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Class", "Checksum", "Exported"}, true)

	table.AddRow(`App\Entity\User`, "9f2c01aa6b1e44d0", "2026-10-17 09:12")
	table.AddRow(`App\Entity\Group`, "03be771f08c2d5e9", "2026-10-17 09:12")

	table.Render()

	output := buf.String()

	for _, want := range []string{"Class", "Checksum", "Exported", `App\Entity\User`, "03be771f08c2d5e9", "─"} {
		if !strings.Contains(output, want) {
			t.Errorf("Table output missing %q", want)
		}
	}

	if table.Len() != 2 {
		t.Errorf("Len() = %d; want 2", table.Len())
	}
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{}, true)
	table.AddRow("ignored")
	table.Render()

	if buf.String() != "" {
		t.Errorf("Expected empty output for table with no headers, got: %q", buf.String())
	}
}

func TestTableAlignment(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Short", "VeryLongHeader"}, true)

	table.AddRow("a", "b")
	table.AddRow("longer", "c")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d: %q", len(lines), lines)
	}

	// second column starts after the widest first cell plus two spaces
	if !strings.HasPrefix(lines[2], "a       b") {
		t.Errorf("Row not aligned: %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "longer  c") {
		t.Errorf("Row not aligned: %q", lines[3])
	}
	if lines[1] != strings.Repeat("─", 6)+"  "+strings.Repeat("─", 14) {
		t.Errorf("Unexpected separator: %q", lines[1])
	}
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kvTable := NewKeyValueTable(&buf, true)

	kvTable.AddRow("Class", `App\Entity\User`)
	kvTable.AddRow("Table", "users")
	kvTable.AddRow("Properties", "4")

	kvTable.Render()

	expected := "Class:      App\\Entity\\User\n" +
		"Table:      users\n" +
		"Properties: 4\n"
	if buf.String() != expected {
		t.Errorf("KeyValueTable output = %q; want %q", buf.String(), expected)
	}
}

func TestKeyValueTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewKeyValueTable(&buf, true).Render()

	if buf.String() != "" {
		t.Errorf("Expected empty output for empty KeyValueTable, got: %q", buf.String())
	}
}

func TestDivider(t *testing.T) {
	var buf bytes.Buffer
	Divider(&buf, 40, true)

	if buf.String() != strings.Repeat("─", 40)+"\n" {
		t.Errorf("Divider output = %q", buf.String())
	}

	buf.Reset()
	Divider(&buf, 0, true)
	if width(strings.TrimSpace(buf.String())) != 80 {
		t.Errorf("Default divider width = %d; want 80", width(strings.TrimSpace(buf.String())))
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Mapping exports", true)

	expected := "Mapping exports\n" + strings.Repeat("─", 15) + "\n"
	if buf.String() != expected {
		t.Errorf("Header output = %q; want %q", buf.String(), expected)
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"test", 10, "test      "},
		{"test", 4, "test"},
		{"test", 2, "test"},
		{"", 5, "     "},
		{"─x", 4, "─x  "},
	}

	for _, tt := range tests {
		result := padRight(tt.input, tt.width)
		if result != tt.expected {
			t.Errorf("padRight(%q, %d) = %q; want %q", tt.input, tt.width, result, tt.expected)
		}
	}
}
