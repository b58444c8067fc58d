package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Input", "Kind", "Required"}, &TableOptions{NoColor: true})

	table.AddRow("person", "object", "yes")
	table.AddRow("label", "string", "no")

	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator and 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}

	if lines[0] != "Input   Kind    Required" {
		t.Errorf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "──────  ──────  ────────" {
		t.Errorf("unexpected separator line: %q", lines[1])
	}
	if lines[2] != "person  object  yes" {
		t.Errorf("unexpected row: %q", lines[2])
	}
	if lines[3] != "label   string  no" {
		t.Errorf("unexpected row: %q", lines[3])
	}
}

func TestTableRightAlign(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Component", "Inputs"}, &TableOptions{NoColor: true, RightAlign: []int{1}})
	table.AddRow("Card", "3")
	table.AddRow("Header", "12")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[2] != "Card            3" {
		t.Errorf("unexpected row: %q", lines[2])
	}
	if lines[3] != "Header         12" {
		t.Errorf("unexpected row: %q", lines[3])
	}
}

func TestTableMultibyteWidth(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Name", "Note"}, &TableOptions{NoColor: true})
	table.AddRow("ünïcode", "x")
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if lines[0] != "Name     Note" {
		t.Errorf("unexpected header line: %q", lines[0])
	}
}

func TestTableExtraCellsDropped(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"A"}, &TableOptions{NoColor: true})
	table.AddRow("one", "two")
	table.Render()

	if strings.Contains(buf.String(), "two") {
		t.Errorf("expected cells beyond the headers to be dropped, got %q", buf.String())
	}
}

func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{}, &TableOptions{NoColor: true})
	table.Render()

	if buf.Len() != 0 {
		t.Errorf("expected no output for empty table, got: %s", buf.String())
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "CardComponent", true)

	if buf.String() != "CardComponent\n"+strings.Repeat("─", 13)+"\n" {
		t.Errorf("unexpected header: %q", buf.String())
	}
}

func TestDividerDefaultWidth(t *testing.T) {
	var buf bytes.Buffer
	Divider(&buf, 0, true)

	if got := strings.Count(buf.String(), "─"); got != 80 {
		t.Errorf("expected 80 divider runes, got %d", got)
	}
}
