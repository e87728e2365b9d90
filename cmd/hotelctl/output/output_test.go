package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrinter_TableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	if err := p.Table([]string{"ID", "NAME"}, [][]string{{"1", "Hotel A"}, {"10", "B"}}); err != nil {
		t.Fatalf("Table failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if strings.Index(lines[1], "Hotel A") != strings.Index(lines[0], "NAME") {
		t.Fatalf("columns are not aligned:\n%s", buf.String())
	}
}

func TestPrinter_JSONModeSuppressesStatus(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, true)

	p.Success("created %d", 1)
	p.Info("info")
	p.Section("Hotels")
	if buf.Len() != 0 {
		t.Fatalf("expected no status output in JSON mode, got %q", buf.String())
	}

	if err := p.JSON(map[string]string{"name": "Ñandú <b>"}); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"name": "Ñandú <b>"`) {
		t.Fatalf("unexpected JSON output %q", buf.String())
	}
}

func TestPrinter_StatusMessages(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.Success("hotel %d created", 3)
	if !strings.Contains(buf.String(), "hotel 3 created") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestStatusIcon(t *testing.T) {
	for _, status := range []string{"active", "cancelled", "drift", "other"} {
		if StatusIcon(status) == "" {
			t.Errorf("expected icon for %s", status)
		}
	}
}
