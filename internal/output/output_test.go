package output

import (
	"strings"
	"testing"
)

type sample struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

func TestToJSON(t *testing.T) {
	var buf strings.Builder
	if err := To(&buf, FormatJSON, sample{Name: "a", Count: 2}); err != nil {
		t.Fatalf("To failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"name": "a"`) {
		t.Fatalf("unexpected json output: %q", buf.String())
	}
}

func TestToYAML(t *testing.T) {
	var buf strings.Builder
	if err := To(&buf, FormatYAML, sample{Name: "a", Count: 2}); err != nil {
		t.Fatalf("To failed: %v", err)
	}
	if !strings.Contains(buf.String(), "name: a") {
		t.Fatalf("unexpected yaml output: %q", buf.String())
	}
}

func TestToUnknownFormat(t *testing.T) {
	if err := To(&strings.Builder{}, Format("toml"), sample{}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestSetFormatFallsBackToYAML(t *testing.T) {
	SetFormat("bogus")
	if globalFormat != FormatYAML {
		t.Fatalf("globalFormat = %q, want yaml", globalFormat)
	}
	SetFormat("json")
	if globalFormat != FormatJSON {
		t.Fatalf("globalFormat = %q, want json", globalFormat)
	}
	SetFormat("yaml")
}
