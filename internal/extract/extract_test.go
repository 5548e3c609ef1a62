package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFromFilePlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("Hello world.\n\nSecond paragraph."), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	text, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile failed: %v", err)
	}
	if !strings.Contains(text, "Second paragraph.") {
		t.Fatalf("extracted text missing content: %q", text)
	}
}

func TestFromFileMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.MD")
	if err := os.WriteFile(path, []byte("# Title\n\nBody text."), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	if _, err := FromFile(path); err != nil {
		t.Fatalf("uppercase extension should dispatch: %v", err)
	}
}

func TestFromFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.txt")
	if err := os.WriteFile(path, []byte("  \n\t\n"), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	if _, err := FromFile(path); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestFromFileUnsupported(t *testing.T) {
	if _, err := FromFile("book.epub"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestContentStreamText(t *testing.T) {
	stream := `BT /F1 12 Tf (Hello) Tj (world\(s\)) Tj (  ) Tj ET`
	got := contentStreamText(stream)
	want := "Hello world(s)"
	if got != want {
		t.Fatalf("contentStreamText = %q, want %q", got, want)
	}
}

func TestContentStreamTextEmpty(t *testing.T) {
	if got := contentStreamText("BT ET"); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestUnescapePDFString(t *testing.T) {
	cases := []struct{ in, want string }{
		{`plain`, "plain"},
		{`line\nbreak`, "line\nbreak"},
		{`tab\there`, "tab\there"},
		{`paren\(s\)`, "paren(s)"},
		{`back\\slash`, `back\slash`},
		{`trailing\`, `trailing\`},
	}
	for _, tc := range cases {
		if got := unescapePDFString(tc.in); got != tc.want {
			t.Errorf("unescapePDFString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
