package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"docqa/internal/domain"
	"docqa/internal/port"
)

func TestConvertTextFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := "Chunking splits documents into pieces.\nOverlap preserves context."
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	c := New()
	docs, err := c.Convert(context.Background(), port.Source{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Content != content {
		t.Errorf("content not preserved: %q", docs[0].Content)
	}
	if docs[0].Metadata["source"] != path {
		t.Errorf("source metadata missing, got %v", docs[0].Metadata)
	}
	if docs[0].Metadata["page"] != "1" {
		t.Errorf("text documents are page 1, got %q", docs[0].Metadata["page"])
	}
	if docs[0].ID == "" {
		t.Error("document id not assigned")
	}
}

func TestConvertInMemoryData(t *testing.T) {
	c := New()
	docs, err := c.Convert(context.Background(), port.Source{
		Path:      "inline.md",
		Data:      []byte("# Title\n\nBody text."),
		MediaType: MediaTypeText,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].Content != "# Title\n\nBody text." {
		t.Errorf("unexpected documents: %+v", docs)
	}
}

func TestConvertInvalidUTF8(t *testing.T) {
	c := New()
	_, err := c.Convert(context.Background(), port.Source{
		Path:      "bad.txt",
		Data:      []byte{0xff, 0xfe, 0x41},
		MediaType: MediaTypeText,
	})
	if err == nil {
		t.Fatal("expected error for invalid UTF-8")
	}
	var cerr *domain.ConversionError
	if !errors.As(err, &cerr) {
		t.Errorf("expected ConversionError, got %T", err)
	}
}

func TestConvertUnsupportedMediaType(t *testing.T) {
	c := New()
	_, err := c.Convert(context.Background(), port.Source{
		Path:      "image.png",
		Data:      []byte{0x89, 0x50},
		MediaType: "image/png",
	})
	var cerr *domain.ConversionError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
	if cerr.Source != "image.png" {
		t.Errorf("error should carry the source path, got %q", cerr.Source)
	}
}

func TestConvertMissingFile(t *testing.T) {
	c := New()
	_, err := c.Convert(context.Background(), port.Source{
		Path: filepath.Join(t.TempDir(), "absent.txt"),
	})
	var cerr *domain.ConversionError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
}

func TestConvertCorruptPDF(t *testing.T) {
	c := New()
	_, err := c.Convert(context.Background(), port.Source{
		Path: "broken.pdf",
		Data: []byte("this is not a pdf"),
	})
	var cerr *domain.ConversionError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConversionError, got %v", err)
	}
}

func TestInferMediaType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"report.pdf", MediaTypePDF},
		{"REPORT.PDF", MediaTypePDF},
		{"notes.txt", MediaTypeText},
		{"readme.md", MediaTypeText},
		{"no_extension", MediaTypeText},
	}
	for _, tt := range tests {
		if got := inferMediaType(tt.path); got != tt.want {
			t.Errorf("inferMediaType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestDocumentIDStable(t *testing.T) {
	a := documentID("docs/report.pdf", 3)
	b := documentID("docs/report.pdf", 3)
	if a != b {
		t.Error("document id not stable across calls")
	}
	if a == documentID("docs/report.pdf", 4) {
		t.Error("different pages should get different ids")
	}
	if len(a) != 16 {
		t.Errorf("expected 16 hex chars, got %d", len(a))
	}
}

func TestDecodeTextOperators(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name:   "simple Tj",
			stream: "BT /F1 12 Tf (Hello world) Tj ET",
			want:   "Hello world",
		},
		{
			name:   "multiple strings joined",
			stream: "(First) Tj (Second) Tj",
			want:   "First Second",
		},
		{
			name:   "escaped parens",
			stream: `(a \(b\) c) Tj`,
			want:   "a (b) c",
		},
		{
			name:   "nested parens",
			stream: "(outer (inner) end) Tj",
			want:   "outer (inner) end",
		},
		{
			name:   "escaped backslash and newline",
			stream: `(line one\nline two \\ done) Tj`,
			want:   "line one\nline two \\ done",
		},
		{
			name:   "no literals",
			stream: "BT ET q Q",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeTextOperators(tt.stream); got != tt.want {
				t.Errorf("decodeTextOperators() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPageNumberFromName(t *testing.T) {
	tests := []struct {
		name   string
		wantN  int
		wantOK bool
	}{
		{"Content_page_1.txt", 1, true},
		{"Content_page_12.txt", 12, true},
		{"page_3.txt", 3, true},
		{"Image_1.png", 0, false},
		{"random", 0, false},
	}
	for _, tt := range tests {
		n, ok := pageNumberFromName(tt.name)
		if n != tt.wantN || ok != tt.wantOK {
			t.Errorf("pageNumberFromName(%q) = (%d, %v), want (%d, %v)", tt.name, n, ok, tt.wantN, tt.wantOK)
		}
	}
}
