package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// PDFConverter extracts text from a PDF source using pdfcpu, producing one
// document per page so chunk provenance stays traceable to a page number.
type PDFConverter struct{}

func NewPDFConverter() *PDFConverter {
	return &PDFConverter{}
}

func (c *PDFConverter) Convert(ctx context.Context, src port.Source) ([]domain.Document, error) {
	data, err := sourceBytes(src)
	if err != nil {
		return nil, &domain.ConversionError{Source: src.Path, Err: err}
	}

	tempDir, err := os.MkdirTemp("", "docqa-pdf-")
	if err != nil {
		return nil, &domain.ConversionError{Source: src.Path, Err: err}
	}
	defer os.RemoveAll(tempDir)

	// pdfcpu operates on files, so stage the bytes.
	tempFile := filepath.Join(tempDir, "source.pdf")
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return nil, &domain.ConversionError{Source: src.Path, Err: err}
	}

	pdfCtx, err := api.ReadContextFile(tempFile)
	if err != nil {
		return nil, &domain.ConversionError{
			Source: src.Path,
			Err:    fmt.Errorf("unreadable PDF: %w", err),
		}
	}
	pageCount := pdfCtx.PageCount
	if pageCount == 0 {
		return nil, &domain.ConversionError{
			Source: src.Path,
			Err:    fmt.Errorf("PDF has no pages"),
		}
	}

	outDir := filepath.Join(tempDir, "pages")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, &domain.ConversionError{Source: src.Path, Err: err}
	}

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile, outDir, nil, conf); err != nil {
		return nil, &domain.ConversionError{
			Source: src.Path,
			Err:    fmt.Errorf("content extraction failed: %w", err),
		}
	}

	pageStreams := make(map[int]string)
	entries, err := os.ReadDir(outDir)
	if err != nil {
		return nil, &domain.ConversionError{Source: src.Path, Err: err}
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		pageNum, ok := pageNumberFromName(entry.Name())
		if !ok {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			continue
		}
		pageStreams[pageNum] = string(raw)
	}

	// Emit pages in original order regardless of directory listing order.
	docs := make([]domain.Document, 0, pageCount)
	for page := 1; page <= pageCount; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := decodeTextOperators(pageStreams[page])
		docs = append(docs, domain.Document{
			ID:      documentID(src.Path, page),
			Content: text,
			Metadata: map[string]string{
				"source": src.Path,
				"page":   strconv.Itoa(page),
			},
		})
	}

	return docs, nil
}

// pageNumberFromName parses pdfcpu's extracted content file names, which
// vary between "page_N" and "Content_page_N" across versions.
func pageNumberFromName(name string) (int, bool) {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	var n int
	if _, err := fmt.Sscanf(name, "Content_page_%d", &n); err == nil {
		return n, true
	}
	if _, err := fmt.Sscanf(name, "page_%d", &n); err == nil {
		return n, true
	}
	return 0, false
}

// decodeTextOperators pulls the literal strings shown by Tj, TJ and '
// operators out of a page content stream. It handles parenthesis nesting
// and the backslash escapes the PDF string syntax defines; glyph-encoded
// (hex) strings are skipped.
func decodeTextOperators(stream string) string {
	var out strings.Builder
	var lit strings.Builder
	depth := 0
	escaped := false

	flush := func() {
		s := strings.TrimSpace(lit.String())
		lit.Reset()
		if s == "" {
			return
		}
		if out.Len() > 0 {
			out.WriteString(" ")
		}
		out.WriteString(s)
	}

	for i := 0; i < len(stream); i++ {
		ch := stream[i]
		if depth == 0 {
			if ch == '(' {
				depth = 1
			}
			continue
		}

		if escaped {
			switch ch {
			case 'n':
				lit.WriteByte('\n')
			case 'r', 't':
				lit.WriteByte(' ')
			case '(', ')', '\\':
				lit.WriteByte(ch)
			}
			escaped = false
			continue
		}

		switch ch {
		case '\\':
			escaped = true
		case '(':
			depth++
			lit.WriteByte(ch)
		case ')':
			depth--
			if depth == 0 {
				flush()
			} else {
				lit.WriteByte(ch)
			}
		default:
			lit.WriteByte(ch)
		}
	}

	return out.String()
}
