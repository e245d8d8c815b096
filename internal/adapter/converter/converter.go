package converter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docqa/internal/domain"
	"docqa/internal/port"
)

const (
	MediaTypeText = "text/plain"
	MediaTypePDF  = "application/pdf"
)

// Converter dispatches a source to the extractor for its media type. When
// the source declares no media type, the path extension decides.
type Converter struct {
	text *TextConverter
	pdf  *PDFConverter
}

func New() *Converter {
	return &Converter{
		text: NewTextConverter(),
		pdf:  NewPDFConverter(),
	}
}

func (c *Converter) Convert(ctx context.Context, src port.Source) ([]domain.Document, error) {
	mediaType := src.MediaType
	if mediaType == "" {
		mediaType = inferMediaType(src.Path)
	}

	switch mediaType {
	case MediaTypeText:
		return c.text.Convert(ctx, src)
	case MediaTypePDF:
		return c.pdf.Convert(ctx, src)
	default:
		return nil, &domain.ConversionError{
			Source: src.Path,
			Err:    fmt.Errorf("unsupported media type: %q", mediaType),
		}
	}
}

func inferMediaType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return MediaTypePDF
	default:
		return MediaTypeText
	}
}

// sourceBytes returns the raw content of the source, reading from disk when
// no in-memory data was supplied.
func sourceBytes(src port.Source) ([]byte, error) {
	if src.Data != nil {
		return src.Data, nil
	}
	return os.ReadFile(src.Path)
}

// documentID derives a stable id from the source path and page. Stable
// within a run and across runs over the same corpus, which keeps
// recreate-index runs idempotent.
func documentID(source string, page int) string {
	data := fmt.Sprintf("%s:%d", source, page)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
