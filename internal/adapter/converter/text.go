package converter

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// TextConverter turns a plain-text source into a single document.
type TextConverter struct{}

func NewTextConverter() *TextConverter {
	return &TextConverter{}
}

func (c *TextConverter) Convert(_ context.Context, src port.Source) ([]domain.Document, error) {
	data, err := sourceBytes(src)
	if err != nil {
		return nil, &domain.ConversionError{Source: src.Path, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &domain.ConversionError{
			Source: src.Path,
			Err:    fmt.Errorf("source is not valid UTF-8 text"),
		}
	}

	doc := domain.Document{
		ID:      documentID(src.Path, 1),
		Content: string(data),
		Metadata: map[string]string{
			"source": src.Path,
			"page":   strconv.Itoa(1),
		},
	}
	return []domain.Document{doc}, nil
}
