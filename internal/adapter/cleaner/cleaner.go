package cleaner

import (
	"strings"

	"docqa/internal/domain"
)

// Cleaner normalizes document text before splitting. It is a pure function
// of its input: the same document always cleans to the same output, and it
// never reorders or drops content beyond the configured rules.
type Cleaner struct {
	removeEmptyLines    bool
	normalizeWhitespace bool
	collapseRepeats     bool
}

func New(removeEmptyLines, normalizeWhitespace, collapseRepeats bool) *Cleaner {
	return &Cleaner{
		removeEmptyLines:    removeEmptyLines,
		normalizeWhitespace: normalizeWhitespace,
		collapseRepeats:     collapseRepeats,
	}
}

func (c *Cleaner) Clean(doc domain.Document) domain.Document {
	content := doc.Content

	if c.removeEmptyLines {
		content = removeEmptyLines(content)
	}
	if c.normalizeWhitespace {
		content = normalizeWhitespace(content)
	}
	if c.collapseRepeats {
		content = collapseRepeatedLines(content)
	}

	out := doc
	out.Content = content
	return out
}

func removeEmptyLines(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// normalizeWhitespace collapses runs of spaces and tabs within each line and
// trims trailing whitespace. Line breaks are preserved so page structure
// survives cleaning.
func normalizeWhitespace(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

// collapseRepeatedLines drops a line that is byte-identical to the line
// directly above it. Repeated headers and footers from page extraction are
// the target; legitimate prose almost never repeats verbatim line-for-line.
func collapseRepeatedLines(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	prev := ""
	for i, line := range lines {
		if i > 0 && line != "" && line == prev {
			continue
		}
		kept = append(kept, line)
		prev = line
	}
	return strings.Join(kept, "\n")
}
