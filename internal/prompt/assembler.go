package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"docqa/internal/domain"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

const qaTemplate = "templates/qa_prompt.txt"

// Assembler renders the fixed question-answering template. Retrieved chunks
// are interpolated into the documents section in the order they arrive —
// score order from retrieval — and are never reordered here. An empty
// retrieval still renders a well-formed prompt with an empty documents
// section; stating that nothing was found is the generator's job.
type Assembler struct {
	tmpl *template.Template
}

func NewAssembler() (*Assembler, error) {
	content, err := promptTemplates.ReadFile(qaTemplate)
	if err != nil {
		return nil, fmt.Errorf("prompt template missing: %w", err)
	}
	tmpl, err := template.New("qa").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("prompt template invalid: %w", err)
	}
	return &Assembler{tmpl: tmpl}, nil
}

func (a *Assembler) Assemble(question string, retrieved []domain.ScoredChunk) (domain.PromptPayload, error) {
	docs := make([]string, 0, len(retrieved))
	for _, sc := range retrieved {
		docs = append(docs, sc.Chunk.Content)
	}

	payload := domain.PromptPayload{
		Question:  question,
		Documents: docs,
	}

	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, payload); err != nil {
		return domain.PromptPayload{}, fmt.Errorf("failed to render prompt: %w", err)
	}
	payload.Text = buf.String()
	return payload, nil
}
