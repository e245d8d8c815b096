package prompt

import (
	"strings"
	"testing"

	"docqa/internal/domain"
)

func scored(content string, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.Chunk{ID: content, Content: content},
		Score: score,
	}
}

func TestAssemble(t *testing.T) {
	a, err := NewAssembler()
	if err != nil {
		t.Fatal(err)
	}

	retrieved := []domain.ScoredChunk{
		scored("best match text", 0.95),
		scored("second match text", 0.80),
	}
	payload, err := a.Assemble("What is chunking?", retrieved)
	if err != nil {
		t.Fatal(err)
	}

	if payload.Question != "What is chunking?" {
		t.Errorf("question not carried: %q", payload.Question)
	}
	if len(payload.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(payload.Documents))
	}
	if !strings.Contains(payload.Text, "What is chunking?") {
		t.Error("rendered prompt missing the question")
	}
	if !strings.Contains(payload.Text, "best match text") || !strings.Contains(payload.Text, "second match text") {
		t.Error("rendered prompt missing document content")
	}
}

func TestAssemblePreservesOrder(t *testing.T) {
	a, err := NewAssembler()
	if err != nil {
		t.Fatal(err)
	}

	// Arrival order is score order from retrieval; the assembler must not
	// reorder, even when scores look out of order.
	retrieved := []domain.ScoredChunk{
		scored("zebra chunk", 0.5),
		scored("alpha chunk", 0.9),
		scored("mid chunk", 0.7),
	}
	payload, err := a.Assemble("q", retrieved)
	if err != nil {
		t.Fatal(err)
	}

	iZebra := strings.Index(payload.Text, "zebra chunk")
	iAlpha := strings.Index(payload.Text, "alpha chunk")
	iMid := strings.Index(payload.Text, "mid chunk")
	if iZebra < 0 || iAlpha < 0 || iMid < 0 {
		t.Fatal("chunks missing from rendered prompt")
	}
	if !(iZebra < iAlpha && iAlpha < iMid) {
		t.Errorf("arrival order not preserved: positions %d %d %d", iZebra, iAlpha, iMid)
	}
}

func TestAssembleEmptyRetrieval(t *testing.T) {
	a, err := NewAssembler()
	if err != nil {
		t.Fatal(err)
	}

	payload, err := a.Assemble("Is anything indexed?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(payload.Documents) != 0 {
		t.Errorf("expected empty documents, got %v", payload.Documents)
	}
	if !strings.Contains(payload.Text, "Is anything indexed?") {
		t.Error("prompt must still carry the question")
	}
	if !strings.Contains(payload.Text, "Documents:") {
		t.Error("prompt should keep its documents section even when empty")
	}
}

func TestAssembleDeterministic(t *testing.T) {
	a, err := NewAssembler()
	if err != nil {
		t.Fatal(err)
	}

	retrieved := []domain.ScoredChunk{scored("same content", 0.9)}
	first, err := a.Assemble("q", retrieved)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := a.Assemble("q", retrieved)
	if first.Text != second.Text {
		t.Error("assembling the same inputs twice produced different prompts")
	}
}
