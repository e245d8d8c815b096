package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"docqa/internal/domain"
	"docqa/internal/port"
	"docqa/internal/prompt"
)

// Query runs the question-answering pipeline: embed the question, retrieve,
// assemble the prompt, generate. Instances are safe for concurrent Ask
// calls; the only shared state is the read-only document store behind the
// retriever. Each call builds its own generator bound to its own
// credential.
type Query struct {
	embedder   port.Embedder
	retriever  port.Retriever
	assembler  *prompt.Assembler
	generators port.GeneratorFactory
	topK       int
}

// NewQuery wires the query stages, validating contracts up front.
func NewQuery(
	embedder port.Embedder,
	retriever port.Retriever,
	assembler *prompt.Assembler,
	generators port.GeneratorFactory,
	topK int,
) (*Query, error) {
	switch {
	case embedder == nil:
		return nil, &domain.WiringError{Stage: "query_embedder", Reason: "no embedder configured"}
	case retriever == nil:
		return nil, &domain.WiringError{Stage: "retriever", Reason: "no retriever configured"}
	case assembler == nil:
		return nil, &domain.WiringError{Stage: "prompt_assembler", Reason: "no assembler configured"}
	case generators == nil:
		return nil, &domain.WiringError{Stage: "generator", Reason: "no generator factory configured"}
	}
	if topK <= 0 {
		return nil, &domain.WiringError{Stage: "retriever", Reason: fmt.Sprintf("top_k must be > 0, got %d", topK)}
	}
	return &Query{
		embedder:   embedder,
		retriever:  retriever,
		assembler:  assembler,
		generators: generators,
		topK:       topK,
	}, nil
}

// Ask answers one question. The credential is used for this call only. An
// empty retrieval is not an error: the generator is still invoked with an
// ungrounded prompt and is expected to say nothing was found.
func (q *Query) Ask(ctx context.Context, question, credential string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question is empty")
	}

	// Credential shape is checked before any network traffic, so a
	// malformed key fails before we spend an embedding call.
	gen, err := q.generators.New(credential)
	if err != nil {
		return "", err
	}

	queryID := uuid.NewString()
	log.Debug().Str("query_id", queryID).Msg("query started")

	vectors, err := q.embedder.Embed(ctx, []string{question})
	if err != nil {
		return "", err
	}
	if len(vectors) != 1 {
		return "", &domain.EmbeddingError{
			Model: q.embedder.ModelID(),
			Err:   fmt.Errorf("expected 1 query vector, got %d", len(vectors)),
		}
	}

	retrieved, err := q.retriever.Retrieve(ctx, vectors[0], q.topK)
	if err != nil {
		return "", err
	}

	payload, err := q.assembler.Assemble(question, retrieved)
	if err != nil {
		return "", err
	}

	answer, err := gen.Generate(ctx, payload)
	if err != nil {
		return "", err
	}

	log.Debug().
		Str("query_id", queryID).
		Int("retrieved", len(retrieved)).
		Int("answer_length", len(answer)).
		Msg("query answered")

	return answer, nil
}
