// Package pipeline composes the embedding gateway, context assembler,
// generation service and response recovery into named task flows. Each flow
// is synchronous and stateless between calls; deadlines are the caller's to
// impose via ctx.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/argus-agency/dossier/internal/fault"
	"github.com/argus-agency/dossier/internal/repair"
	"github.com/argus-agency/dossier/internal/retrieval"
)

const maxTokens = 4096

// noResultsNotice is the fixed response for flows whose retrieval came back
// empty. The generation service is not invoked in that case.
const noResultsNotice = "No relevant documents found to answer the query."

// Embedder converts query text into a vector. Satisfied by *embed.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a completion for a prompt. Satisfied by *llm.Client.
type Generator interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

// Envelope is the caller-visible result of a structured-extraction flow.
// It is always well-formed: failures become a status and message, never a
// panic or partial JSON. Response carries no omitempty so a success with
// zero extracted items still serializes as "response": [].
type Envelope struct {
	Status   string `json:"status"` // success | no_results | error
	Response []any  `json:"response"`
	Message  string `json:"message,omitempty"`
}

type Pipeline struct {
	embedder  Embedder
	assembler *retrieval.Assembler
	generator Generator
	topK      int
	logger    *slog.Logger
}

func New(embedder Embedder, assembler *retrieval.Assembler, generator Generator, topK int, logger *slog.Logger) *Pipeline {
	if topK <= 0 {
		topK = 5
	}
	return &Pipeline{
		embedder:  embedder,
		assembler: assembler,
		generator: generator,
		topK:      topK,
		logger:    logger,
	}
}

// AnswerQuery answers a free-form question over the indexed corpus and
// returns the generation service's text verbatim, trimmed.
func (p *Pipeline) AnswerQuery(ctx context.Context, query string) (string, error) {
	block, err := p.retrieve(ctx, query, p.topK, retrieval.TagDocument)
	if err != nil {
		return "", err
	}
	if block.Empty() {
		p.logger.Warn("no context retrieved", "flow", "answer_query", "query", query)
		return noResultsNotice, nil
	}

	prompt := fmt.Sprintf(answerUserPrompt, block.Render(), query)
	return p.complete(ctx, answerSystemPrompt, prompt)
}

// ExtractTasks answers a task-oriented question over chat context, free text.
func (p *Pipeline) ExtractTasks(ctx context.Context, query string) (string, error) {
	block, err := p.retrieve(ctx, query, p.topK, retrieval.TagChat)
	if err != nil {
		return "", err
	}
	if block.Empty() {
		p.logger.Warn("no context retrieved", "flow", "extract_tasks", "query", query)
		return noResultsNotice, nil
	}

	prompt := fmt.Sprintf(taskUserPrompt, block.Render(), query)
	return p.complete(ctx, taskSystemPrompt, prompt)
}

// GroupTasks extracts every task assigned in a group as structured data.
// The model response runs through JSON recovery; the result is always a
// well-formed envelope.
func (p *Pipeline) GroupTasks(ctx context.Context, groupID string) Envelope {
	query := fmt.Sprintf("Give me all tasks from group %s", groupID)

	// Structured flows ask for a wider retrieval window: task mentions are
	// spread thin across chat chunks.
	block, err := p.retrieve(ctx, query, p.topK*4, retrieval.TagChat)
	if err != nil {
		return Envelope{Status: "error", Message: err.Error()}
	}
	if block.Empty() {
		p.logger.Warn("no context retrieved", "flow", "group_tasks", "group_id", groupID)
		return Envelope{Status: "no_results", Message: noResultsNotice}
	}

	prompt := fmt.Sprintf(groupTasksUserPrompt, groupID, block.Render(), groupID)
	raw, err := p.generator.Complete(ctx, groupTasksSystemPrompt, prompt, maxTokens)
	if err != nil {
		return Envelope{Status: "error", Message: err.Error()}
	}

	items, repaired, err := repair.Array(raw)
	if err != nil {
		p.logger.Error("response recovery failed", "flow", "group_tasks", "group_id", groupID,
			"kind", string(fault.KindOf(err)), "error", err)
		return Envelope{Status: "error", Message: err.Error()}
	}
	if repaired {
		// The trailing element may have been dropped mid-object.
		p.logger.Warn("recovered truncated response", "flow", "group_tasks",
			"group_id", groupID, "items", len(items))
	}
	return Envelope{Status: "success", Response: items}
}

// Summarize produces a per-day summary for a group and user over a date
// range. Dates are passed through as opaque strings; the summary rules text
// drives retrieval.
func (p *Pipeline) Summarize(ctx context.Context, groupID, userID, startDate, endDate, rules string) (string, error) {
	block, err := p.retrieve(ctx, rules, p.topK, retrieval.TagChat)
	if err != nil {
		return "", err
	}
	if block.Empty() {
		p.logger.Warn("no context retrieved", "flow", "summarize", "group_id", groupID)
		return noResultsNotice, nil
	}

	prompt := fmt.Sprintf(summaryUserPrompt, groupID, userID, startDate, endDate, block.Render(), rules)
	return p.complete(ctx, summarySystemPrompt, prompt)
}

func (p *Pipeline) retrieve(ctx context.Context, query string, topK int, style retrieval.TagStyle) (retrieval.ContextBlock, error) {
	vec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return retrieval.ContextBlock{}, fmt.Errorf("embed query: %w", err)
	}
	block, err := p.assembler.Assemble(ctx, vec, topK, style)
	if err != nil {
		return retrieval.ContextBlock{}, fmt.Errorf("assemble context: %w", err)
	}
	return block, nil
}

func (p *Pipeline) complete(ctx context.Context, system, prompt string) (string, error) {
	text, err := p.generator.Complete(ctx, system, prompt, maxTokens)
	if err != nil {
		return "", fmt.Errorf("generation: %w", err)
	}
	return strings.TrimSpace(text), nil
}
