// Package retrieval turns a nearest-neighbor search into a ranked, tagged
// context block ready for prompt injection.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/argus-agency/dossier/internal/vecindex"
)

// separator joins rendered sections into the literal prompt context.
const separator = "\n\n---\n\n"

// Index is the slice of the vector index the assembler needs. Satisfied by
// *vecindex.Client and by test fakes.
type Index interface {
	Query(ctx context.Context, vector []float32, k int) ([]vecindex.Match, error)
}

// TagStyle selects which metadata fields a flow's provenance tags carry.
type TagStyle int

const (
	// TagDocument renders document type and source path.
	TagDocument TagStyle = iota
	// TagChat renders group, sender, role and timestamp.
	TagChat
)

// Section is one retrieved item: a rendered provenance tag plus its text.
type Section struct {
	Tag  string
	Text string
}

// ContextBlock is an ordered sequence of sections, following the index's
// relevance ranking descending. It is transient: built and discarded within
// a single query cycle.
type ContextBlock struct {
	Sections []Section
}

// Empty reports whether retrieval produced no usable context.
func (b ContextBlock) Empty() bool { return len(b.Sections) == 0 }

// Render concatenates tag + newline + text per section, joined by the fixed
// separator. No truncation is performed here: the result is embedded in the
// downstream prompt as-is.
func (b ContextBlock) Render() string {
	parts := make([]string, len(b.Sections))
	for i, s := range b.Sections {
		parts[i] = s.Tag + "\n" + s.Text
	}
	return strings.Join(parts, separator)
}

type Assembler struct {
	index Index
}

func NewAssembler(index Index) *Assembler {
	return &Assembler{index: index}
}

// Assemble issues a single top-k query and renders each match into a tagged
// section. The index returning fewer than k results, or none, is valid;
// an empty result set propagates as an empty block. Matches are kept in
// index return order with no deduplication or score thresholding.
func (a *Assembler) Assemble(ctx context.Context, vector []float32, topK int, style TagStyle) (ContextBlock, error) {
	matches, err := a.index.Query(ctx, vector, topK)
	if err != nil {
		return ContextBlock{}, fmt.Errorf("index query: %w", err)
	}

	block := ContextBlock{Sections: make([]Section, 0, len(matches))}
	for _, m := range matches {
		block.Sections = append(block.Sections, Section{
			Tag:  renderTag(m.Meta, style),
			Text: strings.TrimSpace(m.Text),
		})
	}
	return block, nil
}

// renderTag builds the provenance tag from a fixed field list per style.
// Missing fields render as sentinels rather than being omitted, so the tag
// shape is stable across calls.
func renderTag(meta vecindex.Metadata, style TagStyle) string {
	switch style {
	case TagChat:
		return fmt.Sprintf("(Group: %s, Sender: %s, Role: %s, Time: %s)",
			orSentinel(meta.GroupID, "Unknown"),
			orSentinel(meta.Sender, "Unknown"),
			orSentinel(meta.Role, "Unknown"),
			orSentinel(meta.Timestamp, "N/A"),
		)
	default:
		return fmt.Sprintf("(Document Type: %s, Source: %s)",
			orSentinel(meta.DocType, "Unknown"),
			orSentinel(meta.Source, "N/A"),
		)
	}
}

func orSentinel(v, sentinel string) string {
	if v == "" {
		return sentinel
	}
	return v
}
