package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/argus-agency/dossier/internal/fault"
	"github.com/argus-agency/dossier/internal/retrieval"
	"github.com/argus-agency/dossier/internal/vecindex"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeIndex struct {
	matches []vecindex.Match
	err     error
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, k int) ([]vecindex.Match, error) {
	return f.matches, f.err
}

type fakeGenerator struct {
	response  string
	err       error
	called    bool
	gotPrompt string
	gotSystem string
}

func (f *fakeGenerator) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	f.called = true
	f.gotSystem = system
	f.gotPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func newTestPipeline(idx retrieval.Index, gen *fakeGenerator) *Pipeline {
	return New(&fakeEmbedder{}, retrieval.NewAssembler(idx), gen, 5, discardLogger())
}

func chatMatches() []vecindex.Match {
	return []vecindex.Match{
		{
			Text: "Submit report by 5 PM",
			Meta: vecindex.Metadata{GroupID: "GRP001", Sender: "Insp. Rao", Role: "Inspector", Timestamp: "12/05/24, 10:15"},
		},
	}
}

func TestAnswerQuery_Success(t *testing.T) {
	gen := &fakeGenerator{response: "  The report was due at 5 PM.  "}
	idx := &fakeIndex{matches: []vecindex.Match{
		{Text: "FIR excerpt", Meta: vecindex.Metadata{DocType: "FIR", Source: "s3://b/fir.docx"}},
	}}

	answer, err := newTestPipeline(idx, gen).AnswerQuery(context.Background(), "when was the report due?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "The report was due at 5 PM." {
		t.Errorf("answer = %q", answer)
	}
	if !strings.Contains(gen.gotPrompt, "(Document Type: FIR, Source: s3://b/fir.docx)") {
		t.Errorf("prompt missing provenance tag:\n%s", gen.gotPrompt)
	}
	if !strings.Contains(gen.gotPrompt, "when was the report due?") {
		t.Error("prompt missing the user query")
	}
}

func TestAnswerQuery_NoResultsShortCircuits(t *testing.T) {
	gen := &fakeGenerator{response: "should never be produced"}

	answer, err := newTestPipeline(&fakeIndex{}, gen).AnswerQuery(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != noResultsNotice {
		t.Errorf("answer = %q, want the fixed notice", answer)
	}
	if gen.called {
		t.Error("generation service must not be invoked with empty context")
	}
}

func TestAnswerQuery_EmbedFailure(t *testing.T) {
	gen := &fakeGenerator{}
	p := New(&fakeEmbedder{err: fault.New(fault.KindServiceUnavailable, "down")},
		retrieval.NewAssembler(&fakeIndex{}), gen, 5, discardLogger())

	_, err := p.AnswerQuery(context.Background(), "query")
	if err == nil {
		t.Fatal("expected error")
	}
	if gen.called {
		t.Error("generation must not run after an embed failure")
	}
}

func TestExtractTasks_UsesChatTags(t *testing.T) {
	gen := &fakeGenerator{response: "Insp. Rao assigned the report task to SI Kumar."}
	idx := &fakeIndex{matches: chatMatches()}

	_, err := newTestPipeline(idx, gen).ExtractTasks(context.Background(), "list the assigned tasks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gen.gotPrompt, "(Group: GRP001, Sender: Insp. Rao, Role: Inspector, Time: 12/05/24, 10:15)") {
		t.Errorf("prompt missing chat provenance tag:\n%s", gen.gotPrompt)
	}
}

func TestGroupTasks_Success(t *testing.T) {
	gen := &fakeGenerator{response: `[{"task_name":"submit report","assigned_by":"Insp. Rao"}]`}
	idx := &fakeIndex{matches: chatMatches()}

	env := newTestPipeline(idx, gen).GroupTasks(context.Background(), "GRP001")
	if env.Status != "success" {
		t.Fatalf("status = %q, message = %q", env.Status, env.Message)
	}
	if len(env.Response) != 1 {
		t.Fatalf("expected 1 task, got %d", len(env.Response))
	}
	task, ok := env.Response[0].(map[string]any)
	if !ok || task["task_name"] != "submit report" {
		t.Errorf("task = %v", env.Response[0])
	}
	if !strings.Contains(gen.gotPrompt, "GRP001") {
		t.Error("prompt missing group id")
	}
}

func TestGroupTasks_TruncatedResponseRecovered(t *testing.T) {
	gen := &fakeGenerator{response: `[{"task_name":"drill"},{"task_name":"deploy`}
	idx := &fakeIndex{matches: chatMatches()}

	env := newTestPipeline(idx, gen).GroupTasks(context.Background(), "GRP001")
	if env.Status != "success" {
		t.Fatalf("status = %q, message = %q", env.Status, env.Message)
	}
	if len(env.Response) != 1 {
		t.Fatalf("expected 1 recovered task, got %d", len(env.Response))
	}
}

func TestGroupTasks_EmptyTaskList(t *testing.T) {
	gen := &fakeGenerator{response: `[]`}
	idx := &fakeIndex{matches: chatMatches()}

	env := newTestPipeline(idx, gen).GroupTasks(context.Background(), "GRP001")
	if env.Status != "success" {
		t.Fatalf("status = %q, message = %q", env.Status, env.Message)
	}
	if env.Response == nil || len(env.Response) != 0 {
		t.Fatalf("response = %#v, want empty non-nil slice", env.Response)
	}

	// A group with no tasks is still a success with an explicit empty
	// payload, never a missing field.
	payload, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(payload), `"response":[]`) {
		t.Errorf("envelope = %s, want a \"response\":[] field", payload)
	}
}

func TestGroupTasks_NoResults(t *testing.T) {
	gen := &fakeGenerator{}

	env := newTestPipeline(&fakeIndex{}, gen).GroupTasks(context.Background(), "GRP404")
	if env.Status != "no_results" {
		t.Errorf("status = %q, want no_results", env.Status)
	}
	if gen.called {
		t.Error("generation service must not be invoked with empty context")
	}
}

func TestGroupTasks_GenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: fault.New(fault.KindServiceUnavailable, "overloaded")}
	idx := &fakeIndex{matches: chatMatches()}

	env := newTestPipeline(idx, gen).GroupTasks(context.Background(), "GRP001")
	if env.Status != "error" {
		t.Errorf("status = %q, want error", env.Status)
	}
	if env.Message == "" {
		t.Error("error envelope must carry a message")
	}
}

func TestGroupTasks_UnrecoverableResponse(t *testing.T) {
	gen := &fakeGenerator{response: `[{"task_name": not even close}]`}
	idx := &fakeIndex{matches: chatMatches()}

	env := newTestPipeline(idx, gen).GroupTasks(context.Background(), "GRP001")
	if env.Status != "error" {
		t.Errorf("status = %q, want error", env.Status)
	}
}

func TestGroupTasks_IndexFailure(t *testing.T) {
	idx := &fakeIndex{err: errors.New("index down")}

	env := newTestPipeline(idx, &fakeGenerator{}).GroupTasks(context.Background(), "GRP001")
	if env.Status != "error" {
		t.Errorf("status = %q, want error", env.Status)
	}
}

func TestSummarize_Success(t *testing.T) {
	gen := &fakeGenerator{response: "Day 1: drills and deployments."}
	idx := &fakeIndex{matches: chatMatches()}

	out, err := newTestPipeline(idx, gen).Summarize(context.Background(),
		"GRP001", "SP_DistrictHQ_001", "2025-06-20", "2025-06-22", "summarize operations")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Day 1: drills and deployments." {
		t.Errorf("out = %q", out)
	}
	for _, want := range []string{"GRP001", "SP_DistrictHQ_001", "2025-06-20", "2025-06-22"} {
		if !strings.Contains(gen.gotPrompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestSummarize_NoResults(t *testing.T) {
	gen := &fakeGenerator{}

	out, err := newTestPipeline(&fakeIndex{}, gen).Summarize(context.Background(),
		"GRP001", "u1", "2025-06-20", "2025-06-22", "summarize")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != noResultsNotice {
		t.Errorf("out = %q", out)
	}
	if gen.called {
		t.Error("generation service must not be invoked with empty context")
	}
}
