package orchestrate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/demarklabs/demark/internal/queue"
)

// fakeStages records calls and lets tests script failures per stage.
type fakeStages struct {
	calls   []string
	rewrite bool
	failOn  string
}

func (f *fakeStages) run(stage string, idx int, text string) (StageResult, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s:%d", stage, idx))
	if f.failOn == stage {
		return StageResult{}, errors.New("stage exploded")
	}
	if !f.rewrite {
		return StageResult{}, nil
	}
	return StageResult{
		Text:    stage + "(" + text + ")",
		Changes: []queue.Change{{Type: stage, Count: 1}},
	}, nil
}

func (f *fakeStages) AnalyzeLength(_ context.Context, i int, t string) (StageResult, error) {
	return f.run(StageAnalyzeLength, i, t)
}
func (f *fakeStages) SuggestMerges(_ context.Context, i int, t string) (StageResult, error) {
	return f.run(StageSuggestMerges, i, t)
}
func (f *fakeStages) OptimizeConnectors(_ context.Context, i int, t string) (StageResult, error) {
	return f.run(StageOptimizeConnectors, i, t)
}
func (f *fakeStages) DiversifyPatterns(_ context.Context, i int, t string) (StageResult, error) {
	return f.run(StageDiversifyPatterns, i, t)
}

func makeItems(scores ...float64) []*queue.Item {
	items := make([]*queue.Item, len(scores))
	for i, s := range scores {
		items[i] = &queue.Item{
			Index:              i,
			OriginalBlockIndex: i,
			Text:               fmt.Sprintf("paragraph %d", i),
			Risk:               queue.Risk{Score: s, Level: queue.RiskHigh},
			Status:             queue.StatusPending,
			Mode:               queue.ModeAuto,
		}
	}
	return items
}

func allIndices(items []*queue.Item) []int {
	out := make([]int, len(items))
	for i := range items {
		out[i] = i
	}
	return out
}

func TestProcessBatch_DescendingRiskOrder(t *testing.T) {
	items := makeItems(10, 90, 50)
	items[0].Mode = queue.ModeDiversifyOnly
	items[1].Mode = queue.ModeDiversifyOnly
	items[2].Mode = queue.ModeDiversifyOnly
	f := &fakeStages{rewrite: true}
	o := &Orchestrator{Stages: f, Log: &Log{}}

	if err := o.ProcessBatch(context.Background(), items, allIndices(items)); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	want := []string{"diversify_patterns:1", "diversify_patterns:2", "diversify_patterns:0"}
	if len(f.calls) != len(want) {
		t.Fatalf("calls: got %v", f.calls)
	}
	for i := range want {
		if f.calls[i] != want[i] {
			t.Fatalf("call %d: got %q, want %q (risk order [90 50 10])", i, f.calls[i], want[i])
		}
	}
}

func TestProcessBatch_AutoModeSequenceAndChaining(t *testing.T) {
	items := makeItems(80)
	f := &fakeStages{rewrite: true}
	o := &Orchestrator{Stages: f}

	if err := o.ProcessBatch(context.Background(), items, []int{0}); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	item := items[0]
	if item.Status != queue.StatusCompleted {
		t.Fatalf("status: got %q", item.Status)
	}
	// Each stage wraps the previous stage's output.
	want := "diversify_patterns(optimize_connectors(suggest_merges(analyze_length(paragraph 0))))"
	if item.ProcessedText != want {
		t.Fatalf("processedText:\ngot  %q\nwant %q", item.ProcessedText, want)
	}
	if len(item.Changes) != 4 {
		t.Fatalf("changes: got %+v", item.Changes)
	}
}

func TestProcessBatch_ModeSubsets(t *testing.T) {
	cases := map[queue.Mode][]string{
		queue.ModeMergeOnly:     {"analyze_length:0", "suggest_merges:0"},
		queue.ModeConnectorOnly: {"optimize_connectors:0"},
		queue.ModeDiversifyOnly: {"diversify_patterns:0"},
		queue.ModeCustom:        {},
	}
	for mode, want := range cases {
		items := makeItems(50)
		items[0].Mode = mode
		f := &fakeStages{}
		o := &Orchestrator{Stages: f}
		if err := o.ProcessBatch(context.Background(), items, []int{0}); err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if len(f.calls) != len(want) {
			t.Fatalf("%s: calls got %v, want %v", mode, f.calls, want)
		}
		for i := range want {
			if f.calls[i] != want[i] {
				t.Fatalf("%s: call %d got %q, want %q", mode, i, f.calls[i], want[i])
			}
		}
		if items[0].Status != queue.StatusCompleted {
			t.Fatalf("%s: status got %q", mode, items[0].Status)
		}
	}
}

func TestProcessBatch_FailureIsolatedAndReverted(t *testing.T) {
	items := makeItems(90, 40)
	f := &fakeStages{rewrite: true, failOn: StageSuggestMerges}
	items[1].Mode = queue.ModeDiversifyOnly
	logbuf := &Log{}
	o := &Orchestrator{Stages: f, Log: logbuf}

	if err := o.ProcessBatch(context.Background(), items, allIndices(items)); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if items[0].Status != queue.StatusPending {
		t.Fatalf("failed item must revert to pending, got %q", items[0].Status)
	}
	if items[0].ProcessedText != "" {
		t.Fatal("failed item must not carry processed text")
	}
	if items[1].Status != queue.StatusCompleted {
		t.Fatalf("batch must continue past a failed item, second item got %q", items[1].Status)
	}
	found := false
	for _, e := range logbuf.Entries() {
		if e.Stage == StageSuggestMerges && e.ItemIndex == 0 {
			found = true
		}
	}
	if !found {
		t.Fatal("stage failure must be recorded in the processing log")
	}
}

func TestProcessBatch_BusyFlagAlwaysCleared(t *testing.T) {
	items := makeItems(50)
	f := &fakeStages{failOn: StageAnalyzeLength}
	o := &Orchestrator{Stages: f}
	_ = o.ProcessBatch(context.Background(), items, []int{0})
	if o.Busy() {
		t.Fatal("busy flag must be cleared after the batch settles")
	}
}

func TestProcessBatch_LockedAndSkippedNeverTouched(t *testing.T) {
	items := makeItems(90, 80, 70)
	items[0].Status = queue.StatusLocked
	items[1].Status = queue.StatusSkipped
	f := &fakeStages{rewrite: true}
	o := &Orchestrator{Stages: f}

	if err := o.ProcessBatch(context.Background(), items, allIndices(items)); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if items[0].Status != queue.StatusLocked {
		t.Fatalf("locked item transitioned to %q", items[0].Status)
	}
	if items[1].Status != queue.StatusSkipped {
		t.Fatalf("skipped item transitioned to %q", items[1].Status)
	}
	if items[2].Status != queue.StatusCompleted {
		t.Fatalf("unlocked item: got %q", items[2].Status)
	}
}

func TestProcessBatch_PauseStopsBeforeNextItem(t *testing.T) {
	items := makeItems(90, 80)
	f := &fakeStages{rewrite: true}
	o := &Orchestrator{Stages: f}
	o.Pause()

	if err := o.ProcessBatch(context.Background(), items, allIndices(items)); err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if len(f.calls) != 0 {
		t.Fatalf("paused orchestrator must not start items, got calls %v", f.calls)
	}
	o.Resume()
	if err := o.ProcessBatch(context.Background(), items, allIndices(items)); err != nil {
		t.Fatalf("ProcessBatch after resume: %v", err)
	}
	if len(f.calls) == 0 {
		t.Fatal("resume must allow processing again")
	}
}

func TestProcessBatch_NoProviderIsError(t *testing.T) {
	o := &Orchestrator{}
	if err := o.ProcessBatch(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error without a stage provider")
	}
}
