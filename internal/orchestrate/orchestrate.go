// Package orchestrate drives selected queue items through the remote
// remediation stages, one item at a time, highest risk first.
package orchestrate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/demarklabs/demark/internal/queue"
)

// StageResult is a stage's rewritten text plus its change breakdown. An
// empty Text means the stage had no usable suggestion and the input carries
// forward unchanged.
type StageResult struct {
	Text    string
	Changes []queue.Change
}

// StageProvider runs the four per-paragraph remediation stages. Both the
// remote analysis service and the LLM-backed provider satisfy it.
type StageProvider interface {
	AnalyzeLength(ctx context.Context, paragraphIndex int, text string) (StageResult, error)
	SuggestMerges(ctx context.Context, paragraphIndex int, text string) (StageResult, error)
	OptimizeConnectors(ctx context.Context, paragraphIndex int, text string) (StageResult, error)
	DiversifyPatterns(ctx context.Context, paragraphIndex int, text string) (StageResult, error)
}

// Stage names used in the processing log and cache keys.
const (
	StageAnalyzeLength      = "analyze_length"
	StageSuggestMerges      = "suggest_merges"
	StageOptimizeConnectors = "optimize_connectors"
	StageDiversifyPatterns  = "diversify_patterns"
)

// Orchestrator processes one batch at a time. The pause flag is cooperative:
// it is checked between items, so an in-flight item finishes its remaining
// stages before processing stops.
type Orchestrator struct {
	Stages StageProvider
	Log    *Log

	busy   atomic.Bool
	paused atomic.Bool
}

// Busy reports whether a batch is currently running.
func (o *Orchestrator) Busy() bool { return o.busy.Load() }

// Pause requests that no further items start. It does not abort the item in
// flight.
func (o *Orchestrator) Pause() { o.paused.Store(true) }

// Resume clears a pause request.
func (o *Orchestrator) Resume() { o.paused.Store(false) }

// ProcessBatch runs the selected items through their stage sequences.
// Items are visited in descending risk-score order. Locked and skipped items
// are never touched. A single item's failure is logged and the item reverts
// to pending; the batch continues. The busy flag is always cleared, even on
// a panic inside a stage provider, so callers never observe a stuck
// "processing" state.
func (o *Orchestrator) ProcessBatch(ctx context.Context, items []*queue.Item, selected []int) error {
	if o.Stages == nil {
		return fmt.Errorf("no stage provider configured")
	}
	o.busy.Store(true)
	defer o.busy.Store(false)

	batch := make([]*queue.Item, 0, len(selected))
	for _, idx := range selected {
		if idx < 0 || idx >= len(items) {
			continue
		}
		item := items[idx]
		if item == nil || item.Status == queue.StatusLocked || item.Status == queue.StatusSkipped {
			continue
		}
		batch = append(batch, item)
	}
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].Risk.Score > batch[j].Risk.Score
	})

	for _, item := range batch {
		if o.paused.Load() {
			o.logf(item.Index, "", "paused before item %d", item.Index)
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		o.processItem(ctx, item)
	}
	return nil
}

// processItem runs one item's stage sequence. Errors never escape: the item
// reverts to pending and the failure is recorded in the processing log.
func (o *Orchestrator) processItem(ctx context.Context, item *queue.Item) {
	item.Status = queue.StatusInProgress
	o.logf(item.Index, "", "processing started (mode %s, risk %.0f)", item.Mode, item.Risk.Score)

	current := item.Text
	var changes []queue.Change
	for _, stage := range stagesForMode(item.Mode) {
		res, err := o.runStage(ctx, stage, item.OriginalBlockIndex, current)
		if err != nil {
			item.Status = queue.StatusPending
			o.logf(item.Index, stage, "stage failed, item reverted to pending: %v", err)
			log.Warn().Err(err).Int("item", item.Index).Str("stage", stage).Msg("stage failed")
			return
		}
		if strings.TrimSpace(res.Text) != "" {
			current = res.Text
		}
		changes = append(changes, res.Changes...)
		o.logf(item.Index, stage, "stage completed")
	}

	item.Status = queue.StatusCompleted
	if current != item.Text {
		item.ProcessedText = current
		item.Changes = changes
	}
	o.logf(item.Index, "", "processing completed")
}

func (o *Orchestrator) runStage(ctx context.Context, stage string, paragraphIndex int, text string) (StageResult, error) {
	switch stage {
	case StageAnalyzeLength:
		return o.Stages.AnalyzeLength(ctx, paragraphIndex, text)
	case StageSuggestMerges:
		return o.Stages.SuggestMerges(ctx, paragraphIndex, text)
	case StageOptimizeConnectors:
		return o.Stages.OptimizeConnectors(ctx, paragraphIndex, text)
	case StageDiversifyPatterns:
		return o.Stages.DiversifyPatterns(ctx, paragraphIndex, text)
	default:
		return StageResult{}, fmt.Errorf("unknown stage %q", stage)
	}
}

// stagesForMode is the stage sequence each mode runs. Custom mode is a
// reserved extension point and completes without running any stage.
func stagesForMode(m queue.Mode) []string {
	switch m {
	case queue.ModeMergeOnly:
		return []string{StageAnalyzeLength, StageSuggestMerges}
	case queue.ModeConnectorOnly:
		return []string{StageOptimizeConnectors}
	case queue.ModeDiversifyOnly:
		return []string{StageDiversifyPatterns}
	case queue.ModeCustom:
		return nil
	default:
		return []string{StageAnalyzeLength, StageSuggestMerges, StageOptimizeConnectors, StageDiversifyPatterns}
	}
}

func (o *Orchestrator) logf(itemIndex int, stage, format string, args ...any) {
	if o.Log == nil {
		return
	}
	o.Log.Append(itemIndex, stage, fmt.Sprintf(format, args...))
}
