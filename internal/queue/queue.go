// Package queue models the content paragraphs tracked for risk-driven
// remediation and builds the processing queue from classified blocks.
package queue

import (
	"errors"

	"github.com/demarklabs/demark/internal/classify"
)

// ErrNoParagraphs means every block was classified as a heading, leaving
// nothing to process.
var ErrNoParagraphs = errors.New("no content paragraphs")

// Status tracks a queue item's position in the processing state machine.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
	StatusLocked     Status = "locked"
)

// Mode selects which remediation stages apply to an item.
type Mode string

const (
	ModeAuto          Mode = "auto"
	ModeMergeOnly     Mode = "merge_only"
	ModeConnectorOnly Mode = "connector_only"
	ModeDiversifyOnly Mode = "diversify_only"
	ModeCustom        Mode = "custom"
)

// RiskLevel buckets a paragraph's likelihood of carrying AI-writing markers.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Risk carries the externally computed pattern metrics for one paragraph.
// Values are read once at queue-build time and never mutated afterwards.
type Risk struct {
	SimpleRatio      float64
	LengthCV         float64
	OpenerRepetition float64
	Score            float64
	Level            RiskLevel
}

// DefaultRisk is the conservative baseline substituted when the pattern
// analysis has no entry for a paragraph.
func DefaultRisk() Risk {
	return Risk{Score: 30, Level: RiskLow, LengthCV: 0.3}
}

// Change summarizes one category of edits applied to an item.
type Change struct {
	Type  string
	Count int
}

// Item is one content paragraph eligible for processing. Index,
// OriginalBlockIndex and Text form the item's immutable identity; Status,
// Mode, ProcessedText and Changes are mutated by the orchestrator.
type Item struct {
	Index              int
	OriginalBlockIndex int
	Text               string
	Risk               Risk
	Status             Status
	Mode               Mode
	ProcessedText      string
	Changes            []Change
}

// Build constructs the processing queue from the ordered blocks, skipping
// headings. Each item carries its dense queue index, a back-reference to its
// original block position, and the risk metrics from the pattern analysis
// (defaulted when absent). The second return value is the initial selection:
// the queue indices of every medium- or high-risk item.
func Build(blocks []string, risks map[int]Risk) ([]*Item, []int) {
	items := make([]*Item, 0, len(blocks))
	selected := make([]int, 0, len(blocks))
	for blockIndex, text := range blocks {
		if classify.IsTitle(text) {
			continue
		}
		risk, ok := risks[blockIndex]
		if !ok {
			risk = DefaultRisk()
		}
		item := &Item{
			Index:              len(items),
			OriginalBlockIndex: blockIndex,
			Text:               text,
			Risk:               risk,
			Status:             StatusPending,
			Mode:               ModeAuto,
		}
		if risk.Level == RiskMedium || risk.Level == RiskHigh {
			selected = append(selected, item.Index)
		}
		items = append(items, item)
	}
	return items, selected
}
