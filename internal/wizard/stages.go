package wizard

import (
	"context"

	"github.com/demarklabs/demark/internal/analysis"
	"github.com/demarklabs/demark/internal/orchestrate"
	"github.com/demarklabs/demark/internal/queue"
)

// ServiceStages adapts the analysis client's per-stage endpoints to the
// orchestrator's stage provider interface. When no LLM is configured the
// remote service performs the rewrites itself.
type ServiceStages struct {
	Client *analysis.Client
}

var _ orchestrate.StageProvider = (*ServiceStages)(nil)

func (s *ServiceStages) AnalyzeLength(ctx context.Context, paragraphIndex int, text string) (orchestrate.StageResult, error) {
	res, err := s.Client.AnalyzeLength(ctx, paragraphIndex, text)
	return convertStageResult(res), err
}

func (s *ServiceStages) SuggestMerges(ctx context.Context, paragraphIndex int, text string) (orchestrate.StageResult, error) {
	res, err := s.Client.SuggestMerges(ctx, paragraphIndex, text)
	return convertStageResult(res), err
}

func (s *ServiceStages) OptimizeConnectors(ctx context.Context, paragraphIndex int, text string) (orchestrate.StageResult, error) {
	res, err := s.Client.OptimizeConnectors(ctx, paragraphIndex, text)
	return convertStageResult(res), err
}

func (s *ServiceStages) DiversifyPatterns(ctx context.Context, paragraphIndex int, text string) (orchestrate.StageResult, error) {
	res, err := s.Client.DiversifyPatterns(ctx, paragraphIndex, text)
	return convertStageResult(res), err
}

func convertStageResult(res analysis.StageResult) orchestrate.StageResult {
	out := orchestrate.StageResult{Text: res.ModifiedText}
	for _, ch := range res.Changes {
		out.Changes = append(out.Changes, queue.Change{Type: ch.Type, Count: ch.Count})
	}
	return out
}
