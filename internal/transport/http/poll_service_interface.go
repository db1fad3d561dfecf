package http

import (
	"context"

	"pollscope/internal/services"
	"pollscope/pkg/contracts/domain"
)

// PollServiceInterface is the part of services.PollService the HTTP layer uses
type PollServiceInterface interface {
	Refresh(ctx context.Context) (*domain.Snapshot, error)
	Status() services.RefreshStatus

	Ranking(source string) (*services.RankingView, error)
	Evolution(source string, candidates []string) (*services.EvolutionView, error)
	Comparison(candidates []string) (*services.ComparisonView, error)
	Sources() (*services.SourcesView, error)
	Candidates() (*services.CandidatesView, error)
}
