package port

import "webrag/internal/domain"

// EvalStore persists evaluation runs and their per-example results.
type EvalStore interface {
	SaveRun(run domain.EvalRun, results []domain.EvalResult) error
	GetRun(id string) (domain.EvalRun, []domain.EvalResult, error)
	ListRuns() ([]domain.EvalRun, error)
	Close() error
}
