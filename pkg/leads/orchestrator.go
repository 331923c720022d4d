package leads

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"airtech/pkg/domain"
)

// Searcher runs one lead search for a single company profile.
type Searcher interface {
	Search(ctx context.Context, profile domain.CompanyProfile) ([]domain.Lead, error)
}

// Options configure how the orchestrator aggregates per-profile searches.
type Options struct {
	// CollectPartial switches aggregation from all-or-nothing to
	// best-effort: failing profiles are reported individually instead of
	// failing the whole run. Off by default.
	CollectPartial bool
	// MaxConcurrent caps in-flight backend calls in partial mode.
	// Zero or negative means unlimited.
	MaxConcurrent int
}

// ProfileFailure records which profile failed and why, in partial mode.
type ProfileFailure struct {
	ProfileID   string `json:"profileId"`
	ProfileName string `json:"profileName"`
	Message     string `json:"message"`
}

// Result is the aggregated outcome of one search run. Leads are
// concatenated in input profile order. Failures is only populated in
// partial mode.
type Result struct {
	Leads    []domain.Lead    `json:"leads"`
	Failures []ProfileFailure `json:"failures,omitempty"`
}

// Orchestrator fans one search per selected profile out to the backend
// and fans the outcomes back into a single result. It holds no state
// across runs; guarding against overlapping runs is the caller's job.
type Orchestrator struct {
	searcher       Searcher
	collectPartial bool
	maxConcurrent  int
}

// NewOrchestrator builds an orchestrator over a per-profile searcher.
func NewOrchestrator(searcher Searcher, opts Options) *Orchestrator {
	return &Orchestrator{
		searcher:       searcher,
		collectPartial: opts.CollectPartial,
		maxConcurrent:  opts.MaxConcurrent,
	}
}

// Run searches all profiles concurrently. In the default mode the first
// failure fails the whole run and leads from the other calls are
// discarded; in-flight calls are not cancelled, their outcomes are
// simply dropped.
func (o *Orchestrator) Run(ctx context.Context, profiles []domain.SavedProfile) (Result, error) {
	runID := uuid.NewString()
	slog.Info("lead search started", "run_id", runID, "profiles", len(profiles), "partial", o.collectPartial)
	if o.collectPartial {
		res := o.runPartial(ctx, profiles)
		slog.Info("lead search finished", "run_id", runID, "leads", len(res.Leads), "failures", len(res.Failures))
		return res, nil
	}
	res, err := o.runStrict(ctx, profiles)
	if err != nil {
		slog.Warn("lead search failed", "run_id", runID, "err", err)
		return Result{}, err
	}
	slog.Info("lead search finished", "run_id", runID, "leads", len(res.Leads))
	return res, nil
}

func (o *Orchestrator) runStrict(ctx context.Context, profiles []domain.SavedProfile) (Result, error) {
	type outcome struct {
		index int
		leads []domain.Lead
		err   error
	}
	// Buffered so late finishers never block after the run has already
	// failed and stopped receiving.
	results := make(chan outcome, len(profiles))
	for i, p := range profiles {
		go func(index int, profile domain.CompanyProfile) {
			leads, err := o.searcher.Search(ctx, profile)
			results <- outcome{index: index, leads: leads, err: err}
		}(i, p.Profile)
	}
	byProfile := make([][]domain.Lead, len(profiles))
	for range profiles {
		res := <-results
		if res.err != nil {
			return Result{}, res.err
		}
		byProfile[res.index] = res.leads
	}
	return Result{Leads: flatten(byProfile)}, nil
}

func (o *Orchestrator) runPartial(ctx context.Context, profiles []domain.SavedProfile) Result {
	byProfile := make([][]domain.Lead, len(profiles))
	errs := make([]error, len(profiles))
	g := new(errgroup.Group)
	if o.maxConcurrent > 0 {
		g.SetLimit(o.maxConcurrent)
	}
	for i, p := range profiles {
		g.Go(func() error {
			leads, err := o.searcher.Search(ctx, p.Profile)
			if err != nil {
				errs[i] = err
				return nil
			}
			byProfile[i] = leads
			return nil
		})
	}
	_ = g.Wait()
	res := Result{Leads: flatten(byProfile)}
	for i, err := range errs {
		if err != nil {
			res.Failures = append(res.Failures, ProfileFailure{
				ProfileID:   profiles[i].ID,
				ProfileName: profiles[i].Name,
				Message:     err.Error(),
			})
		}
	}
	return res
}

func flatten(byProfile [][]domain.Lead) []domain.Lead {
	var all []domain.Lead
	for _, leads := range byProfile {
		all = append(all, leads...)
	}
	return all
}
