package leads

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"airtech/pkg/domain"
)

// searchFunc adapts a function to the Searcher interface.
type searchFunc func(ctx context.Context, profile domain.CompanyProfile) ([]domain.Lead, error)

func (f searchFunc) Search(ctx context.Context, profile domain.CompanyProfile) ([]domain.Lead, error) {
	return f(ctx, profile)
}

func namedLeads(names ...string) []domain.Lead {
	res := make([]domain.Lead, 0, len(names))
	for _, name := range names {
		res = append(res, domain.Lead{Report: domain.LeadReport{CompanyName: name}})
	}
	return res
}

func selectionOf(sectors ...string) []domain.SavedProfile {
	profiles := make([]domain.SavedProfile, 0, len(sectors))
	for i, sector := range sectors {
		profiles = append(profiles, domain.SavedProfile{
			ID:      time.Now().Add(time.Duration(i)).Format(time.RFC3339Nano),
			Name:    sector,
			Profile: domain.CompanyProfile{Sector: sector},
		})
	}
	return profiles
}

func TestRunIssuesOneCallPerProfile(t *testing.T) {
	var calls int32
	o := NewOrchestrator(searchFunc(func(_ context.Context, p domain.CompanyProfile) ([]domain.Lead, error) {
		atomic.AddInt32(&calls, 1)
		return namedLeads(p.Sector), nil
	}), Options{})

	res, err := o.Run(context.Background(), selectionOf("a", "b", "c"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 backend calls, got %d", got)
	}
	if len(res.Leads) != 3 {
		t.Fatalf("expected 3 leads, got %d", len(res.Leads))
	}
}

func TestRunConcatenatesInInputOrder(t *testing.T) {
	// Profile 1 yields 3 leads slowly, profile 2 yields 2 leads fast;
	// aggregation must still put profile 1's leads first.
	o := NewOrchestrator(searchFunc(func(_ context.Context, p domain.CompanyProfile) ([]domain.Lead, error) {
		if p.Sector == "first" {
			time.Sleep(30 * time.Millisecond)
			return namedLeads("f1", "f2", "f3"), nil
		}
		return namedLeads("s1", "s2"), nil
	}), Options{})

	res, err := o.Run(context.Background(), selectionOf("first", "second"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"f1", "f2", "f3", "s1", "s2"}
	if len(res.Leads) != len(want) {
		t.Fatalf("expected %d leads, got %d", len(want), len(res.Leads))
	}
	for i, name := range want {
		if res.Leads[i].Report.CompanyName != name {
			t.Fatalf("lead %d: got %q, want %q", i, res.Leads[i].Report.CompanyName, name)
		}
	}
}

func TestRunFailsWholeSearchOnFirstFailure(t *testing.T) {
	boom := errors.New("backend down")
	o := NewOrchestrator(searchFunc(func(_ context.Context, p domain.CompanyProfile) ([]domain.Lead, error) {
		if p.Sector == "bad" {
			return nil, boom
		}
		return namedLeads(p.Sector), nil
	}), Options{})

	res, err := o.Run(context.Background(), selectionOf("good", "bad", "also-good"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected the backend error, got %v", err)
	}
	if len(res.Leads) != 0 {
		t.Fatalf("all-or-nothing run must discard partial leads, got %d", len(res.Leads))
	}
}

func TestRunPartialCollectsSuccessesAndFailures(t *testing.T) {
	o := NewOrchestrator(searchFunc(func(_ context.Context, p domain.CompanyProfile) ([]domain.Lead, error) {
		if p.Sector == "bad" {
			return nil, errors.New("backend down")
		}
		return namedLeads(p.Sector), nil
	}), Options{CollectPartial: true, MaxConcurrent: 2})

	res, err := o.Run(context.Background(), selectionOf("good", "bad", "also-good"))
	if err != nil {
		t.Fatalf("partial run should not fail: %v", err)
	}
	if len(res.Leads) != 2 {
		t.Fatalf("expected 2 leads from surviving profiles, got %d", len(res.Leads))
	}
	if len(res.Failures) != 1 {
		t.Fatalf("expected 1 recorded failure, got %d", len(res.Failures))
	}
	if res.Failures[0].ProfileName != "bad" {
		t.Fatalf("failure attributed to wrong profile: %+v", res.Failures[0])
	}
	// Input order is preserved across the surviving profiles.
	if res.Leads[0].Report.CompanyName != "good" || res.Leads[1].Report.CompanyName != "also-good" {
		t.Fatalf("unexpected lead order: %+v", res.Leads)
	}
}

func TestRunEmptySelectionYieldsEmptyResult(t *testing.T) {
	o := NewOrchestrator(searchFunc(func(_ context.Context, _ domain.CompanyProfile) ([]domain.Lead, error) {
		t.Fatal("searcher must not be called for an empty selection")
		return nil, nil
	}), Options{})
	res, err := o.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Leads) != 0 {
		t.Fatalf("expected no leads, got %d", len(res.Leads))
	}
}
