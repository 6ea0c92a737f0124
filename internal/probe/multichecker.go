package probe

import (
	"context"
	"strings"
)

// MultiChecker runs its checkers in order and reports up only when all of
// them pass. It stops at the first failure.
type MultiChecker struct {
	Checkers []Checker
}

func NewMultiChecker(checkers ...Checker) *MultiChecker {
	return &MultiChecker{Checkers: checkers}
}

func (m *MultiChecker) Run(ctx context.Context, target string) []CheckResult {
	results := make([]CheckResult, 0, len(m.Checkers))
	for _, c := range m.Checkers {
		r := c.Check(ctx, target)
		results = append(results, r)
		if !r.Success {
			break
		}
	}
	return results
}

func (m *MultiChecker) Check(ctx context.Context, target string) CheckResult {
	results := m.Run(ctx, target)
	if len(results) == 0 {
		return CheckResult{Name: "MULTI", Message: "no checkers"}
	}
	out := results[len(results)-1]
	out.CheckedAt = results[0].CheckedAt
	parts := make([]string, 0, len(results))
	var latency float64
	for _, r := range results {
		parts = append(parts, r.Name+": "+r.Message)
		latency += r.LatencyMS
	}
	out.Name = "MULTI"
	out.Message = strings.Join(parts, "; ")
	out.LatencyMS = latency
	return out
}
