package resolver

import "stepaas/internal/step"

// Stage resolves one class of references against a Resolution.
type Stage interface {
	Name() string
	Resolve(res *Resolution) Stats
}

// StageResult reports the outcome of one chain stage.
type StageResult struct {
	Stage          string
	Stats          Stats
	UnlinkedBefore int
	UnlinkedAfter  int
	EdgeCount      int
}

// Chain runs resolution stages in order, collecting per-stage results.
type Chain struct {
	stages []Stage
}

func NewChain(stages ...Stage) *Chain {
	return &Chain{stages: stages}
}

// NewDefaultChain returns the standard stage set: the exact reference chain,
// plus the substring containment fallback when explicitly enabled.
func NewDefaultChain(enableFallback bool) *Chain {
	stages := []Stage{NewChainStage()}
	if enableFallback {
		stages = append(stages, NewFallbackStage())
	}
	return NewChain(stages...)
}

// Run resolves the document through every stage. Stages never abort the run;
// unresolvable items stay behind as counters and unlinked leftovers.
func (c *Chain) Run(res *Resolution) []StageResult {
	if res == nil || res.Doc == nil {
		return nil
	}
	var out []StageResult
	for _, s := range c.stages {
		before := len(res.Unlinked)
		stats := s.Resolve(res)
		out = append(out, StageResult{
			Stage:          s.Name(),
			Stats:          stats,
			UnlinkedBefore: before,
			UnlinkedAfter:  len(res.Unlinked),
			EdgeCount:      len(res.Edges),
		})
	}
	return out
}

// ChainStage performs the exact multi-hop joins for annotations and
// assembly edges.
type ChainStage struct{}

func NewChainStage() *ChainStage { return &ChainStage{} }

func (s *ChainStage) Name() string { return "reference-chain" }

func (s *ChainStage) Resolve(res *Resolution) Stats {
	annStats := linkAnnotations(res)
	edgeStats := linkEdges(res)
	return Stats{
		Attempted: annStats.Attempted + edgeStats.Attempted,
		Resolved:  annStats.Resolved + edgeStats.Resolved,
		Skipped:   annStats.Skipped + edgeStats.Skipped,
	}
}

// FallbackStage links leftover annotations by substring containment.
// Off by default; see NewDefaultChain.
type FallbackStage struct{}

func NewFallbackStage() *FallbackStage { return &FallbackStage{} }

func (s *FallbackStage) Name() string { return "containment-fallback" }

func (s *FallbackStage) Resolve(res *Resolution) Stats {
	return linkByContainment(res)
}

// Resolve is the common entry point: builds a resolution for doc and runs
// the default chain over it.
func Resolve(doc *step.Document, enableFallback bool) (*Resolution, []StageResult) {
	res := NewResolution(doc)
	results := NewDefaultChain(enableFallback).Run(res)
	return res, results
}
