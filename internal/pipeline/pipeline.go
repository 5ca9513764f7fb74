// Package pipeline orchestrates a full conversion run: primary document
// first, auxiliary documents in discovery order, then the assembly tree and
// root geometry. Everything short of a missing primary document or an empty
// product set degrades to a valid, less complete result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"stepaas/internal/assembly"
	"stepaas/internal/crawler"
	"stepaas/internal/geometry"
	"stepaas/internal/ident"
	"stepaas/internal/resolver"
	"stepaas/internal/step"
)

// Structural failures. Everything else is surfaced through Report counters.
var (
	ErrNoDocuments = errors.New("no exchange documents found")
	ErrNoPrimary   = errors.New("primary document not found")
	ErrNoProducts  = errors.New("no products extracted from primary document")
)

// Options configure one run.
type Options struct {
	InputDir string
	// Primary names the main assembly file relative to InputDir. It must
	// be explicit; there is no heuristic fallback.
	Primary string

	EnableFallback      bool
	ExtractRootGeometry bool
}

// Report summarizes a run for callers and for the run log.
type Report struct {
	DocumentsFound    int
	AnnotationDocs    []string
	UnmatchedDocs     []string
	SkippedDocs       []string
	Components        int
	Leaves            int
	Annotations       int
	StandardParts     int
	Edges             int
	EdgesSkipped      int
	Conflicts         []assembly.Conflict
	VirtualRoot       bool
	StageResults      []resolver.StageResult
	SupplementResults []assembly.SupplementResult
}

// Result is a finished run: the tree, the registry behind it, the primary
// header, and the run report.
type Result struct {
	Tree     *assembly.Tree
	Registry *assembly.Registry
	Header   step.Header
	Primary  string
	Report   Report
}

// Converter runs the batch conversion. The identifier allocator it owns is
// the only state shared across the whole run.
type Converter struct {
	opts     Options
	alloc    *ident.Allocator
	measurer geometry.Measurer
	log      *zap.Logger
}

func New(opts Options, measurer geometry.Measurer, log *zap.Logger) *Converter {
	if measurer == nil {
		measurer = geometry.Disabled()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Converter{
		opts:     opts,
		alloc:    ident.NewAllocator(),
		measurer: measurer,
		log:      log,
	}
}

// Allocator exposes the run's identifier allocator so downstream emitters
// (model building, serialization) share the same uniqueness ledger.
func (c *Converter) Allocator() *ident.Allocator { return c.alloc }

// Run processes the input directory and returns the finished tree.
func (c *Converter) Run(ctx context.Context) (*Result, error) {
	if c.opts.Primary == "" {
		return nil, ErrNoPrimary
	}

	docs, err := crawler.FindDocuments(c.opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("scan input directory: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	primaryPath := filepath.Join(c.opts.InputDir, c.opts.Primary)
	found := false
	for _, d := range docs {
		if crawler.SamePath(d, primaryPath) {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNoPrimary, primaryPath)
	}

	result := &Result{Primary: primaryPath}
	result.Report.DocumentsFound = len(docs)

	if err := c.processPrimary(primaryPath, result); err != nil {
		return nil, err
	}
	reg, tree := result.Registry, result.Tree

	c.supplement(docs, primaryPath, reg, tree, &result.Report)

	if c.opts.ExtractRootGeometry && tree.Root.SourceFile != assembly.VirtualSource {
		c.measureRoot(ctx, tree.Root)
	}

	c.finishReport(reg, &result.Report)

	c.log.Info("conversion complete",
		zap.Int("documents", result.Report.DocumentsFound),
		zap.Int("components", result.Report.Components),
		zap.Int("edges", result.Report.Edges),
		zap.Int("annotations", result.Report.Annotations),
		zap.Bool("virtual_root", result.Report.VirtualRoot),
		zap.String("root", tree.Root.Name))
	return result, nil
}

func (c *Converter) processPrimary(primaryPath string, result *Result) error {
	c.log.Info("processing primary document", zap.String("document", filepath.Base(primaryPath)))

	doc, err := step.ExtractFromFile(primaryPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoPrimary, err)
	}
	if len(doc.Products) == 0 {
		return ErrNoProducts
	}
	result.Header = doc.Header
	report := &result.Report

	res, stages := resolver.Resolve(doc, c.opts.EnableFallback)
	report.StageResults = stages
	for _, s := range stages {
		c.log.Debug("resolver stage",
			zap.String("stage", s.Stage),
			zap.Int("attempted", s.Stats.Attempted),
			zap.Int("resolved", s.Stats.Resolved),
			zap.Int("skipped", s.Stats.Skipped))
	}

	reg := assembly.NewRegistry(c.alloc)
	reg.RegisterProducts(doc, res)

	tree := assembly.BuildTree(reg, res.Edges, c.alloc)
	report.Edges = len(res.Edges)
	for _, s := range stages {
		report.EdgesSkipped += s.Stats.Skipped
	}
	report.Conflicts = tree.Conflicts
	report.VirtualRoot = tree.Virtual

	for _, conflict := range tree.Conflicts {
		c.log.Warn("conflicting parent edge dropped",
			zap.String("child", conflict.Child),
			zap.String("kept", conflict.KeptParent),
			zap.String("rejected", conflict.RejectedParent))
	}
	result.Registry = reg
	result.Tree = tree
	return nil
}

func (c *Converter) supplement(docs []string, primaryPath string, reg *assembly.Registry, tree *assembly.Tree, report *Report) {
	supplementer := assembly.NewSupplementer(reg, c.opts.EnableFallback, c.log)

	for _, docPath := range docs {
		if crawler.SamePath(docPath, primaryPath) {
			continue
		}
		result, err := supplementer.SupplementFile(docPath, tree)
		if err != nil {
			c.log.Warn("skipping unreadable document",
				zap.String("document", filepath.Base(docPath)), zap.Error(err))
			report.SkippedDocs = append(report.SkippedDocs, docPath)
			continue
		}
		report.SupplementResults = append(report.SupplementResults, result)
		if result.Skipped {
			continue
		}
		report.AnnotationDocs = append(report.AnnotationDocs, docPath)
		if result.Matched == nil && result.Candidates > 0 {
			report.UnmatchedDocs = append(report.UnmatchedDocs, docPath)
		}
	}
}

func (c *Converter) measureRoot(ctx context.Context, root *assembly.Component) {
	m, err := c.measurer.Measure(ctx, root.SourceFile)
	if err != nil {
		c.log.Warn("geometry measurement failed", zap.Error(err))
		return
	}
	if m == nil {
		c.log.Debug("no geometry available for root")
		return
	}
	root.Geometry = m
}

func (c *Converter) finishReport(reg *assembly.Registry, report *Report) {
	report.Components = len(reg.Components())
	report.StandardParts = reg.StandardPartCount()
	for _, comp := range reg.Components() {
		report.Annotations += len(comp.Annotations)
		if comp.IsLeaf() {
			report.Leaves++
		}
	}
}
