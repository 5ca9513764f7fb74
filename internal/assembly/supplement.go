package assembly

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"stepaas/internal/resolver"
	"stepaas/internal/step"
)

// SupplementResult reports what one auxiliary document contributed.
type SupplementResult struct {
	Document   string
	Matched    *Component // nil when no component matched the filename
	Candidates int        // annotations the document resolved locally
	Added      int        // annotations actually merged (not already present)
	Skipped    bool       // no annotation-bearing statements at all
}

// Supplementer merges annotation data from auxiliary documents into existing
// tree nodes by normalized filename match. Matching is strictly
// filename-based; the content-similarity fallback applies only within a
// single document's own resolution, before merging.
type Supplementer struct {
	reg            *Registry
	enableFallback bool
	log            *zap.Logger
}

func NewSupplementer(reg *Registry, enableFallback bool, log *zap.Logger) *Supplementer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Supplementer{reg: reg, enableFallback: enableFallback, log: log}
}

// SupplementFile extracts and locally resolves one auxiliary document, then
// merges its annotations into the component whose normalized name matches
// the document's base filename. Reprocessing the same document is a no-op.
// A miss is reported through the result, never an error; only unreadable
// files return one.
func (s *Supplementer) SupplementFile(path string, tree *Tree) (SupplementResult, error) {
	result := SupplementResult{Document: path}

	content, err := os.ReadFile(path)
	if err != nil {
		return result, err
	}

	// Cheap pre-scan: skip documents with no annotation-bearing kinds.
	if !step.HasAnnotationData(string(content)) {
		result.Skipped = true
		return result, nil
	}

	doc := step.Extract(path, string(content))
	res, _ := resolver.Resolve(doc, s.enableFallback)

	var candidates []Annotation
	for _, productID := range doc.ProductOrder {
		for _, a := range res.Annotations[productID] {
			candidates = append(candidates, Annotation{Name: a.Name, Description: a.Description})
		}
	}
	result.Candidates = len(candidates)
	if len(candidates) == 0 {
		return result, nil
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	component, ok := s.reg.ByNormalizedName(base)
	if !ok || (tree != nil && tree.Virtual && component == tree.Root) {
		s.log.Debug("no component matches auxiliary document",
			zap.String("document", filepath.Base(path)),
			zap.String("normalized", NormalizeName(base)))
		return result, nil
	}

	for _, a := range candidates {
		if component.AddAnnotation(a) {
			result.Added++
		}
	}
	component.AddAnnotationFile(path)
	result.Matched = component

	s.log.Debug("supplemented component",
		zap.String("component", component.Name),
		zap.String("document", filepath.Base(path)),
		zap.Int("added", result.Added))
	return result, nil
}
