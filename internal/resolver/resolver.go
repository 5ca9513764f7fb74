// Package resolver composes the record maps of one document into two derived
// relations: product -> annotations and parent-product -> child-product
// edges. Every join is best effort; a broken reference hop drops only the
// affected item and is surfaced through stats counters.
package resolver

import (
	"sort"
	"strings"

	"stepaas/internal/step"
)

// ProductAnnotations maps product native ids to their resolved annotations,
// in representation item order.
type ProductAnnotations map[step.NativeID][]step.Annotation

// Edge is a resolved parent/child relationship between two products.
type Edge struct {
	Parent     step.NativeID
	Child      step.NativeID
	ParentName string
	ChildName  string
}

// Stats counts resolution outcomes for one stage.
type Stats struct {
	Attempted int
	Resolved  int
	Skipped   int
}

// Resolution is the mutable result a chain of stages operates on.
type Resolution struct {
	Doc         *step.Document
	Annotations ProductAnnotations
	Edges       []Edge

	// Unlinked holds annotations the reference chain could not attach to
	// any product, in ascending native id order. Input for the opt-in
	// fallback stage.
	Unlinked []step.Annotation
}

// NewResolution prepares an empty resolution for one document.
func NewResolution(doc *step.Document) *Resolution {
	return &Resolution{
		Doc:         doc,
		Annotations: make(ProductAnnotations),
	}
}

// definitionJoin is the shared product-definition -> formation -> product
// composition used by both derived relations.
type definitionJoin struct {
	defToFormation     map[step.NativeID]step.NativeID
	formationToProduct map[step.NativeID]step.NativeID
	products           map[step.NativeID]step.Product
}

func newDefinitionJoin(doc *step.Document) *definitionJoin {
	j := &definitionJoin{
		defToFormation:     make(map[step.NativeID]step.NativeID, len(doc.ProductDefinitions)),
		formationToProduct: make(map[step.NativeID]step.NativeID, len(doc.Formations)),
		products:           doc.Products,
	}
	for id, def := range doc.ProductDefinitions {
		j.defToFormation[id] = def.FormationRef
	}
	for id, f := range doc.Formations {
		j.formationToProduct[id] = f.ProductRef
	}
	return j
}

// product resolves a product definition reference to a known product id.
// Returns false when any hop is missing.
func (j *definitionJoin) product(defRef step.NativeID) (step.NativeID, bool) {
	formationRef, ok := j.defToFormation[defRef]
	if !ok {
		return 0, false
	}
	productRef, ok := j.formationToProduct[formationRef]
	if !ok {
		return 0, false
	}
	if _, known := j.products[productRef]; !known {
		return 0, false
	}
	return productRef, true
}

// linkAnnotations chains representation -> annotation items,
// property-definition-representation -> representation,
// property-definition -> product-definition and the definition join into a
// single product -> annotations multimap.
func linkAnnotations(res *Resolution) Stats {
	doc := res.Doc
	var stats Stats

	reprToAnnotations := make(map[step.NativeID][]step.NativeID)
	for id, repr := range doc.Representations {
		for _, itemRef := range repr.ItemRefs {
			if _, ok := doc.Annotations[itemRef]; ok {
				reprToAnnotations[id] = append(reprToAnnotations[id], itemRef)
			}
		}
	}

	propDefToProdDef := make(map[step.NativeID]step.NativeID, len(doc.PropertyDefinitions))
	for id, pd := range doc.PropertyDefinitions {
		propDefToProdDef[id] = pd.DefinitionRef
	}

	join := newDefinitionJoin(doc)
	linked := make(map[step.NativeID]bool, len(doc.Annotations))

	// Deterministic order so the annotation lists are stable across runs.
	pdrIDs := sortedIDs(doc.PropertyDefinitionReprs)
	for _, pdrID := range pdrIDs {
		pdr := doc.PropertyDefinitionReprs[pdrID]
		annIDs, ok := reprToAnnotations[pdr.RepresentationRef]
		if !ok {
			continue
		}
		stats.Attempted++
		prodDefRef, ok := propDefToProdDef[pdr.DefinitionRef]
		if !ok {
			stats.Skipped++
			continue
		}
		productID, ok := join.product(prodDefRef)
		if !ok {
			stats.Skipped++
			continue
		}
		for _, annID := range annIDs {
			res.Annotations[productID] = append(res.Annotations[productID], doc.Annotations[annID])
			linked[annID] = true
		}
		stats.Resolved++
	}

	for _, annID := range sortedIDs(doc.Annotations) {
		if !linked[annID] {
			res.Unlinked = append(res.Unlinked, doc.Annotations[annID])
		}
	}
	return stats
}

// linkEdges resolves every usage record through the definition join. An edge
// is emitted only when both endpoints resolve to a known product.
func linkEdges(res *Resolution) Stats {
	doc := res.Doc
	join := newDefinitionJoin(doc)
	var stats Stats

	for _, usageID := range doc.UsageOrder {
		usage := doc.Usages[usageID]
		stats.Attempted++
		parentID, parentOK := join.product(usage.RelatingRef)
		childID, childOK := join.product(usage.RelatedRef)
		if !parentOK || !childOK {
			stats.Skipped++
			continue
		}
		res.Edges = append(res.Edges, Edge{
			Parent:     parentID,
			Child:      childID,
			ParentName: doc.Products[parentID].Name,
			ChildName:  doc.Products[childID].Name,
		})
		stats.Resolved++
	}
	return stats
}

// linkByContainment attaches still-unlinked annotations to products by
// case-insensitive substring containment between annotation text and product
// name. Deliberately lower precision than the reference chain; only ever run
// as an explicit opt-in.
func linkByContainment(res *Resolution) Stats {
	doc := res.Doc
	var stats Stats
	var remaining []step.Annotation

	productIDs := sortedIDs(doc.Products)
	for _, ann := range res.Unlinked {
		stats.Attempted++
		annName := strings.ToLower(ann.Name)
		annDesc := strings.ToLower(ann.Description)
		matched := false
		for _, productID := range productIDs {
			product := doc.Products[productID]
			name := strings.ToLower(product.Name)
			if name == "" {
				continue
			}
			if strings.Contains(annName, name) || strings.Contains(annDesc, name) || strings.Contains(name, annName) {
				if !containsAnnotation(res.Annotations[productID], ann) {
					res.Annotations[productID] = append(res.Annotations[productID], ann)
				}
				matched = true
			}
		}
		if matched {
			stats.Resolved++
		} else {
			stats.Skipped++
			remaining = append(remaining, ann)
		}
	}
	res.Unlinked = remaining
	return stats
}

func containsAnnotation(anns []step.Annotation, ann step.Annotation) bool {
	for _, a := range anns {
		if a.Name == ann.Name && a.Description == ann.Description {
			return true
		}
	}
	return false
}

func sortedIDs[V any](m map[step.NativeID]V) []step.NativeID {
	ids := make([]step.NativeID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
