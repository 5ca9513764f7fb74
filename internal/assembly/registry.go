package assembly

import (
	"fmt"
	"regexp"
	"strings"

	"stepaas/internal/ident"
	"stepaas/internal/resolver"
	"stepaas/internal/step"
)

var trailingDigitSuffix = regexp.MustCompile(`-\d+$`)

// NormalizeName trims a component or file base name, strips the trailing
// `-<digits>` instance suffix CAD exports append, and uppercases the rest.
// The same rule keys the name index and the auxiliary-document matching.
func NormalizeName(name string) string {
	return strings.ToUpper(trailingDigitSuffix.ReplaceAllString(strings.TrimSpace(name), ""))
}

// StandardPartInfo records why a component was classified as a catalog part.
type StandardPartInfo struct {
	Name        string
	Description string
}

// Registry allocates synthetic identifiers, classifies node kinds and
// maintains the normalized name index used for cross-document matching.
type Registry struct {
	alloc *ident.Allocator

	components []*Component
	byID       map[string]*Component
	byNative   map[step.NativeID]*Component
	nameIndex  map[string]*Component

	standardParts map[string]StandardPartInfo
	seq           int
}

func NewRegistry(alloc *ident.Allocator) *Registry {
	return &Registry{
		alloc:         alloc,
		byID:          make(map[string]*Component),
		byNative:      make(map[step.NativeID]*Component),
		nameIndex:     make(map[string]*Component),
		standardParts: make(map[string]StandardPartInfo),
	}
}

// RegisterProducts creates a component for every resolved product of the
// primary document, in document order. Classification sees the resolved
// annotations and the edge set; a product that parents any edge is an
// assembly no matter what its text says.
func (r *Registry) RegisterProducts(doc *step.Document, res *resolver.Resolution) []*Component {
	parents := make(map[step.NativeID]bool, len(res.Edges))
	for _, e := range res.Edges {
		parents[e.Parent] = true
	}

	created := make([]*Component, 0, len(doc.ProductOrder))
	for _, nativeID := range doc.ProductOrder {
		product := doc.Products[nativeID]

		c := &Component{
			NativeID:    nativeID,
			Name:        product.Name,
			Description: product.Description,
			SourceFile:  doc.Path,
		}
		for _, a := range res.Annotations[nativeID] {
			if !c.HasAnnotation(a.Name, a.Description) {
				c.Annotations = append(c.Annotations, Annotation{Name: a.Name, Description: a.Description})
			}
		}

		c.Kind = Classify(product.Name, product.Description, c.Annotations, parents[nativeID])

		r.seq++
		c.SyntheticID = r.alloc.Allocate(fmt.Sprintf("P%05d", r.seq), "")

		if c.Kind == KindStandardPart {
			r.standardParts[c.SyntheticID] = StandardPartInfo{
				Name:        product.Name,
				Description: product.Description,
			}
		}

		r.components = append(r.components, c)
		r.byID[c.SyntheticID] = c
		r.byNative[nativeID] = c

		// First-registered component wins the index slot; later
		// duplicates stay addressable by synthetic id only.
		key := NormalizeName(c.Name)
		if _, taken := r.nameIndex[key]; !taken {
			r.nameIndex[key] = c
		}

		created = append(created, c)
	}
	return created
}

// Components returns every registered component in registration order.
func (r *Registry) Components() []*Component { return r.components }

// ByID returns the component with the given synthetic id.
func (r *Registry) ByID(syntheticID string) (*Component, bool) {
	c, ok := r.byID[syntheticID]
	return c, ok
}

// ByNativeID returns the component registered for a primary-document
// product id.
func (r *Registry) ByNativeID(id step.NativeID) (*Component, bool) {
	c, ok := r.byNative[id]
	return c, ok
}

// ByNormalizedName looks name up in the index after normalizing it.
func (r *Registry) ByNormalizedName(name string) (*Component, bool) {
	c, ok := r.nameIndex[NormalizeName(name)]
	return c, ok
}

// StandardPart returns the catalog-part info recorded for a synthetic id.
func (r *Registry) StandardPart(syntheticID string) (StandardPartInfo, bool) {
	info, ok := r.standardParts[syntheticID]
	return info, ok
}

// StandardPartCount reports how many components were classified as catalog
// parts.
func (r *Registry) StandardPartCount() int { return len(r.standardParts) }
