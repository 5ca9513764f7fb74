// Package assembly holds the component registry, the assembly tree builder
// and the annotation supplementer.
package assembly

import (
	"stepaas/internal/geometry"
	"stepaas/internal/step"
)

// Kind classifies a component node.
type Kind string

const (
	KindAssembly     Kind = "ASSEMBLY"
	KindPart         Kind = "PART"
	KindStandardPart Kind = "STANDARD_PART"
)

// Annotation is a resolved free-text name/description pair attached to a
// component. Lists of annotations never carry duplicate value pairs.
type Annotation struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Component is a part or sub-assembly with its annotations. Children are
// exclusively owned by their parent; the parent pointer exists for upward
// traversal only.
type Component struct {
	// SyntheticID is run-scoped and allocated by the identifier
	// allocator. Native ids are not stable across documents and never
	// leak into output identifiers.
	SyntheticID string
	NativeID    step.NativeID
	Name        string
	Description string
	SourceFile  string
	Kind        Kind

	Annotations     []Annotation
	AnnotationFiles []string

	// Geometry is populated for the tree root only.
	Geometry *geometry.Measurement

	Children []*Component
	parent   *Component
}

// Parent returns the owning component, or nil for a root.
func (c *Component) Parent() *Component { return c.parent }

// AddChild attaches child to c and sets its back-reference.
func (c *Component) AddChild(child *Component) {
	child.parent = c
	c.Children = append(c.Children, child)
}

// IsLeaf reports whether the component has no children.
func (c *Component) IsLeaf() bool { return len(c.Children) == 0 }

// HasAnnotation reports whether an identical (name, description) pair is
// already present.
func (c *Component) HasAnnotation(name, description string) bool {
	for _, a := range c.Annotations {
		if a.Name == name && a.Description == description {
			return true
		}
	}
	return false
}

// AddAnnotation appends the annotation unless an identical value pair is
// already present. Reports whether it was added.
func (c *Component) AddAnnotation(a Annotation) bool {
	if c.HasAnnotation(a.Name, a.Description) {
		return false
	}
	c.Annotations = append(c.Annotations, a)
	return true
}

// AddAnnotationFile records path as an annotation source. Reports whether it
// was new.
func (c *Component) AddAnnotationFile(path string) bool {
	for _, p := range c.AnnotationFiles {
		if p == path {
			return false
		}
	}
	c.AnnotationFiles = append(c.AnnotationFiles, path)
	return true
}

// Walk visits c and every descendant depth first.
func (c *Component) Walk(visit func(*Component, int)) {
	c.walk(visit, 0)
}

func (c *Component) walk(visit func(*Component, int), depth int) {
	visit(c, depth)
	for _, child := range c.Children {
		child.walk(visit, depth+1)
	}
}
