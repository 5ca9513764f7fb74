package assembly

import (
	"stepaas/internal/ident"
	"stepaas/internal/resolver"
	"stepaas/internal/step"
)

// VirtualRootName labels the root synthesized when the edge set does not
// yield a single unambiguous top-level product.
const VirtualRootName = "Assembly_Root"

// VirtualSource marks components that do not originate from any document.
const VirtualSource = "virtual"

// Conflict records an edge rejected because its child already had a parent.
// First edge in document order wins.
type Conflict struct {
	Child          string // synthetic id
	KeptParent     string
	RejectedParent string
}

// Tree is the built assembly hierarchy. Root is always non-nil, the
// structure is finite and acyclic, and every attached node is owned by
// exactly one parent.
type Tree struct {
	Root      *Component
	Virtual   bool
	Conflicts []Conflict
}

// BuildTree collapses the resolved edges into a single-rooted tree. Each
// child accepts exactly one parent; conflicting edges are recorded, never
// fatal. When no unique top-level product exists, a virtual root adopts
// every component that is nobody's child.
func BuildTree(reg *Registry, edges []resolver.Edge, alloc *ident.Allocator) *Tree {
	tree := &Tree{}

	isParent := make(map[step.NativeID]bool)
	isChild := make(map[step.NativeID]bool)

	for _, e := range edges {
		parent, ok := reg.ByNativeID(e.Parent)
		if !ok {
			continue
		}
		child, ok := reg.ByNativeID(e.Child)
		if !ok {
			continue
		}
		if parent == child {
			// A self-edge can never be part of a tree.
			continue
		}
		if existing := child.Parent(); existing != nil {
			if existing != parent {
				tree.Conflicts = append(tree.Conflicts, Conflict{
					Child:          child.SyntheticID,
					KeptParent:     existing.SyntheticID,
					RejectedParent: parent.SyntheticID,
				})
			}
			continue
		}
		if isAncestor(parent, child) {
			// Attaching would close a cycle; drop the edge.
			tree.Conflicts = append(tree.Conflicts, Conflict{
				Child:          child.SyntheticID,
				RejectedParent: parent.SyntheticID,
			})
			continue
		}
		parent.AddChild(child)
		isParent[e.Parent] = true
		isChild[e.Child] = true
	}

	var rootCandidates []*Component
	for _, c := range reg.Components() {
		if isParent[c.NativeID] && !isChild[c.NativeID] {
			rootCandidates = append(rootCandidates, c)
		}
	}

	if len(rootCandidates) == 1 {
		tree.Root = rootCandidates[0]
		return tree
	}

	// Ambiguous, cyclic or edge-free input: synthesize a virtual root and
	// attach everything that has no parent.
	root := &Component{
		SyntheticID: alloc.Allocate(VirtualRootName, ""),
		Name:        VirtualRootName,
		SourceFile:  VirtualSource,
		Kind:        KindAssembly,
	}
	for _, c := range reg.Components() {
		if c.Parent() == nil {
			root.AddChild(c)
		}
	}
	tree.Root = root
	tree.Virtual = true
	return tree
}

// isAncestor reports whether node appears on the parent chain of candidate.
func isAncestor(node, candidate *Component) bool {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if p == candidate {
			return true
		}
	}
	return false
}
