package aas

import (
	"os"
	"path/filepath"
	"strconv"

	"stepaas/internal/assembly"
	"stepaas/internal/ident"
	"stepaas/internal/semantic"
	"stepaas/internal/step"
)

const stepContentType = "application/step"

// StoredFile maps an internal package path to its source on disk.
type StoredFile struct {
	Internal string
	Source   string
}

// FileStore collects the referenced files the serializer must package.
type FileStore struct {
	seen  map[string]bool
	files []StoredFile
}

func NewFileStore() *FileStore {
	return &FileStore{seen: make(map[string]bool)}
}

// Add registers a source file under an internal path. Duplicate internal
// paths keep the first registration.
func (fs *FileStore) Add(internal, source string) {
	if fs.seen[internal] {
		return
	}
	fs.seen[internal] = true
	fs.files = append(fs.files, StoredFile{Internal: internal, Source: source})
}

// Files returns stored files in registration order.
func (fs *FileStore) Files() []StoredFile { return fs.files }

// Builder turns a finished assembly tree into an Environment. Every emitted
// idShort goes through the shared identifier allocator so repeated component
// names stay distinct; semantic ids come from the taxonomy dictionary.
type Builder struct {
	alloc *ident.Allocator
	dict  *semantic.Dictionary
	files *FileStore
}

func NewBuilder(alloc *ident.Allocator, dict *semantic.Dictionary) *Builder {
	return &Builder{
		alloc: alloc,
		dict:  dict,
		files: NewFileStore(),
	}
}

// Files exposes the referenced files collected while building.
func (b *Builder) Files() *FileStore { return b.files }

func (b *Builder) property(label string, vt ValueType, value, semanticLabel string) *Property {
	semanticID, _ := b.dict.Lookup(semanticLabel)
	return &Property{
		ModelType:  "Property",
		IDShort:    b.alloc.Allocate(label, ""),
		ValueType:  vt,
		Value:      value,
		SemanticID: semanticID,
	}
}

func (b *Builder) collection(label string, elements []Element, semanticLabel, context string) *Collection {
	semanticID, _ := b.dict.Lookup(semanticLabel)
	return &Collection{
		ModelType:  "SubmodelElementCollection",
		IDShort:    b.alloc.Allocate(label, context),
		SemanticID: semanticID,
		Value:      elements,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// componentElements renders the per-component properties. Geometry is
// attached at the root level only.
func (b *Builder) componentElements(c *assembly.Component, level int) []Element {
	elements := []Element{
		b.property("Product_ID", ValueString, c.SyntheticID, "Product_ID"),
		b.property("Type", ValueString, string(c.Kind), "Type"),
		b.property("Level", ValueInt, strconv.Itoa(level), "Level"),
		b.property("Source_File", ValueString, filepath.Base(c.SourceFile), "Source_File"),
	}

	if c.Kind == assembly.KindStandardPart {
		elements = append(elements, b.property("Standard_Type", ValueString, string(assembly.KindStandardPart), "Standard_Type"))
	}

	if annotations := b.annotationElements(c); annotations != nil {
		elements = append(elements, b.collection("Annotations", annotations, "Annotations", c.SyntheticID))
	}

	if refs := b.fileElements(c); refs != nil {
		elements = append(elements, b.collection("Files", refs, "Files", c.SyntheticID))
	}

	if level == 0 && c.Geometry != nil {
		if geo := b.geometryElements(c); geo != nil {
			elements = append(elements, b.collection("Geometry", geo, "Geometry", c.SyntheticID))
		}
	}

	return elements
}

func (b *Builder) annotationElements(c *assembly.Component) []Element {
	var elements []Element
	for _, ann := range c.Annotations {
		if ann.Name == "" || ann.Description == "" {
			continue
		}
		elements = append(elements, b.property(ann.Name, ValueString, ann.Description, ann.Name))
	}
	return elements
}

func (b *Builder) fileElements(c *assembly.Component) []Element {
	var elements []Element
	for i, source := range c.AnnotationFiles {
		if _, err := os.Stat(source); err != nil {
			continue
		}
		base := filepath.Base(source)
		ext := filepath.Ext(base)
		safe := ident.Sanitize(base[:len(base)-len(ext)])
		internal := "/aasx/stp/annotations/" + safe + ext
		b.files.Add(internal, source)
		elements = append(elements, &FileRef{
			ModelType:   "File",
			IDShort:     b.alloc.Allocate("AnnotationFile_"+strconv.Itoa(i), c.SyntheticID),
			ContentType: stepContentType,
			Value:       internal,
		})
	}
	return elements
}

func (b *Builder) geometryElements(c *assembly.Component) []Element {
	geo := c.Geometry
	var elements []Element

	if geo.Volume > 0 {
		elements = append(elements, b.property("Volume", ValueDouble, formatFloat(geo.Volume), "Volume"))
	}
	if geo.SurfaceArea > 0 {
		elements = append(elements, b.property("Surface_Area", ValueDouble, formatFloat(geo.SurfaceArea), "Surface_Area"))
	}

	com := geo.CenterOfMass
	elements = append(elements, b.collection("Center_of_Mass", []Element{
		b.property("X", ValueDouble, formatFloat(com[0]), "Center of mass"),
		b.property("Y", ValueDouble, formatFloat(com[1]), "Center of mass"),
		b.property("Z", ValueDouble, formatFloat(com[2]), "Center of mass"),
	}, "Center of mass", c.SyntheticID))

	box := geo.BoundingBox
	axis := func(label string, v [3]float64, semanticLabel string) Element {
		return b.collection(label, []Element{
			b.property("X", ValueDouble, formatFloat(v[0]), semanticLabel),
			b.property("Y", ValueDouble, formatFloat(v[1]), semanticLabel),
			b.property("Z", ValueDouble, formatFloat(v[2]), semanticLabel),
		}, semanticLabel, c.SyntheticID)
	}
	elements = append(elements, b.collection("Bounding_Box", []Element{
		axis("Min", box.Min, "Bounding_Box_Min"),
		axis("Max", box.Max, "Bounding_Box_Max"),
		axis("Range", box.Range, "Bounding_Box_Range"),
	}, "Bounding_Box", c.SyntheticID))

	return elements
}

// componentCollection renders a component with its subtree.
func (b *Builder) componentCollection(c *assembly.Component, level int) *Collection {
	elements := b.componentElements(c, level)

	if len(c.Children) > 0 {
		var children []Element
		for _, child := range c.Children {
			children = append(children, b.componentCollection(child, level+1))
		}
		elements = append(elements, b.collection("Components", children, "Components", c.SyntheticID))
	}

	return b.collection(c.Name, elements, "Component", c.SyntheticID)
}

// BuildEnvironment renders the whole tree plus the primary document's header
// metadata into a serializable environment.
func (b *Builder) BuildEnvironment(tree *assembly.Tree, header step.Header, primaryPath, modelName string) *Environment {
	root := tree.Root

	rootElements := b.componentElements(root, 0)
	rootElements = append(rootElements,
		b.property("Main_Assembly_Name", ValueString, filepath.Base(primaryPath), "Name"))
	if header.Author != "" {
		rootElements = append(rootElements,
			b.property("Main_Assembly_Author", ValueString, header.Author, "Author"))
	}
	if header.Organization != "" {
		rootElements = append(rootElements,
			b.property("Main_Assembly_Organization", ValueString, header.Organization, "Organization"))
	}

	if len(root.Children) > 0 {
		var children []Element
		for _, child := range root.Children {
			children = append(children, b.componentCollection(child, 1))
		}
		rootElements = append(rootElements, b.collection("Components", children, "Components", root.SyntheticID))
	}

	submodel := &Submodel{
		ID:      NewIRI(modelName, "sm"),
		IDShort: "AssemblyStructure",
		Elements: []Element{
			b.collection("Main_Assembly", rootElements, "Main_Assembly", root.SyntheticID),
		},
	}

	shell := Shell{
		ID:        NewIRI(modelName, "aas"),
		IDShort:   ident.Sanitize(modelName),
		AssetID:   NewIRI(modelName, "asset"),
		Submodels: []string{submodel.ID},
	}

	return &Environment{
		Shells:    []Shell{shell},
		Submodels: []*Submodel{submodel},
	}
}
