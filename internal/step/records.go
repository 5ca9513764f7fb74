package step

// NativeID is the statement number (`#123`) of an entity within one document.
// Native ids are only meaningful inside the document they were extracted from.
type NativeID int

// Product is a named item definition (`PRODUCT`).
type Product struct {
	ID          NativeID
	Name        string
	Description string
}

// Annotation is a free-text name/description pair
// (`DESCRIPTIVE_REPRESENTATION_ITEM`).
type Annotation struct {
	ID          NativeID
	Name        string
	Description string
}

// Representation groups annotation items under a context (`REPRESENTATION`).
type Representation struct {
	ID         NativeID
	Name       string
	ItemRefs   []NativeID
	ContextRef NativeID
}

// PropertyDefinition attaches a property to a product definition
// (`PROPERTY_DEFINITION`).
type PropertyDefinition struct {
	ID            NativeID
	Name          string
	Description   string
	DefinitionRef NativeID
}

// PropertyDefinitionRepresentation links a property definition to a
// representation (`PROPERTY_DEFINITION_REPRESENTATION`).
type PropertyDefinitionRepresentation struct {
	ID                NativeID
	DefinitionRef     NativeID
	RepresentationRef NativeID
}

// ProductDefinition is one view of a product version (`PRODUCT_DEFINITION`).
type ProductDefinition struct {
	ID           NativeID
	Name         string
	Description  string
	FormationRef NativeID
	ContextRef   NativeID
}

// Formation is a product version (`PRODUCT_DEFINITION_FORMATION_WITH_SPECIFIED_SOURCE`).
type Formation struct {
	ID          NativeID
	Name        string
	Description string
	ProductRef  NativeID
}

// Usage asserts that one product definition is used as a component within
// another (`NEXT_ASSEMBLY_USAGE_OCCURRENCE`).
type Usage struct {
	ID          NativeID
	Name        string
	Description string
	RelatingRef NativeID // parent product definition
	RelatedRef  NativeID // child product definition
}

// Header carries the document metadata from the Part 21 header section.
type Header struct {
	Description         string
	ImplementationLevel string
	Name                string
	Timestamp           string
	Author              string
	Organization        string
	PreprocessorVersion string
	OriginatingSystem   string
	Authorisation       string
	Schema              string
}

// Document is the typed record set extracted from one exchange file.
// Order slices preserve the order statements appear in the document; the
// resolver and registry depend on that order being stable.
type Document struct {
	Path   string
	Header Header

	Products                 map[NativeID]Product
	ProductOrder             []NativeID
	Annotations              map[NativeID]Annotation
	Representations          map[NativeID]Representation
	PropertyDefinitions      map[NativeID]PropertyDefinition
	PropertyDefinitionReprs  map[NativeID]PropertyDefinitionRepresentation
	ProductDefinitions       map[NativeID]ProductDefinition
	Formations               map[NativeID]Formation
	Usages                   map[NativeID]Usage
	UsageOrder               []NativeID
}

func newDocument(path string) *Document {
	return &Document{
		Path:                    path,
		Products:                make(map[NativeID]Product),
		Annotations:             make(map[NativeID]Annotation),
		Representations:         make(map[NativeID]Representation),
		PropertyDefinitions:     make(map[NativeID]PropertyDefinition),
		PropertyDefinitionReprs: make(map[NativeID]PropertyDefinitionRepresentation),
		ProductDefinitions:      make(map[NativeID]ProductDefinition),
		Formations:              make(map[NativeID]Formation),
		Usages:                  make(map[NativeID]Usage),
	}
}

// HasAnnotationData reports whether the document carries any statement kind
// that can contribute annotations. Used as a cheap pre-scan before the full
// extraction of auxiliary documents.
func HasAnnotationData(content string) bool {
	return containsToken(content, tokenAnnotation) || containsToken(content, tokenPropDefRepr)
}
