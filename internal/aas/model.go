// Package aas renders the finished assembly tree as a nested
// property/collection structure and packages it with its referenced files.
package aas

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// ValueType is the XSD value type of a property.
type ValueType string

const (
	ValueString ValueType = "xs:string"
	ValueInt    ValueType = "xs:int"
	ValueDouble ValueType = "xs:double"
)

// Element is a node of the submodel element tree.
type Element interface {
	elementIDShort() string
}

// Property is a typed name/value leaf element.
type Property struct {
	ModelType  string    `json:"modelType"`
	IDShort    string    `json:"idShort"`
	ValueType  ValueType `json:"valueType"`
	Value      string    `json:"value"`
	SemanticID string    `json:"semanticId,omitempty"`
}

func (p *Property) elementIDShort() string { return p.IDShort }

// Collection groups elements under one idShort.
type Collection struct {
	ModelType  string    `json:"modelType"`
	IDShort    string    `json:"idShort"`
	SemanticID string    `json:"semanticId,omitempty"`
	Value      []Element `json:"value"`
}

func (c *Collection) elementIDShort() string { return c.IDShort }

// FileRef points at a packaged supplementary file by its internal path.
type FileRef struct {
	ModelType   string `json:"modelType"`
	IDShort     string `json:"idShort"`
	ContentType string `json:"contentType"`
	Value       string `json:"value"`
}

func (f *FileRef) elementIDShort() string { return f.IDShort }

// Submodel is one identified element tree.
type Submodel struct {
	ID       string    `json:"id"`
	IDShort  string    `json:"idShort"`
	Elements []Element `json:"submodelElements"`
}

// Shell is the administration shell referencing its submodels by id.
type Shell struct {
	ID        string   `json:"id"`
	IDShort   string   `json:"idShort"`
	AssetID   string   `json:"globalAssetId"`
	Submodels []string `json:"submodels"`
}

// Environment is the serializable root object.
type Environment struct {
	Shells    []Shell     `json:"assetAdministrationShells"`
	Submodels []*Submodel `json:"submodels"`
}

// NewIRI mints a globally unique identifier under the model's namespace.
func NewIRI(name, kind string) string {
	return fmt.Sprintf("https://%s.com/ids/%s/%s", name, kind, ulid.Make())
}
