package step

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Statement tokens used for cheap presence checks before running the full
// pattern. Documents regularly omit most kinds; skipping the regex entirely
// keeps extraction near-constant for them.
const (
	tokenProduct     = "PRODUCT"
	tokenAnnotation  = "DESCRIPTIVE_REPRESENTATION_ITEM"
	tokenRepr        = "REPRESENTATION"
	tokenPropDefRepr = "PROPERTY_DEFINITION_REPRESENTATION"
	tokenPropDef     = "PROPERTY_DEFINITION"
	tokenProdDef     = "PRODUCT_DEFINITION"
	tokenFormation   = "PRODUCT_DEFINITION_FORMATION_WITH_SPECIFIED_SOURCE"
	tokenUsage       = "NEXT_ASSEMBLY_USAGE_OCCURRENCE"
)

// Statements may span multiple lines, so every pattern runs in dotall mode
// and anchors on the closing `;` instead of line ends. A statement the
// pattern cannot match (vendor extensions, unbalanced quotes) is simply not
// captured; partial extraction beats total failure here.
var (
	reFileDescription = regexp.MustCompile(`(?s)FILE_DESCRIPTION\s*\(\s*(.*?)\s*\)\s*;`)
	reFileName        = regexp.MustCompile(`(?s)FILE_NAME\s*\(\s*(.*?)\s*\)\s*;`)
	reFileSchema      = regexp.MustCompile(`(?s)FILE_SCHEMA\s*\(\s*(.*?)\s*\)\s*;`)
	reQuoted          = regexp.MustCompile(`['"](.*?)['"]`)
	reRef             = regexp.MustCompile(`#(\d+)`)

	reProduct   = regexp.MustCompile(`(?s)#(\d+)\s*=\s*PRODUCT\s*\(\s*['"](.*?)['"],\s*['"](.*?)['"].*?\)\s*;`)
	reAnnot     = regexp.MustCompile(`(?s)#(\d+)\s*=\s*DESCRIPTIVE_REPRESENTATION_ITEM\s*\(\s*['"](.*?)['"],\s*['"](.*?)['"].*?\)\s*;`)
	reRepr      = regexp.MustCompile(`(?s)#(\d+)\s*=\s*REPRESENTATION\s*\(\s*['"](.*?)['"],\s*\((.*?)\),\s*#(\d+)\)\s*;`)
	rePropRepr  = regexp.MustCompile(`(?s)#(\d+)\s*=\s*PROPERTY_DEFINITION_REPRESENTATION\s*\(\s*#(\d+),\s*#(\d+)\)\s*;`)
	rePropDef   = regexp.MustCompile(`(?s)#(\d+)\s*=\s*PROPERTY_DEFINITION\s*\(\s*['"](.*?)['"],\s*['"](.*?)['"],\s*#(\d+)\)\s*;`)
	reProdDef   = regexp.MustCompile(`(?s)#(\d+)\s*=\s*PRODUCT_DEFINITION\s*\(\s*['"](.*?)['"],\s*['"](.*?)['"],\s*#(\d+),\s*#(\d+)\)\s*;`)
	reFormation = regexp.MustCompile(`(?s)#(\d+)\s*=\s*PRODUCT_DEFINITION_FORMATION_WITH_SPECIFIED_SOURCE\s*\(\s*['"](.*?)['"],\s*['"](.*?)['"],\s*#(\d+),.*?\)\s*;`)
	reUsage     = regexp.MustCompile(`(?s)#(\d+)\s*=\s*NEXT_ASSEMBLY_USAGE_OCCURRENCE\s*\(\s*['"](.*?)['"],\s*['"](.*?)['"],\s*#(\d+),\s*#(\d+),.*?\)\s*;`)
)

func containsToken(content, token string) bool {
	return strings.Contains(content, token)
}

// ExtractFromFile reads and extracts a single exchange document.
func ExtractFromFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	return Extract(path, string(content)), nil
}

// Extract tokenizes raw document text into typed records. Absent statement
// kinds yield empty maps, never errors.
func Extract(path, content string) *Document {
	doc := newDocument(path)
	doc.Header = extractHeader(content)

	if containsToken(content, tokenProduct) {
		for _, m := range reProduct.FindAllStringSubmatch(content, -1) {
			id := nativeID(m[1])
			if _, dup := doc.Products[id]; dup {
				continue
			}
			doc.Products[id] = Product{
				ID:          id,
				Name:        strings.TrimSpace(m[2]),
				Description: strings.TrimSpace(m[3]),
			}
			doc.ProductOrder = append(doc.ProductOrder, id)
		}
	}

	if containsToken(content, tokenAnnotation) {
		for _, m := range reAnnot.FindAllStringSubmatch(content, -1) {
			id := nativeID(m[1])
			doc.Annotations[id] = Annotation{
				ID:          id,
				Name:        strings.TrimSpace(m[2]),
				Description: strings.TrimSpace(m[3]),
			}
		}
	}

	if containsToken(content, tokenRepr) {
		for _, m := range reRepr.FindAllStringSubmatch(content, -1) {
			id := nativeID(m[1])
			doc.Representations[id] = Representation{
				ID:         id,
				Name:       strings.TrimSpace(m[2]),
				ItemRefs:   refList(m[3]),
				ContextRef: nativeID(m[4]),
			}
		}
	}

	if containsToken(content, tokenPropDefRepr) {
		for _, m := range rePropRepr.FindAllStringSubmatch(content, -1) {
			id := nativeID(m[1])
			doc.PropertyDefinitionReprs[id] = PropertyDefinitionRepresentation{
				ID:                id,
				DefinitionRef:     nativeID(m[2]),
				RepresentationRef: nativeID(m[3]),
			}
		}
	}

	if containsToken(content, tokenPropDef) {
		for _, m := range rePropDef.FindAllStringSubmatch(content, -1) {
			id := nativeID(m[1])
			doc.PropertyDefinitions[id] = PropertyDefinition{
				ID:            id,
				Name:          strings.TrimSpace(m[2]),
				Description:   strings.TrimSpace(m[3]),
				DefinitionRef: nativeID(m[4]),
			}
		}
	}

	if containsToken(content, tokenProdDef) {
		for _, m := range reProdDef.FindAllStringSubmatch(content, -1) {
			id := nativeID(m[1])
			doc.ProductDefinitions[id] = ProductDefinition{
				ID:           id,
				Name:         strings.TrimSpace(m[2]),
				Description:  strings.TrimSpace(m[3]),
				FormationRef: nativeID(m[4]),
				ContextRef:   nativeID(m[5]),
			}
		}
	}

	if containsToken(content, tokenFormation) {
		for _, m := range reFormation.FindAllStringSubmatch(content, -1) {
			id := nativeID(m[1])
			doc.Formations[id] = Formation{
				ID:          id,
				Name:        strings.TrimSpace(m[2]),
				Description: strings.TrimSpace(m[3]),
				ProductRef:  nativeID(m[4]),
			}
		}
	}

	if containsToken(content, tokenUsage) {
		for _, m := range reUsage.FindAllStringSubmatch(content, -1) {
			id := nativeID(m[1])
			if _, dup := doc.Usages[id]; dup {
				continue
			}
			doc.Usages[id] = Usage{
				ID:          id,
				Name:        strings.TrimSpace(m[2]),
				Description: strings.TrimSpace(m[3]),
				RelatingRef: nativeID(m[4]),
				RelatedRef:  nativeID(m[5]),
			}
			doc.UsageOrder = append(doc.UsageOrder, id)
		}
	}

	return doc
}

func extractHeader(content string) Header {
	var h Header
	if m := reFileDescription.FindStringSubmatch(content); m != nil {
		parts := quotedParts(m[1])
		if len(parts) >= 2 {
			h.Description = parts[0]
			h.ImplementationLevel = parts[1]
		}
	}
	if m := reFileName.FindStringSubmatch(content); m != nil {
		parts := quotedParts(m[1])
		if len(parts) >= 7 {
			h.Name = parts[0]
			h.Timestamp = parts[1]
			h.Author = parts[2]
			h.Organization = parts[3]
			h.PreprocessorVersion = parts[4]
			h.OriginatingSystem = parts[5]
			h.Authorisation = parts[6]
		}
	}
	if m := reFileSchema.FindStringSubmatch(content); m != nil {
		if parts := quotedParts(m[1]); len(parts) > 0 {
			h.Schema = parts[0]
		}
	}
	return h
}

func quotedParts(s string) []string {
	var parts []string
	for _, m := range reQuoted.FindAllStringSubmatch(s, -1) {
		parts = append(parts, strings.TrimSpace(m[1]))
	}
	return parts
}

func refList(s string) []NativeID {
	var refs []NativeID
	for _, m := range reRef.FindAllStringSubmatch(s, -1) {
		refs = append(refs, nativeID(m[1]))
	}
	return refs
}

func nativeID(s string) NativeID {
	n, _ := strconv.Atoi(s)
	return NativeID(n)
}
