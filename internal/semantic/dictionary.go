// Package semantic maps free-text labels to standardized concept
// identifiers from an ECLASS-style dictionary. Lookups are deterministic,
// never block and never fail: when nothing is similar enough the degenerate
// result asks for manual assignment.
package semantic

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DegenerateID is returned when no sufficiently similar entry exists.
const DegenerateID = "0000"

// DegenerateDescription accompanies DegenerateID.
const DegenerateDescription = "No semantic ID is found, please add it manually."

// Concept is one dictionary entry.
type Concept struct {
	ID         string
	Name       string
	Definition string
}

// Dictionary is an in-memory concept dictionary. A nil dictionary is valid
// and always answers with the degenerate result.
type Dictionary struct {
	concepts []Concept
}

func NewDictionary(concepts []Concept) *Dictionary {
	return &Dictionary{concepts: concepts}
}

// Load reads a semicolon-separated dictionary dump. The header row names
// the columns; PreferredName, Definition and IrdiCC are required, other
// columns are ignored.
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read dictionary header: %w", err)
	}
	nameCol, defCol, idCol := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "PreferredName":
			nameCol = i
		case "Definition":
			defCol = i
		case "IrdiCC":
			idCol = i
		}
	}
	if nameCol < 0 || idCol < 0 {
		return nil, fmt.Errorf("dictionary %s: missing PreferredName or IrdiCC column", path)
	}

	var concepts []Concept
	for {
		row, err := r.Read()
		if err != nil {
			break
		}
		if nameCol >= len(row) || idCol >= len(row) {
			continue
		}
		c := Concept{ID: strings.TrimSpace(row[idCol]), Name: strings.TrimSpace(row[nameCol])}
		if defCol >= 0 && defCol < len(row) {
			c.Definition = strings.TrimSpace(row[defCol])
		}
		if c.ID == "" || c.Name == "" {
			continue
		}
		concepts = append(concepts, c)
	}
	return NewDictionary(concepts), nil
}

// Lookup returns the semantic identifier for label plus the matched entry's
// name and definition. Matching order: exact case-insensitive name, then
// substring candidates ranked by Levenshtein distance, then the degenerate
// result.
func (d *Dictionary) Lookup(label string) (string, []string) {
	if d == nil || label == "" {
		return DegenerateID, []string{DegenerateDescription}
	}
	lowered := strings.ToLower(label)

	var candidates []Concept
	for _, c := range d.concepts {
		name := strings.ToLower(c.Name)
		if name == lowered {
			return c.ID, []string{c.Name, c.Definition}
		}
		if strings.Contains(name, lowered) {
			candidates = append(candidates, c)
		}
	}

	best := -1
	bestDistance := 0
	for i, c := range candidates {
		distance := levenshtein.ComputeDistance(label, c.Name)
		if best < 0 || distance < bestDistance {
			best = i
			bestDistance = distance
		}
	}
	if best >= 0 {
		c := candidates[best]
		return c.ID, []string{c.Name, c.Definition}
	}
	return DegenerateID, []string{DegenerateDescription}
}
