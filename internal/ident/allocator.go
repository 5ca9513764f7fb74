// Package ident produces run-unique, exchange-safe identifiers. The
// allocator is an explicit object passed into whatever emits labels so that
// multiple runs can coexist in one process.
package ident

import (
	"fmt"
	"regexp"
	"strings"
)

// replacer transliterates accented characters and swaps characters the
// identifier alphabet disallows for safe fillers. Multi-rune sequences come
// first so they win over their single-rune parts.
var replacer = strings.NewReplacer(
	"°C", "degreeCelsius",
	"ä", "ae", "Ä", "Ae",
	"ö", "oe", "Ö", "Oe",
	"ü", "ue", "Ü", "Ue",
	"ß", "ss",
	"%", "percentage",
	" ", "_", "-", "_",
	".", "", "/", "", "#", "", ",", "",
	"(", "", ")", "", "[", "", "]", "",
)

var nonWord = regexp.MustCompile(`[^A-Za-z0-9_]`)

// reservedLabels are structural labels intentionally repeated at every tree
// depth. They are exempt from the uniqueness ledger and disambiguated by
// tree position instead.
var reservedLabels = map[string]struct{}{
	"Type":         {},
	"Level":        {},
	"Product_ID":   {},
	"Source_File":  {},
	"Volume":       {},
	"Surface_Area": {},
}

// Allocator hands out collision-free identifiers. Not safe for concurrent
// use; the whole run is single-threaded and the ledger is the only state
// shared across it.
type Allocator struct {
	used map[string]struct{}
}

func NewAllocator() *Allocator {
	return &Allocator{used: make(map[string]struct{})}
}

// Sanitize turns an arbitrary label into an identifier-safe string without
// touching the ledger.
func Sanitize(s string) string {
	out := replacer.Replace(strings.TrimSpace(s))
	if out == "" {
		return ""
	}
	if !isAlpha(rune(out[0])) {
		out = "X" + out
	}
	return nonWord.ReplaceAllString(out, "_")
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Allocate returns a run-unique identifier for the desired label. On
// collision it retries once with the context token appended, then falls back
// to an incrementing numeric suffix until free. Reserved structural labels
// bypass the ledger entirely.
func (a *Allocator) Allocate(label, context string) string {
	clean := Sanitize(label)
	if clean == "" {
		clean = "Component"
	}
	if _, reserved := reservedLabels[clean]; reserved {
		return clean
	}

	unique := clean
	if _, taken := a.used[unique]; taken && context != "" {
		if suffix := Sanitize(context); suffix != "" {
			candidate := clean + "_" + suffix
			if _, taken := a.used[candidate]; !taken {
				unique = candidate
			}
		}
	}
	for counter := 1; ; counter++ {
		if _, taken := a.used[unique]; !taken {
			break
		}
		unique = fmt.Sprintf("%s_%d", clean, counter)
	}
	a.used[unique] = struct{}{}
	return unique
}

// Reserved reports whether the sanitized form of label is a reserved
// structural label.
func Reserved(label string) bool {
	_, ok := reservedLabels[Sanitize(label)]
	return ok
}
