package assembly

import (
	"regexp"
	"strings"
)

// standardKeywords is the fixed mechanical-component vocabulary. A product
// whose name, description or annotation text mentions any of these is a
// catalog part rather than a design part.
var standardKeywords = []string{
	"screw", "bolt", "nut", "washer", "bearing", "motor", "sensor",
	"valve", "cylinder", "spring", "pin", "gear", "coupling",
	"fastener", "fitting", "connector", "switch", "relay",
	"actuator", "encoder", "drive", "pump", "filter",
}

// manufacturerPatterns match supplier names and catalog-number shapes.
var manufacturerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(festo|balluff|hbm|siemens|bosch|parker|smc|omron|keyence|sick|ifm)`),
	regexp.MustCompile(`[A-Z]{2,}-\d+`),
	regexp.MustCompile(`\b[A-Z]\d{4,}\b`),
}

// Classify determines a component's kind. Structural evidence always wins:
// a parent in any resolved edge is an assembly regardless of its text.
func Classify(name, description string, annotations []Annotation, hasChildren bool) Kind {
	if hasChildren {
		return KindAssembly
	}

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(description)
	for _, a := range annotations {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteByte(' ')
		b.WriteString(a.Description)
	}
	combined := b.String()
	lowered := strings.ToLower(combined)

	for _, kw := range standardKeywords {
		if strings.Contains(lowered, kw) {
			return KindStandardPart
		}
	}
	for _, p := range manufacturerPatterns {
		if p.MatchString(combined) {
			return KindStandardPart
		}
	}
	return KindPart
}
