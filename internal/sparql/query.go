// Package sparql builds the ROR/Wikidata overlap query and decodes
// SPARQL JSON results.
package sparql

import (
	"fmt"
	"strings"

	"github.com/ppiankov/claimoverlap/internal/model"
)

// Build returns a query selecting every item with a registry identifier and
// one OPTIONAL binding per claim, so a missing claim never drops the item.
// Claim properties and names must already be validated.
func Build(registryProperty string, spec model.ClaimSpec) string {
	if registryProperty == "" {
		registryProperty = model.DefaultRegistryProperty
	}

	var sel, where strings.Builder
	sel.WriteString("SELECT ?item ?rorID")
	fmt.Fprintf(&where, "WHERE {\n  ?item wdt:%s ?rorID .", registryProperty)

	for _, c := range spec {
		fmt.Fprintf(&sel, " ?%s", c.Name)
		fmt.Fprintf(&where, "\n  OPTIONAL { ?item wdt:%s ?%s }", c.Property, c.Name)
	}
	where.WriteString("\n}")

	return sel.String() + "\n" + where.String()
}

// Paginate appends the LIMIT/OFFSET window to a query
func Paginate(query string, limit, offset int) string {
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", query, limit, offset)
}

// PageOffsets returns the starting offset of each page.
// Result exhaustion is not detected; exactly pages offsets are produced.
func PageOffsets(offset, limit, pages int) []int {
	if pages <= 0 {
		return nil
	}
	offsets := make([]int, pages)
	for i := range offsets {
		offsets[i] = offset + i*limit
	}
	return offsets
}
