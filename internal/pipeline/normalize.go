package pipeline

import (
	"fmt"
	"strings"

	"github.com/ppiankov/claimoverlap/internal/model"
)

// Normalize reshapes one page of bindings into records keyed by ROR ID.
// A later binding for the same ROR ID replaces the earlier one.
// A binding without ?rorID or ?item fails the whole page.
func Normalize(bindings []model.Binding, spec model.ClaimSpec) (*model.Aggregate, error) {
	agg := model.NewAggregate()

	for i, b := range bindings {
		ror, ok := b["rorID"]
		if !ok {
			return nil, fmt.Errorf("binding %d: missing rorID", i)
		}
		item, ok := b["item"]
		if !ok {
			return nil, fmt.Errorf("binding %d: missing item", i)
		}

		rec := model.Record{
			WikidataID: entityID(item.Value),
			Values:     make(map[string]string, len(spec)),
		}
		for _, c := range spec {
			if term, bound := b[c.Name]; bound {
				rec.Values[c.Name] = term.Value
			}
		}

		agg.Put(ror.Value, rec)
	}

	return agg, nil
}

// entityID returns the last path segment of an entity URI
func entityID(uri string) string {
	return uri[strings.LastIndex(uri, "/")+1:]
}
