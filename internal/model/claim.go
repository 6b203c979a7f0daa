package model

// Claim maps a Wikidata property to the name used as its query variable
// and output file segment.
type Claim struct {
	Property string `json:"property" yaml:"property"` // e.g. "P17"
	Name     string `json:"name" yaml:"name"`         // e.g. "country"
}

// ClaimSpec is the ordered set of claims requested for a run.
// Order follows the input file and drives both the SELECT clause and emission order.
type ClaimSpec []Claim

// Names returns the claim names in spec order
func (s ClaimSpec) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}
