package model

// Term is a single bound value in a SPARQL JSON result row
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Binding is one result row: query variable name -> bound term.
// Unbound OPTIONAL variables are simply absent.
type Binding map[string]Term

// Record is the normalized view of a binding, keyed externally by ROR ID
type Record struct {
	WikidataID string
	Values     map[string]string // claim name -> value; absent when unbound
}

// Value returns the claim value and whether it is present and non-empty
func (r Record) Value(name string) (string, bool) {
	v, ok := r.Values[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Aggregate maps ROR IDs to records and remembers first-insertion order.
// Overwriting a key replaces the record but keeps its original position.
type Aggregate struct {
	order   []string
	records map[string]Record
}

// NewAggregate creates an empty aggregate
func NewAggregate() *Aggregate {
	return &Aggregate{
		records: make(map[string]Record),
	}
}

// Put stores rec under rorID
func (a *Aggregate) Put(rorID string, rec Record) {
	if _, exists := a.records[rorID]; !exists {
		a.order = append(a.order, rorID)
	}
	a.records[rorID] = rec
}

// Get returns the record stored under rorID
func (a *Aggregate) Get(rorID string) (Record, bool) {
	rec, ok := a.records[rorID]
	return rec, ok
}

// Len returns the number of distinct ROR IDs
func (a *Aggregate) Len() int {
	return len(a.order)
}

// Keys returns ROR IDs in iteration order
func (a *Aggregate) Keys() []string {
	keys := make([]string, len(a.order))
	copy(keys, a.order)
	return keys
}

// Merge puts every record of other into a, in other's order.
// Records from other win on key collision.
func (a *Aggregate) Merge(other *Aggregate) {
	if other == nil {
		return
	}
	for _, key := range other.order {
		a.Put(key, other.records[key])
	}
}

// Each calls fn for every entry in iteration order
func (a *Aggregate) Each(fn func(rorID string, rec Record)) {
	for _, key := range a.order {
		fn(key, a.records[key])
	}
}
