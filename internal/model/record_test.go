package model

import (
	"reflect"
	"testing"
)

func TestAggregate_PutKeepsFirstPosition(t *testing.T) {
	agg := NewAggregate()
	agg.Put("a", Record{WikidataID: "Q1"})
	agg.Put("b", Record{WikidataID: "Q2"})
	agg.Put("a", Record{WikidataID: "Q3"})

	if agg.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", agg.Len())
	}
	if got := agg.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("unexpected order: %v", got)
	}
	rec, _ := agg.Get("a")
	if rec.WikidataID != "Q3" {
		t.Errorf("expected overwritten record Q3, got %s", rec.WikidataID)
	}
}

func TestAggregate_MergeLaterWins(t *testing.T) {
	first := NewAggregate()
	first.Put("r1", Record{WikidataID: "Q1", Values: map[string]string{"country": "old"}})
	first.Put("r2", Record{WikidataID: "Q2"})

	second := NewAggregate()
	second.Put("r3", Record{WikidataID: "Q3"})
	second.Put("r1", Record{WikidataID: "Q1", Values: map[string]string{"country": "new"}})

	agg := NewAggregate()
	agg.Merge(first)
	agg.Merge(second)
	agg.Merge(nil)

	if got := agg.Keys(); !reflect.DeepEqual(got, []string{"r1", "r2", "r3"}) {
		t.Errorf("unexpected order: %v", got)
	}
	rec, _ := agg.Get("r1")
	if v, _ := rec.Value("country"); v != "new" {
		t.Errorf("expected later page to win, got %q", v)
	}
}

func TestRecord_Value(t *testing.T) {
	rec := Record{Values: map[string]string{"set": "x", "empty": ""}}

	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"set", "x", true},
		{"empty", "", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := rec.Value(tt.name)
			if v != tt.value || ok != tt.ok {
				t.Errorf("Value(%q) = %q, %v; want %q, %v", tt.name, v, ok, tt.value, tt.ok)
			}
		})
	}
}

func TestClaimSpec_Names(t *testing.T) {
	spec := ClaimSpec{{Property: "P17", Name: "country"}, {Property: "P856", Name: "website"}}
	if got := spec.Names(); !reflect.DeepEqual(got, []string{"country", "website"}) {
		t.Errorf("unexpected names: %v", got)
	}
}
