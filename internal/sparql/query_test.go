package sparql

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/claimoverlap/internal/model"
)

func TestBuild_OneOptionalPerClaim(t *testing.T) {
	spec := model.ClaimSpec{
		{Property: "A", Name: "a"},
		{Property: "B", Name: "b"},
	}

	query := Build("P6782", spec)

	if n := strings.Count(query, "OPTIONAL"); n != 2 {
		t.Errorf("expected 2 OPTIONAL clauses, got %d\n%s", n, query)
	}
	firstLine := strings.SplitN(query, "\n", 2)[0]
	if firstLine != "SELECT ?item ?rorID ?a ?b" {
		t.Errorf("unexpected select clause: %q", firstLine)
	}
	for _, want := range []string{
		"?item wdt:P6782 ?rorID .",
		"OPTIONAL { ?item wdt:A ?a }",
		"OPTIONAL { ?item wdt:B ?b }",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("query missing %q:\n%s", want, query)
		}
	}
}

func TestBuild_ExactText(t *testing.T) {
	spec := model.ClaimSpec{{Property: "P17", Name: "country"}}

	expected := "SELECT ?item ?rorID ?country\n" +
		"WHERE {\n" +
		"  ?item wdt:P6782 ?rorID .\n" +
		"  OPTIONAL { ?item wdt:P17 ?country }\n" +
		"}"

	if got := Build("", spec); got != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, got)
	}
}

func TestBuild_EmptySpec(t *testing.T) {
	query := Build("P6782", model.ClaimSpec{})

	expected := "SELECT ?item ?rorID\nWHERE {\n  ?item wdt:P6782 ?rorID .\n}"
	if query != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, query)
	}
	if strings.Contains(query, "OPTIONAL") {
		t.Error("empty spec must not produce OPTIONAL clauses")
	}
}

func TestPaginate(t *testing.T) {
	got := Paginate("SELECT ?x WHERE {}", 100, 300)
	if got != "SELECT ?x WHERE {} LIMIT 100 OFFSET 300" {
		t.Errorf("unexpected paginated query: %q", got)
	}
}

func TestPageOffsets(t *testing.T) {
	tests := []struct {
		desc                 string
		offset, limit, pages int
		expected             []int
	}{
		{"default window", 0, 10000, 3, []int{0, 10000, 20000}},
		{"starting offset", 50, 10, 4, []int{50, 60, 70, 80}},
		{"zero pages", 0, 10, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := PageOffsets(tt.offset, tt.limit, tt.pages)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}

	if n := len(PageOffsets(0, 10000, model.DefaultPages)); n != 20 {
		t.Errorf("expected 20 default pages, got %d", n)
	}
}
