package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ppiankov/claimoverlap/internal/model"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteCSVFiles(t *testing.T) {
	spec := model.ClaimSpec{{Property: "P17", Name: "country"}, {Property: "P856", Name: "website"}}

	agg := model.NewAggregate()
	agg.Put("r3", model.Record{WikidataID: "Q3", Values: map[string]string{"country": "DE"}})
	agg.Put("r1", model.Record{WikidataID: "Q1", Values: map[string]string{"country": "US", "website": "https://one.example"}})
	agg.Put("r2", model.Record{WikidataID: "Q2", Values: map[string]string{"country": ""}})

	dir := filepath.Join(t.TempDir(), "nested", "out")
	files, err := NewRenderer().WriteCSVFiles(agg, dir, spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}

	country := readCSV(t, filepath.Join(dir, "country_mapping.csv"))
	expected := [][]string{
		{"ROR ID", "Wikidata ID", "country"},
		{"r3", "Q3", "DE"},
		{"r1", "Q1", "US"},
	}
	if !reflect.DeepEqual(country, expected) {
		t.Errorf("country file:\nexpected %v\ngot      %v", expected, country)
	}
	if files[0].Rows != 2 || files[0].Claim.Name != "country" {
		t.Errorf("unexpected output file summary: %+v", files[0])
	}

	website := readCSV(t, filepath.Join(dir, "website_mapping.csv"))
	expected = [][]string{
		{"ROR ID", "Wikidata ID", "website"},
		{"r1", "Q1", "https://one.example"},
	}
	if !reflect.DeepEqual(website, expected) {
		t.Errorf("website file:\nexpected %v\ngot      %v", expected, website)
	}
}

func TestWriteCSVFiles_EmptySpec(t *testing.T) {
	dir := t.TempDir()
	agg := model.NewAggregate()
	agg.Put("r1", model.Record{WikidataID: "Q1"})

	files, err := NewRenderer().WriteCSVFiles(agg, dir, model.ClaimSpec{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no files, got %d", len(files))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected empty directory, found %d entries", len(entries))
	}
}

func TestWriteCSVFiles_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "country_mapping.csv")
	if err := os.WriteFile(path, []byte("stale\nstale\nstale\n"), 0644); err != nil {
		t.Fatal(err)
	}

	spec := model.ClaimSpec{{Property: "P17", Name: "country"}}
	if _, err := NewRenderer().WriteCSVFiles(model.NewAggregate(), dir, spec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 1 || rows[0][0] != "ROR ID" {
		t.Errorf("expected header-only file, got %v", rows)
	}
}

func TestWriteCSVFiles_DirectoryIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	spec := model.ClaimSpec{{Property: "P17", Name: "country"}}
	if _, err := NewRenderer().WriteCSVFiles(model.NewAggregate(), path, spec); err == nil {
		t.Error("expected error when output directory is a file")
	}
}
