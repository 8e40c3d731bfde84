package assessment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if catalog.SectionCount() != 5 {
		t.Fatalf("expected 5 sections, got %d", catalog.SectionCount())
	}

	q, ok := catalog.Question("governance-assembly")
	if !ok {
		t.Fatalf("expected governance-assembly question")
	}
	if opt, ok := q.Option("yes"); !ok || opt.Weight != 2 || opt.Label != "Yes" {
		t.Fatalf("unexpected yes option: %+v", opt)
	}
	if q.MaxWeight() != 2 {
		t.Fatalf("expected max weight 2, got %v", q.MaxWeight())
	}

	traceability, _ := catalog.Question("traceability-plots")
	if traceability.MaxWeight() != 3 {
		t.Fatalf("expected max weight 3, got %v", traceability.MaxWeight())
	}
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	payload := `{"sections":[{"id":"s","title":"S","questions":[{"id":"q","text":"Q?","options":[{"id":"a","label":"A","weight":1.5}]}]}]}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if catalog.TotalQuestions() != 1 || catalog.Sections[0].Questions[0].Options[0].Weight != 1.5 {
		t.Fatalf("unexpected catalog: %+v", catalog)
	}
}

func TestValidate(t *testing.T) {
	catalog := &Catalog{Sections: []Section{
		{ID: "a", Questions: []Question{{ID: "q", Options: []Option{{ID: "x", Weight: -1}, {ID: "x"}}}}},
		{ID: "a", Questions: []Question{{ID: "q"}}},
		{ID: "empty"},
	}}

	err := catalog.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	for _, want := range []string{
		"negative weight",
		"duplicate option id",
		"duplicate section id",
		"duplicate question id",
		`question "q" has no options`,
		`section "empty" has no questions`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}
