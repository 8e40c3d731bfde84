package directory

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeCooperativesFoldsLegacyFields(t *testing.T) {
	items := []map[string]any{
		{
			"id":                 "coop-1",
			"name":               "SCOOP Daloa",
			"country":            "Côte d'Ivoire",
			"departement":        " Daloa ",
			"commodity":          "cocoa",
			"annual_volume_tons": "120.5",
			"certifications":     []any{"Fairtrade", "Organic", "Fairtrade", " "},
			"eudr_ready":         true,
			"child_labor_risk":   "LOW",
		},
		{
			"id":        "coop-2",
			"commodity": "coffee",
			"complianceFlags": map[string]any{
				"eudrReady":      false,
				"childLaborRisk": "not assessed",
			},
		},
	}

	coops, err := DecodeCooperatives(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if coops.Len() != 2 {
		t.Fatalf("expected 2 cooperatives, got %d", coops.Len())
	}

	first := coops.FindByID("coop-1")
	if first == nil {
		t.Fatalf("expected coop-1 to be decoded")
	}
	if first.Department != "Daloa" {
		t.Fatalf("expected department Daloa, got %q", first.Department)
	}
	if first.AnnualVolumeTons == nil || *first.AnnualVolumeTons != 120.5 {
		t.Fatalf("unexpected volume: %v", first.AnnualVolumeTons)
	}
	if len(first.Certifications) != 2 {
		t.Fatalf("expected duplicate certifications to be removed, got %v", first.Certifications)
	}
	if !first.ComplianceFlags.EUDRReady {
		t.Fatalf("expected eudr flag from legacy key")
	}
	if first.ComplianceFlags.ChildLaborRisk != RiskLow {
		t.Fatalf("expected low risk, got %q", first.ComplianceFlags.ChildLaborRisk)
	}

	second := coops.FindByID("coop-2")
	if second.AnnualVolumeTons != nil {
		t.Fatalf("expected missing volume to stay absent")
	}
	if second.ComplianceFlags.ChildLaborRisk != RiskUnknown {
		t.Fatalf("expected unknown risk default, got %q", second.ComplianceFlags.ChildLaborRisk)
	}
}

func TestDecodeCooperativesPrefersCanonicalKeys(t *testing.T) {
	coops, err := DecodeCooperatives([]map[string]any{{
		"id":          "coop-1",
		"department":  "Soubré",
		"departement": "Daloa",
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := coops.Items[0].Department; got != "Soubré" {
		t.Fatalf("expected canonical department, got %q", got)
	}
}

func TestDecodeCooperativesLegacyAliasPrecedence(t *testing.T) {
	cases := []struct {
		name   string
		record map[string]any
		field  func(*Cooperative) string
		expect string
	}{
		{
			name:   "departement before region",
			record: map[string]any{"id": "c1", "departement": "Soubre", "region": "Nawa"},
			field:  func(c *Cooperative) string { return c.Department },
			expect: "Soubre",
		},
		{
			name:   "region alone",
			record: map[string]any{"id": "c1", "region": "Nawa"},
			field:  func(c *Cooperative) string { return c.Department },
			expect: "Nawa",
		},
		{
			name:   "primary_crop before primaryCrop",
			record: map[string]any{"id": "c1", "primary_crop": "cocoa", "primaryCrop": "cashew"},
			field:  func(c *Cooperative) string { return c.Commodity },
			expect: "cocoa",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Map iteration order varies between runs, so decode repeatedly.
			for i := 0; i < 100; i++ {
				coops, err := DecodeCooperatives([]map[string]any{tc.record})
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got := tc.field(coops.Items[0]); got != tc.expect {
					t.Fatalf("iteration %d: expected %q, got %q", i, tc.expect, got)
				}
			}
		})
	}
}

func TestDecodeCooperativesRequiresID(t *testing.T) {
	if _, err := DecodeCooperatives([]map[string]any{{"name": "anonymous"}}); err == nil {
		t.Fatal("expected error for record without id")
	}
}

func TestLoadCooperativesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coops.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	coops, err := LoadCooperatives(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coops.Len() != 0 {
		t.Fatalf("expected empty directory, got %d", coops.Len())
	}
}

func TestLoadRequestDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.json")
	payload := `{"id":"req-1","commodity":"cocoa","requirements":{"certifications":["Fairtrade","Fairtrade"]}}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	request, err := LoadRequest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.Status != RequestOpen {
		t.Fatalf("expected open status, got %q", request.Status)
	}
	if request.CreatedAt.IsZero() {
		t.Fatalf("expected creation time to be set")
	}
	if len(request.Requirements.Certifications) != 1 {
		t.Fatalf("expected deduplicated certifications, got %v", request.Requirements.Certifications)
	}
}

func TestRetainDoesNotModifyReceiver(t *testing.T) {
	coops := &Cooperatives{Items: []*Cooperative{{ID: "a", Commodity: "cocoa"}, {ID: "b", Commodity: "coffee"}}}

	kept, dropped := coops.Retain(func(c *Cooperative) bool { return c.Commodity == "cocoa" })

	if kept.Len() != 1 || kept.Items[0].ID != "a" {
		t.Fatalf("unexpected retained items: %+v", kept.Items)
	}
	if len(dropped) != 1 || dropped[0] != "b" {
		t.Fatalf("unexpected dropped ids: %v", dropped)
	}
	if coops.Len() != 2 {
		t.Fatalf("expected receiver to keep 2 items, got %d", coops.Len())
	}
}
