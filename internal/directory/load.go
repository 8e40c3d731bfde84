package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// legacyKeys maps field names found in older directory exports to the
// canonical record keys. Earlier entries win when several aliases of the same
// canonical key are present.
var legacyKeys = []struct {
	legacy    string
	canonical string
}{
	{legacy: "departement", canonical: "department"},
	{legacy: "region", canonical: "department"},
	{legacy: "primary_crop", canonical: "commodity"},
	{legacy: "primaryCrop", canonical: "commodity"},
	{legacy: "annual_volume_tons", canonical: "annualVolumeTons"},
	{legacy: "compliance_flags", canonical: "complianceFlags"},
	{legacy: "eudr_ready", canonical: "eudrReady"},
	{legacy: "child_labor_risk", canonical: "childLaborRisk"},
}

func isLegacyKey(key string) bool {
	for _, alias := range legacyKeys {
		if alias.legacy == key {
			return true
		}
	}
	return false
}

// LoadCooperatives reads a JSON array of cooperative records. Legacy field
// names are folded into the canonical schema before decoding.
func LoadCooperatives(path string) (*Cooperatives, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &Cooperatives{}, nil
	}

	var items []map[string]any
	if err := json.NewDecoder(file).Decode(&items); err != nil {
		return nil, fmt.Errorf("parsing cooperatives file %q: %w", path, err)
	}

	return DecodeCooperatives(items)
}

// DecodeCooperatives converts loosely typed records into cooperatives.
func DecodeCooperatives(items []map[string]any) (*Cooperatives, error) {
	canonical := make([]map[string]any, 0, len(items))
	for _, item := range items {
		canonical = append(canonical, canonicalize(item))
	}

	var cooperatives []*Cooperative
	cfg := &mapstructure.DecoderConfig{
		Result:           &cooperatives,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(canonical); err != nil {
		return nil, fmt.Errorf("decoding cooperatives: %w", err)
	}

	for idx, coop := range cooperatives {
		if coop == nil {
			return nil, fmt.Errorf("cooperative at index %d is empty", idx)
		}
		coop.Normalize()
		if coop.ID == "" {
			return nil, fmt.Errorf("cooperative at index %d has no id", idx)
		}
	}

	return &Cooperatives{Items: cooperatives}, nil
}

func canonicalValue(value any) any {
	if nested, ok := value.(map[string]any); ok {
		return canonicalize(nested)
	}
	return value
}

func canonicalize(item map[string]any) map[string]any {
	result := make(map[string]any, len(item))
	for key, value := range item {
		if isLegacyKey(key) {
			continue
		}
		result[key] = canonicalValue(value)
	}

	// Canonical keys win over legacy ones, then aliases in declaration order.
	for _, alias := range legacyKeys {
		value, ok := item[alias.legacy]
		if !ok {
			continue
		}
		if _, exists := result[alias.canonical]; exists {
			continue
		}
		result[alias.canonical] = canonicalValue(value)
	}

	// Flags stored flat on older records.
	if _, ok := result["complianceFlags"]; !ok {
		flags := make(map[string]any)
		for _, key := range []string{"eudrReady", "childLaborRisk"} {
			if value, ok := result[key]; ok {
				flags[key] = value
				delete(result, key)
			}
		}
		if len(flags) > 0 {
			result["complianceFlags"] = flags
		}
	}

	if value, ok := result["department"].(string); ok {
		result["department"] = strings.TrimSpace(value)
	}

	return result
}
