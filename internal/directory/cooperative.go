package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ChildLaborRisk is the assessed child labor risk level of a cooperative.
type ChildLaborRisk string

const (
	RiskLow     ChildLaborRisk = "low"
	RiskMedium  ChildLaborRisk = "medium"
	RiskHigh    ChildLaborRisk = "high"
	RiskUnknown ChildLaborRisk = "unknown"
)

// ParseChildLaborRisk normalizes a stored risk label. Anything that is not one of
// the known levels is treated as not assessed.
func ParseChildLaborRisk(s string) ChildLaborRisk {
	switch risk := ChildLaborRisk(strings.ToLower(strings.TrimSpace(s))); risk {
	case RiskLow, RiskMedium, RiskHigh:
		return risk
	default:
		return RiskUnknown
	}
}

type ComplianceFlags struct {
	EUDRReady      bool           `json:"eudrReady"`
	ChildLaborRisk ChildLaborRisk `json:"childLaborRisk"`
}

type Cooperatives struct {
	Items []*Cooperative
}

type Cooperative struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Country          string          `json:"country"`
	Department       string          `json:"department,omitempty"`
	Commodity        string          `json:"commodity"`
	AnnualVolumeTons *float64        `json:"annualVolumeTons,omitempty"`
	Certifications   []string        `json:"certifications"`
	ComplianceFlags  ComplianceFlags `json:"complianceFlags"`
}

// Normalize enforces the record invariants: certifications are trimmed and
// unique, and the child labor risk is always one of the known levels.
func (c *Cooperative) Normalize() {
	c.ID = strings.TrimSpace(c.ID)
	c.Certifications = uniqueStrings(c.Certifications)
	c.ComplianceFlags.ChildLaborRisk = ParseChildLaborRisk(string(c.ComplianceFlags.ChildLaborRisk))
}

// HasCertification reports whether the cooperative holds the given label.
func (c *Cooperative) HasCertification(label string) bool {
	for _, cert := range c.Certifications {
		if cert == label {
			return true
		}
	}
	return false
}

func (c *Cooperatives) Len() int {
	return len(c.Items)
}

func (c *Cooperatives) FindByID(id string) *Cooperative {
	for _, coop := range c.Items {
		if coop.ID == id {
			return coop
		}
	}
	return nil
}

// Commodities returns the sorted set of commodities present in the directory.
func (c *Cooperatives) Commodities() []string {
	seen := make(map[string]struct{})
	for _, coop := range c.Items {
		if coop.Commodity == "" {
			continue
		}
		seen[coop.Commodity] = struct{}{}
	}

	commodities := make([]string, 0, len(seen))
	for commodity := range seen {
		commodities = append(commodities, commodity)
	}
	sort.Strings(commodities)
	return commodities
}

// Retain returns a new collection with the cooperatives accepted by keep, in the
// original order, and the ids of the dropped ones. The receiver is not modified.
func (c *Cooperatives) Retain(keep func(*Cooperative) bool) (*Cooperatives, []string) {
	retained := &Cooperatives{Items: make([]*Cooperative, 0, len(c.Items))}
	var dropped []string
	for _, coop := range c.Items {
		if keep(coop) {
			retained.Items = append(retained.Items, coop)
			continue
		}
		dropped = append(dropped, coop.ID)
	}
	return retained, dropped
}

func (c *Cooperatives) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "cooperatives_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Items); err != nil {
		return "", fmt.Errorf("encode cooperatives: %w", err)
	}
	return file.Name(), nil
}

func uniqueStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}
