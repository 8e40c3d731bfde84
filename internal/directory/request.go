package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// RequestStatus is the lifecycle tag of a buyer request. It is managed outside
// the matching engine.
type RequestStatus string

const (
	RequestOpen    RequestStatus = "open"
	RequestMatched RequestStatus = "matched"
	RequestClosed  RequestStatus = "closed"
)

type Requirements struct {
	Certifications          []string `json:"certifications" mapstructure:"certifications"`
	EUDRRequired            bool     `json:"eudrRequired" mapstructure:"eudr-required"`
	ChildLaborZeroTolerance bool     `json:"childLaborZeroTolerance" mapstructure:"child-labor-zero-tolerance"`
}

// BuyerRequest is one sourcing inquiry. Commodity is the only key that must
// match exactly; the requirements act as hard filters and the country and
// volume bounds only influence the score.
type BuyerRequest struct {
	ID                string        `json:"id" mapstructure:"id"`
	BuyerOrganization string        `json:"buyerOrganization" mapstructure:"buyer-organization"`
	ContactEmail      string        `json:"contactEmail" mapstructure:"contact-email"`
	CreatedAt         time.Time     `json:"createdAt" mapstructure:"-"`
	Status            RequestStatus `json:"status" mapstructure:"status"`
	TargetCountry     string        `json:"targetCountry" mapstructure:"target-country"`
	Commodity         string        `json:"commodity" mapstructure:"commodity"`
	MinVolumeTons     *float64      `json:"minVolumeTons,omitempty" mapstructure:"min-volume-tons"`
	MaxVolumeTons     *float64      `json:"maxVolumeTons,omitempty" mapstructure:"max-volume-tons"`
	Requirements      Requirements  `json:"requirements" mapstructure:"requirements"`
}

// LoadRequest reads a single buyer request from a JSON file.
func LoadRequest(path string) (*BuyerRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading buyer request %q: %w", path, err)
	}

	var request BuyerRequest
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, fmt.Errorf("parsing buyer request %q: %w", path, err)
	}

	request.Normalize()
	return &request, nil
}

// Normalize fills lifecycle defaults and removes duplicate certification labels.
func (r *BuyerRequest) Normalize() {
	r.ID = strings.TrimSpace(r.ID)
	if r.Status == "" {
		r.Status = RequestOpen
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.Requirements.Certifications = uniqueStrings(r.Requirements.Certifications)
}
