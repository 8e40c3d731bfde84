package ai

import (
	"context"

	"github.com/agrosoluce/agrosoluce/internal/assessment"
)

// Narrative is a generated explanation of assessment results.
type Narrative struct {
	Summary string
	Actions []string
	Raw     string
}

// Advisor turns scored assessment results into a narrative for the cooperative.
type Advisor interface {
	Advise(ctx context.Context, catalog *assessment.Catalog, results assessment.Results) (*Narrative, error)
}
