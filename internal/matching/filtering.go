package matching

import (
	"go.uber.org/zap"

	"github.com/agrosoluce/agrosoluce/internal/directory"
)

// Filter represents a single hard filter applied to the cooperative pool.
// Filters never modify the collection they receive.
type Filter interface {
	Name() string
	Apply(request *directory.BuyerRequest, c *directory.Cooperatives) (*directory.Cooperatives, Step)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents how a filter behaves for a given request.
type Status struct {
	Name    string
	Active  bool
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status(request *directory.BuyerRequest) Status
}

// HardFilters returns the hard filters in the order they must run.
func HardFilters() []Filter {
	return []Filter{
		NewCommodity(),
		NewCertifications(),
		NewEUDR(),
		NewChildLabor(),
	}
}

// Run executes the supplied filters sequentially. Each step only narrows the
// candidate set left by the previous one.
func Run(request *directory.BuyerRequest, steps []Filter, c *directory.Cooperatives, logger *zap.Logger) *directory.Cooperatives {
	for _, step := range steps {
		next, info := step.Apply(request, c)

		if logger != nil {
			logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		c = next
	}

	return c
}

// Describe returns status entries for the provided filters.
func Describe(request *directory.BuyerRequest, steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status(request))
			continue
		}

		statuses = append(statuses, Status{Name: step.Name(), Active: true})
	}
	return statuses
}

func retain(c *directory.Cooperatives, keep func(*directory.Cooperative) bool) (*directory.Cooperatives, Step) {
	initial := c.Len()
	next, dropped := c.Retain(func(coop *directory.Cooperative) bool {
		return coop != nil && keep(coop)
	})
	return next, Step{Initial: initial, Dropped: len(dropped), Left: next.Len()}
}

func passThrough(c *directory.Cooperatives) (*directory.Cooperatives, Step) {
	return c, Step{Initial: c.Len(), Dropped: 0, Left: c.Len()}
}
