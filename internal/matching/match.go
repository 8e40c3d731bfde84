package matching

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/agrosoluce/agrosoluce/internal/directory"
)

// MatchResult is one scored pairing of a buyer request to a cooperative.
type MatchResult struct {
	Cooperative *directory.Cooperative `json:"cooperative"`
	MatchScore  int                    `json:"matchScore"`
	Reasons     []string               `json:"reasons"`
}

// Engine ranks cooperatives against buyer requests and logs the filter steps.
type Engine struct {
	filters []Filter
	logger  *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{filters: HardFilters(), logger: logger}
}

// MatchCooperativesToRequest filters, scores and ranks the cooperatives for
// the request. Neither argument is modified.
func MatchCooperativesToRequest(request *directory.BuyerRequest, cooperatives *directory.Cooperatives) []MatchResult {
	return match(request, cooperatives, HardFilters(), nil)
}

// Match is MatchCooperativesToRequest with step logging.
func (e *Engine) Match(request *directory.BuyerRequest, cooperatives *directory.Cooperatives) []MatchResult {
	results := match(request, cooperatives, e.filters, e.logger)
	if request == nil || cooperatives == nil {
		return results
	}

	fields := []zap.Field{
		zap.String("request_id", request.ID),
		zap.String("commodity", request.Commodity),
		zap.Int("candidates", cooperatives.Len()),
		zap.Int("matches", len(results)),
	}
	if len(results) > 0 {
		fields = append(fields, zap.Int("best_score", results[0].MatchScore))
	}
	e.logger.Info("matching completed", fields...)

	return results
}

// Filters reports how each hard filter applies to the request.
func (e *Engine) Filters(request *directory.BuyerRequest) []Status {
	return Describe(request, e.filters)
}

func match(request *directory.BuyerRequest, cooperatives *directory.Cooperatives, filters []Filter, logger *zap.Logger) []MatchResult {
	if request == nil || cooperatives == nil || cooperatives.Len() == 0 {
		return []MatchResult{}
	}

	candidates := Run(request, filters, cooperatives, logger)

	results := make([]MatchResult, 0, candidates.Len())
	for _, coop := range candidates.Items {
		results = append(results, MatchResult{
			Cooperative: coop,
			MatchScore:  Score(request, coop),
			Reasons:     Reasons(request, coop),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	return results
}

// Top returns at most n leading results. A non-positive n returns all of them.
func Top(results []MatchResult, n int) []MatchResult {
	if n <= 0 || n >= len(results) {
		return results
	}
	return results[:n]
}

// ReportByCountry groups results by cooperative country for display.
func ReportByCountry(results []MatchResult) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, result := range results {
		coop := result.Cooperative
		country := coop.Country
		if country == "" {
			country = "unknown"
		}

		entry := map[string]string{
			"id":          coop.ID,
			"name":        coop.Name,
			"score":       fmt.Sprintf("%d", result.MatchScore),
			"child_labor": string(coop.ComplianceFlags.ChildLaborRisk),
		}
		if coop.Department != "" {
			entry["department"] = coop.Department
		}
		if coop.AnnualVolumeTons != nil {
			entry["volume_tons"] = fmt.Sprintf("%g", *coop.AnnualVolumeTons)
		}
		report[country] = append(report[country], entry)
	}
	return report
}
