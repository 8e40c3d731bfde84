package matching

import (
	"strconv"
	"strings"

	"github.com/agrosoluce/agrosoluce/internal/directory"
)

type commodityFilter struct{}

// NewCommodity creates the filter keeping cooperatives with exactly the
// requested commodity. An empty requested commodity keeps nothing.
func NewCommodity() Filter {
	return &commodityFilter{}
}

func (f *commodityFilter) Name() string { return "commodity" }

func (f *commodityFilter) Apply(request *directory.BuyerRequest, c *directory.Cooperatives) (*directory.Cooperatives, Step) {
	return retain(c, func(coop *directory.Cooperative) bool {
		return request.Commodity != "" && coop.Commodity == request.Commodity
	})
}

func (f *commodityFilter) Status(request *directory.BuyerRequest) Status {
	return Status{Name: f.Name(), Active: true, Details: map[string]string{"commodity": request.Commodity}}
}

type certificationsFilter struct{}

// NewCertifications creates the filter keeping cooperatives that hold every
// required certification.
func NewCertifications() Filter {
	return &certificationsFilter{}
}

func (f *certificationsFilter) Name() string { return "certifications" }

func (f *certificationsFilter) Apply(request *directory.BuyerRequest, c *directory.Cooperatives) (*directory.Cooperatives, Step) {
	required := request.Requirements.Certifications
	if len(required) == 0 {
		return passThrough(c)
	}

	return retain(c, func(coop *directory.Cooperative) bool {
		for _, cert := range required {
			if !coop.HasCertification(cert) {
				return false
			}
		}
		return true
	})
}

func (f *certificationsFilter) Status(request *directory.BuyerRequest) Status {
	details := map[string]string{}
	required := request.Requirements.Certifications
	if len(required) > 0 {
		details["required"] = strings.Join(required, ",")
	}
	return Status{Name: f.Name(), Active: len(required) > 0, Details: details}
}

type eudrFilter struct{}

// NewEUDR creates the filter keeping EUDR-ready cooperatives when the request
// demands it.
func NewEUDR() Filter {
	return &eudrFilter{}
}

func (f *eudrFilter) Name() string { return "eudr" }

func (f *eudrFilter) Apply(request *directory.BuyerRequest, c *directory.Cooperatives) (*directory.Cooperatives, Step) {
	if !request.Requirements.EUDRRequired {
		return passThrough(c)
	}

	return retain(c, func(coop *directory.Cooperative) bool {
		return coop.ComplianceFlags.EUDRReady
	})
}

func (f *eudrFilter) Status(request *directory.BuyerRequest) Status {
	return Status{Name: f.Name(), Active: request.Requirements.EUDRRequired}
}

type childLaborFilter struct{}

// NewChildLabor creates the zero tolerance filter. Cooperatives whose risk
// was never assessed pass the filter together with low risk ones; only
// medium and high risk records are dropped.
func NewChildLabor() Filter {
	return &childLaborFilter{}
}

func (f *childLaborFilter) Name() string { return "child_labor" }

func (f *childLaborFilter) Apply(request *directory.BuyerRequest, c *directory.Cooperatives) (*directory.Cooperatives, Step) {
	if !request.Requirements.ChildLaborZeroTolerance {
		return passThrough(c)
	}

	return retain(c, func(coop *directory.Cooperative) bool {
		risk := coop.ComplianceFlags.ChildLaborRisk
		return risk == directory.RiskLow || risk == directory.RiskUnknown || risk == ""
	})
}

func (f *childLaborFilter) Status(request *directory.BuyerRequest) Status {
	details := map[string]string{
		"accepts_unknown": strconv.FormatBool(true),
	}
	return Status{Name: f.Name(), Active: request.Requirements.ChildLaborZeroTolerance, Details: details}
}
