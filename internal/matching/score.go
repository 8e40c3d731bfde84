package matching

import (
	"fmt"

	"github.com/agrosoluce/agrosoluce/internal/directory"
)

const (
	maxScore = 100

	countryPoints        = 20
	eudrPoints           = 20
	lowRiskPoints        = 20
	mediumRiskPoints     = 10
	volumeInRangePoints  = 20
	volumeNearMissPoints = 10
	volumeMinOnlyPoints  = 15
	certificationPoints  = 10
	certificationCap     = 20
	extraCertPoints      = 5

	// nearMissRatio is the share of the minimum volume that still earns
	// partial credit when a range is requested.
	nearMissRatio = 0.8
)

const (
	ReasonCountry    = "Matches target country"
	ReasonEUDR       = "EUDR context available"
	ReasonLowRisk    = "Low child labor risk"
	ReasonVolume     = "Meets volume requirements"
	reasonCertFormat = "Has %d required certification(s)"
)

type volumeOutcome int

const (
	volumeNotScored volumeOutcome = iota
	volumeMet
	volumeNearMiss
	volumeMissed
)

// Score computes the match score of a cooperative that already passed the
// hard filters. The result is clamped to 100.
func Score(request *directory.BuyerRequest, coop *directory.Cooperative) int {
	score := 0

	if sameCountry(request, coop) {
		score += countryPoints
	}

	if coop.ComplianceFlags.EUDRReady {
		score += eudrPoints
	}

	switch coop.ComplianceFlags.ChildLaborRisk {
	case directory.RiskLow:
		score += lowRiskPoints
	case directory.RiskMedium:
		score += mediumRiskPoints
	}

	switch outcome, minOnly := scoreVolume(request, coop); {
	case outcome == volumeMet && minOnly:
		score += volumeMinOnlyPoints
	case outcome == volumeMet:
		score += volumeInRangePoints
	case outcome == volumeNearMiss:
		score += volumeNearMissPoints
	}

	required := len(request.Requirements.Certifications)
	if required > 0 && len(coop.Certifications) > 0 {
		score += min(matchedCertifications(request, coop)*certificationPoints, certificationCap)
	}

	if len(coop.Certifications) > required {
		score += extraCertPoints
	}

	return min(max(score, 0), maxScore)
}

// Reasons re-derives the human readable reasons for a scored cooperative in
// check order.
func Reasons(request *directory.BuyerRequest, coop *directory.Cooperative) []string {
	reasons := make([]string, 0, 5)

	if sameCountry(request, coop) {
		reasons = append(reasons, ReasonCountry)
	}

	if coop.ComplianceFlags.EUDRReady {
		reasons = append(reasons, ReasonEUDR)
	}

	if coop.ComplianceFlags.ChildLaborRisk == directory.RiskLow {
		reasons = append(reasons, ReasonLowRisk)
	}

	if outcome, _ := scoreVolume(request, coop); outcome == volumeMet {
		reasons = append(reasons, ReasonVolume)
	}

	if len(request.Requirements.Certifications) > 0 {
		if matched := matchedCertifications(request, coop); matched > 0 {
			reasons = append(reasons, fmt.Sprintf(reasonCertFormat, matched))
		}
	}

	return reasons
}

// scoreVolume classifies the cooperative volume against the requested bounds.
// minOnly reports that only the lower bound took part in the decision.
func scoreVolume(request *directory.BuyerRequest, coop *directory.Cooperative) (volumeOutcome, bool) {
	if coop.AnnualVolumeTons == nil || request.MinVolumeTons == nil {
		return volumeNotScored, false
	}

	volume := *coop.AnnualVolumeTons
	minVolume := *request.MinVolumeTons

	if request.MaxVolumeTons != nil {
		switch {
		case volume >= minVolume && volume <= *request.MaxVolumeTons:
			return volumeMet, false
		case volume >= nearMissRatio*minVolume:
			return volumeNearMiss, false
		default:
			return volumeMissed, false
		}
	}

	if volume >= minVolume {
		return volumeMet, true
	}
	return volumeMissed, true
}

func matchedCertifications(request *directory.BuyerRequest, coop *directory.Cooperative) int {
	matched := 0
	for _, cert := range request.Requirements.Certifications {
		if coop.HasCertification(cert) {
			matched++
		}
	}
	return matched
}

// sameCountry treats a missing target country as not applicable.
func sameCountry(request *directory.BuyerRequest, coop *directory.Cooperative) bool {
	return request.TargetCountry != "" && coop.Country == request.TargetCountry
}
