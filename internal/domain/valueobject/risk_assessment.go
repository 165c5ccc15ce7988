package valueobject

import "strings"

// Verdicts returned by the risk validation service. The service historically
// answered in Spanish, so both spellings of approval are honoured.
const (
	VerdictApproved       = "APPROVED"
	VerdictRejected       = "REJECTED"
	verdictApprovedLegacy = "APROBADO"
)

// RiskAssessment is the immutable answer of the risk validation service for
// one client document.
type RiskAssessment struct {
	document string
	tier     RiskTier
	verdict  string
	fallback bool
}

// NewRiskAssessment builds an assessment from a gateway response.
func NewRiskAssessment(document string, tier RiskTier, verdict string) RiskAssessment {
	if !tier.IsValid() {
		tier = RiskTierHigh
	}
	return RiskAssessment{
		document: document,
		tier:     tier,
		verdict:  strings.TrimSpace(verdict),
	}
}

// FallbackAssessment is the conservative answer substituted when the gateway
// cannot be reached or answers with something unusable.
func FallbackAssessment(document string) RiskAssessment {
	return RiskAssessment{
		document: document,
		tier:     RiskTierHigh,
		verdict:  VerdictRejected,
		fallback: true,
	}
}

// AssessmentOrFallback collapses a gateway result into an assessment. Any
// error yields FallbackAssessment, so callers never see gateway failures.
func AssessmentOrFallback(document string, a RiskAssessment, err error) RiskAssessment {
	if err != nil {
		return FallbackAssessment(document)
	}
	return a
}

func (a RiskAssessment) Document() string { return a.document }
func (a RiskAssessment) Tier() RiskTier   { return a.tier }
func (a RiskAssessment) Verdict() string  { return a.verdict }

// IsFallback reports whether the assessment was substituted for a failure.
func (a RiskAssessment) IsFallback() bool { return a.fallback }

// Approved compares the verdict case-insensitively.
func (a RiskAssessment) Approved() bool {
	return strings.EqualFold(a.verdict, VerdictApproved) ||
		strings.EqualFold(a.verdict, verdictApprovedLegacy)
}
