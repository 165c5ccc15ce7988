package valueobject

// RiskTier is the closed set of applicant risk buckets. The zero value is not
// a valid tier; construct tiers with RiskTierFromLevel.
type RiskTier int

const (
	RiskTierLow RiskTier = iota + 1
	RiskTierMedium
	RiskTierHigh
)

// RiskTierFromLevel maps the raw integer reported by the validation service
// to a tier: 1 is Low, 2 is Medium, anything else (absent included) is High.
func RiskTierFromLevel(level *int) RiskTier {
	if level == nil {
		return RiskTierHigh
	}
	switch *level {
	case 1:
		return RiskTierLow
	case 2:
		return RiskTierMedium
	default:
		return RiskTierHigh
	}
}

// Level returns the integer form persisted alongside an application.
func (t RiskTier) Level() int {
	if !t.IsValid() {
		return int(RiskTierHigh)
	}
	return int(t)
}

// IsValid reports whether t is one of the declared tiers.
func (t RiskTier) IsValid() bool {
	return t >= RiskTierLow && t <= RiskTierHigh
}

func (t RiskTier) String() string {
	switch t {
	case RiskTierLow:
		return "LOW"
	case RiskTierMedium:
		return "MEDIUM"
	case RiskTierHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}
