package pii

// riskByCategory is the base statutory risk assignment per category.
var riskByCategory = map[Category]Risk{
	CategoryGovernmentID: RiskHigh,
	CategoryFinancial:    RiskHigh,
	CategoryHealth:       RiskHigh,
	CategoryChildren:     RiskHigh,
	CategoryContact:      RiskMedium,
	CategoryLocation:     RiskMedium,
	CategoryDigital:      RiskMedium,
	CategoryIdentity:     RiskLow,
	CategoryEmployee:     RiskLow,
	CategoryBehavioral:   RiskLow,
}

// Protection describes how a stored value is protected at rest.
type Protection string

const (
	ProtectionCleartext Protection = "Cleartext"
	ProtectionEncrypted Protection = "Encrypted"
	ProtectionMasked    Protection = "Masked"
)

// Sensitivity is the data-handling tier derived from risk and volume.
type Sensitivity string

const (
	SensitivityPublic   Sensitivity = "Public"
	SensitivityInternal Sensitivity = "Internal"
	SensitivitySens     Sensitivity = "Sensitive"
	SensitivityCritical Sensitivity = "Critical"
)

// RiskForCategory returns the base risk for a statutory category.
// Unknown categories default to Low.
func RiskForCategory(cat Category) Risk {
	if r, ok := riskByCategory[cat]; ok {
		return r
	}
	return RiskLow
}

// RiskInput carries optional modifiers for the scored risk calculation.
type RiskInput struct {
	Category     Category
	Volume       int
	Protection   Protection
	ProcessCount int
}

// CalculateRisk scores risk from the category base plus volume, protection,
// and processing-usage modifiers.
func CalculateRisk(in RiskInput) Risk {
	score := 10
	switch RiskForCategory(in.Category) {
	case RiskHigh:
		score = 50
	case RiskMedium:
		score = 30
	}

	if in.Volume > 10000 {
		score += 20
	} else if in.Volume > 1000 {
		score += 10
	}

	if in.Protection == ProtectionEncrypted || in.Protection == ProtectionMasked {
		score -= 20
	}

	if in.ProcessCount > 5 {
		score += 10
	}

	switch {
	case score >= 60:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	default:
		return RiskLow
	}
}

// CalculateSensitivity derives a handling tier from risk and record volume.
func CalculateSensitivity(risk Risk, volume int) Sensitivity {
	switch risk {
	case RiskHigh:
		if volume > 100000 {
			return SensitivityCritical
		}
		return SensitivitySens
	case RiskMedium:
		return SensitivityInternal
	default:
		return SensitivityPublic
	}
}
