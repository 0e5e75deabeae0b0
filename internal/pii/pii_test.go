package pii_test

import (
	"testing"

	"github.com/privata-io/privata/internal/pii"
)

func TestStatusForConfidence(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       pii.Status
	}{
		{"at auto threshold", 0.80, pii.StatusAutoClassified},
		{"just below auto threshold", 0.79, pii.StatusNeedsConfirmation},
		{"at confirmation threshold", 0.50, pii.StatusNeedsConfirmation},
		{"just below confirmation threshold", 0.49, pii.StatusDiscarded},
		{"certain", 1.0, pii.StatusAutoClassified},
		{"zero", 0.0, pii.StatusDiscarded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pii.StatusForConfidence(tt.confidence); got != tt.want {
				t.Errorf("StatusForConfidence(%v) = %s, want %s", tt.confidence, got, tt.want)
			}
		})
	}
}

func TestCategoryForType(t *testing.T) {
	tests := []struct {
		piiType string
		want    pii.Category
	}{
		{"aadhaar", pii.CategoryGovernmentID},
		{"pan", pii.CategoryGovernmentID},
		{"bank_account", pii.CategoryFinancial},
		{"salary", pii.CategoryFinancial},
		{"email", pii.CategoryContact},
		{"phone", pii.CategoryContact},
		{"address", pii.CategoryLocation},
		{"dob", pii.CategoryIdentity},
		{"name", pii.CategoryIdentity},
		{"diagnosis", pii.CategoryHealth},
		{"aadhaar_number", pii.CategoryGovernmentID},
		{"home_address", pii.CategoryLocation},
		{"none", pii.CategoryOther},
		{"", pii.CategoryOther},
		{"quantum_flux", pii.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.piiType, func(t *testing.T) {
			if got := pii.CategoryForType(tt.piiType); got != tt.want {
				t.Errorf("CategoryForType(%q) = %s, want %s", tt.piiType, got, tt.want)
			}
		})
	}
}

func TestRiskForCategory(t *testing.T) {
	tests := []struct {
		category pii.Category
		want     pii.Risk
	}{
		{pii.CategoryGovernmentID, pii.RiskHigh},
		{pii.CategoryFinancial, pii.RiskHigh},
		{pii.CategoryHealth, pii.RiskHigh},
		{pii.CategoryChildren, pii.RiskHigh},
		{pii.CategoryContact, pii.RiskMedium},
		{pii.CategoryLocation, pii.RiskMedium},
		{pii.CategoryIdentity, pii.RiskLow},
		{pii.CategoryOther, pii.RiskLow},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			if got := pii.RiskForCategory(tt.category); got != tt.want {
				t.Errorf("RiskForCategory(%s) = %s, want %s", tt.category, got, tt.want)
			}
		})
	}
}

func TestCalculateRisk(t *testing.T) {
	tests := []struct {
		name string
		in   pii.RiskInput
		want pii.Risk
	}{
		{
			name: "high category stays high",
			in:   pii.RiskInput{Category: pii.CategoryGovernmentID, Volume: 50000},
			want: pii.RiskHigh,
		},
		{
			name: "encryption lowers high to medium",
			in:   pii.RiskInput{Category: pii.CategoryFinancial, Protection: pii.ProtectionEncrypted},
			want: pii.RiskMedium,
		},
		{
			name: "medium category with heavy use escalates",
			in:   pii.RiskInput{Category: pii.CategoryContact, Volume: 20000, ProcessCount: 6},
			want: pii.RiskHigh,
		},
		{
			name: "low category stays low",
			in:   pii.RiskInput{Category: pii.CategoryBehavioral},
			want: pii.RiskLow,
		},
		{
			name: "masked medium drops to low",
			in:   pii.RiskInput{Category: pii.CategoryLocation, Protection: pii.ProtectionMasked},
			want: pii.RiskLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pii.CalculateRisk(tt.in); got != tt.want {
				t.Errorf("CalculateRisk = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCalculateSensitivity(t *testing.T) {
	tests := []struct {
		name   string
		risk   pii.Risk
		volume int
		want   pii.Sensitivity
	}{
		{"high risk small volume", pii.RiskHigh, 100, pii.SensitivitySens},
		{"high risk huge volume", pii.RiskHigh, 200000, pii.SensitivityCritical},
		{"medium risk", pii.RiskMedium, 100, pii.SensitivityInternal},
		{"low risk", pii.RiskLow, 100, pii.SensitivityPublic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pii.CalculateSensitivity(tt.risk, tt.volume); got != tt.want {
				t.Errorf("CalculateSensitivity = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOutcomeIsPII(t *testing.T) {
	tests := []struct {
		name string
		out  pii.Outcome
		want bool
	}{
		{"auto classified email", pii.Outcome{Type: "email", Status: pii.StatusAutoClassified}, true},
		{"confirmed aadhaar", pii.Outcome{Type: "aadhaar", Status: pii.StatusConfirmed}, true},
		{"needs confirmation is not yet pii", pii.Outcome{Type: "email", Status: pii.StatusNeedsConfirmation}, false},
		{"discarded", pii.Outcome{Type: "email", Status: pii.StatusDiscarded}, false},
		{"rejected", pii.Outcome{Type: "email", Status: pii.StatusRejected}, false},
		{"type none never pii", pii.Outcome{Type: "none", Status: pii.StatusAutoClassified}, false},
		{"empty type never pii", pii.Outcome{Status: pii.StatusAutoClassified}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.out.IsPII(); got != tt.want {
				t.Errorf("IsPII() = %v, want %v", got, tt.want)
			}
		})
	}
}
