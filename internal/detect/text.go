package detect

import (
	"regexp"

	"github.com/privata-io/privata/internal/pii"
)

var (
	textEmailRe   = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	textPhoneRe   = regexp.MustCompile(`\b[6-9]\d{9}\b`)
	textAadhaarRe = regexp.MustCompile(`\b\d{12}\b`)
	textPANRe     = regexp.MustCompile(`\b[A-Z]{5}[0-9]{4}[A-Z]\b`)
	textBankRe    = regexp.MustCompile(`\b\d{9,18}\b`)
	textCardRe    = regexp.MustCompile(`\b\d{16}\b`)
	bankContextRe = regexp.MustCompile(`(?i)account|bank|ifsc|ac no`)
)

// TextFinding is one PII type located in unstructured text, with the number
// of occurrences.
type TextFinding struct {
	Type     string       `json:"type"`
	Category pii.Category `json:"category"`
	Risk     pii.Risk     `json:"risk"`
	Count    int          `json:"count"`
}

// DetectText sweeps unstructured text for structured PII shapes. Bank-account
// digits are only reported when banking context words appear somewhere in the
// text; a bare digit run in prose is too ambiguous.
func (m *Matcher) DetectText(text string) []TextFinding {
	var findings []TextFinding

	add := func(piiType string, count int) {
		if count == 0 {
			return
		}
		category := pii.CategoryForType(piiType)
		findings = append(findings, TextFinding{
			Type:     piiType,
			Category: category,
			Risk:     pii.RiskForCategory(category),
			Count:    count,
		})
	}

	add("email", len(textEmailRe.FindAllString(text, -1)))
	add("phone", len(textPhoneRe.FindAllString(text, -1)))
	add("aadhaar", len(textAadhaarRe.FindAllString(text, -1)))
	add("pan", len(textPANRe.FindAllString(text, -1)))

	if bankContextRe.MatchString(text) {
		add("bank_account", len(textBankRe.FindAllString(text, -1)))
	}

	add("credit_card", len(textCardRe.FindAllString(text, -1)))

	return findings
}
