// Package detect implements the deterministic pattern stage of the
// classification pipeline. Rules combine a value-shape predicate with a
// field-name keyword predicate and are evaluated in a fixed order where the
// first match wins; there is no scoring across rules.
package detect

import (
	"regexp"
	"strings"

	"github.com/privata-io/privata/internal/pii"
)

var (
	digits12Re = regexp.MustCompile(`^\d{12}$`)
	digits916R = regexp.MustCompile(`^\d{9,18}$`)
	digits16Re = regexp.MustCompile(`^\d{16}$`)
	panRe      = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	phoneRe    = regexp.MustCompile(`^[6-9]\d{9}$`)
	emailRe    = regexp.MustCompile(`\S+@\S+\.\S+`)
	dateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$|^\d{2}/\d{2}/\d{4}$`)
	alphaRe    = regexp.MustCompile(`^[a-zA-Z\s.]+$`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

var (
	bankKeywords    = []string{"account", "ac_no", "bank_account", "acc_no"}
	aadhaarKeywords = []string{"aadhaar", "uidai", "adhaar"}
	cardKeywords    = []string{"card", "credit", "debit", "cc_no"}
	phoneKeywords   = []string{"phone", "mobile", "contact", "cell"}
	addressValues   = []string{"road", "street", "nagar", "lane", "colony", "apartment", "marg", "sector", "pincode", "zip"}
	addressFields   = []string{"address", "residence", "location"}
)

// Matcher is the zero-dependency pattern classifier.
type Matcher struct{}

// NewMatcher creates a pattern Matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Detect classifies a single (value, fieldName) pair. It returns nil when no
// rule matches, which hands the field to the probabilistic stage.
//
// Ordering is load-bearing: bank-account-shaped values with banking-context
// field names are checked before Aadhaar, so a 12-digit value in a column
// named bank_account classifies as bank_account. Column-name context always
// overrides raw shape ambiguity.
func (m *Matcher) Detect(value, fieldName string) *pii.Outcome {
	lowerField := strings.ToLower(fieldName)
	cleanValue := spaceRe.ReplaceAllString(value, "")

	var piiType string
	var reason string

	switch {
	case digits916R.MatchString(cleanValue) && isBankField(lowerField):
		piiType = "bank_account"
		reason = "numeric value in banking-context column"

	case digits12Re.MatchString(cleanValue) && fieldContains(lowerField, aadhaarKeywords):
		piiType = "aadhaar"
		reason = "12-digit value in Aadhaar-context column"

	case panRe.MatchString(value):
		piiType = "pan"
		reason = "PAN-shaped value"

	case digits16Re.MatchString(cleanValue) && fieldContains(lowerField, cardKeywords):
		piiType = "credit_card"
		reason = "16-digit value in card-context column"

	case phoneRe.MatchString(cleanValue) && fieldContains(lowerField, phoneKeywords):
		piiType = "phone"
		reason = "Indian mobile number in phone-context column"

	case emailRe.MatchString(value):
		piiType = "email"
		reason = "email-shaped value"

	case isAddress(value, lowerField):
		piiType = "address"
		reason = "address keywords or address-context column"

	case isDOB(value, lowerField):
		piiType = "dob"
		reason = "date value in birth-context column"

	case isName(value, lowerField):
		piiType = "name"
		reason = "alphabetic value in name-context column"
	}

	if piiType == "" {
		return nil
	}

	category := pii.CategoryForType(piiType)
	return &pii.Outcome{
		Type:       piiType,
		Category:   category,
		Risk:       pii.RiskForCategory(category),
		Source:     pii.SourcePattern,
		Confidence: 1.0,
		Status:     pii.StatusAutoClassified,
		Reason:     reason,
	}
}

// isBankField requires a banking keyword and excludes generic id columns so
// surrogate keys like account_id never match.
func isBankField(lowerField string) bool {
	if strings.Contains(lowerField, "id") {
		return false
	}
	return fieldContains(lowerField, bankKeywords)
}

func isAddress(value, lowerField string) bool {
	if len(value) <= 10 {
		return false
	}
	lowerValue := strings.ToLower(value)
	for _, kw := range addressValues {
		if strings.Contains(lowerValue, kw) {
			return true
		}
	}
	return fieldContains(lowerField, addressFields)
}

func isDOB(value, lowerField string) bool {
	if !strings.Contains(lowerField, "dob") && !strings.Contains(lowerField, "birth") {
		return false
	}
	return dateRe.MatchString(value)
}

func isName(value, lowerField string) bool {
	if !strings.Contains(lowerField, "name") {
		return false
	}
	if strings.Contains(lowerField, "file") || strings.Contains(lowerField, "prod") {
		return false
	}
	return alphaRe.MatchString(value) && len(value) > 2
}

func fieldContains(lowerField string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lowerField, kw) {
			return true
		}
	}
	return false
}
