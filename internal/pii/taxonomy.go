package pii

import "strings"

// taxonomy maps each statutory category to the data type tags it covers.
// Reverse lookup walks this table, so tags here are the closed set the
// classifier prompt is allowed to return.
var taxonomy = map[Category][]string{
	CategoryIdentity:     {"full_name", "first_name", "last_name", "username", "photo", "name", "gender", "dob"},
	CategoryContact:      {"email", "phone", "mobile", "whatsapp", "contact"},
	CategoryGovernmentID: {"aadhaar", "pan", "passport", "voter_id", "driving_license", "gstin"},
	CategoryFinancial:    {"bank_account", "ifsc", "credit_card", "debit_card", "upi", "account_number", "cvv", "salary"},
	CategoryLocation:     {"address", "city", "state", "pincode", "ip_address", "country", "zip"},
	CategoryHealth:       {"medical_record", "diagnosis", "insurance", "health"},
	CategoryChildren:     {"child_name", "age_of_minor", "school", "minor"},
	CategoryEmployee:     {"employee_id", "payroll", "designation"},
	CategoryDigital:      {"device_id", "cookies", "session_id", "mac_address"},
	CategoryBehavioral:   {"purchase_history", "preferences"},
}

// categoryOrder keeps reverse lookups deterministic across map iteration.
var categoryOrder = []Category{
	CategoryGovernmentID,
	CategoryFinancial,
	CategoryHealth,
	CategoryChildren,
	CategoryContact,
	CategoryLocation,
	CategoryDigital,
	CategoryEmployee,
	CategoryBehavioral,
	CategoryIdentity,
}

// CategoryForType resolves the statutory category for a PII type tag.
// Unknown tags fall back to keyword heuristics, then to CategoryOther.
func CategoryForType(piiType string) Category {
	t := strings.ToLower(strings.TrimSpace(piiType))
	if t == "" || t == TypeNone {
		return CategoryOther
	}

	for _, cat := range categoryOrder {
		for _, tag := range taxonomy[cat] {
			if t == tag {
				return cat
			}
		}
	}

	for _, cat := range categoryOrder {
		for _, tag := range taxonomy[cat] {
			if strings.Contains(t, tag) || strings.Contains(tag, t) {
				return cat
			}
		}
	}

	switch {
	case containsAny(t, "aadhaar", "pan", "passport"):
		return CategoryGovernmentID
	case containsAny(t, "bank", "credit", "debit", "ifsc"):
		return CategoryFinancial
	case containsAny(t, "email", "phone"):
		return CategoryContact
	case containsAny(t, "address", "city", "state", "pincode"):
		return CategoryLocation
	case containsAny(t, "name", "birth"):
		return CategoryIdentity
	}

	return CategoryOther
}

// Types returns the full closed taxonomy as a flat tag list.
func Types() []string {
	var tags []string
	for _, cat := range categoryOrder {
		tags = append(tags, taxonomy[cat]...)
	}
	return tags
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
