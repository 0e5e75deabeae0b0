package classifier

import (
	"fmt"
	"strings"

	"github.com/privata-io/privata/internal/pii"
)

// systemInstruction is the fixed prompt contract. The allowed type list is
// the closed taxonomy from the pii package plus "none"; anything else in the
// response is handled by validation, not trusted.
var systemInstruction = fmt.Sprintf(`You are a PII classifier for Indian DPDP Act compliance.

CRITICAL RULES:
- Return ONLY a single valid minified JSON object
- No explanations, no markdown, no text outside the JSON

Classification rules:
1. Ignore standard surrogate identifiers (int/uuid) unless they identify a person.
2. Do NOT classify Aadhaar, PAN, or bank numbers from shape alone; they must be contextually identifiable.
3. If unstructured text contains personal data, identify it.
4. Allowed values for "type": %s, none

Return exactly:
{"type": "string", "confidence": 0.0, "reason": "short explanation"}

"confidence" must be a number between 0.0 and 1.0.`,
	strings.Join(pii.Types(), ", "))

func userText(sampleValue, fieldName string) string {
	return fmt.Sprintf("Column Name: %q\nSample Value: %q", fieldName, sampleValue)
}
