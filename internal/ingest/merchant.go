package ingest

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	paymentPrefixRe = regexp.MustCompile(`(?i)^(pos|upi|imps|neft|rtgs)[\s\-/]+`)
	punctuationRe   = regexp.MustCompile(`[^\w\s]`)
	numSuffixRe     = regexp.MustCompile(`\s+\d+$`)
	whitespaceRe    = regexp.MustCompile(`\s+`)

	titleCaser = cases.Title(language.English)
)

// NormalizeMerchant derives a stable merchant key from the raw merchant
// name or, failing that, the transaction description. Payment rail
// prefixes, punctuation and trailing reference numbers are stripped so the
// same merchant hashes identically across statements.
func NormalizeMerchant(rawMerchant, description string) string {
	base := strings.TrimSpace(rawMerchant)
	if base == "" {
		base = strings.TrimSpace(description)
	}
	if base == "" {
		return ""
	}

	text := paymentPrefixRe.ReplaceAllString(base, "")
	text = punctuationRe.ReplaceAllString(text, " ")
	text = numSuffixRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))

	if text == "" {
		return ""
	}

	return titleCaser.String(strings.ToLower(text))
}

// bankPatterns maps issuer names to the keywords that identify them in a
// statement.
var bankPatterns = []struct {
	bank     string
	keywords []string
}{
	{"HDFC", []string{"HDFC"}},
	{"ICICI", []string{"ICICI"}},
	{"SBI", []string{"STATE BANK", "SBI"}},
	{"AXIS", []string{"AXIS"}},
	{"KOTAK", []string{"KOTAK"}},
	{"YES", []string{"YES BANK"}},
	{"IDFC", []string{"IDFC"}},
	{"INDUSIND", []string{"INDUSIND"}},
	{"HSBC", []string{"HSBC"}},
	{"AMEX", []string{"AMERICAN EXPRESS", "AMEX"}},
	{"CITI", []string{"CITIBANK", "CITI"}},
	{"RBL", []string{"RBL"}},
}

// DetectIssuingBank guesses the issuer from the oracle's source name, the
// extracted text and the filename. Best effort, an empty result is fine.
func DetectIssuingBank(sourceName, fullText, filename string) string {
	haystack := strings.ToUpper(sourceName + " " + filename + " " + fullText)

	for _, candidate := range bankPatterns {
		for _, keyword := range candidate.keywords {
			if strings.Contains(haystack, keyword) {
				return candidate.bank
			}
		}
	}

	return ""
}
