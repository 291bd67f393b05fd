// Package fingerprint computes the stable hashes used as dedup keys for
// documents, ledger transactions and recurring charge clusters.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Document returns the fingerprint of an uploaded document's bytes.
func Document(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Transaction returns the dedup fingerprint of a ledger entry. It is
// computed over the posted date, the lowercased description and the signed
// amount rounded to cents, so the same charge extracted twice (for example
// by a reparse) hashes identically regardless of extraction noise in
// other fields.
func Transaction(date time.Time, description string, amount decimal.Decimal) string {
	payload := fmt.Sprintf("%s|%s|%s",
		date.Format("2006-01-02"),
		strings.ToLower(strings.TrimSpace(description)),
		amount.StringFixed(2),
	)

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Recurring returns the signature of a recurring charge cluster. One
// cluster per normalized merchant and cadence.
func Recurring(merchantNormalized string, cadence string) string {
	payload := fmt.Sprintf("%s|%s", strings.ToLower(strings.TrimSpace(merchantNormalized)), cadence)

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
