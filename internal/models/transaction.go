package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategorySource records which actor assigned a transaction's category.
type CategorySource string

const (
	CategorySourceManual CategorySource = "manual"
	CategorySourceRule   CategorySource = "rule"
	CategorySourceAI     CategorySource = "ai"
)

// Transaction is one ledger entry extracted from a statement or entered
// manually.
type Transaction struct {
	DefaultModel
	StatementID        uuid.UUID  `gorm:"index"`
	Statement          Statement  `json:"-"`
	CategoryID         *uuid.UUID `gorm:"index"`
	Category           Category   `json:"-"`
	PostedDate         time.Time
	Weekday            int // derived from PostedDate, kept as columns for reporting queries
	Month              int
	Year               int
	Description        string
	Amount             decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Currency           string
	MerchantRaw        string
	MerchantNormalized string `gorm:"index"`
	Confidence         float64
	NeedsReview        bool
	UserEdited         bool
	Excluded           bool
	CategorySource     CategorySource
	Fingerprint        string `gorm:"uniqueIndex"` // SHA256 over date, description and signed amount
	RecurringSignature string `gorm:"index"`
	RecurringCadence   string
	AnomalyDismissed   bool
}

func (t Transaction) Self() string {
	return "Transaction"
}

// BeforeSave
//   - sets the timezone for PostedDate to UTC
//   - derives the weekday, month and year columns
//   - trims whitespace from string fields
func (t *Transaction) BeforeSave(_ *gorm.DB) (err error) {
	t.Description = strings.TrimSpace(t.Description)
	t.MerchantRaw = strings.TrimSpace(t.MerchantRaw)
	t.Fingerprint = strings.TrimSpace(t.Fingerprint)

	// Ensure that the Category ID is nil and not a pointer to a nil UUID
	// when it is set
	if t.CategoryID != nil && *t.CategoryID == uuid.Nil {
		t.CategoryID = nil
	}

	if t.PostedDate.IsZero() {
		t.PostedDate = time.Now().In(time.UTC)
	} else {
		t.PostedDate = t.PostedDate.In(time.UTC)
	}

	t.Weekday = int(t.PostedDate.Weekday())
	t.Month = int(t.PostedDate.Month())
	t.Year = t.PostedDate.Year()

	return
}

// AfterFind updates the timestamps to use UTC as
// timezone, not +0000. Yes, this is different.
//
// We already store them in UTC, but somehow reading
// them from the database returns them as +0000.
func (t *Transaction) AfterFind(tx *gorm.DB) (err error) {
	err = t.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	t.PostedDate = t.PostedDate.In(time.UTC)
	return
}
