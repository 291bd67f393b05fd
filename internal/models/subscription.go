package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"github.com/shopspring/decimal"
)

// Cadence is the recurrence period of a charge.
type Cadence string

const (
	CadenceWeekly    Cadence = "weekly"
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceYearly    Cadence = "yearly"
)

// Days returns the nominal day count of the cadence.
func (c Cadence) Days() int {
	switch c {
	case CadenceWeekly:
		return 7
	case CadenceMonthly:
		return 30
	case CadenceQuarterly:
		return 91
	case CadenceYearly:
		return 365
	}

	return 0
}

// SubscriptionKind distinguishes open ended subscriptions from loan style
// installment plans.
type SubscriptionKind string

const (
	KindSubscription        SubscriptionKind = "subscription"
	KindInstallment         SubscriptionKind = "installment"
	KindPossibleInstallment SubscriptionKind = "possible_installment"
)

// Subscription is one recurring charge cluster, derived from the ledger by
// the recurrence scan. One row per merchant and cadence.
type Subscription struct {
	DefaultModel
	RecurringSignature  string `gorm:"uniqueIndex"`
	Merchant            string // display name
	MerchantNormalized  string `gorm:"index"`
	Amount              decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // representative (median) charge
	Currency            string
	Cadence             Cadence
	TransactionCount    int
	FirstSeen           time.Time
	LastSeen            time.Time
	AverageIntervalDays float64
	Active              bool
	UserConfirmed       bool
	Kind                SubscriptionKind
	CategoryID          *uuid.UUID
}

func (s Subscription) Self() string {
	return "Subscription"
}

func (s *Subscription) BeforeSave(_ *gorm.DB) error {
	if s.Kind == "" {
		s.Kind = KindSubscription
	}

	s.FirstSeen = s.FirstSeen.In(time.UTC)
	s.LastSeen = s.LastSeen.In(time.UTC)

	return nil
}

func (s *Subscription) AfterFind(tx *gorm.DB) (err error) {
	err = s.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	s.FirstSeen = s.FirstSeen.In(time.UTC)
	s.LastSeen = s.LastSeen.In(time.UTC)
	return
}

// NextDueDate projects the next occurrence after the given time from the
// cadence and the last observed charge. Month based cadences clamp to the
// shorter month's last day.
func (s Subscription) NextDueDate(after time.Time) time.Time {
	next := s.LastSeen

	for !next.After(after) {
		switch s.Cadence {
		case CadenceWeekly:
			next = next.AddDate(0, 0, 7)
		case CadenceMonthly:
			next = addMonthsClamped(next, 1)
		case CadenceQuarterly:
			next = addMonthsClamped(next, 3)
		case CadenceYearly:
			next = addMonthsClamped(next, 12)
		default:
			return time.Time{}
		}
	}

	return next
}

// addMonthsClamped advances t by the given number of months, clamping the
// day to the target month's last day instead of letting time.AddDate roll
// over (Jan 31 + 1 month is Feb 28, not Mar 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
