package models_test

import (
	"time"

	"github.com/spendlens/backend/internal/models"
)

func (suite *TestSuiteStandard) TestSubscriptionKindDefaults() {
	subscription := suite.createTestSubscription(models.Subscription{
		Merchant: "Netflix",
		Cadence:  models.CadenceMonthly,
	})

	suite.Assert().Equal(models.KindSubscription, subscription.Kind)
}

func (suite *TestSuiteStandard) TestSubscriptionNextDueDate() {
	subscription := models.Subscription{
		Cadence:  models.CadenceMonthly,
		LastSeen: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	// Day is clamped to the shorter month
	next := subscription.NextDueDate(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	suite.Assert().Equal(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), next)

	// Occurrences roll forward until they pass the reference time
	next = subscription.NextDueDate(time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC))
	suite.Assert().Equal(time.Date(2026, 4, 28, 0, 0, 0, 0, time.UTC), next)
}

func (suite *TestSuiteStandard) TestSubscriptionNextDueDateWeekly() {
	subscription := models.Subscription{
		Cadence:  models.CadenceWeekly,
		LastSeen: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}

	next := subscription.NextDueDate(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	suite.Assert().Equal(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), next)
}

func (suite *TestSuiteStandard) TestSubscriptionCadenceDays() {
	suite.Assert().Equal(7, models.CadenceWeekly.Days())
	suite.Assert().Equal(30, models.CadenceMonthly.Days())
	suite.Assert().Equal(91, models.CadenceQuarterly.Days())
	suite.Assert().Equal(365, models.CadenceYearly.Days())
	suite.Assert().Equal(0, models.Cadence("fortnightly").Days())
}

func (suite *TestSuiteStandard) TestSubscriptionSignatureUnique() {
	subscription := suite.createTestSubscription(models.Subscription{Merchant: "Spotify", Cadence: models.CadenceMonthly})

	duplicate := models.Subscription{
		RecurringSignature: subscription.RecurringSignature,
		Merchant:           "Spotify",
		Cadence:            models.CadenceMonthly,
		LastSeen:           time.Now(),
	}
	err := models.DB.Create(&duplicate).Error
	suite.Assert().ErrorIs(err, models.ErrSubscriptionSignatureNotUnique)
}
