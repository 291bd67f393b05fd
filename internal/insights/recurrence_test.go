package insights_test

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlens/backend/internal/insights"
	"github.com/spendlens/backend/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (suite *TestSuiteStandard) TestScanDetectsMonthlySubscription() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})
	suite.spend(statement, date(2026, 1, 5), "GYM FLEX MEMBERSHIP", "Gym Flex", 999)
	suite.spend(statement, date(2026, 2, 4), "GYM FLEX MEMBERSHIP", "Gym Flex", 999)
	suite.spend(statement, date(2026, 3, 6), "GYM FLEX MEMBERSHIP", "Gym Flex", 999)

	detector := insights.NewDetector(suite.defaultConfig())
	count, err := detector.Scan()
	suite.Require().NoError(err)
	suite.Assert().Equal(1, count)

	var sub models.Subscription
	suite.Require().NoError(models.DB.First(&sub, "merchant = ?", "Gym Flex").Error)
	suite.Assert().Equal(models.CadenceMonthly, sub.Cadence)
	suite.Assert().Equal(models.KindSubscription, sub.Kind)
	suite.Assert().Equal(3, sub.TransactionCount)
	suite.Assert().True(sub.Active)
	suite.Assert().True(sub.Amount.Equal(decimal.NewFromInt(999)))

	// The matched transactions carry the recurring signature now.
	var tagged int64
	models.DB.Model(&models.Transaction{}).Where("recurring_signature = ?", "gym flex:subscription").Count(&tagged)
	suite.Assert().EqualValues(3, tagged)
}

func (suite *TestSuiteStandard) TestScanIsIdempotent() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})
	suite.spend(statement, date(2026, 1, 5), "GYM FLEX MEMBERSHIP", "Gym Flex", 999)
	suite.spend(statement, date(2026, 2, 4), "GYM FLEX MEMBERSHIP", "Gym Flex", 999)

	detector := insights.NewDetector(suite.defaultConfig())
	_, err := detector.Scan()
	suite.Require().NoError(err)

	// User confirms the row, then a rescan runs over the same ledger.
	var sub models.Subscription
	suite.Require().NoError(models.DB.First(&sub, "merchant = ?", "Gym Flex").Error)
	suite.Require().NoError(models.DB.Model(&sub).Update("user_confirmed", true).Error)

	_, err = detector.Scan()
	suite.Require().NoError(err)

	var count int64
	models.DB.Model(&models.Subscription{}).Count(&count)
	suite.Assert().EqualValues(1, count)

	suite.Require().NoError(models.DB.First(&sub, "merchant = ?", "Gym Flex").Error)
	suite.Assert().True(sub.UserConfirmed)
	suite.Assert().True(sub.Active)
}

func (suite *TestSuiteStandard) TestScanDeactivatesStaleRows() {
	confirmed := suite.createTestSubscription(models.Subscription{
		Merchant:      "Old Confirmed Service",
		Cadence:       models.CadenceMonthly,
		Amount:        decimal.NewFromInt(100),
		Active:        true,
		UserConfirmed: true,
		LastSeen:      date(2025, 6, 1),
	})
	stale := suite.createTestSubscription(models.Subscription{
		Merchant: "Vanished Service",
		Cadence:  models.CadenceMonthly,
		Amount:   decimal.NewFromInt(200),
		Active:   true,
		LastSeen: date(2025, 6, 1),
	})

	detector := insights.NewDetector(suite.defaultConfig())
	_, err := detector.Scan()
	suite.Require().NoError(err)

	// The auto-detected row without ledger evidence goes inactive, the
	// user-confirmed one is left alone. Neither is deleted.
	var reloaded models.Subscription
	suite.Require().NoError(models.DB.First(&reloaded, "id = ?", stale.ID).Error)
	suite.Assert().False(reloaded.Active)

	reloaded = models.Subscription{}
	suite.Require().NoError(models.DB.First(&reloaded, "id = ?", confirmed.ID).Error)
	suite.Assert().True(reloaded.Active)
}

func (suite *TestSuiteStandard) TestScanMergesTruncatedMerchants() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})
	suite.spend(statement, date(2026, 1, 3), "AUDIOSTREAM PAYMENT", "Audiostream Si", 119)
	suite.spend(statement, date(2026, 2, 2), "AUDIOSTREAM PAYMENT", "Audiostream", 119)
	suite.spend(statement, date(2026, 3, 4), "AUDIOSTREAM PAYMENT", "Audiostream", 119)

	detector := insights.NewDetector(suite.defaultConfig())
	_, err := detector.Scan()
	suite.Require().NoError(err)

	// One merged row under the shorter display name.
	var count int64
	models.DB.Model(&models.Subscription{}).Count(&count)
	suite.Assert().EqualValues(1, count)

	var sub models.Subscription
	suite.Require().NoError(models.DB.First(&sub, "merchant = ?", "Audiostream").Error)
	suite.Assert().Equal(3, sub.TransactionCount)
}

func (suite *TestSuiteStandard) TestScanDetectsConfirmedInstallment() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})
	suite.spend(statement, date(2026, 1, 10), "OFFUS EMI,PRIN 03/12", "Fono Retail", 2500)

	detector := insights.NewDetector(suite.defaultConfig())
	_, err := detector.Scan()
	suite.Require().NoError(err)

	// A confirmed PRIN/INT marker qualifies even as a single occurrence.
	var sub models.Subscription
	suite.Require().NoError(models.DB.First(&sub, "merchant = ?", "Fono Retail").Error)
	suite.Assert().Equal(models.KindInstallment, sub.Kind)
}

func (suite *TestSuiteStandard) TestScanFlagsBareEMIAsPossible() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})
	suite.spend(statement, date(2026, 1, 10), "EMI PAYMENT FONO", "Fono Retail", 2500)

	detector := insights.NewDetector(suite.defaultConfig())
	_, err := detector.Scan()
	suite.Require().NoError(err)

	var sub models.Subscription
	suite.Require().NoError(models.DB.First(&sub, "merchant = ?", "Fono Retail").Error)
	suite.Assert().Equal(models.KindPossibleInstallment, sub.Kind)
}

func (suite *TestSuiteStandard) TestScanMonthlyWithMissingMonths() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})
	// Only two statements uploaded, 60 days apart. A gap that is a clean
	// multiple of 30 still reads as monthly.
	suite.spend(statement, date(2026, 1, 5), "CLOUD DRIVE PLAN", "Cloud Drive", 130)
	suite.spend(statement, date(2026, 3, 6), "CLOUD DRIVE PLAN", "Cloud Drive", 130)

	detector := insights.NewDetector(suite.defaultConfig())
	_, err := detector.Scan()
	suite.Require().NoError(err)

	var sub models.Subscription
	suite.Require().NoError(models.DB.First(&sub, "merchant = ?", "Cloud Drive").Error)
	suite.Assert().Equal(models.CadenceMonthly, sub.Cadence)
}

func (suite *TestSuiteStandard) TestScanKnownServiceKeyword() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})
	// Gaps too irregular for the interval detector, but the description
	// matches a known recurring service.
	suite.spend(statement, date(2026, 1, 3), "NETFLIX.COM 4029357733", "Netflix Com", 649)
	suite.spend(statement, date(2026, 1, 20), "NETFLIX.COM 4029357733", "Netflix Com", 649)

	detector := insights.NewDetector(suite.defaultConfig())
	_, err := detector.Scan()
	suite.Require().NoError(err)

	var sub models.Subscription
	suite.Require().NoError(models.DB.First(&sub, "merchant = ?", "Netflix").Error)
	suite.Assert().Equal(models.KindSubscription, sub.Kind)
}

func (suite *TestSuiteStandard) TestScanIgnoresSingleOccurrences() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})
	suite.spend(statement, date(2026, 1, 5), "ONE OFF PURCHASE", "Corner Store", 450)

	detector := insights.NewDetector(suite.defaultConfig())
	count, err := detector.Scan()
	suite.Require().NoError(err)
	suite.Assert().Zero(count)
}

func (suite *TestSuiteStandard) TestScanRejectsDissimilarAmounts() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})
	suite.spend(statement, date(2026, 1, 5), "RESTAURANT VISIT", "Taco Corner", 300)
	suite.spend(statement, date(2026, 2, 4), "RESTAURANT VISIT", "Taco Corner", 1250)

	detector := insights.NewDetector(suite.defaultConfig())
	count, err := detector.Scan()
	suite.Require().NoError(err)
	suite.Assert().Zero(count)
}
