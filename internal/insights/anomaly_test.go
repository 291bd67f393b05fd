package insights_test

import (
	"github.com/shopspring/decimal"
	"github.com/spendlens/backend/internal/insights"
	"github.com/spendlens/backend/internal/models"
)

func (suite *TestSuiteStandard) TestAnomalyDetectsCategoryOutlier() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})
	category := suite.createTestCategory(models.Category{Name: "Food & Dining"})

	for day := 1; day <= 8; day++ {
		txn := suite.spend(statement, date(2026, 1, day), "lunch", "Cafe Nine", 100)
		suite.Require().NoError(models.DB.Model(&txn).Update("category_id", category.ID).Error)
	}
	outlier := suite.spend(statement, date(2026, 1, 20), "banquet", "Grand Hall", 2000)
	suite.Require().NoError(models.DB.Model(&outlier).Update("category_id", category.ID).Error)

	detector := insights.NewAnomalyDetector(suite.defaultConfig())
	anomalies, err := detector.Detect(decimal.Zero)
	suite.Require().NoError(err)

	suite.Require().Len(anomalies, 1)
	suite.Assert().Equal(outlier.ID, anomalies[0].TransactionID)
	suite.Assert().Equal("category", anomalies[0].Group)
	suite.Assert().Equal("Food & Dining", anomalies[0].GroupName)
	suite.Assert().Greater(anomalies[0].ZScore, 2.5)
	suite.Assert().Equal("notable", anomalies[0].Severity)
	suite.Assert().False(anomalies[0].Dismissed)
}

func (suite *TestSuiteStandard) TestAnomalySkipsSparseGroups() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})
	category := suite.createTestCategory(models.Category{Name: "Shopping"})

	// Four transactions, one wildly out of band. Below the minimum sample
	// size nothing may be flagged.
	for i, amount := range []float64{100, 100, 100, 9000} {
		txn := suite.spend(statement, date(2026, 1, i+1), "purchase", "", amount)
		suite.Require().NoError(models.DB.Model(&txn).Update("category_id", category.ID).Error)
	}

	detector := insights.NewAnomalyDetector(suite.defaultConfig())
	anomalies, err := detector.Detect(decimal.Zero)
	suite.Require().NoError(err)
	suite.Assert().Empty(anomalies)
}

func (suite *TestSuiteStandard) TestAnomalyDetectsMerchantOutlier() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})

	// No categories assigned, the merchant group still carries evidence.
	for day := 1; day <= 8; day++ {
		suite.spend(statement, date(2026, 1, day), "ride", "Speedy Cabs", 250)
	}
	outlier := suite.spend(statement, date(2026, 1, 25), "airport ride", "Speedy Cabs", 5000)

	detector := insights.NewAnomalyDetector(suite.defaultConfig())
	anomalies, err := detector.Detect(decimal.Zero)
	suite.Require().NoError(err)

	suite.Require().Len(anomalies, 1)
	suite.Assert().Equal(outlier.ID, anomalies[0].TransactionID)
	suite.Assert().Equal("merchant", anomalies[0].Group)
}

func (suite *TestSuiteStandard) TestAnomalyMinAmountFilter() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})

	for day := 1; day <= 8; day++ {
		suite.spend(statement, date(2026, 1, day), "snack", "Corner Kiosk", 10)
	}
	suite.spend(statement, date(2026, 1, 25), "party snacks", "Corner Kiosk", 200)

	detector := insights.NewAnomalyDetector(suite.defaultConfig())
	anomalies, err := detector.Detect(decimal.NewFromInt(1000))
	suite.Require().NoError(err)
	suite.Assert().Empty(anomalies)
}

func (suite *TestSuiteStandard) TestAnomalyDismissIsDisplayStateOnly() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})

	for day := 1; day <= 8; day++ {
		suite.spend(statement, date(2026, 1, day), "ride", "Speedy Cabs", 250)
	}
	outlier := suite.spend(statement, date(2026, 1, 25), "airport ride", "Speedy Cabs", 5000)

	detector := insights.NewAnomalyDetector(suite.defaultConfig())
	suite.Require().NoError(detector.Dismiss(outlier.ID))

	// Dismissal never suppresses detection, the flag just travels along.
	anomalies, err := detector.Detect(decimal.Zero)
	suite.Require().NoError(err)
	suite.Require().Len(anomalies, 1)
	suite.Assert().True(anomalies[0].Dismissed)
}
