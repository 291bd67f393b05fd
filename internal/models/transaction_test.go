package models_test

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlens/backend/internal/models"
)

func (suite *TestSuiteStandard) TestTransactionDerivedDateParts() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})

	transaction := suite.createTestTransaction(models.Transaction{
		StatementID: statement.ID,
		PostedDate:  time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC), // a Monday
		Description: "  coffee  ",
		Amount:      decimal.NewFromInt(120),
	})

	suite.Assert().Equal(int(time.Monday), transaction.Weekday)
	suite.Assert().Equal(1, transaction.Month)
	suite.Assert().Equal(2026, transaction.Year)
	suite.Assert().Equal("coffee", transaction.Description)
}

func (suite *TestSuiteStandard) TestTransactionFingerprintUnique() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})

	transaction := suite.createTestTransaction(models.Transaction{
		StatementID: statement.ID,
		PostedDate:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Description: "netflix",
		Amount:      decimal.NewFromInt(649),
	})

	duplicate := models.Transaction{
		StatementID: statement.ID,
		PostedDate:  transaction.PostedDate,
		Description: "netflix",
		Amount:      decimal.NewFromInt(649),
		Fingerprint: transaction.Fingerprint,
	}
	err := models.DB.Create(&duplicate).Error
	suite.Assert().ErrorIs(err, models.ErrTransactionAlreadyExists)
}

func (suite *TestSuiteStandard) TestTransactionNilCategoryPointer() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})

	transaction := suite.createTestTransaction(models.Transaction{
		StatementID: statement.ID,
		PostedDate:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		Description: "uncategorized charge",
		Amount:      decimal.NewFromInt(50),
	})

	suite.Assert().Nil(transaction.CategoryID)
}
