package v1_test

import (
	"net/http"
	"time"

	"github.com/spendlens/backend/internal/models"
	"github.com/spendlens/backend/test"
)

func (suite *TestSuiteStandard) TestCleanup() {
	co := suite.controller()

	category := suite.createTestCategory(models.Category{Name: "Groceries", IsDefault: true})
	suite.createTestTransaction(models.Transaction{
		PostedDate:  date(2025, time.March, 1),
		Description: "BigBasket",
		Amount:      amount(100),
		CategoryID:  &category.ID,
	})
	suite.createTestSubscription(models.Subscription{Merchant: "Netflix", Cadence: models.CadenceMonthly, Amount: amount(649), LastSeen: date(2025, time.March, 1)})
	suite.createTestBudget(models.Budget{Scope: models.ScopeTotal, MonthlyLimit: amount(50000)})
	suite.Require().NoError(models.UpsertSetting(models.DB, models.AppSetting{Key: "currency", Value: "INR", ValueType: "string"}))

	recorder := test.Request(co, suite.T(), http.MethodDelete, "/v1?confirm=yes-please-delete-everything", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	// Verify that all tables are empty, including protected default categories
	for _, model := range []any{
		&models.Statement{},
		&models.ParseJob{},
		&models.Transaction{},
		&models.Category{},
		&models.CategoryRule{},
		&models.Subscription{},
		&models.Budget{},
		&models.AppSetting{},
	} {
		var count int64
		suite.Require().NoError(models.DB.Model(model).Count(&count).Error)
		suite.Assert().Zerof(count, "table for %T is not empty", model)
	}
}

func (suite *TestSuiteStandard) TestCleanupWithoutConfirmation() {
	co := suite.controller()
	suite.createTestStatement(models.Statement{})

	recorder := test.Request(co, suite.T(), http.MethodDelete, "/v1", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	var count int64
	suite.Require().NoError(models.DB.Model(&models.Statement{}).Count(&count).Error)
	suite.Assert().Equal(int64(1), count)
}
