package v1_test

import (
	"fmt"
	"net/http"

	v1 "github.com/spendlens/backend/internal/controllers/v1"
	"github.com/spendlens/backend/internal/models"
	"github.com/spendlens/backend/test"
)

func (suite *TestSuiteStandard) TestCreateBudget() {
	co := suite.controller()
	food := suite.createTestCategory(models.Category{Name: "Food & Dining"})

	recorder := test.Request(co, suite.T(), http.MethodPost, "/v1/budgets", map[string]any{
		"scope":        "category",
		"categoryId":   food.ID.String(),
		"monthlyLimit": 15000,
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal(models.ScopeCategory, response.Data.Scope)
}

func (suite *TestSuiteStandard) TestCreateSecondTotalBudgetConflicts() {
	co := suite.controller()

	recorder := test.Request(co, suite.T(), http.MethodPost, "/v1/budgets", `{"scope": "total", "monthlyLimit": 50000}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	recorder = test.Request(co, suite.T(), http.MethodPost, "/v1/budgets", `{"scope": "total", "monthlyLimit": 60000}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestCreateBudgetInvalidLimit() {
	co := suite.controller()
	food := suite.createTestCategory(models.Category{Name: "Food & Dining"})

	recorder := test.Request(co, suite.T(), http.MethodPost, "/v1/budgets", map[string]any{
		"scope":        "category",
		"categoryId":   food.ID.String(),
		"monthlyLimit": -1,
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestUpdateBudget() {
	co := suite.controller()
	food := suite.createTestCategory(models.Category{Name: "Food & Dining"})
	budget := suite.createTestBudget(models.Budget{
		Scope:        models.ScopeCategory,
		CategoryID:   &food.ID,
		MonthlyLimit: amount(10000),
	})

	recorder := test.Request(co, suite.T(), http.MethodPatch, fmt.Sprintf("/v1/budgets/%s", budget.ID), `{"monthlyLimit": 12000}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.BudgetResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().True(response.Data.MonthlyLimit.Equal(amount(12000)))
}

func (suite *TestSuiteStandard) TestDeleteBudget() {
	co := suite.controller()
	budget := suite.createTestBudget(models.Budget{
		Scope:        models.ScopeTotal,
		MonthlyLimit: amount(50000),
	})

	recorder := test.Request(co, suite.T(), http.MethodDelete, fmt.Sprintf("/v1/budgets/%s", budget.ID), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)
}

func (suite *TestSuiteStandard) TestBudgetStatus() {
	co := suite.controller()
	food := suite.createTestCategory(models.Category{Name: "Food & Dining"})
	suite.createTestBudget(models.Budget{
		Scope:        models.ScopeCategory,
		CategoryID:   &food.ID,
		MonthlyLimit: amount(1000),
	})
	suite.createTestTransaction(models.Transaction{
		PostedDate:  date(2025, 3, 10),
		Description: "SWIGGY ORDER",
		Amount:      amount(900),
		CategoryID:  &food.ID,
	})

	recorder := test.Request(co, suite.T(), http.MethodGet, "/v1/budgets/status?month=2025-03", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.BudgetStatusResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().Len(response.Data, 1)
	suite.Assert().InDelta(90.0, response.Data[0].Percent, 0.01)
}

func (suite *TestSuiteStandard) TestBudgetStatusInvalidMonth() {
	co := suite.controller()

	recorder := test.Request(co, suite.T(), http.MethodGet, "/v1/budgets/status?month=browser", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}
