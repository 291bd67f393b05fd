package v1_test

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	v1 "github.com/spendlens/backend/internal/controllers/v1"
	"github.com/spendlens/backend/internal/models"
	"github.com/spendlens/backend/test"
)

func (suite *TestSuiteStandard) TestCreateRuleAppliesToLedger() {
	co := suite.controller()
	category := suite.createTestCategory(models.Category{Name: "Food & Dining"})
	transaction := suite.createTestTransaction(models.Transaction{
		PostedDate:  date(2025, time.March, 3),
		Description: "ZOMATO ORDER 4711",
		Amount:      amount(420),
	})

	body := fmt.Sprintf(`{"pattern": "*zomato*", "categoryId": "%s"}`, category.ID)
	recorder := test.Request(co, suite.T(), http.MethodPost, "/v1/rules", body)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.RuleResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal("*zomato*", response.Data.Pattern)

	suite.Require().NoError(models.DB.First(&transaction, transaction.ID).Error)
	suite.Require().NotNil(transaction.CategoryID)
	suite.Assert().Equal(category.ID, *transaction.CategoryID)
	suite.Assert().Equal(models.CategorySourceRule, transaction.CategorySource)
}

func (suite *TestSuiteStandard) TestCreateRuleDuplicatePattern() {
	co := suite.controller()
	category := suite.createTestCategory(models.Category{Name: "Shopping"})

	body := fmt.Sprintf(`{"pattern": "*amazon*", "categoryId": "%s"}`, category.ID)
	recorder := test.Request(co, suite.T(), http.MethodPost, "/v1/rules", body)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	// Patterns are lowercased before saving, so this collides
	body = fmt.Sprintf(`{"pattern": "*AMAZON*", "categoryId": "%s"}`, category.ID)
	recorder = test.Request(co, suite.T(), http.MethodPost, "/v1/rules", body)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestCreateRuleUnknownCategory() {
	co := suite.controller()

	body := fmt.Sprintf(`{"pattern": "*uber*", "categoryId": "%s"}`, uuid.New())
	recorder := test.Request(co, suite.T(), http.MethodPost, "/v1/rules", body)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestCreateRuleWithoutPattern() {
	co := suite.controller()
	category := suite.createTestCategory(models.Category{Name: "Travel"})

	body := fmt.Sprintf(`{"categoryId": "%s"}`, category.ID)
	recorder := test.Request(co, suite.T(), http.MethodPost, "/v1/rules", body)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestGetRulesOrdered() {
	co := suite.controller()
	category := suite.createTestCategory(models.Category{Name: "Transport"})
	suite.Require().NoError(models.DB.Create(&models.CategoryRule{Pattern: "*ola*", CategoryID: category.ID, Priority: 20}).Error)
	suite.Require().NoError(models.DB.Create(&models.CategoryRule{Pattern: "*uber*", CategoryID: category.ID, Priority: 10}).Error)

	recorder := test.Request(co, suite.T(), http.MethodGet, "/v1/rules", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.RuleListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().Len(response.Data, 2)
	suite.Assert().Equal("*uber*", response.Data[0].Pattern)
}

func (suite *TestSuiteStandard) TestDeleteRule() {
	co := suite.controller()
	category := suite.createTestCategory(models.Category{Name: "Entertainment"})
	rule := models.CategoryRule{Pattern: "*netflix*", CategoryID: category.ID}
	suite.Require().NoError(models.DB.Create(&rule).Error)

	recorder := test.Request(co, suite.T(), http.MethodDelete, fmt.Sprintf("/v1/rules/%s", rule.ID), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	recorder = test.Request(co, suite.T(), http.MethodDelete, fmt.Sprintf("/v1/rules/%s", rule.ID), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}
