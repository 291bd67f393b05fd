package v1_test

import (
	"fmt"
	"net/http"

	v1 "github.com/spendlens/backend/internal/controllers/v1"
	"github.com/spendlens/backend/internal/models"
	"github.com/spendlens/backend/test"
)

func (suite *TestSuiteStandard) TestGetTransactionsFilters() {
	co := suite.controller()
	statement := suite.createTestStatement(models.Statement{})
	food := suite.createTestCategory(models.Category{Name: "Food & Dining"})

	suite.createTestTransaction(models.Transaction{
		StatementID: statement.ID,
		PostedDate:  date(2025, 3, 2),
		Description: "SWIGGY ORDER",
		Amount:      amount(450),
		CategoryID:  &food.ID,
	})
	suite.createTestTransaction(models.Transaction{
		StatementID: statement.ID,
		PostedDate:  date(2025, 3, 5),
		Description: "UBER TRIP",
		Amount:      amount(230),
		NeedsReview: true,
	})
	suite.createTestTransaction(models.Transaction{
		StatementID: statement.ID,
		PostedDate:  date(2025, 4, 1),
		Description: "PAYMENT RECEIVED",
		Amount:      amount(-680),
		Excluded:    true,
	})

	tests := []struct {
		query string
		count int
	}{
		{"", 3},
		{"category=" + food.ID.String(), 1},
		{"category=uncategorized", 2},
		{"needsReview=true", 1},
		{"excluded=false", 2},
		{"fromDate=2025-03-03&untilDate=2025-03-31", 1},
		{"search=swiggy", 1},
		{"statement=" + statement.ID.String(), 3},
	}

	for _, tt := range tests {
		recorder := test.Request(co, suite.T(), http.MethodGet, "/v1/transactions?"+tt.query, nil)
		test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

		var response v1.TransactionListResponse
		test.DecodeResponse(suite.T(), &recorder, &response)
		suite.Assert().Len(response.Data, tt.count, "Wrong number of transactions for query %q", tt.query)
	}
}

func (suite *TestSuiteStandard) TestGetTransactionsTotals() {
	co := suite.controller()
	statement := suite.createTestStatement(models.Statement{})
	suite.createTestTransaction(models.Transaction{StatementID: statement.ID, PostedDate: date(2025, 3, 2), Description: "A", Amount: amount(100)})
	suite.createTestTransaction(models.Transaction{StatementID: statement.ID, PostedDate: date(2025, 3, 3), Description: "B", Amount: amount(250)})

	recorder := test.Request(co, suite.T(), http.MethodGet, "/v1/transactions?limit=1", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)

	// Totals cover the filter, not the page
	suite.Assert().Len(response.Data, 1)
	suite.Assert().Equal(int64(2), response.Total)
	suite.Assert().True(response.TotalAmount.Equal(amount(350)), "total amount is %s", response.TotalAmount)
}

func (suite *TestSuiteStandard) TestCreateTransaction() {
	co := suite.controller()

	recorder := test.Request(co, suite.T(), http.MethodPost, "/v1/transactions", `{"postedDate": "2025-03-12T00:00:00Z", "description": "Cash chai", "amount": 30, "merchant": "Tea stall"}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusCreated)

	var response v1.TransactionResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().True(response.Data.UserEdited)
	suite.Assert().NotEmpty(response.Data.Fingerprint)
}

func (suite *TestSuiteStandard) TestCreateTransactionIncomplete() {
	co := suite.controller()

	recorder := test.Request(co, suite.T(), http.MethodPost, "/v1/transactions", `{"description": "no amount"}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestUpdateTransactionResolvesReview() {
	co := suite.controller()
	transaction := suite.createTestTransaction(models.Transaction{
		PostedDate:  date(2025, 3, 2),
		Description: "BLURRY ROW",
		Amount:      amount(120),
		NeedsReview: true,
	})

	recorder := test.Request(co, suite.T(), http.MethodPatch, fmt.Sprintf("/v1/transactions/%s", transaction.ID), `{"description": "Corrected row"}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.TransactionResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal("Corrected row", response.Data.Description)
	suite.Assert().True(response.Data.UserEdited)
	suite.Assert().False(response.Data.NeedsReview)
}

func (suite *TestSuiteStandard) TestUpdateTransactionKeepsExplicitReview() {
	co := suite.controller()
	transaction := suite.createTestTransaction(models.Transaction{
		PostedDate:  date(2025, 3, 2),
		Description: "STILL UNSURE",
		Amount:      amount(99),
	})

	recorder := test.Request(co, suite.T(), http.MethodPatch, fmt.Sprintf("/v1/transactions/%s", transaction.ID), `{"needsReview": true}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.TransactionResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().True(response.Data.NeedsReview)
}

func (suite *TestSuiteStandard) TestUpdateTransactionCategoryIsManual() {
	co := suite.controller()
	food := suite.createTestCategory(models.Category{Name: "Food & Dining"})
	transaction := suite.createTestTransaction(models.Transaction{
		PostedDate:  date(2025, 3, 2),
		Description: "SWIGGY ORDER",
		Amount:      amount(450),
	})

	recorder := test.Request(co, suite.T(), http.MethodPatch, fmt.Sprintf("/v1/transactions/%s", transaction.ID), map[string]string{"categoryId": food.ID.String()})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.TransactionResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().NotNil(response.Data.CategoryID)
	suite.Assert().Equal(food.ID, *response.Data.CategoryID)
	suite.Assert().Equal(models.CategorySourceManual, response.Data.CategorySource)
}

func (suite *TestSuiteStandard) TestUpdateTransactionUnknownCategory() {
	co := suite.controller()
	transaction := suite.createTestTransaction(models.Transaction{
		PostedDate:  date(2025, 3, 2),
		Description: "SWIGGY ORDER",
		Amount:      amount(450),
	})

	recorder := test.Request(co, suite.T(), http.MethodPatch, fmt.Sprintf("/v1/transactions/%s", transaction.ID), `{"categoryId": "2f3b08d9-0c7e-4bd2-b4ec-21ded76dfcb5"}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestDeleteTransaction() {
	co := suite.controller()
	transaction := suite.createTestTransaction(models.Transaction{
		PostedDate:  date(2025, 3, 2),
		Description: "GONE SOON",
		Amount:      amount(10),
	})

	recorder := test.Request(co, suite.T(), http.MethodDelete, fmt.Sprintf("/v1/transactions/%s", transaction.ID), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	recorder = test.Request(co, suite.T(), http.MethodGet, fmt.Sprintf("/v1/transactions/%s", transaction.ID), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}
