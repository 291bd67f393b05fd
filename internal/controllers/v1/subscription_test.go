package v1_test

import (
	"fmt"
	"net/http"
	"time"

	v1 "github.com/spendlens/backend/internal/controllers/v1"
	"github.com/spendlens/backend/internal/models"
	"github.com/spendlens/backend/test"
)

func (suite *TestSuiteStandard) TestGetSubscriptions() {
	co := suite.controller()
	suite.createTestSubscription(models.Subscription{
		Merchant: "Netflix",
		Cadence:  models.CadenceMonthly,
		Amount:   amount(649),
		Active:   true,
		LastSeen: date(2025, 3, 1),
	})
	suite.createTestSubscription(models.Subscription{
		Merchant: "Old Gym",
		Cadence:  models.CadenceMonthly,
		Amount:   amount(1200),
		Active:   false,
		LastSeen: date(2024, 6, 1),
	})

	recorder := test.Request(co, suite.T(), http.MethodGet, "/v1/subscriptions", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.SubscriptionListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().Len(response.Data, 2)
	suite.Assert().Equal("Netflix", response.Data[0].Merchant)

	recorder = test.Request(co, suite.T(), http.MethodGet, "/v1/subscriptions?active=true", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Len(response.Data, 1)
}

func (suite *TestSuiteStandard) TestUpdateSubscriptionDeactivates() {
	co := suite.controller()
	subscription := suite.createTestSubscription(models.Subscription{
		Merchant: "Netflix",
		Cadence:  models.CadenceMonthly,
		Amount:   amount(649),
		Active:   true,
		LastSeen: time.Now(),
	})

	recorder := test.Request(co, suite.T(), http.MethodPatch, fmt.Sprintf("/v1/subscriptions/%s", subscription.ID), `{"active": false}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.SubscriptionResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().False(response.Data.Active)

	// A manual change sticks for the next scan
	suite.Assert().True(response.Data.UserConfirmed)
}

func (suite *TestSuiteStandard) TestUpdateSubscriptionCategory() {
	co := suite.controller()
	entertainment := suite.createTestCategory(models.Category{Name: "Entertainment"})
	subscription := suite.createTestSubscription(models.Subscription{
		Merchant: "Netflix",
		Cadence:  models.CadenceMonthly,
		Amount:   amount(649),
		Active:   true,
		LastSeen: time.Now(),
	})

	recorder := test.Request(co, suite.T(), http.MethodPatch, fmt.Sprintf("/v1/subscriptions/%s", subscription.ID), map[string]string{"categoryId": entertainment.ID.String()})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.SubscriptionResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().NotNil(response.Data.CategoryID)
	suite.Assert().Equal(entertainment.ID, *response.Data.CategoryID)
}

func (suite *TestSuiteStandard) TestScanSubscriptions() {
	co := suite.controller()
	statement := suite.createTestStatement(models.Statement{})

	for month := 1; month <= 4; month++ {
		suite.createTestTransaction(models.Transaction{
			StatementID: statement.ID,
			PostedDate:  date(2025, time.Month(month), 5),
			Description:        "NETFLIX.COM SUBSCRIPTION",
			MerchantRaw:        "NETFLIX.COM",
			MerchantNormalized: "Netflix",
			Amount:             amount(649),
		})
	}

	recorder := test.Request(co, suite.T(), http.MethodPost, "/v1/subscriptions/scan", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.ScanResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal(1, response.SubscriptionsUpserted)

	recorder = test.Request(co, suite.T(), http.MethodGet, "/v1/subscriptions", nil)
	var list v1.SubscriptionListResponse
	test.DecodeResponse(suite.T(), &recorder, &list)
	suite.Require().Len(list.Data, 1)
	suite.Assert().Equal(models.CadenceMonthly, list.Data[0].Cadence)
}

func (suite *TestSuiteStandard) TestDeleteSubscription() {
	co := suite.controller()
	subscription := suite.createTestSubscription(models.Subscription{
		Merchant: "Netflix",
		Cadence:  models.CadenceMonthly,
		Amount:   amount(649),
		LastSeen: time.Now(),
	})

	recorder := test.Request(co, suite.T(), http.MethodDelete, fmt.Sprintf("/v1/subscriptions/%s", subscription.ID), nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)
}
