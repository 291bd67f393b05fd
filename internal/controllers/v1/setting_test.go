package v1_test

import (
	"net/http"

	v1 "github.com/spendlens/backend/internal/controllers/v1"
	"github.com/spendlens/backend/internal/models"
	"github.com/spendlens/backend/test"
)

func (suite *TestSuiteStandard) TestUpdateSetting() {
	co := suite.controller()

	recorder := test.Request(co, suite.T(), http.MethodPut, "/v1/settings/apr_percentage", `{"value": "42", "valueType": "number"}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.SettingResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Assert().Equal("42", response.Data.Value)

	// A second PUT replaces the value
	recorder = test.Request(co, suite.T(), http.MethodPut, "/v1/settings/apr_percentage", `{"value": "24", "valueType": "number"}`)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	setting, err := models.GetSetting(models.DB, models.SettingAPR)
	suite.Require().NoError(err)
	suite.Assert().Equal("24", setting.Value)
}

func (suite *TestSuiteStandard) TestGetSettings() {
	co := suite.controller()
	suite.Require().NoError(models.UpsertSetting(models.DB, models.AppSetting{Key: "currency", Value: "INR", ValueType: "string"}))
	suite.Require().NoError(models.UpsertSetting(models.DB, models.AppSetting{Key: "apr_percentage", Value: "36", ValueType: "number"}))

	recorder := test.Request(co, suite.T(), http.MethodGet, "/v1/settings", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.SettingListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	suite.Require().Len(response.Data, 2)
	suite.Assert().Equal("apr_percentage", response.Data[0].Key)
}

func (suite *TestSuiteStandard) TestGetSettingNotFound() {
	co := suite.controller()

	recorder := test.Request(co, suite.T(), http.MethodGet, "/v1/settings/locale", nil)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}
