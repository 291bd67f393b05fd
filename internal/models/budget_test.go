package models_test

import (
	"github.com/shopspring/decimal"
	"github.com/spendlens/backend/internal/models"
)

func (suite *TestSuiteStandard) TestBudgetTotalScopeSingleton() {
	suite.createTestBudget(models.Budget{Scope: models.ScopeTotal, MonthlyLimit: decimal.NewFromInt(50000)})

	second := models.Budget{Scope: models.ScopeTotal, MonthlyLimit: decimal.NewFromInt(60000)}
	err := models.DB.Create(&second).Error
	suite.Assert().ErrorIs(err, models.ErrTotalBudgetExists)
}

func (suite *TestSuiteStandard) TestBudgetLimitMustBePositive() {
	budget := models.Budget{Scope: models.ScopeTotal, MonthlyLimit: decimal.NewFromInt(-5)}
	err := models.DB.Create(&budget).Error
	suite.Assert().ErrorIs(err, models.ErrBudgetLimitNotPositive)

	budget = models.Budget{Scope: models.ScopeTotal}
	err = models.DB.Create(&budget).Error
	suite.Assert().ErrorIs(err, models.ErrBudgetLimitNotPositive)
}

func (suite *TestSuiteStandard) TestBudgetCategoryScopeNeedsCategory() {
	budget := models.Budget{Scope: models.ScopeCategory, MonthlyLimit: decimal.NewFromInt(500)}
	err := models.DB.Create(&budget).Error
	suite.Assert().ErrorIs(err, models.ErrCategoryBudgetNeedsTarget)
}

func (suite *TestSuiteStandard) TestBudgetCategoryScopeUnique() {
	category := suite.createTestCategory(models.Category{Name: "Groceries"})

	suite.createTestBudget(models.Budget{
		Scope:        models.ScopeCategory,
		CategoryID:   &category.ID,
		MonthlyLimit: decimal.NewFromInt(8000),
	})

	duplicate := models.Budget{
		Scope:        models.ScopeCategory,
		CategoryID:   &category.ID,
		MonthlyLimit: decimal.NewFromInt(9000),
	}
	err := models.DB.Create(&duplicate).Error
	suite.Assert().ErrorIs(err, models.ErrBudgetAlreadyExists)
}
