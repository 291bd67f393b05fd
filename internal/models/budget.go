package models

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BudgetScope determines what a budget's limit applies to.
type BudgetScope string

const (
	ScopeTotal    BudgetScope = "total"
	ScopeCategory BudgetScope = "category"
)

// Budget is a monthly spending limit, either across the whole ledger
// (total scope, at most one such budget) or for a single category.
type Budget struct {
	DefaultModel
	Scope        BudgetScope `gorm:"uniqueIndex:budget_scope_category"`
	CategoryID   *uuid.UUID  `gorm:"uniqueIndex:budget_scope_category"`
	Category     Category    `json:"-"`
	MonthlyLimit decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
}

func (b Budget) Self() string {
	return "Budget"
}

func (b *Budget) BeforeSave(_ *gorm.DB) error {
	if !b.MonthlyLimit.IsPositive() {
		return ErrBudgetLimitNotPositive
	}

	if b.Scope == ScopeCategory && (b.CategoryID == nil || *b.CategoryID == uuid.Nil) {
		return ErrCategoryBudgetNeedsTarget
	}

	if b.Scope == ScopeTotal {
		b.CategoryID = nil
	}

	return nil
}

// BeforeCreate enforces the single total scope budget. The unique index
// cannot do this since the total scope row has a NULL category and SQLite
// treats NULLs as distinct.
func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	err := b.DefaultModel.BeforeCreate(tx)
	if err != nil {
		return err
	}

	if b.Scope != ScopeTotal {
		return nil
	}

	var existing Budget
	err = tx.Where(&Budget{Scope: ScopeTotal}).First(&existing).Error
	if err == nil {
		return ErrTotalBudgetExists
	}
	if errors.Is(err, ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}

	return err
}
