package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")

	// Uniqueness conflicts, translated from database errors in createUpdateCallback
	ErrStatementAlreadyExists          = errors.New("a statement with this content already exists")
	ErrTransactionAlreadyExists        = errors.New("a transaction with this fingerprint already exists in the ledger")
	ErrCategoryNameNotUnique           = errors.New("the category name must be unique")
	ErrSubscriptionSignatureNotUnique  = errors.New("a subscription with this recurring signature already exists")
	ErrBudgetAlreadyExists             = errors.New("a budget for this scope and category already exists")
	ErrTotalBudgetExists               = errors.New("a budget with total scope already exists")
	ErrCategoryRulePatternNotUnique    = errors.New("a rule with this pattern already exists")

	// Domain invariants enforced in model hooks
	ErrBudgetLimitNotPositive    = errors.New("the monthly limit must be positive")
	ErrCategoryBudgetNeedsTarget = errors.New("a category scoped budget needs a category")
	ErrDefaultCategoryProtected  = errors.New("default categories cannot be deleted")
	ErrParseJobInProgress        = errors.New("a parse job for this statement is already pending or processing")
)
