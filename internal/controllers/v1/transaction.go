package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/spendlens/backend/internal/fingerprint"
	"github.com/spendlens/backend/internal/httputil"
	"github.com/spendlens/backend/internal/models"
)

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func (co Controller) RegisterTransactionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetTransactions)
		r.POST("", co.CreateTransaction)
	}

	// Transaction with ID
	{
		r.OPTIONS("/:id", co.OptionsTransactionDetail)
		r.GET("/:id", co.GetTransaction)
		r.PATCH("/:id", co.UpdateTransaction)
		r.DELETE("/:id", co.DeleteTransaction)
	}
}

// TransactionQueryFilter contains the fields transactions can be
// filtered by.
type TransactionQueryFilter struct {
	StatementID string `form:"statement"`
	CategoryID  string `form:"category"` // "uncategorized" matches transactions without a category
	NeedsReview *bool  `form:"needsReview"`
	Excluded    *bool  `form:"excluded"`
	FromDate    string `form:"fromDate"`
	UntilDate   string `form:"untilDate"`
	Search      string `form:"search"` // matches description and merchant
	Offset      uint   `form:"offset"`
	Limit       int    `form:"limit"`
}

// TransactionEditable contains the fields of a transaction a client can
// change. Pointer fields distinguish "not sent" from zero values.
type TransactionEditable struct {
	PostedDate  *time.Time       `json:"postedDate"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Currency    *string          `json:"currency"`
	MerchantRaw *string          `json:"merchant"`
	CategoryID  *uuid.UUID       `json:"categoryId"`
	NeedsReview *bool            `json:"needsReview"`
	Excluded    *bool            `json:"excluded"`
}

type TransactionResponse struct {
	Data models.Transaction `json:"data"`
}

type TransactionListResponse struct {
	Data        []models.Transaction `json:"data"`
	Total       int64                `json:"total" example:"312"`
	TotalAmount decimal.Decimal      `json:"totalAmount" example:"48211.23"`
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [options]
func (co Controller) OptionsTransactionDetail(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var transaction models.Transaction
	err = models.DB.First(&transaction, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

func transactionQuery(filter TransactionQueryFilter) (*gorm.DB, error) {
	q := models.DB.Model(&models.Transaction{}).Order("posted_date desc, created_at desc")

	if filter.StatementID != "" {
		id, err := httputil.UUIDFromString(filter.StatementID)
		if err != nil {
			return nil, fmt.Errorf("parsing the statement ID for filtering: %w", err)
		}
		q = q.Where("statement_id = ?", id)
	}

	if filter.CategoryID == "uncategorized" {
		q = q.Where("category_id IS NULL")
	} else if filter.CategoryID != "" {
		id, err := httputil.UUIDFromString(filter.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("parsing the category ID for filtering: %w", err)
		}
		q = q.Where("category_id = ?", id)
	}

	if filter.NeedsReview != nil {
		q = q.Where("needs_review = ?", *filter.NeedsReview)
	}

	if filter.Excluded != nil {
		q = q.Where("excluded = ?", *filter.Excluded)
	}

	if filter.FromDate != "" {
		from, err := time.Parse("2006-01-02", filter.FromDate)
		if err != nil {
			return nil, fmt.Errorf("parsing fromDate: %w", err)
		}
		q = q.Where("posted_date >= ?", from)
	}

	if filter.UntilDate != "" {
		until, err := time.Parse("2006-01-02", filter.UntilDate)
		if err != nil {
			return nil, fmt.Errorf("parsing untilDate: %w", err)
		}
		q = q.Where("posted_date < ?", until.AddDate(0, 0, 1))
	}

	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		q = q.Where("description LIKE ? OR merchant_raw LIKE ? OR merchant_normalized LIKE ?", like, like, like)
	}

	return q, nil
}

// @Summary		List transactions
// @Description	Returns a list of transactions matching the filter, newest first
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionListResponse
// @Failure		400	{object}	httpError
// @Router			/v1/transactions [get]
// @Param			statement	query	string	false	"Filter by statement ID"
// @Param			category	query	string	false	"Filter by category ID. Use \"uncategorized\" for transactions without a category"
// @Param			needsReview	query	bool	false	"Filter by review state"
// @Param			excluded	query	bool	false	"Filter by exclusion state"
// @Param			fromDate	query	string	false	"Transactions at and after this date, formatted as 2006-01-02"
// @Param			untilDate	query	string	false	"Transactions before and at this date, formatted as 2006-01-02"
// @Param			search		query	string	false	"Substring match on description and merchant"
// @Param			offset		query	uint	false	"The offset of the first transaction returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of transactions to return. Defaults to 50."
func (co Controller) GetTransactions(c *gin.Context) {
	var filter TransactionQueryFilter
	if err := c.Bind(&filter); err != nil {
		e(c, httputil.ErrInvalidQueryString)
		return
	}

	q, err := transactionQuery(filter)
	if err != nil {
		e(c, err)
		return
	}

	var total int64
	err = q.Session(&gorm.Session{}).Count(&total).Error
	if err != nil {
		e(c, err)
		return
	}

	var totalAmount decimal.NullDecimal
	err = q.Session(&gorm.Session{}).Select("SUM(amount)").Scan(&totalAmount).Error
	if err != nil {
		e(c, err)
		return
	}

	// Default to 50 transactions
	limit := 50
	if filter.Limit != 0 {
		limit = filter.Limit
	}

	var transactions []models.Transaction
	err = q.Offset(int(filter.Offset)).Limit(limit).Find(&transactions).Error
	if err != nil {
		e(c, err)
		return
	}

	if transactions == nil {
		transactions = make([]models.Transaction, 0)
	}

	c.JSON(http.StatusOK, TransactionListResponse{
		Data:        transactions,
		Total:       total,
		TotalAmount: totalAmount.Decimal,
	})
}

// @Summary		Get transaction
// @Description	Returns a specific transaction
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [get]
func (co Controller) GetTransaction(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var transaction models.Transaction
	err = models.DB.First(&transaction, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Data: transaction})
}

// @Summary		Create transaction
// @Description	Creates a transaction that was not part of any statement, for example a cash expense
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		201			{object}	TransactionResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Param			transaction	body		TransactionEditable	true	"Transaction"
// @Router			/v1/transactions [post]
func (co Controller) CreateTransaction(c *gin.Context) {
	var editable TransactionEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		e(c, err)
		return
	}

	if editable.Description == nil || editable.Amount == nil || editable.PostedDate == nil {
		e(c, errTransactionIncomplete)
		return
	}

	transaction := models.Transaction{
		PostedDate:  *editable.PostedDate,
		Description: *editable.Description,
		Amount:      *editable.Amount,
		UserEdited:  true,
	}

	if editable.Currency != nil {
		transaction.Currency = *editable.Currency
	}
	if editable.MerchantRaw != nil {
		transaction.MerchantRaw = *editable.MerchantRaw
	}
	if editable.Excluded != nil {
		transaction.Excluded = *editable.Excluded
	}
	if editable.CategoryID != nil {
		if err := categoryExists(*editable.CategoryID); err != nil {
			e(c, err)
			return
		}
		transaction.CategoryID = editable.CategoryID
		transaction.CategorySource = models.CategorySourceManual
	}

	transaction.Fingerprint = fingerprint.Transaction(transaction.PostedDate, transaction.Description, transaction.Amount)

	err = models.DB.Create(&transaction).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{Data: transaction})
}

// @Summary		Update transaction
// @Description	Updates an existing transaction. Only values to be updated need to be specified. Updating marks the transaction as user edited and resolves its review state unless the request sets it explicitly.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		200			{object}	TransactionResponse
// @Failure		400			{object}	httpError
// @Failure		404			{object}	httpError
// @Param			id			path		string				true	"ID formatted as string"
// @Param			transaction	body		TransactionEditable	true	"Transaction"
// @Router			/v1/transactions/{id} [patch]
func (co Controller) UpdateTransaction(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var transaction models.Transaction
	err = models.DB.First(&transaction, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	var update TransactionEditable
	err = httputil.BindData(c, &update)
	if err != nil {
		e(c, err)
		return
	}

	if update.PostedDate != nil {
		transaction.PostedDate = *update.PostedDate
	}
	if update.Description != nil {
		transaction.Description = *update.Description
	}
	if update.Amount != nil {
		transaction.Amount = *update.Amount
	}
	if update.Currency != nil {
		transaction.Currency = *update.Currency
	}
	if update.MerchantRaw != nil {
		transaction.MerchantRaw = *update.MerchantRaw
	}
	if update.Excluded != nil {
		transaction.Excluded = *update.Excluded
	}

	if update.CategoryID != nil {
		if *update.CategoryID == uuid.Nil {
			transaction.CategoryID = nil
			transaction.CategorySource = ""
		} else {
			if err := categoryExists(*update.CategoryID); err != nil {
				e(c, err)
				return
			}
			transaction.CategoryID = update.CategoryID
			transaction.CategorySource = models.CategorySourceManual
		}
	}

	// An edit resolves the review state unless the client sets it
	// explicitly
	transaction.UserEdited = true
	if update.NeedsReview != nil {
		transaction.NeedsReview = *update.NeedsReview
	} else {
		transaction.NeedsReview = false
	}

	err = models.DB.Save(&transaction).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Data: transaction})
}

// @Summary		Delete transaction
// @Description	Deletes a transaction
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/transactions/{id} [delete]
func (co Controller) DeleteTransaction(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var transaction models.Transaction
	err = models.DB.First(&transaction, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	err = models.DB.Delete(&transaction).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func categoryExists(id uuid.UUID) error {
	var category models.Category
	return models.DB.First(&category, "id = ?", id).Error
}
