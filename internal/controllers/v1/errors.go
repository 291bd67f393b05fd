package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spendlens/backend/internal/ingest"
	"github.com/spendlens/backend/internal/models"
	"github.com/spendlens/backend/internal/parsing"
)

type httpError struct {
	Error string `json:"error" example:"there is no Statement matching your query"`
}

// status returns the appropriate HTTP status for an error raised by the
// models or pipeline layer.
func status(err error) int {
	switch {
	case errors.Is(err, models.ErrGeneral):
		return http.StatusInternalServerError
	case errors.Is(err, models.ErrResourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, ingest.ErrDuplicateStatement),
		errors.Is(err, models.ErrParseJobInProgress),
		errors.Is(err, models.ErrStatementAlreadyExists),
		errors.Is(err, models.ErrTransactionAlreadyExists),
		errors.Is(err, models.ErrCategoryNameNotUnique),
		errors.Is(err, models.ErrBudgetAlreadyExists),
		errors.Is(err, models.ErrTotalBudgetExists),
		errors.Is(err, models.ErrSubscriptionSignatureNotUnique),
		errors.Is(err, models.ErrCategoryRulePatternNotUnique):
		return http.StatusConflict
	case errors.Is(err, parsing.ErrPasswordRequired),
		errors.Is(err, parsing.ErrInvalidPassword):
		return http.StatusUnprocessableEntity
	}

	return http.StatusBadRequest
}

// e writes err with the status derived from it.
func e(c *gin.Context, err error) {
	c.JSON(status(err), httpError{Error: err.Error()})
}

var (
	errNoFilePost          = errors.New("you must send a file to this endpoint")
	errWrongFileSuffix     = errors.New("this endpoint only supports PDF files")
	errFileTooLarge        = errors.New("the file is too large, the limit is 50 MiB")
	errCleanupConfirmation = errors.New("the confirmation for the cleanup API call was incorrect")
	errMonthNotParseable   = errors.New("could not parse the specified month, did you use YYYY-MM format?")
	errSettingKeyMissing   = errors.New("the settings key must not be empty")

	errTransactionIncomplete = errors.New("a transaction needs at least a posted date, a description and an amount")
	errCategoryNameMissing   = errors.New("the category name must not be empty")
	errTaxonomyEmpty         = errors.New("the taxonomy CSV does not contain any categories")
	errRulePatternMissing    = errors.New("the rule pattern must not be empty")
	errAmountNotParseable    = errors.New("could not parse the specified amount")
	errDaysNotParseable      = errors.New("could not parse the specified day window")

	errNoGoal = fmt.Errorf("%w Goal matching your query", models.ErrResourceNotFound)
	errGoalIncomplete        = errors.New("a savings goal needs at least a name and a target amount")
)
