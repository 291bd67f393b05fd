package v1

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spendlens/backend/internal/httputil"
	"github.com/spendlens/backend/internal/models"
)

const maxUploadBytes = 50 << 20

// RegisterStatementRoutes registers the routes for statements with
// the RouterGroup that is passed.
func (co Controller) RegisterStatementRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", co.GetStatements)
		r.POST("", co.CreateStatement)
	}

	// Statement with ID
	{
		r.OPTIONS("/:id", co.OptionsStatementDetail)
		r.GET("/:id", co.GetStatement)
		r.DELETE("/:id", co.DeleteStatement)
		r.GET("/:id/jobs", co.GetStatementJobs)
		r.OPTIONS("/:id/jobs", httputil.OptionsGet)
		r.POST("/:id/reparse", co.ReparseStatement)
		r.OPTIONS("/:id/reparse", httputil.OptionsPost)
	}
}

// Statement is the API representation of an uploaded statement, including
// the projected parse status and the transaction counts.
type Statement struct {
	models.Statement
	Status           models.ParseJobStatus `json:"status" example:"completed"`
	TransactionCount int64                 `json:"transactionCount" example:"83"`
	NeedsReviewCount int64                 `json:"needsReviewCount" example:"2"`
}

type StatementResponse struct {
	Data Statement `json:"data"`
}

type StatementListResponse struct {
	Data []Statement `json:"data"`
}

type ParseJobListResponse struct {
	Data []models.ParseJob `json:"data"`
}

type ParseJobResponse struct {
	Data models.ParseJob `json:"data"`
}

func newStatement(statement models.Statement) (Statement, error) {
	projected, err := statement.Status(models.DB)
	if err != nil {
		return Statement{}, err
	}

	total, review, err := statement.TransactionCounts(models.DB)
	if err != nil {
		return Statement{}, err
	}

	return Statement{
		Statement:        statement,
		Status:           projected,
		TransactionCount: total,
		NeedsReviewCount: review,
	}, nil
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Statements
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/statements/{id} [options]
func (co Controller) OptionsStatementDetail(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var statement models.Statement
	err = models.DB.First(&statement, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	httputil.OptionsGetDelete(c)
}

// @Summary		Upload statement
// @Description	Uploads a statement document and starts a parse job for it. Send the document as multipart field "file", the document password as "password".
// @Tags			Statements
// @Accept			multipart/form-data
// @Produce		json
// @Success		201			{object}	StatementResponse
// @Failure		400			{object}	httpError
// @Failure		409			{object}	httpError	"The document was already uploaded"
// @Failure		422			{object}	httpError	"A password is required or the given one is wrong"
// @Param			file		formData	file	true	"Statement document"
// @Param			password	formData	string	false	"Document password"
// @Router			/v1/statements [post]
func (co Controller) CreateStatement(c *gin.Context) {
	formFile, err := c.FormFile("file")
	if err != nil {
		e(c, errNoFilePost)
		return
	}

	if !strings.HasSuffix(strings.ToLower(formFile.Filename), ".pdf") {
		e(c, errWrongFileSuffix)
		return
	}

	if formFile.Size > maxUploadBytes {
		e(c, errFileTooLarge)
		return
	}

	f, err := formFile.Open()
	if err != nil {
		e(c, err)
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		e(c, err)
		return
	}

	password := c.PostForm("password")

	statement, err := co.Service.Submit(c.Request.Context(), content, formFile.Filename, password)
	if err != nil {
		e(c, err)
		return
	}

	data, err := newStatement(statement)
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusCreated, StatementResponse{Data: data})
}

// @Summary		List statements
// @Description	Returns a list of all uploaded statements, newest first
// @Tags			Statements
// @Produce		json
// @Success		200	{object}	StatementListResponse
// @Failure		500	{object}	httpError
// @Router			/v1/statements [get]
func (co Controller) GetStatements(c *gin.Context) {
	var statements []models.Statement
	err := models.DB.Order("uploaded_at desc").Find(&statements).Error
	if err != nil {
		e(c, err)
		return
	}

	data := make([]Statement, 0, len(statements))
	for _, statement := range statements {
		s, err := newStatement(statement)
		if err != nil {
			e(c, err)
			return
		}
		data = append(data, s)
	}

	c.JSON(http.StatusOK, StatementListResponse{Data: data})
}

// @Summary		Get statement
// @Description	Returns a specific statement
// @Tags			Statements
// @Produce		json
// @Success		200	{object}	StatementResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/statements/{id} [get]
func (co Controller) GetStatement(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var statement models.Statement
	err = models.DB.First(&statement, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	data, err := newStatement(statement)
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, StatementResponse{Data: data})
}

// @Summary		List parse jobs
// @Description	Returns all parse jobs for the statement, newest first
// @Tags			Statements
// @Produce		json
// @Success		200	{object}	ParseJobListResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/statements/{id}/jobs [get]
func (co Controller) GetStatementJobs(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	var statement models.Statement
	err = models.DB.First(&statement, "id = ?", id).Error
	if err != nil {
		e(c, err)
		return
	}

	var jobs []models.ParseJob
	err = models.DB.Where("statement_id = ?", statement.ID).Order("created_at desc").Find(&jobs).Error
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusOK, ParseJobListResponse{Data: jobs})
}

// @Summary		Reparse statement
// @Description	Starts a new parse job for the statement
// @Tags			Statements
// @Produce		json
// @Success		201	{object}	ParseJobResponse
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		409	{object}	httpError	"A parse job is already running for this statement"
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/statements/{id}/reparse [post]
func (co Controller) ReparseStatement(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	job, err := co.Service.Reparse(c.Request.Context(), id)
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusCreated, ParseJobResponse{Data: job})
}

// @Summary		Delete statement
// @Description	Deletes the statement, its parse jobs, its transactions and the stored document
// @Tags			Statements
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Param			id	path		string	true	"ID formatted as string"
// @Router			/v1/statements/{id} [delete]
func (co Controller) DeleteStatement(c *gin.Context) {
	id, err := httputil.UUIDFromString(c.Param("id"))
	if err != nil {
		e(c, err)
		return
	}

	err = co.Service.Delete(c.Request.Context(), id)
	if err != nil {
		e(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
