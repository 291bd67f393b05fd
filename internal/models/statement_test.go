package models_test

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/spendlens/backend/internal/models"
)

func (suite *TestSuiteStandard) TestStatementStatusProjection() {
	statement := suite.createTestStatement(models.Statement{Filename: "feb.pdf"})

	suite.createTestParseJob(models.ParseJob{
		StatementID:  statement.ID,
		Status:       models.ParseJobCompleted,
		DefaultModel: models.DefaultModel{Timestamps: models.Timestamps{CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)}},
	})

	status, err := statement.Status(models.DB)
	suite.Require().Nil(err)
	suite.Assert().Equal(models.ParseJobCompleted, status)

	// A newer job supersedes the displayed status
	suite.createTestParseJob(models.ParseJob{
		StatementID:  statement.ID,
		Status:       models.ParseJobPending,
		DefaultModel: models.DefaultModel{Timestamps: models.Timestamps{CreatedAt: time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)}},
	})

	status, err = statement.Status(models.DB)
	suite.Require().Nil(err)
	suite.Assert().Equal(models.ParseJobPending, status)
}

func (suite *TestSuiteStandard) TestStatementStatusWithoutJobs() {
	statement := suite.createTestStatement(models.Statement{Filename: "feb.pdf"})

	status, err := statement.Status(models.DB)
	suite.Require().Nil(err)
	suite.Assert().Equal(models.ParseJobPending, status)
}

func (suite *TestSuiteStandard) TestStatementActiveJob() {
	statement := suite.createTestStatement(models.Statement{Filename: "feb.pdf"})

	_, err := statement.ActiveJob(models.DB)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	suite.createTestParseJob(models.ParseJob{StatementID: statement.ID, Status: models.ParseJobFailed})
	_, err = statement.ActiveJob(models.DB)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	job := suite.createTestParseJob(models.ParseJob{StatementID: statement.ID, Status: models.ParseJobProcessing})
	active, err := statement.ActiveJob(models.DB)
	suite.Require().Nil(err)
	suite.Assert().Equal(job.ID, active.ID)
}

func (suite *TestSuiteStandard) TestStatementTransactionCounts() {
	statement := suite.createTestStatement(models.Statement{Filename: "feb.pdf"})

	suite.createTestTransaction(models.Transaction{
		StatementID: statement.ID,
		PostedDate:  time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
		Description: "coffee",
		Amount:      decimal.NewFromInt(120),
	})
	suite.createTestTransaction(models.Transaction{
		StatementID: statement.ID,
		PostedDate:  time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		Description: "unclear charge",
		Amount:      decimal.NewFromInt(999),
		NeedsReview: true,
	})

	total, review, err := statement.TransactionCounts(models.DB)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(2), total)
	suite.Assert().Equal(int64(1), review)
}

func (suite *TestSuiteStandard) TestStatementFingerprintUnique() {
	statement := suite.createTestStatement(models.Statement{Filename: "feb.pdf"})

	duplicate := models.Statement{Filename: "feb-copy.pdf", Fingerprint: statement.Fingerprint}
	err := models.DB.Create(&duplicate).Error
	suite.Assert().ErrorIs(err, models.ErrStatementAlreadyExists)
}
