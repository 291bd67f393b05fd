package models_test

import (
	"time"

	"github.com/spendlens/backend/internal/models"
)

func (suite *TestSuiteStandard) TestParseJobStatusTerminal() {
	suite.Assert().False(models.ParseJobPending.Terminal())
	suite.Assert().False(models.ParseJobProcessing.Terminal())
	suite.Assert().True(models.ParseJobCompleted.Terminal())
	suite.Assert().True(models.ParseJobFailed.Terminal())
	suite.Assert().True(models.ParseJobNeedsReview.Terminal())
}

func (suite *TestSuiteStandard) TestParseJobDefaultsToPending() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})
	job := suite.createTestParseJob(models.ParseJob{StatementID: statement.ID})

	suite.Assert().Equal(models.ParseJobPending, job.Status)
}

func (suite *TestSuiteStandard) TestParseJobIsNewestFor() {
	statement := suite.createTestStatement(models.Statement{Filename: "jan.pdf"})

	older := suite.createTestParseJob(models.ParseJob{
		StatementID:  statement.ID,
		Status:       models.ParseJobProcessing,
		DefaultModel: models.DefaultModel{Timestamps: models.Timestamps{CreatedAt: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}},
	})

	newest, err := older.IsNewestFor(models.DB)
	suite.Require().Nil(err)
	suite.Assert().True(newest)

	newer := suite.createTestParseJob(models.ParseJob{
		StatementID:  statement.ID,
		Status:       models.ParseJobPending,
		DefaultModel: models.DefaultModel{Timestamps: models.Timestamps{CreatedAt: time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)}},
	})

	newest, err = older.IsNewestFor(models.DB)
	suite.Require().Nil(err)
	suite.Assert().False(newest)

	newest, err = newer.IsNewestFor(models.DB)
	suite.Require().Nil(err)
	suite.Assert().True(newest)
}
