package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParseJobStatus is the state of a single parse run.
type ParseJobStatus string

const (
	ParseJobPending     ParseJobStatus = "pending"
	ParseJobProcessing  ParseJobStatus = "processing"
	ParseJobCompleted   ParseJobStatus = "completed"
	ParseJobFailed      ParseJobStatus = "failed"
	ParseJobNeedsReview ParseJobStatus = "needs_review"
)

// Terminal reports whether the status is an end state. Only a brand new
// parse job supersedes a terminal status.
func (s ParseJobStatus) Terminal() bool {
	return s == ParseJobCompleted || s == ParseJobFailed || s == ParseJobNeedsReview
}

// ParseJob is one run of the parse pipeline for a statement.
//
// Jobs are append only: a reparse creates a new job and the prior job's
// record is retained for audit.
type ParseJob struct {
	DefaultModel
	StatementID               uuid.UUID `gorm:"index"`
	Statement                 Statement `json:"-"`
	Status                    ParseJobStatus
	Attempt                   int
	StartedAt                 *time.Time
	FinishedAt                *time.Time
	ErrorMessage              string
	OracleModel               string // model identifier the structuring oracle reported
	TransactionsFound         int
	TransactionsNeedingReview int
}

func (j ParseJob) Self() string {
	return "ParseJob"
}

func (j *ParseJob) BeforeSave(_ *gorm.DB) error {
	if j.Status == "" {
		j.Status = ParseJobPending
	}

	if j.StartedAt != nil {
		utc := j.StartedAt.In(time.UTC)
		j.StartedAt = &utc
	}

	if j.FinishedAt != nil {
		utc := j.FinishedAt.In(time.UTC)
		j.FinishedAt = &utc
	}

	return nil
}

func (j *ParseJob) AfterFind(tx *gorm.DB) (err error) {
	err = j.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	if j.StartedAt != nil {
		utc := j.StartedAt.In(time.UTC)
		j.StartedAt = &utc
	}

	if j.FinishedAt != nil {
		utc := j.FinishedAt.In(time.UTC)
		j.FinishedAt = &utc
	}

	return
}

// IsNewestFor reports whether the job is still the newest job of its
// statement. A runner whose job has been superseded by a reparse must not
// commit its results.
func (j ParseJob) IsNewestFor(tx *gorm.DB) (bool, error) {
	var newer int64
	err := tx.Model(&ParseJob{}).
		Where("statement_id = ? AND created_at > ?", j.StatementID, j.CreatedAt).
		Count(&newer).Error
	if err != nil {
		return false, err
	}

	return newer == 0, nil
}
