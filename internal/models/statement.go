package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Statement represents one uploaded credit card statement document.
//
// A statement does not store its own parse status. The status shown to
// users is always the status of its most recently created ParseJob, see
// Statement.Status.
type Statement struct {
	DefaultModel
	Filename          string
	Fingerprint       string `gorm:"uniqueIndex"` // SHA256 over the document bytes
	FileSize          int64
	SourceName        string // cardholder or account owner name as printed on the document
	IssuingBank       string
	PeriodStart       *time.Time
	PeriodEnd         *time.Time
	ClosingBalance    decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	MinimumPaymentDue decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	PaymentDueDate    *time.Time
	PageCount         int
	Password          string `json:"-"` // kept so that reparse can reopen locked documents
	UploadedAt        time.Time
}

func (s Statement) Self() string {
	return "Statement"
}

func (s *Statement) BeforeSave(_ *gorm.DB) error {
	s.Filename = strings.TrimSpace(s.Filename)
	s.SourceName = strings.TrimSpace(s.SourceName)
	s.IssuingBank = strings.TrimSpace(s.IssuingBank)

	if s.UploadedAt.IsZero() {
		s.UploadedAt = time.Now().In(time.UTC)
	} else {
		s.UploadedAt = s.UploadedAt.In(time.UTC)
	}

	return nil
}

func (s *Statement) AfterFind(tx *gorm.DB) (err error) {
	err = s.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	s.UploadedAt = s.UploadedAt.In(time.UTC)
	return
}

// Status resolves the statement's displayed status from its newest parse
// job. Jobs are append only, so "newest" is creation order.
func (s Statement) Status(tx *gorm.DB) (ParseJobStatus, error) {
	job, err := s.LatestJob(tx)
	if err != nil {
		// A statement is always created together with its first job, so
		// this only happens for callers racing a delete.
		if errors.Is(err, ErrResourceNotFound) {
			return ParseJobPending, nil
		}
		return "", err
	}

	return job.Status, nil
}

// LatestJob returns the most recently created parse job for the statement.
func (s Statement) LatestJob(tx *gorm.DB) (ParseJob, error) {
	var job ParseJob
	err := tx.
		Where(&ParseJob{StatementID: s.ID}).
		Order("created_at desc").
		First(&job).Error

	return job, err
}

// ActiveJob returns the pending or processing job for the statement, if any.
func (s Statement) ActiveJob(tx *gorm.DB) (ParseJob, error) {
	var job ParseJob
	err := tx.
		Where("statement_id = ? AND status IN ?", s.ID, []ParseJobStatus{ParseJobPending, ParseJobProcessing}).
		Order("created_at desc").
		First(&job).Error

	return job, err
}

// TransactionCounts returns the number of ledger transactions for the
// statement and how many of them still need review.
func (s Statement) TransactionCounts(tx *gorm.DB) (total int64, needingReview int64, err error) {
	err = tx.Model(&Transaction{}).Where(&Transaction{StatementID: s.ID}).Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	err = tx.Model(&Transaction{}).Where("statement_id = ? AND needs_review = ?", s.ID, true).Count(&needingReview).Error
	if err != nil {
		return 0, 0, err
	}

	return
}
