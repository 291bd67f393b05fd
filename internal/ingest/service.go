// Package ingest implements the statement intake pipeline: dedup,
// extraction, structuring, taxonomy enforcement and the background worker
// pool driving it.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/spendlens/backend/internal/config"
	"github.com/spendlens/backend/internal/fingerprint"
	"github.com/spendlens/backend/internal/models"
	"github.com/spendlens/backend/internal/parsing"
	"github.com/spendlens/backend/internal/storage"
)

// ErrDuplicateStatement is returned together with the existing statement
// when the same document bytes are submitted again.
var ErrDuplicateStatement = errors.New("this document has already been uploaded")

// Service is the entry point of the intake pipeline.
type Service struct {
	cfg       config.Config
	extractor parsing.Extractor
	blobs     *storage.Store
	queue     *Queue
}

func NewService(cfg config.Config, extractor parsing.Extractor, blobs *storage.Store, queue *Queue) *Service {
	return &Service{
		cfg:       cfg,
		extractor: extractor,
		blobs:     blobs,
		queue:     queue,
	}
}

// Submit ingests an uploaded document. The fingerprint is computed before
// any extraction: the same bytes twice return the existing statement with
// ErrDuplicateStatement and no new rows. Password failures are synchronous
// and never create a statement. On success the statement and its first
// pending job exist, the job is queued, and Submit returns without waiting
// for parsing.
func (s *Service) Submit(ctx context.Context, content []byte, filename, password string) (models.Statement, error) {
	if len(content) == 0 {
		return models.Statement{}, fmt.Errorf("%w: the document is empty", parsing.ErrUnreadableDocument)
	}

	hash := fingerprint.Document(content)

	var existing models.Statement
	err := models.DB.First(&existing, "fingerprint = ?", hash).Error
	if err == nil {
		return existing, ErrDuplicateStatement
	}
	if !errors.Is(err, models.ErrResourceNotFound) && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Statement{}, err
	}

	// Locked or unreadable documents fail here, before any row exists
	if err := s.extractor.Verify(content, password); err != nil {
		return models.Statement{}, err
	}

	if err := s.blobs.Save(hash, content); err != nil {
		return models.Statement{}, err
	}

	statement := models.Statement{
		Filename:    filename,
		Fingerprint: hash,
		FileSize:    int64(len(content)),
		Password:    password,
		UploadedAt:  time.Now().In(time.UTC),
	}

	var job models.ParseJob
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&statement).Error; err != nil {
			return err
		}

		job = models.ParseJob{
			StatementID: statement.ID,
			Status:      models.ParseJobPending,
		}
		return tx.Create(&job).Error
	})
	if err != nil {
		return models.Statement{}, err
	}

	if err := s.queue.Enqueue(job.ID); err != nil {
		return models.Statement{}, err
	}

	return statement, nil
}

// Reparse appends a new parse job for an existing statement and queues it.
// A pending or processing job blocks the request with
// models.ErrParseJobInProgress, so explicit retries cannot stack runs
// against the oracle.
func (s *Service) Reparse(ctx context.Context, statementID uuid.UUID) (models.ParseJob, error) {
	var statement models.Statement
	err := models.DB.First(&statement, "id = ?", statementID).Error
	if err != nil {
		return models.ParseJob{}, err
	}

	_, err = statement.ActiveJob(models.DB)
	if err == nil {
		return models.ParseJob{}, models.ErrParseJobInProgress
	}
	if !errors.Is(err, models.ErrResourceNotFound) && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ParseJob{}, err
	}

	job := models.ParseJob{
		StatementID: statement.ID,
		Status:      models.ParseJobPending,
	}
	if err := models.DB.Create(&job).Error; err != nil {
		return models.ParseJob{}, err
	}

	if err := s.queue.Enqueue(job.ID); err != nil {
		return models.ParseJob{}, err
	}

	return job, nil
}

// Reclassify queues a reparse for every statement without an active job.
// Invoked after taxonomy changes so the ledger is re-validated against the
// new category set. Returns the number of jobs started.
func (s *Service) Reclassify(ctx context.Context) (int, error) {
	var statements []models.Statement
	err := models.DB.Find(&statements).Error
	if err != nil {
		return 0, err
	}

	started := 0
	for _, statement := range statements {
		_, err := s.Reparse(ctx, statement.ID)
		if errors.Is(err, models.ErrParseJobInProgress) {
			continue
		}
		if err != nil {
			return started, err
		}
		started++
	}

	return started, nil
}

// ApplyRules applies the category rules to the current ledger without
// re-parsing anything. Transactions the user categorized or edited are
// left alone. Returns the number of transactions moved.
func (s *Service) ApplyRules(ctx context.Context) (int, error) {
	rules, err := loadRules(models.DB)
	if err != nil {
		return 0, err
	}
	if len(rules) == 0 {
		return 0, nil
	}

	var transactions []models.Transaction
	err = models.DB.
		Where("user_edited = ?", false).
		Where("category_source != ?", models.CategorySourceManual).
		Find(&transactions).Error
	if err != nil {
		return 0, err
	}

	moved := 0
	for i := range transactions {
		categoryID, ok := matchRule(rules, transactions[i].Description, transactions[i].MerchantNormalized)
		if !ok {
			continue
		}
		if transactions[i].CategoryID != nil && *transactions[i].CategoryID == categoryID {
			continue
		}

		err = models.DB.Model(&transactions[i]).Updates(map[string]any{
			"category_id":     categoryID,
			"category_source": models.CategorySourceRule,
		}).Error
		if err != nil {
			return moved, err
		}
		moved++
	}

	return moved, nil
}

// Delete removes a statement, its transactions and jobs, and the stored
// document blob.
func (s *Service) Delete(ctx context.Context, statementID uuid.UUID) error {
	var statement models.Statement
	err := models.DB.First(&statement, "id = ?", statementID).Error
	if err != nil {
		return err
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("statement_id = ?", statement.ID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}

		if err := tx.Where("statement_id = ?", statement.ID).Delete(&models.ParseJob{}).Error; err != nil {
			return err
		}

		return tx.Delete(&statement).Error
	})
	if err != nil {
		return err
	}

	return s.blobs.Delete(statement.Fingerprint)
}
