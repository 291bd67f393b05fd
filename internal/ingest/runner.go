package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/ryanuber/go-glob"
	"gorm.io/gorm"

	"github.com/spendlens/backend/internal/config"
	"github.com/spendlens/backend/internal/fingerprint"
	"github.com/spendlens/backend/internal/models"
	"github.com/spendlens/backend/internal/parsing"
	"github.com/spendlens/backend/internal/storage"
	"github.com/spendlens/backend/internal/taxonomy"
)

// Runner executes one parse job: extraction, structuring, taxonomy
// enforcement and the atomic ledger commit.
type Runner struct {
	cfg       config.Config
	extractor parsing.Extractor
	oracle    parsing.StructuringOracle
	blobs     *storage.Store
}

func NewRunner(cfg config.Config, extractor parsing.Extractor, oracle parsing.StructuringOracle, blobs *storage.Store) *Runner {
	return &Runner{
		cfg:       cfg,
		extractor: extractor,
		oracle:    oracle,
		blobs:     blobs,
	}
}

// Run drives the job to a terminal state. Collaborator failures become a
// failed job with the error captured, they are never raised to the worker.
func (r *Runner) Run(ctx context.Context, jobID uuid.UUID) {
	status, err := r.run(ctx, jobID)
	if err != nil {
		log.Error().Err(err).Str("job", jobID.String()).Msg("parse job failed")
		r.finish(jobID, models.ParseJobFailed, err.Error(), jobStats{})
		parseJobsTotal.WithLabelValues(string(models.ParseJobFailed)).Inc()
		return
	}

	parseJobsTotal.WithLabelValues(string(status)).Inc()
}

type jobStats struct {
	found         int
	needingReview int
}

func (r *Runner) run(ctx context.Context, jobID uuid.UUID) (models.ParseJobStatus, error) {
	var job models.ParseJob
	err := models.DB.First(&job, "id = ?", jobID).Error
	if err != nil {
		return "", err
	}

	var statement models.Statement
	err = models.DB.First(&statement, "id = ?", job.StatementID).Error
	if err != nil {
		return "", err
	}

	// pending -> processing
	now := time.Now().In(time.UTC)
	err = models.DB.Model(&job).Updates(map[string]any{
		"status":       models.ParseJobProcessing,
		"started_at":   &now,
		"attempt":      job.Attempt + 1,
		"oracle_model": r.cfg.GeminiModel,
	}).Error
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.ParseTimeout)
	defer cancel()

	content, err := r.blobs.Load(statement.Fingerprint)
	if err != nil {
		return "", fmt.Errorf("could not load the stored document: %w", err)
	}

	extraction, err := r.extractor.Extract(ctx, content, statement.Password)
	if err != nil {
		return "", fmt.Errorf("extraction failed: %w", err)
	}

	labels, err := taxonomyLabels(models.DB)
	if err != nil {
		return "", err
	}
	store := taxonomy.New(labels)

	result, err := r.oracle.Structure(ctx, parsing.Request{
		Text:      extraction.Text,
		Document:  content,
		Filename:  statement.Filename,
		PageCount: extraction.PageCount,
		Labels:    store.Labels(),
	})
	if err != nil {
		return "", err
	}

	staged, stats, err := r.stage(models.DB, statement, store, result.Statement)
	if err != nil {
		return "", err
	}

	status := models.ParseJobCompleted
	if stats.needingReview > 0 {
		status = models.ParseJobNeedsReview
	}

	// All ledger writes commit together. A crash before this point leaves
	// the statement exactly as the job found it.
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		newest, err := job.IsNewestFor(tx)
		if err != nil {
			return err
		}

		// A reparse was requested while this run was in flight. The newer
		// job owns the ledger now, so this run's results are discarded.
		if !newest {
			return errSuperseded
		}

		err = tx.Model(&models.Statement{}).
			Where("id = ?", statement.ID).
			Updates(statementUpdates(statement, extraction, result.Statement)).Error
		if err != nil {
			return err
		}

		for i := range staged {
			if err := tx.Create(&staged[i]).Error; err != nil {
				return err
			}
		}

		finished := time.Now().In(time.UTC)
		return tx.Model(&models.ParseJob{}).
			Where("id = ?", job.ID).
			Updates(map[string]any{
				"status":                      status,
				"finished_at":                 &finished,
				"transactions_found":          stats.found,
				"transactions_needing_review": stats.needingReview,
			}).Error
	})
	if errors.Is(err, errSuperseded) {
		log.Info().Str("job", job.ID.String()).Msg("parse job superseded by a newer job, discarding results")
		r.finish(job.ID, models.ParseJobFailed, "superseded by a newer parse job", jobStats{})
		return models.ParseJobFailed, nil
	}
	if err != nil {
		return "", err
	}

	return status, nil
}

var errSuperseded = errors.New("superseded")

// stage validates the oracle's candidates into ready-to-insert rows. No
// writes happen here.
func (r *Runner) stage(db *gorm.DB, statement models.Statement, store *taxonomy.Store, parsed parsing.StatementData) ([]models.Transaction, jobStats, error) {
	rules, err := loadRules(db)
	if err != nil {
		return nil, jobStats{}, err
	}

	categoryIDs, err := categoryIDsByName(db)
	if err != nil {
		return nil, jobStats{}, err
	}

	var staged []models.Transaction
	var stats jobStats
	seen := make(map[string]bool)

	for _, candidate := range parsed.Transactions {
		if candidate.PostedDate.IsZero() || strings.TrimSpace(candidate.Description) == "" {
			continue
		}

		hash := fingerprint.Transaction(candidate.PostedDate.Time, candidate.Description, candidate.Amount)

		// Idempotent re-ingestion: a fingerprint already in the ledger or
		// already staged in this run is skipped
		if seen[hash] {
			continue
		}
		seen[hash] = true

		var count int64
		err := db.Model(&models.Transaction{}).Where("fingerprint = ?", hash).Count(&count).Error
		if err != nil {
			return nil, jobStats{}, err
		}
		if count > 0 {
			continue
		}

		normalized := NormalizeMerchant(candidate.Merchant, candidate.Description)

		transaction := models.Transaction{
			StatementID:        statement.ID,
			PostedDate:         candidate.PostedDate.Time,
			Description:        candidate.Description,
			Amount:             candidate.Amount,
			Currency:           defaultCurrency(candidate.Currency),
			MerchantRaw:        candidate.Merchant,
			MerchantNormalized: normalized,
			Confidence:         candidate.Confidence,
			NeedsReview:        candidate.NeedsReview || candidate.Confidence < r.cfg.ReviewConfidence,
			Fingerprint:        hash,
		}

		// Rules win over the oracle's hint
		if categoryID, ok := matchRule(rules, candidate.Description, normalized); ok {
			transaction.CategoryID = &categoryID
			transaction.CategorySource = models.CategorySourceRule
		} else if canonical, ok := store.Validate(candidate.CategoryHint); ok {
			if id, found := categoryIDs[strings.ToLower(canonical)]; found {
				transaction.CategoryID = &id
				transaction.CategorySource = models.CategorySourceAI
			}
			if store.IsFallback(canonical) {
				transaction.NeedsReview = true
			}
		} else {
			// Not an exact taxonomy match: uncategorized and flagged
			transaction.NeedsReview = true
		}

		if transaction.NeedsReview {
			stats.needingReview++
		}
		stats.found++
		staged = append(staged, transaction)
	}

	return staged, stats, nil
}

// finish is the terminal write used outside the atomic ledger commit, for
// failures and superseded runs.
func (r *Runner) finish(jobID uuid.UUID, status models.ParseJobStatus, message string, stats jobStats) {
	finished := time.Now().In(time.UTC)
	err := models.DB.Model(&models.ParseJob{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"status":                      status,
			"error_message":               message,
			"finished_at":                 &finished,
			"transactions_found":          stats.found,
			"transactions_needing_review": stats.needingReview,
		}).Error
	if err != nil {
		log.Error().Err(err).Str("job", jobID.String()).Msg("could not finish parse job")
	}
}

func statementUpdates(statement models.Statement, extraction parsing.Extraction, parsed parsing.StatementData) map[string]any {
	updates := map[string]any{
		"page_count": extraction.PageCount,
	}

	if parsed.SourceName != "" {
		updates["source_name"] = parsed.SourceName
	}
	if parsed.PeriodStart != nil && !parsed.PeriodStart.IsZero() {
		updates["period_start"] = parsed.PeriodStart.Time
	}
	if parsed.PeriodEnd != nil && !parsed.PeriodEnd.IsZero() {
		updates["period_end"] = parsed.PeriodEnd.Time
	}
	if parsed.ClosingBalance.Valid {
		updates["closing_balance"] = parsed.ClosingBalance.Decimal
	}
	if parsed.MinimumPaymentDue.Valid {
		updates["minimum_payment_due"] = parsed.MinimumPaymentDue.Decimal
	}
	if parsed.PaymentDueDate != nil && !parsed.PaymentDueDate.IsZero() {
		updates["payment_due_date"] = parsed.PaymentDueDate.Time
	}

	if bank := DetectIssuingBank(parsed.SourceName, extraction.Text, statement.Filename); bank != "" {
		updates["issuing_bank"] = bank
	}

	return updates
}

func defaultCurrency(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return "INR"
	}
	return currency
}

func taxonomyLabels(db *gorm.DB) ([]string, error) {
	var names []string
	err := db.Model(&models.Category{}).Order("name").Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}

	// The oracle always needs the literal fallback available
	found := false
	for _, name := range names {
		if strings.EqualFold(name, taxonomy.FallbackLabel) {
			found = true
			break
		}
	}
	if !found {
		names = append(names, taxonomy.FallbackLabel)
	}

	return names, nil
}

func categoryIDsByName(db *gorm.DB) (map[string]uuid.UUID, error) {
	var categories []models.Category
	err := db.Find(&categories).Error
	if err != nil {
		return nil, err
	}

	ids := make(map[string]uuid.UUID, len(categories))
	for _, category := range categories {
		ids[strings.ToLower(category.Name)] = category.ID
	}

	return ids, nil
}

func loadRules(db *gorm.DB) ([]models.CategoryRule, error) {
	var rules []models.CategoryRule
	err := db.Order("priority, created_at").Find(&rules).Error
	return rules, err
}

func matchRule(rules []models.CategoryRule, description, merchant string) (uuid.UUID, bool) {
	description = strings.ToLower(description)
	merchant = strings.ToLower(merchant)

	for _, rule := range rules {
		if glob.Glob(rule.Pattern, description) || glob.Glob(rule.Pattern, merchant) {
			return rule.CategoryID, true
		}
	}

	return uuid.Nil, false
}
