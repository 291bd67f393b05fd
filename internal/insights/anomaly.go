package insights

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spendlens/backend/internal/config"
	"github.com/spendlens/backend/internal/models"
)

// Anomaly is one transaction flagged as a statistical outlier within its
// merchant or category group.
type Anomaly struct {
	TransactionID uuid.UUID       `json:"transactionId"`
	Date          time.Time       `json:"date"`
	Merchant      string          `json:"merchant"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	Group         string          `json:"group"`    // "category" or "merchant"
	GroupName     string          `json:"groupName"`
	ZScore        float64         `json:"zScore"`
	Severity      string          `json:"severity"` // "notable", "high" or "extreme"
	GroupMean     float64         `json:"groupMean"`
	Dismissed     bool            `json:"dismissed"`
}

// AnomalyDetector flags transactions whose amount is far outside the
// distribution of their category or merchant group.
type AnomalyDetector struct {
	cfg config.Config
}

func NewAnomalyDetector(cfg config.Config) *AnomalyDetector {
	return &AnomalyDetector{cfg: cfg}
}

// Detect computes z-scores per category group and per merchant group and
// returns every spend transaction exceeding the threshold, largest amount
// first. Groups below the minimum sample size are skipped entirely, sparse
// history is not evidence. Dismissed transactions are still reported with
// the flag set, dismissal is display state only and never feeds back into
// detection.
func (d *AnomalyDetector) Detect(minAmount decimal.Decimal) ([]Anomaly, error) {
	var txns []models.Transaction
	err := models.DB.
		Where("amount > 0").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}

	categoryNames := map[uuid.UUID]string{}
	var categories []models.Category
	err = models.DB.Find(&categories).Error
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	byCategory := map[string][]models.Transaction{}
	byMerchant := map[string][]models.Transaction{}
	for _, t := range txns {
		if t.CategoryID != nil {
			if name, ok := categoryNames[*t.CategoryID]; ok {
				byCategory[name] = append(byCategory[name], t)
			}
		}
		if t.MerchantNormalized != "" {
			byMerchant[t.MerchantNormalized] = append(byMerchant[t.MerchantNormalized], t)
		}
	}

	var anomalies []Anomaly
	seen := map[uuid.UUID]bool{}

	// Category groups first, then merchant groups for anything not already
	// flagged. A transaction is reported at most once.
	for _, group := range []struct {
		kind   string
		groups map[string][]models.Transaction
	}{
		{"category", byCategory},
		{"merchant", byMerchant},
	} {
		for name, items := range group.groups {
			for _, a := range d.flagOutliers(group.kind, name, items, minAmount) {
				if seen[a.TransactionID] {
					continue
				}
				seen[a.TransactionID] = true
				anomalies = append(anomalies, a)
			}
		}
	}

	sort.Slice(anomalies, func(i, j int) bool {
		return anomalies[i].Amount.GreaterThan(anomalies[j].Amount)
	})

	return anomalies, nil
}

func (d *AnomalyDetector) flagOutliers(kind, name string, items []models.Transaction, minAmount decimal.Decimal) []Anomaly {
	if len(items) < d.cfg.MinTxnsForAnomaly {
		return nil
	}

	amounts := make([]float64, 0, len(items))
	for _, t := range items {
		amounts = append(amounts, t.Amount.InexactFloat64())
	}
	mean, stdev := meanStdev(amounts)
	if stdev == 0 {
		return nil
	}

	var out []Anomaly
	for _, t := range items {
		val := t.Amount.InexactFloat64()
		if t.Amount.LessThan(minAmount) {
			continue
		}

		z := (val - mean) / stdev
		if math.Abs(z) <= d.cfg.ZThreshold {
			continue
		}

		merchant := t.MerchantNormalized
		if merchant == "" {
			merchant = t.MerchantRaw
		}
		if merchant == "" {
			merchant = "Unknown"
		}

		out = append(out, Anomaly{
			TransactionID: t.ID,
			Date:          t.PostedDate,
			Merchant:      merchant,
			Description:   t.Description,
			Amount:        t.Amount,
			Group:         kind,
			GroupName:     name,
			ZScore:        z,
			Severity:      d.severity(z),
			GroupMean:     mean,
			Dismissed:     t.AnomalyDismissed,
		})
	}

	return out
}

// severity bands an outlier by how far it sits past the threshold.
func (d *AnomalyDetector) severity(z float64) string {
	ratio := math.Abs(z) / d.cfg.ZThreshold
	switch {
	case ratio >= 2:
		return "extreme"
	case ratio >= 1.5:
		return "high"
	}

	return "notable"
}

// Dismiss marks a single transaction's anomaly flag as acknowledged.
func (d *AnomalyDetector) Dismiss(transactionID uuid.UUID) error {
	var txn models.Transaction
	err := models.DB.First(&txn, "id = ?", transactionID).Error
	if err != nil {
		return err
	}

	return models.DB.Model(&txn).Update("anomaly_dismissed", true).Error
}

func meanStdev(values []float64) (mean, stdev float64) {
	n := float64(len(values))
	for _, v := range values {
		mean += v
	}
	mean /= n

	if len(values) < 2 {
		return mean, 0
	}

	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	// Sample standard deviation, matching a small-sample ledger better
	// than the population formula.
	stdev = math.Sqrt(sum / (n - 1))

	return mean, stdev
}
