package insights

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spendlens/backend/internal/models"
)

// feeKeywords identify charges that are taxes, fees or markups rather than
// purchases.
var feeKeywords = []string{
	"IGST", "CGST", "SGST", "GST",
	"MARKUP FEE", "CONSOLIDATED FCY", "FOREX MARKUP",
	"LATE FEE", "INTEREST CHARGE", "FINANCE CHARGE",
	"ANNUAL FEE", "RENEWAL FEE", "PROCESSING FEE",
}

// FeeTransaction is one charge identified as a fee or tax.
type FeeTransaction struct {
	TransactionID uuid.UUID       `json:"transactionId"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
}

// FeeReport summarizes money lost to fees, taxes and markups.
type FeeReport struct {
	Total        decimal.Decimal            `json:"total"`
	Count        int                        `json:"count"`
	Transactions []FeeTransaction           `json:"transactions"`
	Breakdown    map[string]decimal.Decimal `json:"breakdown"`
}

// AnalyzeFees scans debit transactions for fee and tax keywords and buckets
// the hits into a breakdown. Newest first.
func AnalyzeFees() (FeeReport, error) {
	var txns []models.Transaction
	err := models.DB.Where("amount > 0").Find(&txns).Error
	if err != nil {
		return FeeReport{}, err
	}

	report := FeeReport{
		Transactions: []FeeTransaction{},
		Breakdown: map[string]decimal.Decimal{
			"Forex/Markup":  decimal.Zero,
			"GST/Taxes":     decimal.Zero,
			"Late/Interest": decimal.Zero,
			"Other":         decimal.Zero,
		},
	}

	for _, t := range txns {
		desc := strings.ToUpper(t.Description)
		if !containsAny(desc, feeKeywords) {
			continue
		}

		report.Transactions = append(report.Transactions, FeeTransaction{
			TransactionID: t.ID,
			Date:          t.PostedDate,
			Description:   t.Description,
			Amount:        t.Amount,
		})
		report.Total = report.Total.Add(t.Amount)

		bucket := "Other"
		switch {
		case strings.Contains(desc, "MARKUP") || strings.Contains(desc, "FCY"):
			bucket = "Forex/Markup"
		case strings.Contains(desc, "GST"):
			bucket = "GST/Taxes"
		case strings.Contains(desc, "LATE") || strings.Contains(desc, "INTEREST"):
			bucket = "Late/Interest"
		}
		report.Breakdown[bucket] = report.Breakdown[bucket].Add(t.Amount)
	}

	report.Count = len(report.Transactions)
	sort.Slice(report.Transactions, func(i, j int) bool {
		return report.Transactions[i].Date.After(report.Transactions[j].Date)
	})

	return report, nil
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
