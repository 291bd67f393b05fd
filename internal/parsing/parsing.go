// Package parsing contains the two external collaborators of the intake
// pipeline: the Extractor turning document bytes into raw text and the
// StructuringOracle turning raw text into candidate transactions.
package parsing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrPasswordRequired signals an encrypted document uploaded without a
	// password. Reported synchronously, never enters job state.
	ErrPasswordRequired = errors.New("the document is encrypted and requires a password")

	// ErrInvalidPassword signals an encrypted document whose password did
	// not match.
	ErrInvalidPassword = errors.New("the provided document password is incorrect")

	// ErrUnreadableDocument signals a document the extractor cannot parse.
	ErrUnreadableDocument = errors.New("the document could not be read")

	// ErrOracleUnavailable signals a missing oracle configuration, for
	// example no API key.
	ErrOracleUnavailable = errors.New("the structuring oracle is not configured")

	// ErrMalformedOracleOutput signals oracle output that could not be
	// decoded as the expected JSON. It fails the job, it is never
	// silently coerced.
	ErrMalformedOracleOutput = errors.New("the structuring oracle returned malformed output")
)

// Extraction is the text content pulled out of a document.
type Extraction struct {
	Text      string
	PageCount int
}

// Sparse reports whether extraction found too little text to be useful,
// which happens for scanned image-only documents. The pipeline then hands
// the document bytes to the oracle directly.
func (e Extraction) Sparse() bool {
	return len(strings.TrimSpace(e.Text)) < 200
}

// Extractor turns document bytes into raw text.
type Extractor interface {
	// Verify checks that the document can be opened with the given
	// password without extracting anything.
	Verify(content []byte, password string) error
	Extract(ctx context.Context, content []byte, password string) (Extraction, error)
}

// Candidate is one transaction proposed by the structuring oracle. The
// category label is a hint to be validated, never trusted verbatim.
type Candidate struct {
	PostedDate   Date            `json:"posted_date"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"` // positive for debits, negative for credits
	Currency     string          `json:"currency"`
	Merchant     string          `json:"merchant"`
	CategoryHint string          `json:"category_hint"`
	Confidence   float64         `json:"confidence"`
	NeedsReview  bool            `json:"needs_review"`
}

// StatementData is the oracle's full answer for one document.
type StatementData struct {
	SourceName        string              `json:"source_name"`
	PeriodStart       *Date               `json:"period_start"`
	PeriodEnd         *Date               `json:"period_end"`
	ClosingBalance    decimal.NullDecimal `json:"closing_balance"`
	MinimumPaymentDue decimal.NullDecimal `json:"minimum_payment_due"`
	PaymentDueDate    *Date               `json:"payment_due_date"`
	Transactions      []Candidate         `json:"transactions"`
	ParsingNotes      string              `json:"parsing_notes"`
}

// Request is one structuring call. Document is only consulted when Text is
// sparse.
type Request struct {
	Text      string
	Document  []byte
	Filename  string
	PageCount int
	Labels    []string // the complete current taxonomy, plus the fallback
}

// Result carries the decoded statement plus call metadata for the job
// record.
type Result struct {
	Statement StatementData
	Model     string
	Raw       string
}

// StructuringOracle turns raw statement text into structured transactions.
type StructuringOracle interface {
	Structure(ctx context.Context, req Request) (Result, error)
}

// Date is a calendar date in oracle JSON, formatted YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return err
	}

	d.Time = t.In(time.UTC)
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}
