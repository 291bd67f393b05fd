package parsing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads PDF documents in memory.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Verify checks that the document opens with the given password. Password
// failures are reported before any statement row is created.
func (e *PDFExtractor) Verify(content []byte, password string) error {
	_, err := e.open(content, password)
	return err
}

func (e *PDFExtractor) Extract(ctx context.Context, content []byte, password string) (Extraction, error) {
	reader, err := e.open(content, password)
	if err != nil {
		return Extraction{}, err
	}

	var sb strings.Builder
	totalPages := reader.NumPage()

	for i := 1; i <= totalPages; i++ {
		if err := ctx.Err(); err != nil {
			return Extraction{}, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		// Some statements contain pages the library trips over, skip those
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		fmt.Fprintf(&sb, "--- Page %d ---\n%s\n\n", i, text)
	}

	return Extraction{
		Text:      sb.String(),
		PageCount: totalPages,
	}, nil
}

func (e *PDFExtractor) open(content []byte, password string) (*pdf.Reader, error) {
	// The password callback is polled until it returns the empty string,
	// so hand out the password exactly once
	attempts := 0
	pw := func() string {
		attempts++
		if attempts > 1 {
			return ""
		}
		return password
	}

	reader, err := pdf.NewReaderEncrypted(bytes.NewReader(content), int64(len(content)), pw)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			if password == "" {
				return nil, ErrPasswordRequired
			}
			return nil, ErrInvalidPassword
		}

		return nil, fmt.Errorf("%w: %s", ErrUnreadableDocument, err)
	}

	return reader, nil
}
