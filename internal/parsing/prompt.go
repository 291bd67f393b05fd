package parsing

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a financial document parser specializing in credit card statements.
Your task is to extract transaction data from the provided statement.

IMPORTANT RULES:
1. Extract ALL transactions you can find
2. Dates must be in YYYY-MM-DD format
3. Amounts must be positive for debits (money spent), negative for credits (refunds/payments)
4. If the currency is not clear, assume INR (Indian Rupees)
5. Set needs_review=true if you are uncertain about any field
6. Set confidence between 0 and 1 based on how clear the data is
7. Try to identify the merchant name from the description
8. For category_hint, choose ONLY from the provided allowed category list; if nothing fits, use "Other"
9. Statements may contain ads and non-transaction text; ignore those

RESPOND WITH VALID JSON ONLY. No markdown, no explanation, just the JSON object.`

const responseSchema = `Return a JSON object with this exact structure:
{
    "source_name": "Bank/Card issuer name or null",
    "period_start": "YYYY-MM-DD or null",
    "period_end": "YYYY-MM-DD or null",
    "closing_balance": 12345.67,
    "minimum_payment_due": 123.45,
    "payment_due_date": "YYYY-MM-DD or null",
    "transactions": [
        {
            "posted_date": "YYYY-MM-DD",
            "description": "transaction description",
            "amount": 123.45,
            "currency": "INR",
            "merchant": "merchant name or null",
            "category_hint": "suggested category or null",
            "confidence": 0.95,
            "needs_review": false
        }
    ],
    "parsing_notes": "any issues encountered or null"
}`

// userPrompt builds the text mode prompt. The complete taxonomy is
// injected so that the answer can be validated against the exact strings.
func userPrompt(req Request) string {
	return fmt.Sprintf(`Parse the following credit card statement and extract all transactions.

Statement filename: %s
Number of pages: %d

Allowed categories (category_hint MUST be one of these EXACT values):
%s

--- STATEMENT TEXT ---
%s
--- END OF STATEMENT ---

%s`, orUnknown(req.Filename), req.PageCount, labelList(req.Labels), truncate(req.Text, 50000), responseSchema)
}

// documentPrompt builds the fallback prompt used when extraction found too
// little text and the document itself is attached.
func documentPrompt(req Request) string {
	return fmt.Sprintf(`Parse the attached credit card statement document and extract all transactions.

Statement filename: %s
Number of pages: %d

Allowed categories (category_hint MUST be one of these EXACT values):
%s

%s`, orUnknown(req.Filename), req.PageCount, labelList(req.Labels), responseSchema)
}

func labelList(labels []string) string {
	if len(labels) == 0 {
		labels = []string{"Other"}
	}

	var sb strings.Builder
	for _, label := range labels {
		sb.WriteString("- ")
		sb.WriteString(label)
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
