package taxonomy

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVCategory is one row of a personal finance category taxonomy CSV with
// PRIMARY, DETAILED and DESCRIPTION columns.
type CSVCategory struct {
	Primary     string
	Detailed    string
	Description string
}

// Name returns the category name for the row, "PRIMARY: DETAILED".
func (c CSVCategory) Name() string {
	return fmt.Sprintf("%s: %s", c.Primary, c.Detailed)
}

// ReadCSV parses a taxonomy CSV. Rows without a primary or detailed label
// are skipped, as are rows whose name was already seen.
func ReadCSV(r io.Reader) ([]CSVCategory, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("could not read taxonomy header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToUpper(strings.TrimSpace(name))] = i
	}

	for _, required := range []string{"PRIMARY", "DETAILED"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("taxonomy CSV is missing the %s column", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var categories []CSVCategory
	seen := make(map[string]bool)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read taxonomy row: %w", err)
		}

		category := CSVCategory{
			Primary:     field(record, "PRIMARY"),
			Detailed:    field(record, "DETAILED"),
			Description: field(record, "DESCRIPTION"),
		}

		if category.Primary == "" || category.Detailed == "" {
			continue
		}

		key := strings.ToLower(category.Name())
		if seen[key] {
			continue
		}
		seen[key] = true

		categories = append(categories, category)
	}

	return categories, nil
}

// Color returns the display color for a category name, keyed by its
// primary group.
func Color(name string) string {
	if primary, _, found := strings.Cut(name, ":"); found {
		if color, ok := primaryColors[strings.ToUpper(strings.TrimSpace(primary))]; ok {
			return color
		}
		return "#6B7280"
	}

	if strings.EqualFold(name, FallbackLabel) {
		return "#94A3B8"
	}

	return "#6B7280"
}

var primaryColors = map[string]string{
	"INCOME":                    "#10B981",
	"TRANSFER":                  "#9CA3AF",
	"RECURRING":                 "#8B5CF6",
	"LOAN_PAYMENTS":             "#6366F1",
	"BANK_FEES":                 "#EF4444",
	"ENTERTAINMENT":             "#EC4899",
	"FOOD_AND_DRINK":            "#F97316",
	"GENERAL_MERCHANDISE":       "#F59E0B",
	"HOME_IMPROVEMENT":          "#06B6D4",
	"MEDICAL":                   "#F43F5E",
	"PERSONAL_CARE":             "#14B8A6",
	"GENERAL_SERVICES":          "#3B82F6",
	"GOVERNMENT_AND_NON_PROFIT": "#64748B",
	"TRANSPORTATION":            "#0EA5E9",
	"TRAVEL":                    "#A855F7",
	"RENT_AND_UTILITIES":        "#84CC16",
}
