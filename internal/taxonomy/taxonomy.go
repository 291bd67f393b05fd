// Package taxonomy holds the closed set of valid spending category labels.
//
// The structuring oracle is handed the complete label list and instructed
// to answer with an exact label or the fallback. Whatever comes back is
// validated verbatim here; anything else is coerced to uncategorized and
// flagged for review.
package taxonomy

import (
	"sort"
	"strings"
)

// FallbackLabel is the literal label the oracle may use when no taxonomy
// label fits. Transactions carrying it always need review.
const FallbackLabel = "Other"

// Store is an immutable snapshot of the valid label set. Build a fresh one
// from the category table whenever the taxonomy may have changed.
type Store struct {
	labels    []string
	canonical map[string]string // lowercased label to canonical spelling
}

// New builds a Store from the given labels. Duplicate labels (case
// insensitively) are dropped, keeping the first spelling.
func New(labels []string) *Store {
	s := &Store{
		canonical: make(map[string]string, len(labels)),
	}

	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}

		key := strings.ToLower(label)
		if _, ok := s.canonical[key]; ok {
			continue
		}

		s.canonical[key] = label
		s.labels = append(s.labels, label)
	}

	sort.Strings(s.labels)
	return s
}

// Labels returns the sorted label list, for injection into the oracle
// prompt.
func (s *Store) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// Validate checks a label returned by the oracle against the closed set.
// Only whitespace and letter case are forgiven; everything else is a miss.
func (s *Store) Validate(label string) (string, bool) {
	canonical, ok := s.canonical[strings.ToLower(strings.TrimSpace(label))]
	return canonical, ok
}

// IsFallback reports whether the label is the literal fallback.
func (s *Store) IsFallback(label string) bool {
	return strings.EqualFold(strings.TrimSpace(label), FallbackLabel)
}

func (s *Store) Len() int {
	return len(s.labels)
}
