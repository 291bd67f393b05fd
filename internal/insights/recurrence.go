// Package insights derives higher level signals from the transaction
// ledger: recurring charges, statistical outliers, budget progress, payoff
// schedules and cashflow forecasts. Everything here is a synchronous
// computation over the current ledger state.
package insights

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/spendlens/backend/internal/config"
	"github.com/spendlens/backend/internal/models"
)

var (
	canonRe        = regexp.MustCompile(`[^a-z0-9 ]`)
	emiWordRe      = regexp.MustCompile(`(?i)\bEMI\b`)
	emiConfirmedRe = regexp.MustCompile(`(?i)\bEMI[, ]*(PRIN|INT|PRINCIPAL|INTEREST)\b`)
)

// knownServices maps description keywords to the display names of services
// that are recurring by nature. Matching one is enough evidence even when
// the interval pattern is too sparse to qualify on its own.
var knownServices = []struct{ keyword, display string }{
	{"spotify", "Spotify"},
	{"netflix", "Netflix"},
	{"youtube", "YouTube Premium"},
	{"disney", "Disney+ Hotstar"},
	{"hotstar", "Disney+ Hotstar"},
	{"jiocinema", "JioCinema"},
	{"prime video", "Amazon Prime Video"},
	{"amazon prime", "Amazon Prime"},
	{"apple.com/bill", "Apple Subscription"},
	{"google play", "Google Play"},
	{"google storage", "Google One"},
	{"github", "GitHub"},
	{"chatgpt", "ChatGPT Plus"},
	{"openai", "OpenAI"},
	{"notion", "Notion"},
	{"figma", "Figma"},
	{"canva", "Canva"},
	{"zoom", "Zoom"},
	{"icloud", "iCloud"},
	{"dropbox", "Dropbox"},
	{"microsoft 365", "Microsoft 365"},
	{"linkedin", "LinkedIn Premium"},
	{"leetcode", "LeetCode"},
	{"surfshark", "Surfshark VPN"},
	{"nordvpn", "NordVPN"},
	{"expressvpn", "ExpressVPN"},
	{"audible", "Audible"},
	{"kindle", "Kindle Unlimited"},
	{"jio", "Jio Recharge"},
	{"airtel", "Airtel Recharge"},
	{"vi ", "Vi Recharge"},
	{"swiggy one", "Swiggy One"},
	{"zomato gold", "Zomato Gold"},
	{"zomato pro", "Zomato Pro"},
	{"google cloud", "Google Cloud"},
}

// canon lower-cases a merchant name and strips everything that is not
// alphanumeric, so truncated statement variants compare equal.
func canon(name string) string {
	return strings.TrimSpace(canonRe.ReplaceAllString(strings.ToLower(name), ""))
}

// Detector finds recurring charges in the ledger and maintains the
// subscriptions table from them. Scans are serialized with a mutex so two
// overlapping scans cannot race on the same rows.
type Detector struct {
	mu  sync.Mutex
	cfg config.Config
}

func NewDetector(cfg config.Config) *Detector {
	return &Detector{cfg: cfg}
}

// recurrenceCandidate is one detected recurring charge before it is
// reconciled with the subscriptions table.
type recurrenceCandidate struct {
	merchant  string
	amount    decimal.Decimal
	cadence   models.Cadence
	kind      models.SubscriptionKind
	firstSeen time.Time
	lastSeen  time.Time
	txnCount  int
	avgGap    float64
	txnIDs    []uuid.UUID
}

func (c recurrenceCandidate) key() string {
	return canon(c.merchant) + "|" + string(c.kind)
}

func (c recurrenceCandidate) signature() string {
	return canon(c.merchant) + ":" + string(c.kind)
}

// Scan detects recurring charges and upserts them into the subscriptions
// table. Existing rows are updated in place, rows whose pattern disappeared
// are deactivated (never deleted), and user confirmed rows are left alone.
// Returns the number of subscriptions created or updated.
func (d *Detector) Scan() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var txns []models.Transaction
	err := models.DB.
		Where("amount > 0").
		Order("posted_date ASC").
		Find(&txns).Error
	if err != nil {
		return 0, err
	}

	candidates := d.detect(txns)

	upserted := 0
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		upserted, err = d.sync(tx, candidates)
		return err
	})
	if err != nil {
		return 0, err
	}

	log.Debug().Int("candidates", len(candidates)).Int("upserted", upserted).Msg("recurrence scan complete")
	return upserted, nil
}

// detect runs all three detectors over the spend transactions and
// deduplicates the result, keeping the most recent candidate per
// merchant and kind.
func (d *Detector) detect(txns []models.Transaction) []recurrenceCandidate {
	groups := mergeMerchantGroups(groupByMerchant(txns))

	var candidates []recurrenceCandidate
	for _, group := range groups {
		candidates = append(candidates, detectInstallments(group.label, group.txns)...)
		if c, ok := d.detectByInterval(group.label, group.txns); ok {
			candidates = append(candidates, c)
		}
	}

	candidates = append(candidates, d.detectKnownServices(txns, candidates)...)

	unique := map[string]recurrenceCandidate{}
	for _, c := range candidates {
		// Installment candidates carry an explicit marker in the
		// description, everything else needs the configured minimum
		// number of occurrences.
		if c.kind == models.KindSubscription && c.txnCount < d.cfg.MinOccurrences {
			continue
		}

		prev, ok := unique[c.key()]
		if !ok || c.lastSeen.After(prev.lastSeen) {
			unique[c.key()] = c
		}
	}

	out := make([]recurrenceCandidate, 0, len(unique))
	for _, c := range unique {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].merchant < out[j].merchant })

	return out
}

type merchantGroup struct {
	label string
	txns  []models.Transaction
}

func groupByMerchant(txns []models.Transaction) map[string][]models.Transaction {
	groups := map[string][]models.Transaction{}
	for _, t := range txns {
		key := strings.TrimSpace(t.MerchantNormalized)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], t)
	}

	return groups
}

// mergeMerchantGroups merges groups whose canonical names share a prefix of
// at least six characters where one name is a prefix of the other. Statement
// processors truncate merchant names at different lengths, so "Spotify Si"
// and "Spotify" are the same merchant. The shorter original name wins as the
// display label.
func mergeMerchantGroups(groups map[string][]models.Transaction) []merchantGroup {
	canonToKeys := map[string][]string{}
	for key := range groups {
		c := canon(key)
		canonToKeys[c] = append(canonToKeys[c], key)
	}
	for _, keys := range canonToKeys {
		sort.Strings(keys)
	}

	canonNames := make([]string, 0, len(canonToKeys))
	for c := range canonToKeys {
		canonNames = append(canonNames, c)
	}
	sort.Strings(canonNames)

	used := map[string]bool{}
	var merged []merchantGroup

	for i, ci := range canonNames {
		if used[ci] {
			continue
		}

		label := canonToKeys[ci][0]
		var groupTxns []models.Transaction
		for _, key := range canonToKeys[ci] {
			groupTxns = append(groupTxns, groups[key]...)
		}
		used[ci] = true

		for _, cj := range canonNames[i+1:] {
			if used[cj] {
				continue
			}

			prefix := commonPrefixLen(ci, cj)
			if prefix < 6 || (prefix < len(ci) && prefix < len(cj)) {
				continue
			}

			for _, key := range canonToKeys[cj] {
				groupTxns = append(groupTxns, groups[key]...)
				if len(key) < len(label) {
					label = key
				}
			}
			used[cj] = true
		}

		merged = append(merged, merchantGroup{label: label, txns: groupTxns})
	}

	return merged
}

func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}

	return n
}

// detectInstallments finds EMI charges by description keywords. PRIN/INT
// markers next to EMI (or an OFFUS prefix) confirm an installment; a bare
// EMI mention is only promoted to installment when the charges also repeat
// monthly with similar amounts, otherwise it stays a possible installment
// for the user to confirm.
func detectInstallments(label string, txns []models.Transaction) []recurrenceCandidate {
	var confirmed, possible []models.Transaction

	for _, t := range txns {
		upper := strings.ToUpper(t.Description)
		isConfirmed := emiConfirmedRe.MatchString(t.Description) ||
			(strings.Contains(upper, "OFFUS") && (strings.Contains(upper, "PRIN") || strings.Contains(upper, "INT")))

		switch {
		case isConfirmed:
			confirmed = append(confirmed, t)
		case emiWordRe.MatchString(t.Description):
			possible = append(possible, t)
		}
	}

	var out []recurrenceCandidate
	if len(confirmed) > 0 {
		out = append(out, buildCandidate(label, confirmed, models.KindInstallment))
	}

	if len(possible) > 0 {
		kind := models.KindPossibleInstallment
		if looksLikeMonthlySeries(possible) {
			kind = models.KindInstallment
		}
		out = append(out, buildCandidate(label, possible, kind))
	}

	return out
}

// looksLikeMonthlySeries reports whether the transactions repeat roughly
// monthly with similar amounts, tolerating missing months.
func looksLikeMonthlySeries(txns []models.Transaction) bool {
	if len(txns) < 2 {
		return false
	}

	sorted := sortByDate(txns)
	median := medianAmount(sorted)

	similar := 0
	lo := median.Mul(decimal.NewFromFloat(0.90))
	hi := median.Mul(decimal.NewFromFloat(1.10))
	for _, t := range sorted {
		if median.IsZero() || (t.Amount.GreaterThanOrEqual(lo) && t.Amount.LessThanOrEqual(hi)) {
			similar++
		}
	}
	if similar < 2 {
		return false
	}

	for i := 0; i < len(sorted)-1; i++ {
		gap := daysBetween(sorted[i].PostedDate, sorted[i+1].PostedDate)
		if gap >= 25 && gap <= 38 {
			return true
		}
		if gap > 38 && gap%30 <= 8 {
			return true
		}
	}

	return false
}

// detectByInterval tests all transaction pairs of a merchant group for a
// periodic date gap with similar amounts. All pairs are checked, not just
// adjacent ones, because months can be missing from the uploaded statements.
func (d *Detector) detectByInterval(label string, txns []models.Transaction) (recurrenceCandidate, bool) {
	if len(txns) < 2 {
		return recurrenceCandidate{}, false
	}

	sorted := sortByDate(txns)

	ratioLo := decimal.NewFromFloat(1 - d.cfg.AmountTolerance)
	ratioHi := decimal.NewFromFloat(1 + d.cfg.AmountTolerance)

	var (
		bestCadence models.Cadence
		bestFirst   models.Transaction
		bestLast    models.Transaction
		havePair    bool
		matched     = map[uuid.UUID]bool{}
		total       decimal.Decimal
		pairCount   int
		gapSum      int
	)

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			t1, t2 := sorted[i], sorted[j]
			if t1.Amount.IsZero() {
				continue
			}

			ratio := t2.Amount.Div(t1.Amount)
			if ratio.LessThan(ratioLo) || ratio.GreaterThan(ratioHi) {
				continue
			}

			gap := daysBetween(t1.PostedDate, t2.PostedDate)
			cadence, ok := d.cadenceForGap(gap)
			if !ok {
				continue
			}

			matched[t1.ID] = true
			matched[t2.ID] = true
			total = total.Add(t2.Amount)
			pairCount++
			gapSum += gap
			if !havePair || t2.PostedDate.After(bestLast.PostedDate) {
				bestCadence = cadence
				bestFirst, bestLast = t1, t2
				havePair = true
			}
		}
	}

	if !havePair {
		return recurrenceCandidate{}, false
	}

	ids := make([]uuid.UUID, 0, len(matched))
	for id := range matched {
		ids = append(ids, id)
	}

	return recurrenceCandidate{
		merchant:  label,
		amount:    total.Div(decimal.NewFromInt(int64(pairCount))).Round(2),
		cadence:   bestCadence,
		kind:      models.KindSubscription,
		firstSeen: bestFirst.PostedDate,
		lastSeen:  bestLast.PostedDate,
		txnCount:  len(matched),
		avgGap:    float64(gapSum) / float64(pairCount),
		txnIDs:    ids,
	}, true
}

// cadenceForGap maps a day gap onto a cadence. The windows sit around each
// cadence's nominal day count, widened by the configured tolerance. A gap
// that is a rough multiple of 30 days is still monthly: the months in
// between are simply missing from the data.
func (d *Detector) cadenceForGap(gap int) (models.Cadence, bool) {
	tol := d.cfg.CadenceToleranceDays

	switch {
	case gap >= 6-tol && gap <= 8+tol:
		return models.CadenceWeekly, true
	case gap >= 28-tol && gap <= 35+tol:
		return models.CadenceMonthly, true
	case gap >= 83-tol && gap <= 97+tol:
		return models.CadenceQuarterly, true
	case gap >= 353-tol && gap <= 392+tol:
		return models.CadenceYearly, true
	case gap > 35+tol && gap%30 <= 8:
		return models.CadenceMonthly, true
	}

	return "", false
}

// detectKnownServices matches descriptions against the known services
// table, catching recurring charges the interval detector missed because
// the data was too sparse. Candidates already found keep priority.
func (d *Detector) detectKnownServices(txns []models.Transaction, found []recurrenceCandidate) []recurrenceCandidate {
	already := map[string]bool{}
	for _, c := range found {
		already[canon(c.merchant)] = true
	}

	matched := map[string][]models.Transaction{}
	var order []string
	for _, t := range txns {
		text := strings.ToLower(t.Description + " " + t.MerchantNormalized)
		for _, svc := range knownServices {
			if !strings.Contains(text, svc.keyword) {
				continue
			}

			c := canon(svc.display)
			skip := false
			for a := range already {
				if strings.Contains(a, c) || strings.Contains(c, a) {
					skip = true
					break
				}
			}
			if !skip {
				if _, ok := matched[svc.display]; !ok {
					order = append(order, svc.display)
				}
				matched[svc.display] = append(matched[svc.display], t)
			}
			break // first keyword wins
		}
	}

	var out []recurrenceCandidate
	for _, display := range order {
		group := sortByDate(matched[display])
		c := buildCandidate(display, group, models.KindSubscription)
		c.cadence = guessCadence(group)
		out = append(out, c)
	}

	return out
}

// guessCadence infers a cadence from the median gap of a known service's
// charges. Known services default to monthly, only strong evidence of a
// longer period overrides that.
func guessCadence(sorted []models.Transaction) models.Cadence {
	if len(sorted) < 2 {
		return models.CadenceMonthly
	}

	gaps := make([]int, 0, len(sorted)-1)
	for i := 0; i < len(sorted)-1; i++ {
		gaps = append(gaps, daysBetween(sorted[i].PostedDate, sorted[i+1].PostedDate))
	}
	sort.Ints(gaps)
	median := gaps[len(gaps)/2]

	switch {
	case median > 38 && median%30 <= 8:
		return models.CadenceMonthly
	case median > 300:
		return models.CadenceYearly
	case median > 80:
		return models.CadenceQuarterly
	}

	return models.CadenceMonthly
}

func buildCandidate(label string, txns []models.Transaction, kind models.SubscriptionKind) recurrenceCandidate {
	sorted := sortByDate(txns)

	total := decimal.Zero
	ids := make([]uuid.UUID, 0, len(sorted))
	for _, t := range sorted {
		total = total.Add(t.Amount)
		ids = append(ids, t.ID)
	}

	gapSum, gapCount := 0, 0
	for i := 0; i < len(sorted)-1; i++ {
		gapSum += daysBetween(sorted[i].PostedDate, sorted[i+1].PostedDate)
		gapCount++
	}
	avgGap := 0.0
	if gapCount > 0 {
		avgGap = float64(gapSum) / float64(gapCount)
	}

	return recurrenceCandidate{
		merchant:  label,
		amount:    total.Div(decimal.NewFromInt(int64(len(sorted)))).Round(2),
		cadence:   models.CadenceMonthly,
		kind:      kind,
		firstSeen: sorted[0].PostedDate,
		lastSeen:  sorted[len(sorted)-1].PostedDate,
		txnCount:  len(sorted),
		avgGap:    avgGap,
		txnIDs:    ids,
	}
}

// sync reconciles the candidates with the subscriptions table. Stale auto
// detected rows are deactivated, matches are updated in place and new
// candidates inserted. User confirmed rows never lose their active flag.
func (d *Detector) sync(tx *gorm.DB, candidates []recurrenceCandidate) (int, error) {
	candidateKeys := map[string]bool{}
	for _, c := range candidates {
		candidateKeys[c.key()] = true
	}

	var existing []models.Subscription
	err := tx.Find(&existing).Error
	if err != nil {
		return 0, err
	}

	for _, sub := range existing {
		label := sub.Merchant
		if label == "" {
			label = sub.MerchantNormalized
		}

		key := canon(label) + "|" + string(sub.Kind)
		if !candidateKeys[key] && !sub.UserConfirmed && sub.Active {
			err = tx.Model(&models.Subscription{}).Where("id = ?", sub.ID).Update("active", false).Error
			if err != nil {
				return 0, err
			}
		}
	}

	upserted := 0
	for _, c := range candidates {
		var sub models.Subscription
		err = tx.Where("merchant = ? AND kind = ?", c.merchant, c.kind).First(&sub).Error
		switch {
		case err == nil:
			err = tx.Model(&models.Subscription{}).Where("id = ?", sub.ID).Updates(map[string]any{
				"last_seen":             c.lastSeen,
				"first_seen":            c.firstSeen,
				"amount":                c.amount,
				"cadence":               c.cadence,
				"active":                true,
				"transaction_count":     c.txnCount,
				"average_interval_days": c.avgGap,
			}).Error
			if err != nil {
				return 0, err
			}

		case errors.Is(err, models.ErrResourceNotFound) || errors.Is(err, gorm.ErrRecordNotFound):
			sub = models.Subscription{
				RecurringSignature:  c.signature(),
				Merchant:            c.merchant,
				MerchantNormalized:  canon(c.merchant),
				Amount:              c.amount,
				Cadence:             c.cadence,
				Kind:                c.kind,
				FirstSeen:           c.firstSeen,
				LastSeen:            c.lastSeen,
				TransactionCount:    c.txnCount,
				AverageIntervalDays: c.avgGap,
				Active:              true,
			}
			err = tx.Create(&sub).Error
			if err != nil {
				return 0, err
			}

		default:
			return 0, err
		}

		if len(c.txnIDs) > 0 {
			err = tx.Model(&models.Transaction{}).Where("id IN ?", c.txnIDs).Updates(map[string]any{
				"recurring_signature": c.signature(),
				"recurring_cadence":   string(c.cadence),
			}).Error
			if err != nil {
				return 0, err
			}
		}

		upserted++
	}

	return upserted, nil
}

func sortByDate(txns []models.Transaction) []models.Transaction {
	sorted := make([]models.Transaction, len(txns))
	copy(sorted, txns)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PostedDate.Before(sorted[j].PostedDate) })
	return sorted
}

func medianAmount(sorted []models.Transaction) decimal.Decimal {
	amounts := make([]decimal.Decimal, 0, len(sorted))
	for _, t := range sorted {
		amounts = append(amounts, t.Amount)
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i].LessThan(amounts[j]) })
	return amounts[len(amounts)/2]
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
