package usage

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrEmptyEmail   = errors.New("user email cannot be empty")
	ErrInvalidMonth = errors.New("month must be in YYYY-MM form")
)

// Ledger tracks one user's lead consumption for one calendar month:
// the running count plus the set of consumed lead identifiers used for
// deduplication. The count always equals the size of the identifier
// set; count-only increments are deliberately not supported because a
// retried count-only call would double-bill.
type Ledger struct {
	userEmail string
	month     string
	used      int
	ids       map[string]struct{}
	updatedAt time.Time
}

// NewLedger creates an empty ledger for the given user and month.
func NewLedger(userEmail, month string) (*Ledger, error) {
	userEmail = strings.ToLower(strings.TrimSpace(userEmail))
	if userEmail == "" {
		return nil, ErrEmptyEmail
	}
	if !validMonth(month) {
		return nil, ErrInvalidMonth
	}

	return &Ledger{
		userEmail: userEmail,
		month:     month,
		ids:       make(map[string]struct{}),
		updatedAt: time.Now(),
	}, nil
}

// ReconstructLedger rebuilds a ledger from persisted state.
func ReconstructLedger(userEmail, month string, used int, ids []string, updatedAt time.Time) (*Ledger, error) {
	l, err := NewLedger(userEmail, month)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		l.ids[id] = struct{}{}
	}
	// Stored counts and id sets can drift apart under legacy rows that
	// predate id tracking; the larger of the two wins.
	l.used = used
	if len(l.ids) > l.used {
		l.used = len(l.ids)
	}
	l.updatedAt = updatedAt
	return l, nil
}

// ConsumeOutcome partitions one consumption request. Ordering within
// each slice follows the request's input order.
type ConsumeOutcome struct {
	Accepted         []string
	Duplicates       []string
	RejectedForQuota []string
}

// NewlyUsed returns the number of identifiers accepted this call.
func (o ConsumeOutcome) NewlyUsed() int {
	return len(o.Accepted)
}

// Consume applies a batch of normalized lead identifiers against the
// given quota. Identifiers already in the stored set are reported as
// duplicates without effect; new identifiers are accepted in input
// order until the quota is reached, and the remainder is rejected.
// The ledger never exceeds the quota as a result of this call.
func (l *Ledger) Consume(ids []string, quota int) ConsumeOutcome {
	var outcome ConsumeOutcome

	for _, id := range ids {
		if _, dup := l.ids[id]; dup {
			outcome.Duplicates = append(outcome.Duplicates, id)
			continue
		}
		if l.used >= quota {
			outcome.RejectedForQuota = append(outcome.RejectedForQuota, id)
			continue
		}
		l.ids[id] = struct{}{}
		l.used++
		outcome.Accepted = append(outcome.Accepted, id)
	}

	if len(outcome.Accepted) > 0 {
		l.updatedAt = time.Now()
	}
	return outcome
}

// Reset clears the ledger. Applied when the user's plan changes so
// consumption under the old tier does not count against the new one.
func (l *Ledger) Reset() {
	l.used = 0
	l.ids = make(map[string]struct{})
	l.updatedAt = time.Now()
}

func (l *Ledger) UserEmail() string { return l.userEmail }
func (l *Ledger) Month() string     { return l.month }
func (l *Ledger) Used() int         { return l.used }

// UsedIDs returns the stored identifier set in sorted order.
func (l *Ledger) UsedIDs() []string {
	out := make([]string, 0, len(l.ids))
	for id := range l.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Has reports whether the identifier is already in the stored set.
func (l *Ledger) Has(id string) bool {
	_, ok := l.ids[id]
	return ok
}

func (l *Ledger) UpdatedAt() time.Time { return l.updatedAt }

// NormalizeLeadIDs trims and lowercases identifiers, drops blanks, and
// removes repeats within the request while preserving input order.
func NormalizeLeadIDs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, id := range raw {
		n := strings.ToLower(strings.TrimSpace(id))
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func validMonth(month string) bool {
	_, err := time.Parse("2006-01", month)
	return err == nil
}
