package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Planned Kind = "planned"
	Actual  Kind = "actual"
)

const (
	GroupHomeCommitment      Group = "home_commitment"
	GroupBangaloreCommitment Group = "bangalore_commitment"
	GroupLoanCommitment      Group = "loan_commitment"
	GroupFriendLoan          Group = "friend_loan"
	GroupUncategorized       Group = "uncategorized"
)

const (
	SideHome   Side = "home"
	SideFriend Side = "friend"
)

type (
	// Kind distinguishes a planned figure from what was actually spent.
	Kind string

	// Group classifies a category into a fund or loan bucket. Categories
	// that map to no bucket stay GroupUncategorized. Spending aggregations
	// cover non-balance records only; balance records feed the fund and
	// loan views.
	Group string

	// Side splits loan records between household loans and money lent to
	// friends.
	Side string

	// MonthKey is the canonical, sortable identity of a calendar month.
	// It is comparable and safe to use as a map key; the display label
	// it was parsed from is kept separately on the record.
	MonthKey struct {
		Year  int
		Month time.Month
	}

	Money struct {
		Cents int64
	}

	// CategoryRecord is one category's figure for one month. The base
	// workbook and runtime additions both normalize into this shape.
	CategoryRecord struct {
		Month      MonthKey
		MonthLabel string
		Category   string
		Kind       Kind
		Amount     Money
		Group      Group
	}

	// RecordKey identifies a record for merge purposes: at most one
	// record exists per (month, category, kind).
	RecordKey struct {
		Month    MonthKey
		Category string
		Kind     Kind
	}
)

var (
	ErrInvalidMonthLabel = errors.New("invalid month label")
	ErrInvalidKind       = errors.New("invalid kind")
	ErrEmptyCategory     = errors.New("empty category")
)

func (k Kind) Valid() bool {
	return k == Planned || k == Actual
}

// IsFund reports whether records in this group feed fund balance queries.
func (g Group) IsFund() bool {
	return g == GroupHomeCommitment || g == GroupBangaloreCommitment
}

// LoanSide returns which loan side this group belongs to, if any.
func (g Group) LoanSide() (Side, bool) {
	switch g {
	case GroupLoanCommitment:
		return SideHome, true
	case GroupFriendLoan:
		return SideFriend, true
	}
	return "", false
}

// IsBalance reports whether the group's records are point-in-time fund or
// loan balance snapshots rather than monthly spending.
func (g Group) IsBalance() bool {
	if g.IsFund() {
		return true
	}
	_, loan := g.LoanSide()
	return loan
}

func (s Side) Valid() bool {
	return s == SideHome || s == SideFriend
}

func (k MonthKey) IsZero() bool {
	return k.Year == 0 && k.Month == 0
}

// Before reports whether k is an earlier calendar month than other.
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// String renders the key as YYYY-MM, which also sorts lexically.
func (k MonthKey) String() string {
	return k.time().Format("2006-01")
}

// Label renders the key back into the workbook's MMM-YY form.
func (k MonthKey) Label() string {
	return k.time().Format("Jan-06")
}

func (k MonthKey) time() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

// NormalizeCategory collapses internal whitespace and trims the ends.
// Category names keep their original casing for display; key matching
// lowercases separately.
func NormalizeCategory(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Key returns the merge identity of the record. Category matching is
// case-insensitive so a manual "groceries" row replaces "Groceries".
func (r CategoryRecord) Key() RecordKey {
	return RecordKey{
		Month:    r.Month,
		Category: strings.ToLower(NormalizeCategory(r.Category)),
		Kind:     r.Kind,
	}
}

func (r CategoryRecord) Validate() error {
	if r.Month.IsZero() {
		return ErrInvalidMonthLabel
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}
