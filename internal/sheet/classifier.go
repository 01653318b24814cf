package sheet

import (
	"strings"

	"khata/internal/core"
)

// Classifier maps category names to fund/loan groups. The table is fixed
// configuration; names it does not know fall back to a caller-supplied
// default, usually core.GroupUncategorized.
type Classifier struct {
	groups map[string]core.Group
}

// NewClassifier builds a classifier from a name→group table. Lookup keys are
// matched case- and whitespace-insensitively.
func NewClassifier(table map[string]core.Group) Classifier {
	groups := make(map[string]core.Group, len(table))
	for name, g := range table {
		groups[classifierKey(name)] = g
	}
	return Classifier{groups: groups}
}

// DefaultClassifier knows the fund and loan buckets of the source workbook.
func DefaultClassifier() Classifier {
	return NewClassifier(map[string]core.Group{
		"Home Commitment":      core.GroupHomeCommitment,
		"Bangalore Commitment": core.GroupBangaloreCommitment,
		"Emergency Fund":       core.GroupHomeCommitment,
		"Loan Commitment":      core.GroupLoanCommitment,
		"Friend Loan":          core.GroupFriendLoan,
	})
}

// Classify returns the group for a category name, or GroupUncategorized.
func (c Classifier) Classify(name string) core.Group {
	return c.ClassifyOr(name, core.GroupUncategorized)
}

// ClassifyOr returns the group for a category name, or fallback when the
// name is not in the table. Section-based parsing uses this: the workbook's
// funds and loans blocks imply a group positionally even for names the
// table has never seen.
func (c Classifier) ClassifyOr(name string, fallback core.Group) core.Group {
	if g, ok := c.groups[classifierKey(name)]; ok {
		return g
	}
	return fallback
}

func classifierKey(name string) string {
	return strings.ToLower(core.NormalizeCategory(name))
}
