package report

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

// Filter selects transactions by every set dimension at once. An empty
// dimension places no constraint.
type Filter struct {
	AccountIDs []uuid.UUID
	Kinds      []transaction.Kind
	Tags       []string
	Start      time.Time
	End        time.Time
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
}

func (f Filter) Apply(txs []transaction.Transaction) []transaction.Transaction {
	out := ByAccounts(txs, f.AccountIDs)
	out = ByKinds(out, f.Kinds)
	out = ByTags(out, f.Tags)
	out = ByDateRange(out, f.Start, f.End)

	return ByAmountRange(out, f.MinAmount, f.MaxAmount)
}

// ByAccounts keeps transactions touching any of the accounts on either side.
func ByAccounts(txs []transaction.Transaction, ids []uuid.UUID) []transaction.Transaction {
	if len(ids) == 0 {
		return slices.Clone(txs)
	}

	return keep(txs, func(t transaction.Transaction) bool {
		return slices.ContainsFunc(ids, t.Touches)
	})
}

func ByKinds(txs []transaction.Transaction, kinds []transaction.Kind) []transaction.Transaction {
	if len(kinds) == 0 {
		return slices.Clone(txs)
	}

	return keep(txs, func(t transaction.Transaction) bool {
		return slices.Contains(kinds, t.Kind)
	})
}

// ByTags keeps transactions whose category is one of tags.
func ByTags(txs []transaction.Transaction, tags []string) []transaction.Transaction {
	if len(tags) == 0 {
		return slices.Clone(txs)
	}

	return keep(txs, func(t transaction.Transaction) bool {
		return slices.Contains(tags, t.Category)
	})
}

// ByDateRange keeps transactions dated within [start, end], both inclusive.
// end covers its whole day. A zero bound is open.
func ByDateRange(txs []transaction.Transaction, start, end time.Time) []transaction.Transaction {
	if !end.IsZero() {
		end = EndOfDay(end)
	}

	return keep(txs, func(t transaction.Transaction) bool {
		if !start.IsZero() && t.Date.Before(start) {
			return false
		}

		return end.IsZero() || !t.Date.After(end)
	})
}

// ByAmountRange keeps transactions with min <= amount <= max. A nil bound is open.
func ByAmountRange(txs []transaction.Transaction, minAmount, maxAmount *decimal.Decimal) []transaction.Transaction {
	return keep(txs, func(t transaction.Transaction) bool {
		if minAmount != nil && t.Amount.LessThan(*minAmount) {
			return false
		}

		return maxAmount == nil || !t.Amount.GreaterThan(*maxAmount)
	})
}

// SortByDateDesc returns a copy ordered newest first. Ties keep insertion order.
func SortByDateDesc(txs []transaction.Transaction) []transaction.Transaction {
	out := slices.Clone(txs)
	slices.SortStableFunc(out, func(a, b transaction.Transaction) int {
		return b.Date.Compare(a.Date)
	})

	return out
}

// EndOfDay returns the last millisecond of t's day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func keep(txs []transaction.Transaction, match func(transaction.Transaction) bool) []transaction.Transaction {
	out := make([]transaction.Transaction, 0, len(txs))
	for _, t := range txs {
		if match(t) {
			out = append(out, t)
		}
	}

	return out
}
