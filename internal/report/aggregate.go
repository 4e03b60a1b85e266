package report

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type Summary struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetFlow      decimal.Decimal
	Count        int
}

// Aggregate sums income and spending. Loan payments count as spending.
func Aggregate(txs []transaction.Transaction) Summary {
	s := Summary{Count: len(txs)}

	for _, t := range txs {
		switch {
		case isIncome(t):
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case isExpense(t):
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		}
	}

	s.NetFlow = s.TotalIncome.Sub(s.TotalExpense)

	return s
}

type DailyTotals struct {
	Date         time.Time
	Income       decimal.Decimal
	Expense      decimal.Decimal
	SelfTransfer decimal.Decimal
}

// civilDate is a calendar day as read on the transaction's own clock.
type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{year: y, month: m, day: d}
}

func (c civilDate) time() time.Time {
	return time.Date(c.year, c.month, c.day, 0, 0, 0, 0, time.Local)
}

func (c civilDate) compare(o civilDate) int {
	if r := cmp.Compare(c.year, o.year); r != 0 {
		return r
	}

	if r := cmp.Compare(c.month, o.month); r != 0 {
		return r
	}

	return cmp.Compare(c.day, o.day)
}

// GroupByDate buckets transactions per calendar day, oldest first. Bucket
// dates are midnight local time.
func GroupByDate(txs []transaction.Transaction) []DailyTotals {
	days := make(map[civilDate]*DailyTotals)

	for _, t := range txs {
		day := dayOf(t.Date)

		totals, ok := days[day]
		if !ok {
			totals = &DailyTotals{Date: day.time()}
			days[day] = totals
		}

		switch {
		case isIncome(t):
			totals.Income = totals.Income.Add(t.Amount)
		case isExpense(t):
			totals.Expense = totals.Expense.Add(t.Amount)
		case t.Kind == transaction.KindSelfTransfer:
			totals.SelfTransfer = totals.SelfTransfer.Add(t.Amount)
		}
	}

	out := make([]DailyTotals, 0, len(days))
	for _, day := range slices.SortedFunc(maps.Keys(days), civilDate.compare) {
		out = append(out, *days[day])
	}

	return out
}

type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// ExpensesByCategory sums expenses per category, largest first.
func ExpensesByCategory(txs []transaction.Transaction) []CategoryTotal {
	sums := make(map[string]decimal.Decimal)

	for _, t := range txs {
		if t.Kind != transaction.KindExpense {
			continue
		}

		category := t.Category
		if category == "" {
			category = "Uncategorized"
		}

		sums[category] = sums[category].Add(t.Amount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for c, amount := range sums {
		out = append(out, CategoryTotal{Category: c, Amount: amount})
	}

	slices.SortFunc(out, func(a, b CategoryTotal) int {
		if c := b.Amount.Cmp(a.Amount); c != 0 {
			return c
		}

		return cmp.Compare(a.Category, b.Category)
	})

	return out
}

type MonthlyTotals struct {
	Month   time.Time
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Monthly buckets income and spending per calendar month, oldest first.
func Monthly(txs []transaction.Transaction) []MonthlyTotals {
	months := make(map[civilDate]*MonthlyTotals)

	for _, t := range txs {
		if !isIncome(t) && !isExpense(t) {
			continue
		}

		month := dayOf(t.Date)
		month.day = 1

		totals, ok := months[month]
		if !ok {
			totals = &MonthlyTotals{Month: month.time()}
			months[month] = totals
		}

		if isIncome(t) {
			totals.Income = totals.Income.Add(t.Amount)
		} else {
			totals.Expense = totals.Expense.Add(t.Amount)
		}
	}

	out := make([]MonthlyTotals, 0, len(months))
	for _, month := range slices.SortedFunc(maps.Keys(months), civilDate.compare) {
		out = append(out, *months[month])
	}

	return out
}

type GroupTotal struct {
	Group   account.Group
	Balance decimal.Decimal
	Count   int
}

// GroupTotals sums balances per account group in display order.
func GroupTotals(accounts []account.Account) []GroupTotal {
	out := make([]GroupTotal, len(account.Groups))
	for i, g := range account.Groups {
		out[i].Group = g
	}

	for _, a := range accounts {
		i := slices.Index(account.Groups, a.Group)
		if i < 0 {
			continue
		}

		out[i].Balance = out[i].Balance.Add(a.Balance)
		out[i].Count++
	}

	return out
}

func isIncome(t transaction.Transaction) bool {
	return t.Kind == transaction.KindIncome
}

func isExpense(t transaction.Transaction) bool {
	return t.Kind == transaction.KindExpense || t.Kind == transaction.KindLoanPayment
}
