package report

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

const recentCount = 5

type Dashboard struct {
	TotalBalance       decimal.Decimal
	Accounts           []account.Account
	Recent             []transaction.Transaction
	Summary            Summary
	ExpensesByCategory []CategoryTotal
	Monthly            []MonthlyTotals
	Groups             []GroupTotal
}

// BuildDashboard derives the overview page from an owner's accounts and
// transactions.
func BuildDashboard(accounts []account.Account, txs []transaction.Transaction) Dashboard {
	d := Dashboard{
		Accounts:           accounts,
		Summary:            Aggregate(txs),
		ExpensesByCategory: ExpensesByCategory(txs),
		Monthly:            Monthly(txs),
		Groups:             GroupTotals(accounts),
	}

	for _, a := range accounts {
		d.TotalBalance = d.TotalBalance.Add(a.Balance)
	}

	sorted := SortByDateDesc(txs)
	d.Recent = sorted[:min(recentCount, len(sorted))]

	return d
}
