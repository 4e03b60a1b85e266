package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

var ErrNotEmpty = errors.New("workspace already has accounts")

type demoAccount struct {
	name    string
	group   account.Group
	balance int64
}

var demoAccounts = []demoAccount{
	{"Sarath Wallet", account.GroupCash, 114000},
	{"Rashmika Wallet", account.GroupCash, 10000},
	{"Chirji SBI savings", account.GroupBank, 60000},
	{"Sarath HDFC savings", account.GroupBank, 135000},
	{"HDFC Master Credit", account.GroupCredit, 130000},
	{"SBI Reliance Credit", account.GroupCredit, 70000},
	{"Bike Loan", account.GroupLoan, 150000},
	{"Car Loan", account.GroupLoan, 550400},
}

type demoTransaction struct {
	kind     transaction.Kind
	from     string
	to       string
	amount   int64
	category string
	note     string
}

var demoTransactions = []demoTransaction{
	{transaction.KindIncome, "Salary", "Sarath HDFC savings", 95000, "Salary", "HCL salary"},
	{transaction.KindSelfTransfer, "Sarath Wallet", "Rashmika Wallet", 500, "", "self transfer"},
	{transaction.KindSelfTransfer, "Sarath Wallet", "Chirji SBI savings", 500, "", "self transfer GPay"},
	{transaction.KindLoanPayment, "Sarath HDFC savings", "Bike Loan", 1000, "", "Loan Payment"},
	{transaction.KindExpense, "HDFC Master Credit", "", 9500, "Rent", "PG - Rent"},
	{transaction.KindExpense, "HDFC Master Credit", "", 5500, "Clothes", "Arrow - Forum Mall"},
	{transaction.KindExpense, "HDFC Master Credit", "", 4500, "Restaurant", "Barbeque"},
	{transaction.KindExpense, "HDFC Master Credit", "", 2500, "Shopping", "Iron Box"},
}

// Seed fills an empty workspace with sample accounts and transactions.
func (s *Service) Seed(ctx context.Context, userID uuid.UUID) error {
	now := s.now()

	err := s.mutate(ctx, userID, func(_ *user.User, b *ledger.Book) error {
		if len(b.Accounts()) > 0 {
			return ErrNotEmpty
		}

		for _, a := range demoAccounts {
			if _, err := b.CreateAccount(a.name, a.group, decimal.NewFromInt(a.balance)); err != nil {
				return fmt.Errorf("creating %q: %w", a.name, err)
			}
		}

		drafts := make([]transaction.Draft, 0, len(demoTransactions))
		for i, t := range demoTransactions {
			drafts = append(drafts, bind(b, demoRow(t), nil))
			drafts[i].Date = now.AddDate(0, 0, i-len(demoTransactions)+1)
		}

		_, err := b.AppendBatch(drafts)

		return err
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "demo data seeded", "user_id", userID,
		"accounts", len(demoAccounts), "transactions", len(demoTransactions))

	return nil
}

func demoRow(t demoTransaction) importer.Row {
	return importer.Row{
		Draft: transaction.Draft{
			Kind:     t.kind,
			Amount:   decimal.NewFromInt(t.amount),
			Category: t.category,
			Note:     t.note,
		},
		FromName: t.from,
		ToName:   t.to,
	}
}
