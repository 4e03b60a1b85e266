package ledger_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	book   *ledger.Book
	cash   uuid.UUID
	bank   uuid.UUID
	credit uuid.UUID
	loan   uuid.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	b := ledger.New(uuid.New())
	create := func(name string, g account.Group, bal int64) uuid.UUID {
		a, err := b.CreateAccount(name, g, dec(bal))
		require.NoError(t, err)

		return a.ID
	}

	return fixture{
		book:   b,
		cash:   create("Wallet", account.GroupCash, 2000),
		bank:   create("Savings", account.GroupBank, 10000),
		credit: create("Card", account.GroupCredit, 5000),
		loan:   create("Bike Loan", account.GroupLoan, 150000),
	}
}

func (f fixture) balance(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()

	a, err := f.book.Account(id)
	require.NoError(t, err)

	return a.Balance
}

func (f fixture) balances(t *testing.T) map[uuid.UUID]string {
	t.Helper()

	out := map[uuid.UUID]string{}
	for _, a := range f.book.Accounts() {
		out[a.ID] = a.Balance.String()
	}

	return out
}

func (f fixture) drafts() map[string]transaction.Draft {
	return map[string]transaction.Draft{
		"ExpenseCash": {
			Kind: transaction.KindExpense, Amount: dec(300), From: transaction.AccountParty(f.cash), Category: "Groceries",
		},
		"ExpenseCredit": {
			Kind: transaction.KindExpense, Amount: dec(1500), From: transaction.AccountParty(f.credit), Category: "Clothes",
		},
		"Income": {
			Kind: transaction.KindIncome, Amount: dec(95000), From: transaction.ExternalParty("Salary"), CounterpartyAccountID: &f.bank,
		},
		"SelfTransfer": {
			Kind: transaction.KindSelfTransfer, Amount: dec(500), From: transaction.AccountParty(f.bank), CounterpartyAccountID: &f.cash,
		},
		"TransferOut": {
			Kind: transaction.KindTransferOut, Amount: dec(700), From: transaction.AccountParty(f.bank),
		},
		"LoanPayment": {
			Kind: transaction.KindLoanPayment, Amount: dec(1000), From: transaction.AccountParty(f.bank), CounterpartyAccountID: &f.loan,
		},
		"LoanPaymentExternal": {
			Kind: transaction.KindLoanPayment, Amount: dec(1000), From: transaction.ExternalParty("Employer"), CounterpartyAccountID: &f.credit,
		},
	}
}

func TestBook_ApplyThenRemoveRestoresBalances(t *testing.T) {
	for name := range newFixture(t).drafts() {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			before := f.balances(t)

			tx, err := f.book.Append(f.drafts()[name])
			require.NoError(t, err)
			assert.NotEqual(t, before, f.balances(t))

			require.NoError(t, f.book.Remove(tx.ID))
			assert.Equal(t, before, f.balances(t))
			assert.Zero(t, f.book.Len())
		})
	}
}

func TestBook_ApplyThenRevertAsNewRestoresBalances(t *testing.T) {
	for name := range newFixture(t).drafts() {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			before := f.balances(t)

			tx, err := f.book.Append(f.drafts()[name])
			require.NoError(t, err)

			rev, err := f.book.RevertAsNew(tx.ID)
			require.NoError(t, err)
			assert.Equal(t, before, f.balances(t))

			assert.Equal(t, transaction.KindReversal, rev.Kind)
			assert.Equal(t, tx.Kind, rev.Reverses)
			require.NotNil(t, rev.ReversalOf)
			assert.Equal(t, tx.ID, *rev.ReversalOf)
			assert.Equal(t, tx.To().AccountID, rev.From.AccountID)
			assert.Equal(t, tx.From.AccountID, rev.CounterpartyAccountID)

			orig, err := f.book.Transaction(tx.ID)
			require.NoError(t, err)
			require.NotNil(t, orig.RevertedBy)
			assert.Equal(t, rev.ID, *orig.RevertedBy)
			assert.Equal(t, 2, f.book.Len())
		})
	}
}

func TestBook_SelfTransferConservesLiquidTotal(t *testing.T) {
	f := newFixture(t)
	total := func() decimal.Decimal { return f.balance(t, f.cash).Add(f.balance(t, f.bank)) }
	before := total()

	_, err := f.book.Append(f.drafts()["SelfTransfer"])
	require.NoError(t, err)

	assert.True(t, before.Equal(total()))
	assert.True(t, f.balance(t, f.cash).Equal(dec(2500)))
	assert.True(t, f.balance(t, f.bank).Equal(dec(9500)))
}

func TestBook_CreditExpenseIncreasesOwed(t *testing.T) {
	f := newFixture(t)

	_, err := f.book.Append(f.drafts()["ExpenseCredit"])
	require.NoError(t, err)

	assert.True(t, f.balance(t, f.credit).Equal(dec(6500)))
}

func TestBook_LoanPayment(t *testing.T) {
	f := newFixture(t)

	tx, err := f.book.Append(f.drafts()["LoanPayment"])
	require.NoError(t, err)
	assert.True(t, f.balance(t, f.bank).Equal(dec(9000)))
	assert.True(t, f.balance(t, f.loan).Equal(dec(149000)))

	require.NoError(t, f.book.Remove(tx.ID))
	assert.True(t, f.balance(t, f.bank).Equal(dec(10000)))
	assert.True(t, f.balance(t, f.loan).Equal(dec(150000)))
}

func TestBook_LoanPaymentExceedingPendingLoan(t *testing.T) {
	f := newFixture(t)
	before := f.balances(t)

	_, err := f.book.Append(transaction.Draft{
		Kind:                  transaction.KindLoanPayment,
		Amount:                dec(6000),
		From:                  transaction.ExternalParty(transaction.OthersLabel),
		CounterpartyAccountID: &f.credit,
	})

	var insufficient *ledger.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Equal(t, f.credit, insufficient.Account.ID)
	assert.True(t, insufficient.Available.Equal(dec(5000)))
	assert.True(t, insufficient.Requested.Equal(dec(6000)))
	assert.Equal(t, before, f.balances(t))
}

func TestBook_AllOrNothing(t *testing.T) {
	type testCase struct {
		name    string
		drafts  func(f fixture) []transaction.Draft
		wantErr error
	}

	tests := []testCase{
		{
			name: "Overdraw",
			drafts: func(f fixture) []transaction.Draft {
				return []transaction.Draft{{Kind: transaction.KindExpense, Amount: dec(2001), From: transaction.AccountParty(f.cash)}}
			},
			wantErr: ledger.ErrInsufficientBalance,
		},
		{
			name: "InvalidAmount",
			drafts: func(f fixture) []transaction.Draft {
				return []transaction.Draft{{Kind: transaction.KindExpense, Amount: dec(0), From: transaction.AccountParty(f.cash)}}
			},
			wantErr: transaction.ErrInvalidAmount,
		},
		{
			name: "MissingAccount",
			drafts: func(f fixture) []transaction.Draft {
				return []transaction.Draft{{Kind: transaction.KindTransferOut, Amount: dec(10), From: transaction.AccountParty(uuid.New())}}
			},
			wantErr: account.ErrNotFound,
		},
		{
			name: "BatchSecondFails",
			drafts: func(f fixture) []transaction.Draft {
				return []transaction.Draft{
					{Kind: transaction.KindExpense, Amount: dec(1500), From: transaction.AccountParty(f.cash)},
					{Kind: transaction.KindExpense, Amount: dec(600), From: transaction.AccountParty(f.cash)},
				}
			},
			wantErr: ledger.ErrInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			before := f.balances(t)

			_, err := f.book.AppendBatch(tt.drafts(f))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, f.balances(t))
			assert.Zero(t, f.book.Len())
		})
	}
}

func TestBook_RemoveFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)

	income, err := f.book.Append(f.drafts()["Income"])
	require.NoError(t, err)

	// Spend most of the income so removing it would overdraw the account.
	_, err = f.book.Append(transaction.Draft{Kind: transaction.KindTransferOut, Amount: dec(100000), From: transaction.AccountParty(f.bank)})
	require.NoError(t, err)

	before := f.balances(t)
	err = f.book.Remove(income.ID)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Equal(t, before, f.balances(t))
	assert.Equal(t, 2, f.book.Len())
}

func TestBook_NotRevertible(t *testing.T) {
	f := newFixture(t)

	tx, err := f.book.Append(f.drafts()["ExpenseCash"])
	require.NoError(t, err)

	rev, err := f.book.RevertAsNew(tx.ID)
	require.NoError(t, err)

	_, err = f.book.RevertAsNew(tx.ID)
	assert.ErrorIs(t, err, ledger.ErrNotRevertible)

	_, err = f.book.RevertAsNew(rev.ID)
	assert.ErrorIs(t, err, ledger.ErrNotRevertible)

	assert.ErrorIs(t, f.book.Remove(rev.ID), ledger.ErrNotRevertible)
	assert.ErrorIs(t, f.book.Remove(tx.ID), ledger.ErrNotRevertible)

	assert.ErrorIs(t, f.book.Remove(uuid.New()), transaction.ErrNotFound)
}

func TestBook_AccountInUse(t *testing.T) {
	f := newFixture(t)

	_, err := f.book.Append(f.drafts()["ExpenseCash"])
	require.NoError(t, err)

	assert.ErrorIs(t, f.book.DeleteAccount(f.cash), ledger.ErrAccountInUse)

	_, err = f.book.UpdateAccount(f.cash, account.Patch{Group: new(account.GroupBank)})
	assert.ErrorIs(t, err, ledger.ErrAccountInUse)

	renamed, err := f.book.UpdateAccount(f.cash, account.Patch{Name: new("Pocket")})
	require.NoError(t, err)
	assert.Equal(t, "Pocket", renamed.Name)

	require.NoError(t, f.book.DeleteAccount(f.loan))
	assert.Len(t, f.book.Accounts(), 3)
}

func TestBook_DuplicateAccountName(t *testing.T) {
	f := newFixture(t)

	_, err := f.book.CreateAccount("Wallet", account.GroupBank, dec(0))
	assert.ErrorIs(t, err, account.ErrDuplicateName)
}

func TestBook_DefaultsAndCopies(t *testing.T) {
	f := newFixture(t)

	tx, err := f.book.Append(f.drafts()["TransferOut"])
	require.NoError(t, err)
	assert.Equal(t, transaction.OthersLabel, tx.To().Label)
	assert.False(t, tx.Date.IsZero())
	assert.WithinDuration(t, time.Now(), tx.CreatedAt, time.Minute)

	*tx.From.AccountID = uuid.New()
	list := f.book.List()
	require.Len(t, list, 1)
	assert.Equal(t, f.bank, *list[0].From.AccountID)
}

func TestBook_CloneAndRestore(t *testing.T) {
	f := newFixture(t)

	_, err := f.book.Append(f.drafts()["Income"])
	require.NoError(t, err)

	c := f.book.Clone()
	_, err = c.Append(f.drafts()["ExpenseCash"])
	require.NoError(t, err)
	assert.Equal(t, 1, f.book.Len())
	assert.True(t, f.balance(t, f.cash).Equal(dec(2000)))

	accounts, txs := c.Snapshot()
	restored, err := ledger.Restore(c.Owner(), accounts, txs)
	require.NoError(t, err)
	assert.Equal(t, c.List(), restored.List())
	assert.Equal(t, c.Accounts(), restored.Accounts())
}
