package transaction_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestEffect(t *testing.T) {
	type testCase struct {
		name      string
		kind      transaction.Kind
		fromGroup account.Group
		wantFrom  decimal.Decimal
		wantTo    decimal.Decimal
	}

	tests := []testCase{
		{name: "ExpenseFromCash", kind: transaction.KindExpense, fromGroup: account.GroupCash, wantFrom: dec(-100), wantTo: dec(0)},
		{name: "ExpenseFromBank", kind: transaction.KindExpense, fromGroup: account.GroupBank, wantFrom: dec(-100), wantTo: dec(0)},
		{name: "ExpenseOnCredit", kind: transaction.KindExpense, fromGroup: account.GroupCredit, wantFrom: dec(100), wantTo: dec(0)},
		{name: "Income", kind: transaction.KindIncome, wantFrom: dec(0), wantTo: dec(100)},
		{name: "SelfTransfer", kind: transaction.KindSelfTransfer, fromGroup: account.GroupBank, wantFrom: dec(-100), wantTo: dec(100)},
		{name: "TransferOut", kind: transaction.KindTransferOut, fromGroup: account.GroupCash, wantFrom: dec(-100), wantTo: dec(0)},
		{name: "LoanPayment", kind: transaction.KindLoanPayment, fromGroup: account.GroupBank, wantFrom: dec(-100), wantTo: dec(-100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transaction.Effect(tt.kind, dec(100), tt.fromGroup)

			assert.True(t, tt.wantFrom.Equal(got.From), "from: want %s got %s", tt.wantFrom, got.From)
			assert.True(t, tt.wantTo.Equal(got.To), "to: want %s got %s", tt.wantTo, got.To)

			inv := got.Invert()
			assert.True(t, inv.From.Add(got.From).IsZero())
			assert.True(t, inv.To.Add(got.To).IsZero())
		})
	}
}

func TestTransaction_EffectOfReversal(t *testing.T) {
	// Reversal of a cash expense: the cash account is on the receiving side.
	rev := transaction.Transaction{
		Kind:     transaction.KindReversal,
		Reverses: transaction.KindExpense,
		Amount:   dec(250),
	}

	got := rev.Effect(account.GroupCash)
	assert.True(t, got.From.IsZero())
	assert.True(t, got.To.Equal(dec(250)))

	// Reversal of a credit expense pays the card back down.
	got = rev.Effect(account.GroupCredit)
	assert.True(t, got.To.Equal(dec(-250)))

	// Reversal of a self transfer moves money back to the original source.
	rev.Reverses = transaction.KindSelfTransfer
	got = rev.Effect(account.GroupBank)
	assert.True(t, got.From.Equal(dec(-250)))
	assert.True(t, got.To.Equal(dec(250)))
}

func TestValidate(t *testing.T) {
	accounts := map[uuid.UUID]account.Account{}
	add := func(name string, g account.Group) uuid.UUID {
		id := uuid.New()
		accounts[id] = account.Account{ID: id, Name: name, Group: g}

		return id
	}

	cash := add("Wallet", account.GroupCash)
	bank := add("Savings", account.GroupBank)
	credit := add("Card", account.GroupCredit)
	loan := add("Bike Loan", account.GroupLoan)

	lookup := func(id uuid.UUID) (account.Account, error) {
		a, ok := accounts[id]
		if !ok {
			return account.Account{}, account.ErrNotFound
		}

		return a, nil
	}

	type testCase struct {
		name    string
		draft   transaction.Draft
		wantErr error
	}

	tests := []testCase{
		{
			name:  "ExpenseFromCredit",
			draft: transaction.Draft{Kind: transaction.KindExpense, Amount: dec(10), From: transaction.AccountParty(credit)},
		},
		{
			name:    "ExpenseFromLoan",
			draft:   transaction.Draft{Kind: transaction.KindExpense, Amount: dec(10), From: transaction.AccountParty(loan)},
			wantErr: transaction.ErrInvalidLegs,
		},
		{
			name:    "ZeroAmount",
			draft:   transaction.Draft{Kind: transaction.KindExpense, Amount: dec(0), From: transaction.AccountParty(cash)},
			wantErr: transaction.ErrInvalidAmount,
		},
		{
			name:    "NegativeAmount",
			draft:   transaction.Draft{Kind: transaction.KindExpense, Amount: dec(-5), From: transaction.AccountParty(cash)},
			wantErr: transaction.ErrInvalidAmount,
		},
		{
			name:  "IncomeIntoBank",
			draft: transaction.Draft{Kind: transaction.KindIncome, Amount: dec(10), From: transaction.ExternalParty("Salary"), CounterpartyAccountID: &bank},
		},
		{
			name:    "IncomeIntoCredit",
			draft:   transaction.Draft{Kind: transaction.KindIncome, Amount: dec(10), From: transaction.ExternalParty("Salary"), CounterpartyAccountID: &credit},
			wantErr: transaction.ErrInvalidLegs,
		},
		{
			name:    "IncomeFromAccount",
			draft:   transaction.Draft{Kind: transaction.KindIncome, Amount: dec(10), From: transaction.AccountParty(cash), CounterpartyAccountID: &bank},
			wantErr: transaction.ErrInvalidLegs,
		},
		{
			name:    "SelfTransferSameAccount",
			draft:   transaction.Draft{Kind: transaction.KindSelfTransfer, Amount: dec(10), From: transaction.AccountParty(cash), CounterpartyAccountID: &cash},
			wantErr: transaction.ErrInvalidLegs,
		},
		{
			name:    "SelfTransferMissingTarget",
			draft:   transaction.Draft{Kind: transaction.KindSelfTransfer, Amount: dec(10), From: transaction.AccountParty(cash)},
			wantErr: transaction.ErrInvalidLegs,
		},
		{
			name:  "LoanPaymentExternal",
			draft: transaction.Draft{Kind: transaction.KindLoanPayment, Amount: dec(10), From: transaction.ExternalParty(transaction.OthersLabel), CounterpartyAccountID: &loan},
		},
		{
			name:    "LoanPaymentToBank",
			draft:   transaction.Draft{Kind: transaction.KindLoanPayment, Amount: dec(10), From: transaction.AccountParty(cash), CounterpartyAccountID: &bank},
			wantErr: transaction.ErrInvalidLegs,
		},
		{
			name:    "UnknownAccount",
			draft:   transaction.Draft{Kind: transaction.KindTransferOut, Amount: dec(10), From: transaction.AccountParty(uuid.New())},
			wantErr: account.ErrNotFound,
		},
		{
			name:    "ReversalCannotBeDrafted",
			draft:   transaction.Draft{Kind: transaction.KindReversal, Amount: dec(10)},
			wantErr: transaction.ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := transaction.Validate(tt.draft, lookup)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestParseKind(t *testing.T) {
	got, err := transaction.ParseKind("Loan Payment")
	require.NoError(t, err)
	assert.Equal(t, transaction.KindLoanPayment, got)

	got, err = transaction.ParseKind("self_transfer")
	require.NoError(t, err)
	assert.Equal(t, transaction.KindSelfTransfer, got)

	_, err = transaction.ParseKind("gift")
	assert.ErrorIs(t, err, transaction.ErrInvalidKind)
}

func TestLegRules(t *testing.T) {
	type testCase struct {
		name        string
		kind        transaction.Kind
		group       account.Group
		wantFrom    bool
		wantTo      bool
		wantExtFrom bool
		wantExtTo   bool
	}

	tests := []testCase{
		{name: "ExpenseOnCredit", kind: transaction.KindExpense, group: account.GroupCredit, wantFrom: true, wantExtTo: true},
		{name: "ExpenseFromLoan", kind: transaction.KindExpense, group: account.GroupLoan, wantExtTo: true},
		{name: "IncomeToBank", kind: transaction.KindIncome, group: account.GroupBank, wantTo: true, wantExtFrom: true},
		{name: "SelfTransferCash", kind: transaction.KindSelfTransfer, group: account.GroupCash, wantFrom: true, wantTo: true},
		{name: "TransferOutFromCredit", kind: transaction.KindTransferOut, group: account.GroupCredit, wantExtTo: true},
		{name: "LoanPaymentFromBank", kind: transaction.KindLoanPayment, group: account.GroupBank, wantFrom: true, wantExtFrom: true},
		{name: "LoanPaymentToLoan", kind: transaction.KindLoanPayment, group: account.GroupLoan, wantTo: true, wantExtFrom: true},
		{name: "Reversal", kind: transaction.KindReversal, group: account.GroupCash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantFrom, transaction.AllowsFrom(tt.kind, tt.group))
			assert.Equal(t, tt.wantTo, transaction.AllowsTo(tt.kind, tt.group))
			assert.Equal(t, tt.wantExtFrom, transaction.ExternalFrom(tt.kind))
			assert.Equal(t, tt.wantExtTo, transaction.ExternalTo(tt.kind))
		})
	}
}
