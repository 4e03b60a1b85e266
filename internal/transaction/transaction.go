package transaction

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	ErrInvalidKind   = errors.New("unknown transaction kind")
	ErrInvalidLegs   = errors.New("invalid transaction accounts")
)

// Kind selects the balance policy applied by a transaction.
type Kind string

const (
	KindExpense      Kind = "expense"
	KindIncome       Kind = "income"
	KindSelfTransfer Kind = "self_transfer"
	KindTransferOut  Kind = "transfer_out"
	KindLoanPayment  Kind = "loan_payment"
	KindReversal     Kind = "reversal"
)

// Kinds lists the kinds a user can record directly.
var Kinds = []Kind{KindExpense, KindIncome, KindSelfTransfer, KindTransferOut, KindLoanPayment}

func (k Kind) String() string {
	switch k {
	case KindExpense:
		return "Expense"
	case KindIncome:
		return "Income"
	case KindSelfTransfer:
		return "Self Transfer"
	case KindTransferOut:
		return "Transfer Out"
	case KindLoanPayment:
		return "Loan Payment"
	case KindReversal:
		return "Reversal"
	}

	return string(k)
}

func (k Kind) Valid() bool {
	_, ok := policies[k]
	return ok || k == KindReversal
}

// ParseKind accepts both the wire value and the display label.
func ParseKind(s string) (Kind, error) {
	for _, k := range slices.Concat(Kinds, []Kind{KindReversal}) {
		if s == string(k) || s == k.String() {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// OthersLabel names the external side of a transfer out.
const OthersLabel = "Others"

// Party is one side of a transaction: either an owned account or an
// external label such as "Salary".
type Party struct {
	AccountID *uuid.UUID
	Label     string
}

func AccountParty(id uuid.UUID) Party {
	return Party{AccountID: &id}
}

func ExternalParty(label string) Party {
	return Party{Label: label}
}

func (p Party) IsAccount() bool {
	return p.AccountID != nil
}

// Transaction is a recorded ledger entry. Values are copies of the stored
// record.
type Transaction struct {
	ID        uuid.UUID
	Owner     uuid.UUID
	CreatedAt time.Time

	Kind   Kind
	Amount decimal.Decimal

	From                  Party
	CounterpartyAccountID *uuid.UUID
	// ToLabel names the external receiver when there is no counterparty account.
	ToLabel string

	Category string
	Date     time.Time
	Note     string

	// Set on reversal records.
	Reverses   Kind
	ReversalOf *uuid.UUID

	// Set on originals reverted by a reversal record.
	RevertedBy *uuid.UUID
}

// To returns the receiving party.
func (t Transaction) To() Party {
	if t.CounterpartyAccountID != nil {
		return Party{AccountID: t.CounterpartyAccountID}
	}

	return ExternalParty(t.ToLabel)
}

// Touches reports whether the transaction references the account on either side.
func (t Transaction) Touches(id uuid.UUID) bool {
	if t.From.AccountID != nil && *t.From.AccountID == id {
		return true
	}

	return t.CounterpartyAccountID != nil && *t.CounterpartyAccountID == id
}

func (t Transaction) Reverted() bool {
	return t.RevertedBy != nil
}

// Draft carries the user-supplied fields of a transaction before it is
// recorded.
type Draft struct {
	Kind                  Kind
	Amount                decimal.Decimal
	From                  Party
	CounterpartyAccountID *uuid.UUID
	ToLabel               string
	Category              string
	Date                  time.Time
	Note                  string
}

// Clone returns a copy that shares no pointers with t.
func (t Transaction) Clone() Transaction {
	t.From.AccountID = cloneID(t.From.AccountID)
	t.CounterpartyAccountID = cloneID(t.CounterpartyAccountID)
	t.ReversalOf = cloneID(t.ReversalOf)
	t.RevertedBy = cloneID(t.RevertedBy)

	return t
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}

	return new(*id)
}
