package account

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("account not found")
	ErrDuplicateName = errors.New("account name already exists")
	ErrInvalidName   = errors.New("account name is required")
	ErrInvalidGroup  = errors.New("unknown account group")
)

// Group determines the sign conventions applied to an account's balance.
type Group string

const (
	GroupCash   Group = "cash"
	GroupBank   Group = "bank_account"
	GroupCredit Group = "credit"
	GroupLoan   Group = "loan"
)

// Groups lists every group in display order.
var Groups = []Group{GroupCash, GroupBank, GroupCredit, GroupLoan}

func (g Group) Valid() bool {
	switch g {
	case GroupCash, GroupBank, GroupCredit, GroupLoan:
		return true
	}

	return false
}

// Liquid reports whether the balance represents money held (cash or bank)
// rather than money owed (credit or loan).
func (g Group) Liquid() bool {
	return g == GroupCash || g == GroupBank
}

// Liability reports whether the balance represents an amount owed.
func (g Group) Liability() bool {
	return g == GroupCredit || g == GroupLoan
}

func (g Group) String() string {
	switch g {
	case GroupCash:
		return "Cash"
	case GroupBank:
		return "Bank Account"
	case GroupCredit:
		return "Credit"
	case GroupLoan:
		return "Loan"
	}

	return string(g)
}

// ParseGroup accepts both the wire value and the display label.
func ParseGroup(s string) (Group, error) {
	for _, g := range Groups {
		if s == string(g) || s == g.String() {
			return g, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidGroup, s)
}

// Account is a named balance owned by a single user. Values are copies:
// changing a field never changes the stored account.
type Account struct {
	ID        uuid.UUID
	Owner     uuid.UUID
	Name      string
	Group     Group
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Patch holds the fields to merge into an account. Nil fields are left as is.
type Patch struct {
	Name    *string
	Group   *Group
	Balance *decimal.Decimal
}
