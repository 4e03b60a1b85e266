package transaction

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
)

// Deltas are the signed balance changes a transaction applies to its source
// and destination accounts. A delta on an external side is ignored.
type Deltas struct {
	From decimal.Decimal
	To   decimal.Decimal
}

func (d Deltas) Invert() Deltas {
	return Deltas{From: d.From.Neg(), To: d.To.Neg()}
}

// leg describes what may stand on one side of a transaction.
type leg struct {
	groups   []account.Group // allowed account groups; empty means no account
	external bool            // an external label is accepted instead of an account
}

type policy struct {
	from, to leg
	effect   func(amount decimal.Decimal, fromGroup account.Group) Deltas
}

var (
	liquid = groupsWhere(account.Group.Liquid)
	owed   = groupsWhere(account.Group.Liability)
)

func groupsWhere(keep func(account.Group) bool) []account.Group {
	var out []account.Group
	for _, g := range account.Groups {
		if keep(g) {
			out = append(out, g)
		}
	}

	return out
}

var policies = map[Kind]policy{
	KindExpense: {
		from: leg{groups: []account.Group{account.GroupCash, account.GroupBank, account.GroupCredit}},
		to:   leg{external: true},
		effect: func(amount decimal.Decimal, fromGroup account.Group) Deltas {
			if fromGroup == account.GroupCredit {
				return Deltas{From: amount}
			}

			return Deltas{From: amount.Neg()}
		},
	},
	KindIncome: {
		from: leg{external: true},
		to:   leg{groups: liquid},
		effect: func(amount decimal.Decimal, _ account.Group) Deltas {
			return Deltas{To: amount}
		},
	},
	KindSelfTransfer: {
		from: leg{groups: liquid},
		to:   leg{groups: liquid},
		effect: func(amount decimal.Decimal, _ account.Group) Deltas {
			return Deltas{From: amount.Neg(), To: amount}
		},
	},
	KindTransferOut: {
		from: leg{groups: liquid},
		to:   leg{external: true},
		effect: func(amount decimal.Decimal, _ account.Group) Deltas {
			return Deltas{From: amount.Neg()}
		},
	},
	KindLoanPayment: {
		from: leg{groups: liquid, external: true},
		to:   leg{groups: owed},
		effect: func(amount decimal.Decimal, _ account.Group) Deltas {
			return Deltas{From: amount.Neg(), To: amount.Neg()}
		},
	},
}

// Effect returns the forward deltas of a user-recorded kind. fromGroup is the
// group of the source account and only matters for expenses.
func Effect(kind Kind, amount decimal.Decimal, fromGroup account.Group) Deltas {
	p, ok := policies[kind]
	if !ok {
		return Deltas{}
	}

	return p.effect(amount, fromGroup)
}

// Effect returns the forward deltas of a recorded transaction. origin is the
// group of the account that started the money movement: the source account
// for ordinary kinds and the receiving account for reversals.
func (t Transaction) Effect(origin account.Group) Deltas {
	if t.Kind != KindReversal {
		return Effect(t.Kind, t.Amount, origin)
	}

	base := Effect(t.Reverses, t.Amount, origin)

	return Deltas{From: base.To.Neg(), To: base.From.Neg()}
}

// Origin returns the account whose group feeds Effect, if any.
func (t Transaction) Origin() *uuid.UUID {
	if t.Kind == KindReversal {
		return t.CounterpartyAccountID
	}

	return t.From.AccountID
}

// AllowsFrom reports whether an account of group g may be the source of kind.
func AllowsFrom(kind Kind, g account.Group) bool {
	return slices.Contains(policies[kind].from.groups, g)
}

// AllowsTo reports whether an account of group g may receive kind.
func AllowsTo(kind Kind, g account.Group) bool {
	return slices.Contains(policies[kind].to.groups, g)
}

// ExternalFrom reports whether kind accepts an external source.
func ExternalFrom(kind Kind) bool { return policies[kind].from.external }

// ExternalTo reports whether kind accepts an external destination.
func ExternalTo(kind Kind) bool { return policies[kind].to.external }

// Lookup resolves an account by id.
type Lookup func(id uuid.UUID) (account.Account, error)

// Validate checks a draft's amount and accounts against its kind.
func Validate(d Draft, lookup Lookup) error {
	p, ok := policies[d.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidKind, d.Kind)
	}

	if !d.Amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, d.Amount)
	}

	if err := checkLeg("from", p.from, d.From.AccountID, lookup); err != nil {
		return err
	}

	if err := checkLeg("to", p.to, d.CounterpartyAccountID, lookup); err != nil {
		return err
	}

	if d.Kind == KindSelfTransfer && *d.From.AccountID == *d.CounterpartyAccountID {
		return fmt.Errorf("%w: cannot transfer to the same account", ErrInvalidLegs)
	}

	return nil
}

func checkLeg(side string, l leg, id *uuid.UUID, lookup Lookup) error {
	if id == nil {
		if l.external {
			return nil
		}

		return fmt.Errorf("%w: %s account is required", ErrInvalidLegs, side)
	}

	if len(l.groups) == 0 {
		return fmt.Errorf("%w: %s must be external", ErrInvalidLegs, side)
	}

	a, err := lookup(*id)
	if err != nil {
		return fmt.Errorf("resolving %s account: %w", side, err)
	}

	if !slices.Contains(l.groups, a.Group) {
		return fmt.Errorf("%w: %s account %q is %s", ErrInvalidLegs, side, a.Name, a.Group)
	}

	return nil
}
