package ledger

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotRevertible       = errors.New("transaction cannot be reverted")
	ErrAccountInUse        = errors.New("account is referenced by transactions")
)

// InsufficientBalanceError reports which account would go below zero.
type InsufficientBalanceError struct {
	Account   account.Account
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: %q has %s, needs %s", ErrInsufficientBalance, e.Account.Name, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// Book is the ledger of a single owner: its accounts and the transactions
// that move money between them. Every operation either applies fully or
// leaves the book untouched. Book is not safe for concurrent use.
type Book struct {
	owner    uuid.UUID
	accounts *account.Store
	txs      []transaction.Transaction
	now      func() time.Time
}

func New(owner uuid.UUID) *Book {
	return &Book{
		owner:    owner,
		accounts: account.NewStore(owner),
		now:      time.Now,
	}
}

// Restore rebuilds a book from persisted state. Balances are taken as stored,
// transactions are not replayed.
func Restore(owner uuid.UUID, accounts []account.Account, txs []transaction.Transaction) (*Book, error) {
	store, err := account.Restore(owner, accounts)
	if err != nil {
		return nil, fmt.Errorf("restoring accounts: %w", err)
	}

	b := &Book{owner: owner, accounts: store, now: time.Now}
	for _, t := range txs {
		t.Owner = owner
		b.txs = append(b.txs, t.Clone())
	}

	return b, nil
}

func (b *Book) Owner() uuid.UUID { return b.owner }

// Clone returns an independent copy of the book.
func (b *Book) Clone() *Book {
	c := &Book{
		owner:    b.owner,
		accounts: b.accounts.Clone(),
		txs:      make([]transaction.Transaction, 0, len(b.txs)),
		now:      b.now,
	}

	for _, t := range b.txs {
		c.txs = append(c.txs, t.Clone())
	}

	return c
}

func (b *Book) Accounts() []account.Account {
	return b.accounts.List()
}

func (b *Book) Account(id uuid.UUID) (account.Account, error) {
	return b.accounts.Get(id)
}

func (b *Book) AccountByName(name string) (account.Account, error) {
	return b.accounts.FindByName(name)
}

func (b *Book) GroupTotals() map[account.Group]decimal.Decimal {
	return b.accounts.Totals()
}

func (b *Book) CreateAccount(name string, group account.Group, openingBalance decimal.Decimal) (account.Account, error) {
	return b.accounts.Create(name, group, openingBalance)
}

// UpdateAccount merges the patch. Changing the group of an account that
// transactions reference is refused, since reverting them depends on it.
func (b *Book) UpdateAccount(id uuid.UUID, p account.Patch) (account.Account, error) {
	current, err := b.accounts.Get(id)
	if err != nil {
		return account.Account{}, err
	}

	if p.Group != nil && *p.Group != current.Group && b.referenced(id) {
		return account.Account{}, fmt.Errorf("changing group of %q: %w", current.Name, ErrAccountInUse)
	}

	return b.accounts.Update(id, p)
}

func (b *Book) DeleteAccount(id uuid.UUID) error {
	a, err := b.accounts.Get(id)
	if err != nil {
		return err
	}

	if b.referenced(id) {
		return fmt.Errorf("deleting %q: %w", a.Name, ErrAccountInUse)
	}

	return b.accounts.Delete(id)
}

func (b *Book) referenced(id uuid.UUID) bool {
	return slices.ContainsFunc(b.txs, func(t transaction.Transaction) bool { return t.Touches(id) })
}

// List returns the transactions in insertion order.
func (b *Book) List() []transaction.Transaction {
	out := make([]transaction.Transaction, 0, len(b.txs))
	for _, t := range b.txs {
		out = append(out, t.Clone())
	}

	return out
}

func (b *Book) Len() int { return len(b.txs) }

func (b *Book) Transaction(id uuid.UUID) (transaction.Transaction, error) {
	i := b.indexOf(id)
	if i < 0 {
		return transaction.Transaction{}, fmt.Errorf("%w: %s", transaction.ErrNotFound, id)
	}

	return b.txs[i].Clone(), nil
}

func (b *Book) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(b.txs, func(t transaction.Transaction) bool { return t.ID == id })
}

// Append validates the draft, applies its effect and records it.
func (b *Book) Append(d transaction.Draft) (transaction.Transaction, error) {
	recorded, err := b.AppendBatch([]transaction.Draft{d})
	if err != nil {
		return transaction.Transaction{}, err
	}

	return recorded[0], nil
}

// AppendBatch records all drafts in order, or none of them.
func (b *Book) AppendBatch(drafts []transaction.Draft) ([]transaction.Transaction, error) {
	work := b.accounts.Clone()
	recorded := make([]transaction.Transaction, 0, len(drafts))

	for i, d := range drafts {
		if err := transaction.Validate(d, work.Get); err != nil {
			return nil, batchErr(i, len(drafts), err)
		}

		t := b.record(d)
		if err := apply(work, t, effectOf(work, t)); err != nil {
			return nil, batchErr(i, len(drafts), err)
		}

		recorded = append(recorded, t)
	}

	b.accounts = work
	for _, t := range recorded {
		b.txs = append(b.txs, t.Clone())
	}

	return recorded, nil
}

func batchErr(i, n int, err error) error {
	if n == 1 {
		return err
	}

	return fmt.Errorf("transaction %d of %d: %w", i+1, n, err)
}

func (b *Book) record(d transaction.Draft) transaction.Transaction {
	t := transaction.Transaction{
		ID:                    uuid.New(),
		Owner:                 b.owner,
		CreatedAt:             b.now(),
		Kind:                  d.Kind,
		Amount:                d.Amount,
		From:                  d.From,
		CounterpartyAccountID: d.CounterpartyAccountID,
		ToLabel:               d.ToLabel,
		Category:              d.Category,
		Date:                  d.Date,
		Note:                  d.Note,
	}

	if t.Date.IsZero() {
		t.Date = t.CreatedAt
	}

	if !t.From.IsAccount() && t.From.Label == "" {
		t.From.Label = transaction.OthersLabel
	}

	if t.CounterpartyAccountID == nil && t.ToLabel == "" {
		t.ToLabel = transaction.OthersLabel
	}

	if t.CounterpartyAccountID != nil {
		t.ToLabel = ""
	}

	return t.Clone()
}

// Remove undoes the effect of a transaction and deletes its record.
func (b *Book) Remove(id uuid.UUID) error {
	i := b.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", transaction.ErrNotFound, id)
	}

	t := b.txs[i]
	if err := revertible(t); err != nil {
		return err
	}

	work := b.accounts.Clone()
	if err := apply(work, t, effectOf(work, t).Invert()); err != nil {
		return fmt.Errorf("removing transaction: %w", err)
	}

	b.accounts = work
	b.txs = slices.Delete(b.txs, i, i+1)

	return nil
}

// RevertAsNew records a reversal of the transaction, moving the money back
// from its destination to its source. The original stays in the ledger,
// marked as reverted.
func (b *Book) RevertAsNew(id uuid.UUID) (transaction.Transaction, error) {
	i := b.indexOf(id)
	if i < 0 {
		return transaction.Transaction{}, fmt.Errorf("%w: %s", transaction.ErrNotFound, id)
	}

	orig := b.txs[i]
	if err := revertible(orig); err != nil {
		return transaction.Transaction{}, err
	}

	now := b.now()
	to := orig.To()
	rev := transaction.Transaction{
		ID:                    uuid.New(),
		Owner:                 b.owner,
		CreatedAt:             now,
		Kind:                  transaction.KindReversal,
		Amount:                orig.Amount,
		From:                  to,
		CounterpartyAccountID: orig.From.AccountID,
		ToLabel:               orig.From.Label,
		Category:              orig.Category,
		Date:                  now,
		Note:                  fmt.Sprintf("Reversal of %s on %s", orig.Kind, orig.Date.Format(time.DateOnly)),
		Reverses:              orig.Kind,
		ReversalOf:            &orig.ID,
	}
	rev = rev.Clone()

	work := b.accounts.Clone()
	if err := apply(work, rev, effectOf(work, rev)); err != nil {
		return transaction.Transaction{}, fmt.Errorf("reverting transaction: %w", err)
	}

	b.accounts = work
	b.txs[i].RevertedBy = new(rev.ID)
	b.txs = append(b.txs, rev)

	return rev.Clone(), nil
}

func revertible(t transaction.Transaction) error {
	if t.Kind == transaction.KindReversal {
		return fmt.Errorf("%w: %s is a reversal", ErrNotRevertible, t.ID)
	}

	if t.Reverted() {
		return fmt.Errorf("%w: %s was already reverted", ErrNotRevertible, t.ID)
	}

	return nil
}

// Snapshot returns copies of the accounts and transactions for persistence.
func (b *Book) Snapshot() ([]account.Account, []transaction.Transaction) {
	return b.Accounts(), b.List()
}

func effectOf(store *account.Store, t transaction.Transaction) transaction.Deltas {
	var group account.Group

	if origin := t.Origin(); origin != nil {
		if a, err := store.Get(*origin); err == nil {
			group = a.Group
		}
	}

	return t.Effect(group)
}

// apply sums the deltas per account, checks that no debit overdraws an
// account and only then writes the balances.
func apply(store *account.Store, t transaction.Transaction, d transaction.Deltas) error {
	var (
		order  []uuid.UUID
		deltas = make(map[uuid.UUID]decimal.Decimal, 2)
	)

	add := func(id *uuid.UUID, delta decimal.Decimal) {
		if id == nil || delta.IsZero() {
			return
		}

		if _, seen := deltas[*id]; !seen {
			order = append(order, *id)
		}

		deltas[*id] = deltas[*id].Add(delta)
	}

	add(t.From.AccountID, d.From)
	add(t.CounterpartyAccountID, d.To)

	for _, id := range order {
		a, err := store.Get(id)
		if err != nil {
			return err
		}

		delta := deltas[id]
		if delta.IsNegative() && a.Balance.Add(delta).IsNegative() {
			return &InsufficientBalanceError{Account: a, Available: a.Balance, Requested: delta.Neg()}
		}
	}

	for _, id := range order {
		if _, err := store.AdjustBalance(id, deltas[id]); err != nil {
			return err
		}
	}

	return nil
}
