package account

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store keeps the accounts of one owner, in creation order.
// It is not safe for concurrent use.
type Store struct {
	owner    uuid.UUID
	accounts map[uuid.UUID]Account
	order    []uuid.UUID
	now      func() time.Time
}

func NewStore(owner uuid.UUID) *Store {
	return &Store{
		owner:    owner,
		accounts: make(map[uuid.UUID]Account),
		now:      time.Now,
	}
}

// Restore rebuilds a store from persisted accounts, keeping their order.
func Restore(owner uuid.UUID, accounts []Account) (*Store, error) {
	s := NewStore(owner)

	for _, a := range accounts {
		if _, taken := s.findByName(a.Name); taken {
			return nil, fmt.Errorf("restoring %q: %w", a.Name, ErrDuplicateName)
		}

		a.Owner = owner
		s.accounts[a.ID] = a
		s.order = append(s.order, a.ID)
	}

	return s, nil
}

func (s *Store) Owner() uuid.UUID { return s.owner }

func (s *Store) Create(name string, group Group, openingBalance decimal.Decimal) (Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Account{}, ErrInvalidName
	}

	if !group.Valid() {
		return Account{}, fmt.Errorf("%w: %q", ErrInvalidGroup, group)
	}

	if _, taken := s.findByName(name); taken {
		return Account{}, fmt.Errorf("creating %q: %w", name, ErrDuplicateName)
	}

	a := Account{
		ID:        uuid.New(),
		Owner:     s.owner,
		Name:      name,
		Group:     group,
		Balance:   openingBalance,
		CreatedAt: s.now(),
	}

	s.accounts[a.ID] = a
	s.order = append(s.order, a.ID)

	return a, nil
}

func (s *Store) Get(id uuid.UUID) (Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return a, nil
}

func (s *Store) FindByName(name string) (Account, error) {
	a, ok := s.findByName(strings.TrimSpace(name))
	if !ok {
		return Account{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	return a, nil
}

func (s *Store) findByName(name string) (Account, bool) {
	for _, id := range s.order {
		if a := s.accounts[id]; a.Name == name {
			return a, true
		}
	}

	return Account{}, false
}

// List returns all accounts in creation order.
func (s *Store) List() []Account {
	out := make([]Account, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.accounts[id])
	}

	return out
}

func (s *Store) Len() int { return len(s.order) }

// Update merges the patch into the account. Balance consistency against the
// ledger is not re-validated.
func (s *Store) Update(id uuid.UUID, p Patch) (Account, error) {
	a, err := s.Get(id)
	if err != nil {
		return Account{}, err
	}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return Account{}, ErrInvalidName
		}

		if other, taken := s.findByName(name); taken && other.ID != id {
			return Account{}, fmt.Errorf("renaming to %q: %w", name, ErrDuplicateName)
		}

		a.Name = name
	}

	if p.Group != nil {
		if !p.Group.Valid() {
			return Account{}, fmt.Errorf("%w: %q", ErrInvalidGroup, *p.Group)
		}

		a.Group = *p.Group
	}

	if p.Balance != nil {
		a.Balance = *p.Balance
	}

	a.UpdatedAt = new(s.now())
	s.accounts[id] = a

	return a, nil
}

// Delete removes the account. Transactions that reference it are not touched.
func (s *Store) Delete(id uuid.UUID) error {
	if _, ok := s.accounts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(s.accounts, id)
	s.order = slices.DeleteFunc(s.order, func(other uuid.UUID) bool { return other == id })

	return nil
}

// AdjustBalance adds delta (which may be negative) to the account balance.
func (s *Store) AdjustBalance(id uuid.UUID, delta decimal.Decimal) (Account, error) {
	a, err := s.Get(id)
	if err != nil {
		return Account{}, err
	}

	a.Balance = a.Balance.Add(delta)
	a.UpdatedAt = new(s.now())
	s.accounts[id] = a

	return a, nil
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	c := &Store{
		owner:    s.owner,
		accounts: make(map[uuid.UUID]Account, len(s.accounts)),
		order:    slices.Clone(s.order),
		now:      s.now,
	}

	for id, a := range s.accounts {
		c.accounts[id] = a
	}

	return c
}

// Totals sums balances per group.
func (s *Store) Totals() map[Group]decimal.Decimal {
	totals := make(map[Group]decimal.Decimal, len(Groups))
	for _, g := range Groups {
		totals[g] = decimal.Zero
	}

	for _, a := range s.accounts {
		totals[a.Group] = totals[a.Group].Add(a.Balance)
	}

	return totals
}
