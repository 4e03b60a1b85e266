package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

// Store keeps user records in process memory. Records are copied on the
// way in and out.
type Store struct {
	mu    sync.RWMutex
	users map[uuid.UUID]user.User
	order []uuid.UUID
}

func New() *Store {
	return &Store{users: make(map[uuid.UUID]user.User)}
}

func (s *Store) LoadUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]user.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.users[id]))
	}

	return out, nil
}

func (s *Store) SaveUsers(_ context.Context, users []user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range users {
		if _, ok := s.users[u.ID]; !ok {
			s.order = append(s.order, u.ID)
		}

		s.users[u.ID] = clone(u)
	}

	return nil
}

func clone(u user.User) user.User {
	u.PasswordHash = slices.Clone(u.PasswordHash)
	u.Accounts = slices.Clone(u.Accounts)
	u.Rules = slices.Clone(u.Rules)

	txs := make([]transaction.Transaction, 0, len(u.Transactions))
	for _, t := range u.Transactions {
		txs = append(txs, t.Clone())
	}

	u.Transactions = txs

	return u
}
