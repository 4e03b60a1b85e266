package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/matching"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

// Store persists users and everything they own in normalized tables.
type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const (
	selectUsers = `SELECT id, name, email, password_hash, created_at FROM users ORDER BY created_at, id`

	selectAccounts = `SELECT id, user_id, name, grp, balance, created_at, updated_at
		FROM accounts ORDER BY user_id, position`

	selectTransactions = `SELECT id, user_id, kind, amount, from_account_id, from_label, to_account_id, to_label,
		category, date, note, reverses, reversal_of, reverted_by, created_at
		FROM transactions ORDER BY user_id, position`

	selectRules = `SELECT user_id, pattern, category, created_at FROM category_rules ORDER BY user_id, position`
)

func (s *Store) LoadUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, selectUsers)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var (
		users []user.User
		index = map[uuid.UUID]int{}
	)

	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		index[u.ID] = len(users)
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	err = s.each(ctx, selectAccounts, "accounts", func(sc scanner) error {
		a, err := scanAccount(sc)
		if err != nil {
			return err
		}

		if i, ok := index[a.Owner]; ok {
			users[i].Accounts = append(users[i].Accounts, a)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.each(ctx, selectTransactions, "transactions", func(sc scanner) error {
		t, err := scanTransaction(sc)
		if err != nil {
			return err
		}

		if i, ok := index[t.Owner]; ok {
			users[i].Transactions = append(users[i].Transactions, t)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.each(ctx, selectRules, "rules", func(sc scanner) error {
		var (
			owner uuid.UUID
			r     matching.Rule
		)

		if err := sc.Scan(&owner, &r.Pattern, &r.Category, &r.CreatedAt); err != nil {
			return err
		}

		if i, ok := index[owner]; ok {
			users[i].Rules = append(users[i].Rules, r)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (s *Store) each(ctx context.Context, query, what string, fn func(scanner) error) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("listing %s: %w", what, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return fmt.Errorf("scanning %s: %w", what, err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("listing %s: %w", what, err)
	}

	return nil
}

func scanAccount(s scanner) (account.Account, error) {
	var (
		a   account.Account
		grp string
	)

	if err := s.Scan(&a.ID, &a.Owner, &a.Name, &grp, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return account.Account{}, err
	}

	a.Group = account.Group(grp)

	return a, nil
}

func scanTransaction(s scanner) (transaction.Transaction, error) {
	var (
		t              transaction.Transaction
		kind, reverses string
	)

	if err := s.Scan(
		&t.ID, &t.Owner, &kind, &t.Amount,
		&t.From.AccountID, &t.From.Label, &t.CounterpartyAccountID, &t.ToLabel,
		&t.Category, &t.Date, &t.Note, &reverses, &t.ReversalOf, &t.RevertedBy, &t.CreatedAt,
	); err != nil {
		return transaction.Transaction{}, err
	}

	t.Kind = transaction.Kind(kind)
	t.Reverses = transaction.Kind(reverses)

	return t, nil
}

// SaveUsers replaces the stored record of every given user in one database
// transaction.
func (s *Store) SaveUsers(ctx context.Context, users []user.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer tx.Rollback()

	for _, u := range users {
		if err := s.saveUser(ctx, tx, u); err != nil {
			return fmt.Errorf("saving user %s: %w", u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}

	return nil
}

func (s *Store) saveUser(ctx context.Context, tx *sql.Tx, u user.User) error {
	exec := func(query string, args ...any) error {
		_, err := tx.ExecContext(ctx, s.dialect.Rebind(query), args...)
		return err
	}

	err := exec(`INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, email = excluded.email, password_hash = excluded.password_hash`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting user: %w", err)
	}

	for _, table := range []string{"accounts", "transactions", "category_rules"} {
		if err := exec(`DELETE FROM `+table+` WHERE user_id = ?`, u.ID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for i, a := range u.Accounts {
		err := exec(`INSERT INTO accounts (id, user_id, position, name, grp, balance, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, u.ID, i, a.Name, string(a.Group), a.Balance, a.CreatedAt, a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting account %q: %w", a.Name, err)
		}
	}

	for i, t := range u.Transactions {
		err := exec(`INSERT INTO transactions (id, user_id, position, kind, amount, from_account_id, from_label,
			to_account_id, to_label, category, date, note, reverses, reversal_of, reverted_by, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, u.ID, i, string(t.Kind), t.Amount, t.From.AccountID, t.From.Label,
			t.CounterpartyAccountID, t.ToLabel, t.Category, t.Date, t.Note,
			string(t.Reverses), t.ReversalOf, t.RevertedBy, t.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting transaction %s: %w", t.ID, err)
		}
	}

	for i, r := range u.Rules {
		created := r.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}

		err := exec(`INSERT INTO category_rules (user_id, position, pattern, category, created_at) VALUES (?, ?, ?, ?, ?)`,
			u.ID, i, r.Pattern, r.Category, created)
		if err != nil {
			return fmt.Errorf("inserting rule %q: %w", r.Pattern, err)
		}
	}

	return nil
}
