package workspace

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/events"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/report"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

// Transactions returns the user's transactions matching f, newest first.
func (s *Service) Transactions(userID uuid.UUID, f report.Filter) ([]transaction.Transaction, error) {
	var out []transaction.Transaction

	err := s.view(userID, func(_ user.User, b *ledger.Book) error {
		out = report.SortByDateDesc(f.Apply(b.List()))
		return nil
	})

	return out, err
}

func (s *Service) Transaction(userID, id uuid.UUID) (transaction.Transaction, error) {
	var out transaction.Transaction

	err := s.view(userID, func(_ user.User, b *ledger.Book) error {
		var err error
		out, err = b.Transaction(id)

		return err
	})

	return out, err
}

func (s *Service) AddTransaction(ctx context.Context, userID uuid.UUID, d transaction.Draft) (transaction.Transaction, error) {
	var added transaction.Transaction

	err := s.mutate(ctx, userID, func(_ *user.User, b *ledger.Book) error {
		var err error
		added, err = b.Append(d)

		return err
	})
	if err != nil {
		return transaction.Transaction{}, err
	}

	s.appended(ctx, userID, added)

	return added, nil
}

func (s *Service) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	var removed transaction.Transaction

	err := s.mutate(ctx, userID, func(_ *user.User, b *ledger.Book) error {
		var err error
		if removed, err = b.Transaction(id); err != nil {
			return err
		}

		return b.Remove(id)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "transaction removed", "user_id", userID, "transaction_id", id, "kind", removed.Kind)
	s.publish(ctx, events.Event{
		Type:          events.TransactionRemoved,
		UserID:        userID,
		TransactionID: &id,
		Kind:          string(removed.Kind),
		Amount:        removed.Amount.String(),
	})

	return nil
}

// RevertTransaction records a reversal of id and returns it.
func (s *Service) RevertTransaction(ctx context.Context, userID, id uuid.UUID) (transaction.Transaction, error) {
	var rev transaction.Transaction

	err := s.mutate(ctx, userID, func(_ *user.User, b *ledger.Book) error {
		var err error
		rev, err = b.RevertAsNew(id)

		return err
	})
	if err != nil {
		return transaction.Transaction{}, err
	}

	slog.InfoContext(ctx, "transaction reverted", "user_id", userID, "transaction_id", id, "reversal_id", rev.ID, "kind", rev.Reverses)
	s.publish(ctx, events.Event{
		Type:          events.TransactionReverted,
		UserID:        userID,
		TransactionID: &rev.ID,
		Kind:          string(rev.Reverses),
		Amount:        rev.Amount.String(),
	})

	return rev, nil
}

func (s *Service) appended(ctx context.Context, userID uuid.UUID, t transaction.Transaction) {
	slog.InfoContext(ctx, "transaction appended", "user_id", userID, "transaction_id", t.ID, "kind", t.Kind)
	s.publish(ctx, events.Event{
		Type:          events.TransactionAppended,
		UserID:        userID,
		TransactionID: &t.ID,
		Kind:          string(t.Kind),
		Amount:        t.Amount.String(),
	})
}
