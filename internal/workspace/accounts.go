package workspace

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/events"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/report"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

func (s *Service) Accounts(userID uuid.UUID) ([]account.Account, error) {
	var out []account.Account

	err := s.view(userID, func(_ user.User, b *ledger.Book) error {
		out = b.Accounts()
		return nil
	})

	return out, err
}

func (s *Service) Account(userID, id uuid.UUID) (account.Account, error) {
	var out account.Account

	err := s.view(userID, func(_ user.User, b *ledger.Book) error {
		var err error
		out, err = b.Account(id)

		return err
	})

	return out, err
}

// GroupTotals returns the balance per account group in display order.
func (s *Service) GroupTotals(userID uuid.UUID) ([]report.GroupTotal, error) {
	accounts, err := s.Accounts(userID)
	if err != nil {
		return nil, err
	}

	return report.GroupTotals(accounts), nil
}

func (s *Service) CreateAccount(ctx context.Context, userID uuid.UUID, name string, group account.Group, opening decimal.Decimal) (account.Account, error) {
	var created account.Account

	err := s.mutate(ctx, userID, func(_ *user.User, b *ledger.Book) error {
		var err error
		created, err = b.CreateAccount(name, group, opening)

		return err
	})
	if err != nil {
		return account.Account{}, err
	}

	slog.InfoContext(ctx, "account created", "user_id", userID, "account_id", created.ID, "group", created.Group)
	s.publish(ctx, events.Event{
		Type:      events.AccountCreated,
		UserID:    userID,
		AccountID: &created.ID,
		Amount:    created.Balance.String(),
	})

	return created, nil
}

func (s *Service) UpdateAccount(ctx context.Context, userID, id uuid.UUID, p account.Patch) (account.Account, error) {
	var updated account.Account

	err := s.mutate(ctx, userID, func(_ *user.User, b *ledger.Book) error {
		var err error
		updated, err = b.UpdateAccount(id, p)

		return err
	})
	if err != nil {
		return account.Account{}, err
	}

	slog.InfoContext(ctx, "account updated", "user_id", userID, "account_id", id)

	return updated, nil
}

func (s *Service) DeleteAccount(ctx context.Context, userID, id uuid.UUID) error {
	err := s.mutate(ctx, userID, func(_ *user.User, b *ledger.Book) error {
		return b.DeleteAccount(id)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "account deleted", "user_id", userID, "account_id", id)
	s.publish(ctx, events.Event{Type: events.AccountDeleted, UserID: userID, AccountID: &id})

	return nil
}
