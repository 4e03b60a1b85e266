package workspace

import (
	"context"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/matching"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

func (s *Service) Rules(userID uuid.UUID) ([]matching.Rule, error) {
	var out []matching.Rule

	err := s.view(userID, func(u user.User, _ *ledger.Book) error {
		out = slices.Clone(u.Rules)
		return nil
	})

	return out, err
}

// LearnRule adds a category rule, replacing one with the same pattern.
func (s *Service) LearnRule(ctx context.Context, userID uuid.UUID, pattern, category string) (matching.Rule, error) {
	r := matching.Rule{Pattern: pattern, Category: category, CreatedAt: s.now()}

	err := s.mutate(ctx, userID, func(u *user.User, _ *ledger.Book) error {
		rules, err := matching.Learn(u.Rules, r)
		if err != nil {
			return err
		}

		u.Rules = rules
		r = rules[len(rules)-1]

		return nil
	})
	if err != nil {
		return matching.Rule{}, err
	}

	slog.InfoContext(ctx, "category rule learned", "user_id", userID, "pattern", r.Pattern, "category", r.Category)

	return r, nil
}

// SuggestCategory returns the category the user's rules give text.
func (s *Service) SuggestCategory(userID uuid.UUID, text string) (string, error) {
	var out string

	err := s.view(userID, func(u user.User, _ *ledger.Book) error {
		out = matching.Suggest(u.Rules, text)
		return nil
	})

	return out, err
}
