package memory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/account"
	"github.com/MrJamesThe3rd/tally/internal/storage/memory"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

func TestStore_SaveReplacesAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	a := user.User{ID: uuid.New(), Name: "A"}
	b := user.User{ID: uuid.New(), Name: "B"}
	require.NoError(t, s.SaveUsers(ctx, []user.User{a, b}))

	a.Name = "A2"
	a.Accounts = []account.Account{{ID: uuid.New(), Name: "Wallet", Balance: decimal.NewFromInt(3)}}
	require.NoError(t, s.SaveUsers(ctx, []user.User{a}))

	got, err := s.LoadUsers(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A2", got[0].Name)
	assert.Len(t, got[0].Accounts, 1)
	assert.Equal(t, "B", got[1].Name)
}

func TestStore_CopiesRecords(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	u := user.User{ID: uuid.New(), Accounts: []account.Account{{Name: "Wallet"}}}
	require.NoError(t, s.SaveUsers(ctx, []user.User{u}))

	u.Accounts[0].Name = "Changed"

	got, err := s.LoadUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Wallet", got[0].Accounts[0].Name)

	got[0].Accounts[0].Name = "Changed again"
	again, err := s.LoadUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Wallet", again[0].Accounts[0].Name)
}
