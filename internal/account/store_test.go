package account_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/account"
)

func TestStore_Create(t *testing.T) {
	type args struct {
		name  string
		group account.Group
	}

	type testCase struct {
		name    string
		args    args
		wantErr error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{name: "Wallet", group: account.GroupCash},
		},
		{
			name:    "DuplicateName",
			args:    args{name: "Savings", group: account.GroupCash},
			wantErr: account.ErrDuplicateName,
		},
		{
			name:    "DuplicateNameTrimmed",
			args:    args{name: "  Savings ", group: account.GroupBank},
			wantErr: account.ErrDuplicateName,
		},
		{
			name:    "EmptyName",
			args:    args{name: "   ", group: account.GroupCash},
			wantErr: account.ErrInvalidName,
		},
		{
			name:    "UnknownGroup",
			args:    args{name: "Mystery", group: account.Group("crypto")},
			wantErr: account.ErrInvalidGroup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := account.NewStore(uuid.New())
			_, err := s.Create("Savings", account.GroupBank, decimal.NewFromInt(100))
			require.NoError(t, err)

			got, err := s.Create(tt.args.name, tt.args.group, decimal.NewFromInt(10))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 1, s.Len())

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, s.Owner(), got.Owner)
			assert.True(t, got.Balance.Equal(decimal.NewFromInt(10)))
			assert.Equal(t, 2, s.Len())
		})
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := account.NewStore(uuid.New())
	a, err := s.Create("Wallet", account.GroupCash, decimal.NewFromInt(50))
	require.NoError(t, err)

	a.Balance = decimal.NewFromInt(1_000_000)
	a.Name = "Hijacked"

	stored, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wallet", stored.Name)
	assert.True(t, stored.Balance.Equal(decimal.NewFromInt(50)))
}

func TestStore_Update(t *testing.T) {
	s := account.NewStore(uuid.New())
	wallet, err := s.Create("Wallet", account.GroupCash, decimal.NewFromInt(50))
	require.NoError(t, err)
	_, err = s.Create("Savings", account.GroupBank, decimal.NewFromInt(500))
	require.NoError(t, err)

	t.Run("Rename", func(t *testing.T) {
		got, err := s.Update(wallet.ID, account.Patch{Name: new("Pocket")})
		require.NoError(t, err)
		assert.Equal(t, "Pocket", got.Name)
		assert.NotNil(t, got.UpdatedAt)
	})

	t.Run("RenameToTaken", func(t *testing.T) {
		_, err := s.Update(wallet.ID, account.Patch{Name: new("Savings")})
		assert.ErrorIs(t, err, account.ErrDuplicateName)
	})

	t.Run("SetBalanceAndGroup", func(t *testing.T) {
		got, err := s.Update(wallet.ID, account.Patch{
			Group:   new(account.GroupBank),
			Balance: new(decimal.NewFromInt(75)),
		})
		require.NoError(t, err)
		assert.Equal(t, account.GroupBank, got.Group)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(75)))
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := s.Update(uuid.New(), account.Patch{Name: new("x")})
		assert.ErrorIs(t, err, account.ErrNotFound)
	})
}

func TestStore_DeleteAndOrder(t *testing.T) {
	s := account.NewStore(uuid.New())

	var ids []uuid.UUID
	for _, name := range []string{"A", "B", "C"} {
		a, err := s.Create(name, account.GroupCash, decimal.Zero)
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}

	require.NoError(t, s.Delete(ids[1]))
	assert.ErrorIs(t, s.Delete(ids[1]), account.ErrNotFound)

	var names []string
	for _, a := range s.List() {
		names = append(names, a.Name)
	}

	assert.Equal(t, []string{"A", "C"}, names)

	_, err := s.FindByName("B")
	assert.ErrorIs(t, err, account.ErrNotFound)
}

func TestStore_CloneIsIndependent(t *testing.T) {
	s := account.NewStore(uuid.New())
	a, err := s.Create("Wallet", account.GroupCash, decimal.NewFromInt(100))
	require.NoError(t, err)

	c := s.Clone()
	_, err = c.AdjustBalance(a.ID, decimal.NewFromInt(-40))
	require.NoError(t, err)
	_, err = c.Create("Other", account.GroupBank, decimal.Zero)
	require.NoError(t, err)

	orig, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.True(t, orig.Balance.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, s.Len())

	cloned, err := c.Get(a.ID)
	require.NoError(t, err)
	assert.True(t, cloned.Balance.Equal(decimal.NewFromInt(60)))
}

func TestStore_Totals(t *testing.T) {
	s := account.NewStore(uuid.New())
	for _, in := range []struct {
		name  string
		group account.Group
		bal   int64
	}{
		{"Wallet", account.GroupCash, 100},
		{"Purse", account.GroupCash, 20},
		{"Card", account.GroupCredit, 300},
	} {
		_, err := s.Create(in.name, in.group, decimal.NewFromInt(in.bal))
		require.NoError(t, err)
	}

	totals := s.Totals()
	assert.True(t, totals[account.GroupCash].Equal(decimal.NewFromInt(120)))
	assert.True(t, totals[account.GroupCredit].Equal(decimal.NewFromInt(300)))
	assert.True(t, totals[account.GroupLoan].IsZero())
}

func TestParseGroup(t *testing.T) {
	for in, want := range map[string]account.Group{
		"cash":         account.GroupCash,
		"Bank Account": account.GroupBank,
		"credit":       account.GroupCredit,
		"Loan":         account.GroupLoan,
	} {
		got, err := account.ParseGroup(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := account.ParseGroup("stocks")
	assert.ErrorIs(t, err, account.ErrInvalidGroup)
}
