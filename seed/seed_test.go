package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go-bank-api/apperrors"
	"go-bank-api/exchange"
	"go-bank-api/seed"
	"go-bank-api/service"
	"go-bank-api/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBank() (*service.Bank, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	return service.NewBank(store, exchange.NewService(store), nil), store
}

func TestDefault(t *testing.T) {
	d, err := seed.Default()
	require.NoError(t, err)

	assert.Len(t, d.Currencies, 3)
	assert.Len(t, d.ExchangeRates, 4)
	assert.Len(t, d.Customers, 5)
	assert.Len(t, d.Accounts, 6)
}

func TestApply_Default(t *testing.T) {
	// Arrange
	ctx := context.Background()
	bank, _ := newBank()
	d, err := seed.Default()
	require.NoError(t, err)

	// Act
	err = d.Apply(ctx, bank)

	// Assert
	require.NoError(t, err)

	t.Run("seeded rates", func(t *testing.T) {
		for _, tc := range []struct{ from, to, want string }{
			{"CAD", "USD", "0.50"},
			{"USD", "CAD", "2.00"},
			{"CAD", "MXN", "10.0"},
			{"MXN", "CAD", "0.10"},
			{"USD", "USD", "1"},
		} {
			got, err := bank.Convert(ctx, tc.from, tc.to, decimal.NewFromInt(1))
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tc.want).Equal(got), "%s->%s got %s", tc.from, tc.to, got)
		}

		_, err := bank.Convert(ctx, "MXN", "USD", decimal.NewFromInt(1))
		assert.ErrorIs(t, err, apperrors.ErrConversionUnavailable)
	})

	t.Run("seeded accounts", func(t *testing.T) {
		b, err := bank.GetAccountBalance(ctx, "0456")
		require.NoError(t, err)
		assert.Equal(t, "65000.00", b.Balance.StringFixed(2))
		assert.Equal(t, "CAD", b.CurrencyCode)

		accounts, err := bank.ListCustomerAccounts(ctx, "002")
		require.NoError(t, err)
		assert.Len(t, accounts, 2)
	})

	t.Run("applying twice conflicts", func(t *testing.T) {
		err := d.Apply(ctx, bank)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestLoad(t *testing.T) {
	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.yaml")
		doc := `
currencies:
  - code: EUR
    details: Euro
customers:
  - customer_id: "1"
    first_name: Meg
accounts:
  - account_number: "A-1"
    customer_id: "1"
    currency: eur
    initial_balance: "10"
    minimum_balance: "0"
`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

		d, err := seed.Load(path)
		require.NoError(t, err)

		bank, _ := newBank()
		require.NoError(t, d.Apply(context.Background(), bank))
		acc, err := bank.GetAccount(context.Background(), "a-1")
		require.NoError(t, err)
		assert.Equal(t, "EUR", acc.DefaultCurrency.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := seed.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := seed.Parse([]byte("currencies: [unterminated"))
		assert.Error(t, err)
	})
}

func TestApply_RejectsInvalidEntries(t *testing.T) {
	t.Run("bad rate", func(t *testing.T) {
		d, err := seed.Parse([]byte(`
currencies: [{code: CAD}, {code: USD}]
exchange_rates: [{from: CAD, to: USD, rate: "abc"}]
`))
		require.NoError(t, err)

		bank, _ := newBank()
		assert.Error(t, d.Apply(context.Background(), bank))
	})

	t.Run("missing minimum balance", func(t *testing.T) {
		d, err := seed.Parse([]byte(`
currencies: [{code: CAD}]
customers: [{customer_id: "1", first_name: Meg}]
accounts: [{account_number: "A", customer_id: "1", currency: CAD, initial_balance: "5"}]
`))
		require.NoError(t, err)

		bank, _ := newBank()
		assert.ErrorIs(t, d.Apply(context.Background(), bank), apperrors.ErrValidation)
	})
}
