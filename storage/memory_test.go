package storage

import (
	"context"
	"testing"
	"time"

	"go-bank-api/apperrors"
	"go-bank-api/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	cad = model.Currency{Code: "CAD", Details: "Canadian Dollar"}
	usd = model.Currency{Code: "USD", Details: "US Dollar"}
)

func newTx(account string, txType model.TransactionType, amount int64) model.Transaction {
	return model.Transaction{
		ID:            uuid.New(),
		Type:          txType,
		AccountNumber: account,
		Currency:      cad,
		Amount:        decimal.NewFromInt(amount),
		ExchangeRate:  decimal.NewFromInt(1),
		PostedAt:      time.Now(),
	}
}

func TestMemoryStore_Currencies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateCurrency(ctx, cad))
	require.NoError(t, s.CreateCurrency(ctx, usd))

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		c, err := s.GetCurrency(ctx, "cad")
		require.NoError(t, err)
		assert.Equal(t, cad, *c)
	})

	t.Run("duplicate code", func(t *testing.T) {
		err := s.CreateCurrency(ctx, model.Currency{Code: "usd"})
		assert.ErrorIs(t, err, ErrDuplicate)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := s.GetCurrency(ctx, "MXN")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("list keeps insertion order", func(t *testing.T) {
		list, err := s.ListCurrencies(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.Currency{cad, usd}, list)
	})
}

func TestMemoryStore_ExchangeRatesAreDirected(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.SaveExchangeRate(ctx, model.ExchangeRate{From: cad, To: usd, Rate: decimal.RequireFromString("0.50")}))

	r, err := s.FindExchangeRate(ctx, "cad", "usd")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.50").Equal(r.Rate))

	_, err = s.FindExchangeRate(ctx, "USD", "CAD")
	assert.ErrorIs(t, err, ErrNotFound, "reverse pair is not inferred")

	err = s.SaveExchangeRate(ctx, model.ExchangeRate{From: cad, To: usd, Rate: decimal.NewFromInt(3)})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryStore_CustomersAndAccounts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreateCustomer(ctx, model.Customer{ID: "AB1", FirstName: "Joe", LastName: "Swanson"}))
	assert.ErrorIs(t, s.CreateCustomer(ctx, model.Customer{ID: "ab1", FirstName: "Other"}), ErrDuplicate)

	t.Run("update keeps stored id", func(t *testing.T) {
		require.NoError(t, s.UpdateCustomer(ctx, model.Customer{ID: "ab1", FirstName: "Joseph", LastName: "Swanson"}))
		c, err := s.GetCustomer(ctx, "AB1")
		require.NoError(t, err)
		assert.Equal(t, "AB1", c.ID)
		assert.Equal(t, "Joseph", c.FirstName)
	})

	acc := model.Account{
		Number:          "1010",
		CustomerID:      "AB1",
		DefaultCurrency: cad,
		InitialBalance:  decimal.NewFromInt(7425),
		MinimumBalance:  decimal.Zero,
	}
	require.NoError(t, s.CreateAccount(ctx, acc))
	assert.ErrorIs(t, s.CreateAccount(ctx, acc), ErrDuplicate)

	t.Run("accounts by customer", func(t *testing.T) {
		list, err := s.ListAccountsByCustomer(ctx, "ab1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "1010", list[0].Number)
	})

	t.Run("update touches mutable fields only", func(t *testing.T) {
		changed := acc
		changed.InitialBalance = decimal.NewFromInt(1)
		changed.MinimumBalance = decimal.NewFromInt(100)
		changed.DefaultCurrency = usd
		require.NoError(t, s.UpdateAccount(ctx, changed))

		got, err := s.GetAccount(ctx, "1010")
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(7425).Equal(got.InitialBalance))
		assert.True(t, decimal.NewFromInt(100).Equal(got.MinimumBalance))
		assert.Equal(t, usd, got.DefaultCurrency)
	})

	t.Run("returned values are copies", func(t *testing.T) {
		got, err := s.GetAccount(ctx, "1010")
		require.NoError(t, err)
		got.MonthlyFee = decimal.NewFromInt(99)

		again, err := s.GetAccount(ctx, "1010")
		require.NoError(t, err)
		assert.True(t, again.MonthlyFee.IsZero())
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.DeleteAccount(ctx, "1010"))
		_, err := s.GetAccount(ctx, "1010")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.DeleteAccount(ctx, "1010"), ErrNotFound)

		require.NoError(t, s.DeleteCustomer(ctx, "ab1"))
		assert.ErrorIs(t, s.DeleteCustomer(ctx, "ab1"), ErrNotFound)
	})
}

func TestMemoryStore_Ledger(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := newTx("1234", model.TransactionTypeDeposit, 10)
	second := newTx("2001", model.TransactionTypeWithdrawal, 20)
	third := newTx("1234", model.TransactionTypeWithdrawal, 30)

	require.NoError(t, s.AppendTransactions(ctx, first, second))
	require.NoError(t, s.AppendTransactions(ctx, third))

	n, err := s.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	t.Run("per-account listing keeps ledger order", func(t *testing.T) {
		list, err := s.ListTransactionsByAccount(ctx, "1234")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, third.ID, list[1].ID)
	})

	t.Run("unknown account has no entries", func(t *testing.T) {
		list, err := s.ListTransactionsByAccount(ctx, "9999")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("cancelled context appends nothing", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()

		err := s.AppendTransactions(cancelCtx, newTx("1234", model.TransactionTypeDeposit, 1))
		require.Error(t, err)

		n, err := s.CountTransactions(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})
}
