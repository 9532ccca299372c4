package storage

import (
	"context"
	"fmt"

	"go-bank-api/apperrors"
	"go-bank-api/model"
)

// Custom errors for the storage layer.
var (
	ErrNotFound  = fmt.Errorf("record %w", apperrors.ErrNotFound)
	ErrDuplicate = fmt.Errorf("record already exists: %w", apperrors.ErrConflict)
)

// CurrencyStore holds currencies and the directed exchange-rate table.
type CurrencyStore interface {
	CreateCurrency(ctx context.Context, c model.Currency) error
	GetCurrency(ctx context.Context, code string) (*model.Currency, error)
	ListCurrencies(ctx context.Context) ([]model.Currency, error)
	SaveExchangeRate(ctx context.Context, rate model.ExchangeRate) error
	FindExchangeRate(ctx context.Context, fromCode, toCode string) (*model.ExchangeRate, error)
	ListExchangeRates(ctx context.Context) ([]model.ExchangeRate, error)
}

// CustomerStore holds customers.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, c model.Customer) error
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	UpdateCustomer(ctx context.Context, c model.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
}

// AccountStore holds accounts.
type AccountStore interface {
	CreateAccount(ctx context.Context, acc model.Account) error
	GetAccount(ctx context.Context, number string) (*model.Account, error)
	ListAccountsByCustomer(ctx context.Context, customerID string) ([]model.Account, error)
	UpdateAccount(ctx context.Context, acc model.Account) error
	DeleteAccount(ctx context.Context, number string) error
}

// Ledger is the append-only sequence of transaction records.
type Ledger interface {
	// AppendTransactions appends every given record, in order, or none of them.
	AppendTransactions(ctx context.Context, txs ...model.Transaction) error
	// ListTransactionsByAccount returns the records posted against an account in ledger order.
	ListTransactionsByAccount(ctx context.Context, accountNumber string) ([]model.Transaction, error)
	// CountTransactions returns the length of the ledger.
	CountTransactions(ctx context.Context) (int, error)
}

// Store defines the interface for all bank state.
type Store interface {
	CurrencyStore
	CustomerStore
	AccountStore
	Ledger
}
