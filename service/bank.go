// Package service holds the bank's business rules: the customer/account directory and the
// transaction engine. Both operate on an injected storage.Store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go-bank-api/apperrors"
	"go-bank-api/exchange"
	"go-bank-api/model"
	"go-bank-api/storage"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// Bank is the entry point to every bank operation.
//
// mu serializes mutations, so the check-then-append sequence of a transaction and the
// check-then-update sequence of a minimum-balance change see a ledger nobody else is writing to.
type Bank struct {
	store  storage.Store
	rates  *exchange.Service
	logger *slog.Logger

	mu sync.Mutex
}

// NewBank creates a Bank over store. A nil logger discards log output.
func NewBank(store storage.Store, rates *exchange.Service, logger *slog.Logger) *Bank {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bank{
		store:  store,
		rates:  rates,
		logger: logger,
	}
}

// ListCurrencies returns every known currency.
func (b *Bank) ListCurrencies(ctx context.Context) ([]model.Currency, error) {
	return b.store.ListCurrencies(ctx)
}

// AddCurrency registers a currency.
func (b *Bank) AddCurrency(ctx context.Context, c model.Currency) error {
	c.Code = strings.TrimSpace(c.Code)
	if c.Code == "" {
		return fmt.Errorf("%w: currency code is required", apperrors.ErrValidation)
	}
	if err := b.store.CreateCurrency(ctx, c); err != nil {
		return fmt.Errorf("failed to add currency %s: %w", c.Code, err)
	}
	return nil
}

// AddExchangeRate adds a directed entry to the exchange table.
func (b *Bank) AddExchangeRate(ctx context.Context, fromCode, toCode string, rate decimal.Decimal) (*model.ExchangeRate, error) {
	return b.rates.CreateExchangeRate(ctx, fromCode, toCode, rate)
}

// ListExchangeRates returns the exchange table.
func (b *Bank) ListExchangeRates(ctx context.Context) ([]model.ExchangeRate, error) {
	return b.rates.ListExchangeRates(ctx)
}

// Convert expresses amount, given in fromCode, in toCode.
func (b *Bank) Convert(ctx context.Context, fromCode, toCode string, amount decimal.Decimal) (decimal.Decimal, error) {
	return b.rates.Convert(ctx, fromCode, toCode, amount)
}

// validationError turns validator output into an apperrors.ErrValidation.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
}

func (b *Bank) reject(op string, err error, attrs ...any) error {
	b.logger.Warn(op+" rejected", append(attrs, slog.String("error", err.Error()))...)
	return err
}
