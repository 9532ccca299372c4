// Package exchange converts amounts between currencies using the static, directed exchange table.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-bank-api/apperrors"
	"go-bank-api/model"

	"github.com/shopspring/decimal"
)

// RateRepository is the subset of storage the exchange service reads and writes.
type RateRepository interface {
	GetCurrency(ctx context.Context, code string) (*model.Currency, error)
	SaveExchangeRate(ctx context.Context, rate model.ExchangeRate) error
	FindExchangeRate(ctx context.Context, fromCode, toCode string) (*model.ExchangeRate, error)
	ListExchangeRates(ctx context.Context) ([]model.ExchangeRate, error)
}

// Service provides rate lookups and conversions.
type Service struct {
	repo RateRepository
}

// NewService creates a new exchange Service.
func NewService(repo RateRepository) *Service {
	return &Service{repo: repo}
}

// Rate returns the multiplier that converts an amount in fromCode into toCode.
// Identical codes convert at 1 whether or not the table lists them. Otherwise only an exact
// (from, to) entry counts; the reverse pair is never inferred.
func (s *Service) Rate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	fromCode = strings.TrimSpace(fromCode)
	toCode = strings.TrimSpace(toCode)
	if model.SameKey(fromCode, toCode) {
		return decimal.NewFromInt(1), nil
	}

	rate, err := s.repo.FindExchangeRate(ctx, fromCode, toCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("%w: no rate from %s to %s", apperrors.ErrConversionUnavailable, fromCode, toCode)
		}
		return decimal.Zero, fmt.Errorf("failed to look up exchange rate: %w", err)
	}
	return rate.Rate, nil
}

// Convert returns amount expressed in toCode.
func (s *Service) Convert(ctx context.Context, fromCode, toCode string, amount decimal.Decimal) (decimal.Decimal, error) {
	rate, err := s.Rate(ctx, fromCode, toCode)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate), nil
}

// CreateExchangeRate adds a directed entry to the table. Both currencies must already exist.
func (s *Service) CreateExchangeRate(ctx context.Context, fromCode, toCode string, rate decimal.Decimal) (*model.ExchangeRate, error) {
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if model.SameKey(fromCode, toCode) {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}

	from, err := s.repo.GetCurrency(ctx, fromCode)
	if err != nil {
		return nil, currencyLookupError("from", fromCode, err)
	}
	to, err := s.repo.GetCurrency(ctx, toCode)
	if err != nil {
		return nil, currencyLookupError("to", toCode, err)
	}

	entry := model.ExchangeRate{From: *from, To: *to, Rate: rate}
	if err := s.repo.SaveExchangeRate(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save exchange rate %s->%s: %w", from.Code, to.Code, err)
	}
	return &entry, nil
}

// ListExchangeRates returns every entry of the table.
func (s *Service) ListExchangeRates(ctx context.Context) ([]model.ExchangeRate, error) {
	return s.repo.ListExchangeRates(ctx)
}

func currencyLookupError(side, code string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: '%s' currency code '%s'", apperrors.ErrCurrencyNotFound, side, code)
	}
	return fmt.Errorf("failed to validate '%s' currency '%s': %w", side, code, err)
}
