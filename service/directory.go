package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go-bank-api/apperrors"
	"go-bank-api/model"
	"go-bank-api/storage"

	"github.com/shopspring/decimal"
)

// AddCustomer registers a new customer. The id and first name are required and the id must not
// already be in use.
func (b *Bank) AddCustomer(ctx context.Context, req model.CreateCustomerRequest) (*model.Customer, error) {
	req.CustomerID = strings.TrimSpace(req.CustomerID)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := validate.Struct(req); err != nil {
		return nil, b.reject("add customer", validationError(err))
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	customer := model.Customer{ID: req.CustomerID, FirstName: req.FirstName, LastName: req.LastName}
	if err := b.store.CreateCustomer(ctx, customer); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			err = fmt.Errorf("%w: customer %s already exists", apperrors.ErrValidation, req.CustomerID)
			return nil, b.reject("add customer", err, slog.String("customer_id", req.CustomerID))
		}
		return nil, fmt.Errorf("failed to add customer: %w", err)
	}

	b.logger.Info("customer added", slog.String("customer_id", customer.ID))
	return &customer, nil
}

// GetCustomer retrieves a customer by id.
func (b *Bank) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	c, err := b.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, customerLookupError(id, err)
	}
	return c, nil
}

// ListCustomers returns every customer in the order they were added.
func (b *Bank) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return b.store.ListCustomers(ctx)
}

// UpdateCustomer renames a customer. Nil fields are left unchanged; the first name may not become empty.
func (b *Bank) UpdateCustomer(ctx context.Context, id string, req model.UpdateCustomerRequest) (*model.Customer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, err := b.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, b.reject("update customer", customerLookupError(id, err), slog.String("customer_id", id))
	}

	if req.FirstName != nil {
		first := strings.TrimSpace(*req.FirstName)
		if first == "" {
			err := fmt.Errorf("%w: first name cannot be empty", apperrors.ErrValidation)
			return nil, b.reject("update customer", err, slog.String("customer_id", id))
		}
		c.FirstName = first
	}
	if req.LastName != nil {
		c.LastName = strings.TrimSpace(*req.LastName)
	}

	if err := b.store.UpdateCustomer(ctx, *c); err != nil {
		return nil, fmt.Errorf("failed to update customer %s: %w", id, err)
	}
	return c, nil
}

// DeleteCustomer removes a customer who holds no account.
func (b *Bank) DeleteCustomer(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.store.GetCustomer(ctx, id); err != nil {
		return b.reject("delete customer", customerLookupError(id, err), slog.String("customer_id", id))
	}

	accounts, err := b.store.ListAccountsByCustomer(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list accounts of customer %s: %w", id, err)
	}
	if len(accounts) > 0 {
		err := fmt.Errorf("%w: customer %s still holds %d account(s)", apperrors.ErrConflict, id, len(accounts))
		return b.reject("delete customer", err, slog.String("customer_id", id))
	}

	if err := b.store.DeleteCustomer(ctx, id); err != nil {
		return fmt.Errorf("failed to delete customer %s: %w", id, err)
	}
	b.logger.Info("customer deleted", slog.String("customer_id", id))
	return nil
}

// CreateAccount opens a general account for an existing customer.
// A minimum balance above the initial balance is accepted here; only later updates enforce the floor.
func (b *Bank) CreateAccount(ctx context.Context, req model.CreateAccountRequest) (*model.Account, error) {
	req.AccountNumber = strings.TrimSpace(req.AccountNumber)
	if err := validate.Struct(req); err != nil {
		return nil, b.reject("create account", validationError(err))
	}
	attrs := []any{slog.String("account_number", req.AccountNumber)}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.store.GetAccount(ctx, req.AccountNumber); err == nil {
		err := fmt.Errorf("%w: account %s already exists", apperrors.ErrConflict, req.AccountNumber)
		return nil, b.reject("create account", err, attrs...)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check account %s: %w", req.AccountNumber, err)
	}

	if !req.InitialBalance.Valid || req.InitialBalance.Decimal.LessThan(decimal.NewFromInt(1)) {
		err := fmt.Errorf("%w: initial balance must be at least 1", apperrors.ErrValidation)
		return nil, b.reject("create account", err, attrs...)
	}
	if !req.MinimumBalance.Valid || req.MinimumBalance.Decimal.IsNegative() {
		err := fmt.Errorf("%w: minimum balance must be zero or more", apperrors.ErrValidation)
		return nil, b.reject("create account", err, attrs...)
	}

	customer, err := b.store.GetCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, b.reject("create account", customerLookupError(req.CustomerID, err), attrs...)
	}
	currency, err := b.store.GetCurrency(ctx, req.CurrencyCode)
	if err != nil {
		return nil, b.reject("create account", currencyLookupError(req.CurrencyCode, err), attrs...)
	}

	acc := model.Account{
		Number:          req.AccountNumber,
		CustomerID:      customer.ID,
		DefaultCurrency: *currency,
		InitialBalance:  req.InitialBalance.Decimal,
		MinimumBalance:  req.MinimumBalance.Decimal,
		MonthlyFee:      decimal.Zero,
	}
	if err := b.store.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, b.reject("create account", fmt.Errorf("account %s: %w", acc.Number, err), attrs...)
		}
		return nil, fmt.Errorf("failed to create account %s: %w", acc.Number, err)
	}

	b.logger.Info("account created", append(attrs, slog.String("customer_id", acc.CustomerID))...)
	return &acc, nil
}

// GetAccount retrieves an account by number.
func (b *Bank) GetAccount(ctx context.Context, number string) (*model.Account, error) {
	acc, err := b.store.GetAccount(ctx, number)
	if err != nil {
		return nil, accountLookupError(number, err)
	}
	return acc, nil
}

// ListCustomerAccounts returns the accounts held by a customer.
func (b *Bank) ListCustomerAccounts(ctx context.Context, customerID string) ([]model.Account, error) {
	if _, err := b.store.GetCustomer(ctx, customerID); err != nil {
		return nil, customerLookupError(customerID, err)
	}
	return b.store.ListAccountsByCustomer(ctx, customerID)
}

// DeleteAccount closes an account. Its balance is not checked and its ledger entries are kept.
func (b *Bank) DeleteAccount(ctx context.Context, number string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.DeleteAccount(ctx, number); err != nil {
		return b.reject("delete account", accountLookupError(number, err), slog.String("account_number", number))
	}
	b.logger.Info("account deleted", slog.String("account_number", number))
	return nil
}

// UpdateAccount applies the settings present in req, in the order minimum balance, monthly fee,
// default currency. The first failing setting aborts the update and nothing is stored.
func (b *Bank) UpdateAccount(ctx context.Context, number string, req model.UpdateAccountRequest) (*model.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	attrs := []any{slog.String("account_number", number)}
	acc, err := b.store.GetAccount(ctx, number)
	if err != nil {
		return nil, b.reject("update account", accountLookupError(number, err), attrs...)
	}

	if req.MinimumBalance.Valid {
		if err := b.setMinimumBalance(ctx, acc, req.MinimumBalance.Decimal); err != nil {
			return nil, b.reject("update account", err, attrs...)
		}
	}
	if req.MonthlyFee.Valid {
		if err := setMonthlyFee(acc, req.MonthlyFee.Decimal); err != nil {
			return nil, b.reject("update account", err, attrs...)
		}
	}
	if req.DefaultCurrency != nil {
		if err := b.setDefaultCurrency(ctx, acc, *req.DefaultCurrency); err != nil {
			return nil, b.reject("update account", err, attrs...)
		}
	}

	if err := b.store.UpdateAccount(ctx, *acc); err != nil {
		return nil, fmt.Errorf("failed to update account %s: %w", number, err)
	}
	b.logger.Info("account updated", attrs...)
	return acc, nil
}

// UpdateMinimumBalance sets the floor a withdrawal may not cross. It must be zero or more and no
// higher than the current balance.
func (b *Bank) UpdateMinimumBalance(ctx context.Context, number string, amount decimal.Decimal) error {
	_, err := b.UpdateAccount(ctx, number, model.UpdateAccountRequest{MinimumBalance: decimal.NewNullDecimal(amount)})
	return err
}

// UpdateMonthlyFee sets the account's monthly fee, which must be zero or more.
func (b *Bank) UpdateMonthlyFee(ctx context.Context, number string, amount decimal.Decimal) error {
	_, err := b.UpdateAccount(ctx, number, model.UpdateAccountRequest{MonthlyFee: decimal.NewNullDecimal(amount)})
	return err
}

// UpdateDefaultCurrency changes the account's currency. Posted transactions keep their recorded rate.
func (b *Bank) UpdateDefaultCurrency(ctx context.Context, number, currencyCode string) error {
	_, err := b.UpdateAccount(ctx, number, model.UpdateAccountRequest{DefaultCurrency: &currencyCode})
	return err
}

func (b *Bank) setMinimumBalance(ctx context.Context, acc *model.Account, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: minimum balance cannot be negative", apperrors.ErrValidation)
	}
	balance, err := b.currentBalance(ctx, acc)
	if err != nil {
		return err
	}
	if amount.GreaterThan(balance) {
		return fmt.Errorf("%w: minimum balance %s exceeds current balance %s",
			apperrors.ErrValidation, amount.StringFixed(model.MoneyScale), balance.StringFixed(model.MoneyScale))
	}
	acc.MinimumBalance = amount
	return nil
}

func setMonthlyFee(acc *model.Account, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: monthly fee cannot be negative", apperrors.ErrValidation)
	}
	acc.MonthlyFee = amount
	return nil
}

func (b *Bank) setDefaultCurrency(ctx context.Context, acc *model.Account, code string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: currency is required", apperrors.ErrValidation)
	}
	currency, err := b.store.GetCurrency(ctx, code)
	if err != nil {
		return currencyLookupError(code, err)
	}
	acc.DefaultCurrency = *currency
	return nil
}

func customerLookupError(id string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: %s", apperrors.ErrCustomerNotFound, id)
	}
	return fmt.Errorf("failed to get customer %s: %w", id, err)
}

func accountLookupError(number string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, number)
	}
	return fmt.Errorf("failed to get account %s: %w", number, err)
}

func currencyLookupError(code string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: %s", apperrors.ErrCurrencyNotFound, code)
	}
	return fmt.Errorf("failed to get currency %s: %w", code, err)
}
