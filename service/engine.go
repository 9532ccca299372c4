package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-bank-api/apperrors"
	"go-bank-api/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PerformTransaction validates and applies a deposit, withdrawal or transfer and returns the ledger
// entries it appended. A rejected request appends nothing. An unrecognised type is ignored.
func (b *Bank) PerformTransaction(ctx context.Context, req model.TransactionRequest) ([]model.Transaction, error) {
	attrs := []any{
		slog.String("type", string(req.Type)),
		slog.String("customer_id", req.CustomerID),
		slog.String("from_account", req.FromAccountNumber),
		slog.String("to_account", req.ToAccountNumber),
	}

	if err := checkTransactionRequest(req); err != nil {
		return nil, b.reject("transaction", err, attrs...)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if strings.TrimSpace(req.CustomerID) == "" {
		return nil, b.reject("transaction", apperrors.ErrCustomerNotFound, attrs...)
	}
	if _, err := b.store.GetCustomer(ctx, req.CustomerID); err != nil {
		return nil, b.reject("transaction", customerLookupError(req.CustomerID, err), attrs...)
	}

	var (
		txs []model.Transaction
		err error
	)
	switch req.Type.Canonical() {
	case model.TransactionTypeDeposit:
		txs, err = b.deposit(ctx, req)
	case model.TransactionTypeWithdrawal:
		txs, err = b.withdraw(ctx, req)
	case model.TransactionTypeTransfer:
		txs, err = b.transfer(ctx, req)
	default:
		return nil, nil
	}
	if err != nil {
		if isRejection(err) {
			return nil, b.reject("transaction", err, attrs...)
		}
		return nil, err
	}

	if err := b.store.AppendTransactions(ctx, txs...); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	ids := make([]string, len(txs))
	for i, t := range txs {
		ids[i] = t.ID.String()
	}
	b.logger.Info("transaction applied", append(attrs, slog.Any("transaction_ids", ids))...)
	return txs, nil
}

// checkTransactionRequest runs the checks shared by every transaction type that need no lookups.
func checkTransactionRequest(req model.TransactionRequest) error {
	if strings.TrimSpace(req.FromAccountNumber) == "" && strings.TrimSpace(req.ToAccountNumber) == "" {
		return apperrors.ErrNoAccountSpecified
	}
	if !req.Amount.Valid {
		return apperrors.ErrMissingAmount
	}
	if strings.TrimSpace(req.CurrencyCode) == "" {
		return apperrors.ErrMissingCurrency
	}
	return nil
}

func (b *Bank) deposit(ctx context.Context, req model.TransactionRequest) ([]model.Transaction, error) {
	acc, err := b.store.GetAccount(ctx, req.ToAccountNumber)
	if err != nil {
		return nil, accountLookupError(req.ToAccountNumber, err)
	}

	currency, rate, err := b.rateInto(ctx, req.CurrencyCode, acc)
	if err != nil {
		return nil, err
	}
	amount := req.Amount.Decimal
	if err := checkDeposit(amount, rate); err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Amount %s was deposited.", amount.StringFixed(model.MoneyScale))
	return []model.Transaction{newTransaction(model.TransactionTypeDeposit, acc.Number, currency, amount, rate, desc)}, nil
}

func (b *Bank) withdraw(ctx context.Context, req model.TransactionRequest) ([]model.Transaction, error) {
	acc, err := b.ownedAccount(ctx, req.FromAccountNumber, req.CustomerID)
	if err != nil {
		return nil, err
	}

	currency, rate, err := b.rateInto(ctx, req.CurrencyCode, acc)
	if err != nil {
		return nil, err
	}
	amount := req.Amount.Decimal
	if err := checkWithdrawal(acc, amount, rate); err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Amount %s was withdrawn.", amount.StringFixed(model.MoneyScale))
	return []model.Transaction{newTransaction(model.TransactionTypeWithdrawal, acc.Number, currency, amount, rate, desc)}, nil
}

// transfer produces a withdrawal leg on the source and a deposit leg on the target. Both legs record
// the source account's rate.
func (b *Bank) transfer(ctx context.Context, req model.TransactionRequest) ([]model.Transaction, error) {
	from, err := b.store.GetAccount(ctx, req.FromAccountNumber)
	if err != nil {
		return nil, accountLookupError(req.FromAccountNumber, err)
	}
	to, err := b.store.GetAccount(ctx, req.ToAccountNumber)
	if err != nil {
		return nil, accountLookupError(req.ToAccountNumber, err)
	}
	if !from.HeldBy(req.CustomerID) {
		return nil, notOwnerError(req.CustomerID, from)
	}

	currency, fromRate, err := b.rateInto(ctx, req.CurrencyCode, from)
	if err != nil {
		return nil, err
	}
	_, toRate, err := b.rateInto(ctx, req.CurrencyCode, to)
	if err != nil {
		return nil, err
	}

	amount := req.Amount.Decimal
	if err := checkWithdrawal(from, amount, fromRate); err != nil {
		return nil, err
	}
	if err := checkDeposit(amount, toRate); err != nil {
		return nil, err
	}

	fixed := amount.StringFixed(model.MoneyScale)
	return []model.Transaction{
		newTransaction(model.TransactionTypeWithdrawal, from.Number, currency, amount, fromRate,
			fmt.Sprintf("Amount %s was transferred to account %s.", fixed, to.Number)),
		newTransaction(model.TransactionTypeDeposit, to.Number, currency, amount, fromRate,
			fmt.Sprintf("Amount %s was transferred from account %s.", fixed, from.Number)),
	}, nil
}

func (b *Bank) ownedAccount(ctx context.Context, number, customerID string) (*model.Account, error) {
	acc, err := b.store.GetAccount(ctx, number)
	if err != nil {
		return nil, accountLookupError(number, err)
	}
	if !acc.HeldBy(customerID) {
		return nil, notOwnerError(customerID, acc)
	}
	return acc, nil
}

// rateInto resolves the transaction currency and its rate into the account's default currency.
func (b *Bank) rateInto(ctx context.Context, currencyCode string, acc *model.Account) (model.Currency, decimal.Decimal, error) {
	currency, err := b.store.GetCurrency(ctx, currencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return model.Currency{}, decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrUnknownCurrency, currencyCode)
		}
		return model.Currency{}, decimal.Zero, fmt.Errorf("failed to get currency %s: %w", currencyCode, err)
	}
	if currency.Equal(acc.DefaultCurrency) {
		return *currency, decimal.NewFromInt(1), nil
	}
	rate, err := b.rates.Rate(ctx, currency.Code, acc.DefaultCurrency.Code)
	if err != nil {
		return model.Currency{}, decimal.Zero, err
	}
	return *currency, rate, nil
}

func checkDeposit(amount, rate decimal.Decimal) error {
	if amount.Mul(rate).IsNegative() {
		return fmt.Errorf("%w: deposit amount cannot be negative", apperrors.ErrNegativeAmount)
	}
	return nil
}

// checkWithdrawal compares against the account's initial balance, not its derived balance.
func checkWithdrawal(acc *model.Account, amount, rate decimal.Decimal) error {
	converted := amount.Mul(rate)
	if converted.IsNegative() {
		return fmt.Errorf("%w: withdrawal amount cannot be negative", apperrors.ErrNegativeAmount)
	}
	available := acc.InitialBalance.Sub(acc.MinimumBalance)
	if converted.GreaterThan(available) {
		return fmt.Errorf("%w: cannot withdraw %s %s from account %s", apperrors.ErrInsufficientFunds,
			converted.StringFixed(model.MoneyScale), acc.DefaultCurrency.Code, acc.Number)
	}
	return nil
}

func notOwnerError(customerID string, acc *model.Account) error {
	return fmt.Errorf("%w: customer %s, account %s", apperrors.ErrNotAccountOwner, customerID, acc.Number)
}

func newTransaction(t model.TransactionType, account string, currency model.Currency, amount, rate decimal.Decimal, desc string) model.Transaction {
	return model.Transaction{
		ID:            uuid.New(),
		Type:          t,
		AccountNumber: account,
		Currency:      currency,
		Amount:        amount,
		ExchangeRate:  rate,
		Description:   desc,
		PostedAt:      time.Now().UTC(),
	}
}

var rejectionKinds = []error{
	apperrors.ErrValidation,
	apperrors.ErrNotFound,
	apperrors.ErrConflict,
	apperrors.ErrConversionUnavailable,
	apperrors.ErrInsufficientFunds,
	apperrors.ErrNotAccountOwner,
	apperrors.ErrNegativeAmount,
}

func isRejection(err error) bool {
	for _, kind := range rejectionKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// CurrentBalance derives the account's balance: its initial balance plus every deposit minus every
// withdrawal posted against it, each valued at the rate recorded when it was posted.
func (b *Bank) CurrentBalance(ctx context.Context, number string) (decimal.Decimal, error) {
	acc, err := b.store.GetAccount(ctx, number)
	if err != nil {
		return decimal.Zero, accountLookupError(number, err)
	}
	return b.currentBalance(ctx, acc)
}

func (b *Bank) currentBalance(ctx context.Context, acc *model.Account) (decimal.Decimal, error) {
	txs, err := b.store.ListTransactionsByAccount(ctx, acc.Number)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read ledger for account %s: %w", acc.Number, err)
	}

	balance := acc.InitialBalance
	for _, t := range txs {
		switch t.Type {
		case model.TransactionTypeDeposit:
			balance = balance.Add(t.Value())
		case model.TransactionTypeWithdrawal:
			balance = balance.Sub(t.Value())
		}
	}
	return balance, nil
}

// GetAccountBalance returns the account's current balance with its currency, rounded for display.
func (b *Bank) GetAccountBalance(ctx context.Context, number string) (*model.Balance, error) {
	acc, err := b.store.GetAccount(ctx, number)
	if err != nil {
		return nil, accountLookupError(number, err)
	}
	balance, err := b.currentBalance(ctx, acc)
	if err != nil {
		return nil, err
	}
	return &model.Balance{
		AccountNumber: acc.Number,
		CurrencyCode:  acc.DefaultCurrency.Code,
		Balance:       balance.Round(model.MoneyScale),
	}, nil
}

// AccountTransactions returns the ledger entries of an account in the order they were posted.
func (b *Bank) AccountTransactions(ctx context.Context, number string) ([]model.Transaction, error) {
	if _, err := b.store.GetAccount(ctx, number); err != nil {
		return nil, accountLookupError(number, err)
	}
	return b.store.ListTransactionsByAccount(ctx, number)
}
