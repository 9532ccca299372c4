package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Package model defines the data structures shared by the bank's storage, service and handler layers.

// Monetary values and exchange rates are decimal.Decimal, never float64.
// A balance is re-derived by replaying the ledger, so it must add up exactly on every replay.

// MoneyScale is the number of fractional digits used when a balance is rendered.
const MoneyScale = 2

// SameKey reports whether two identifiers (customer ids, account numbers, currency codes) refer to
// the same entity. Identifiers are matched case-insensitively and ignore surrounding blanks.
func SameKey(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// NormalizeKey returns the canonical form of an identifier for use as a map key.
func NormalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Currency identifies a currency by its code.
type Currency struct {
	Code    string `json:"code" yaml:"code"`
	Details string `json:"details" yaml:"details"`
}

// Equal compares currencies by code, case-insensitively.
func (c Currency) Equal(other Currency) bool {
	return SameKey(c.Code, other.Code)
}

// ExchangeRate is one directed entry of the exchange table: an amount in From multiplied by Rate
// gives the amount in To.
type ExchangeRate struct {
	From Currency        `json:"from"`
	To   Currency        `json:"to"`
	Rate decimal.Decimal `json:"rate"`
}

// Customer is an account holder.
type Customer struct {
	ID        string `json:"customer_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName returns the customer's first and last name separated by a space.
func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Account is a general bank account. Its current balance is not stored; it is derived from
// InitialBalance and the ledger entries posted against the account.
type Account struct {
	Number          string          `json:"account_number"`
	CustomerID      string          `json:"customer_id"`
	DefaultCurrency Currency        `json:"default_currency"`
	InitialBalance  decimal.Decimal `json:"initial_balance"`
	MinimumBalance  decimal.Decimal `json:"minimum_balance"`
	MonthlyFee      decimal.Decimal `json:"monthly_fee"`
}

// HeldBy reports whether customerID is the holder of the account.
func (a Account) HeldBy(customerID string) bool {
	return SameKey(a.CustomerID, customerID)
}

// TransactionType is the kind of operation requested or recorded.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
)

// Canonical returns the type lower-cased and trimmed, so "Deposit" and "deposit" name the same type.
func (t TransactionType) Canonical() TransactionType {
	return TransactionType(strings.ToLower(strings.TrimSpace(string(t))))
}

// UnmarshalText decodes a type in any letter case.
func (t *TransactionType) UnmarshalText(text []byte) error {
	*t = TransactionType(text).Canonical()
	return nil
}

// Transaction is an immutable ledger entry. A transfer is recorded as two entries: a withdrawal on
// the source account and a deposit on the target account.
type Transaction struct {
	ID            uuid.UUID       `json:"transaction_id"`
	Type          TransactionType `json:"type"`
	AccountNumber string          `json:"account_number"`
	Currency      Currency        `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	ExchangeRate  decimal.Decimal `json:"exchange_rate"`
	Description   string          `json:"description"`
	PostedAt      time.Time       `json:"posted_at"`
}

// Value is the transaction amount expressed in the account's default currency at posting time.
func (t Transaction) Value() decimal.Decimal {
	return t.Amount.Mul(t.ExchangeRate)
}

// CreateCustomerRequest defines the expected JSON body for adding a customer.
type CreateCustomerRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name"`
}

// UpdateCustomerRequest defines the expected JSON body for renaming a customer.
// Nil fields are left unchanged.
type UpdateCustomerRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

// CreateAccountRequest defines the expected JSON body for opening an account.
// Balances are nullable so that a missing value can be told apart from zero.
type CreateAccountRequest struct {
	AccountNumber  string              `json:"account_number" validate:"required"`
	CustomerID     string              `json:"customer_id"`
	CurrencyCode   string              `json:"currency_code"`
	InitialBalance decimal.NullDecimal `json:"initial_balance"`
	MinimumBalance decimal.NullDecimal `json:"minimum_balance"`
}

// UpdateAccountRequest defines the expected JSON body for changing an account's settings.
// Only the fields that are present are applied.
type UpdateAccountRequest struct {
	MinimumBalance  decimal.NullDecimal `json:"minimum_balance"`
	MonthlyFee      decimal.NullDecimal `json:"monthly_fee"`
	DefaultCurrency *string             `json:"default_currency,omitempty"`
}

// TransactionRequest defines the expected JSON body for submitting a transaction.
// A deposit names only the target account, a withdrawal only the source account,
// a transfer both.
type TransactionRequest struct {
	CustomerID        string              `json:"customer_id"`
	FromAccountNumber string              `json:"from_account_number"`
	ToAccountNumber   string              `json:"to_account_number"`
	CurrencyCode      string              `json:"currency_code"`
	Amount            decimal.NullDecimal `json:"amount"`
	Type              TransactionType     `json:"type"`
}

// Balance is an account's derived balance in its default currency.
type Balance struct {
	AccountNumber string          `json:"account_number"`
	CurrencyCode  string          `json:"currency_code"`
	Balance       decimal.Decimal `json:"balance"`
}
