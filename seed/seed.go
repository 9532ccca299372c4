// Package seed loads the bank's starting state from a YAML document and applies it through the
// service layer, so seeded data passes the same validation as data created over the API.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"go-bank-api/model"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultData []byte

// Data is the seed document.
type Data struct {
	Currencies    []model.Currency `yaml:"currencies"`
	ExchangeRates []Rate           `yaml:"exchange_rates"`
	Customers     []Customer       `yaml:"customers"`
	Accounts      []Account        `yaml:"accounts"`
}

// Rate is a directed exchange-table entry.
type Rate struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
	Rate string `yaml:"rate"`
}

// Customer is a customer to add.
type Customer struct {
	ID        string `yaml:"customer_id"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

// Account is an account to open. Balances are decimal strings; an empty one counts as missing.
type Account struct {
	Number         string `yaml:"account_number"`
	CustomerID     string `yaml:"customer_id"`
	Currency       string `yaml:"currency"`
	InitialBalance string `yaml:"initial_balance"`
	MinimumBalance string `yaml:"minimum_balance"`
}

// Target is the set of bank operations seeding needs.
type Target interface {
	AddCurrency(ctx context.Context, c model.Currency) error
	AddExchangeRate(ctx context.Context, fromCode, toCode string, rate decimal.Decimal) (*model.ExchangeRate, error)
	AddCustomer(ctx context.Context, req model.CreateCustomerRequest) (*model.Customer, error)
	CreateAccount(ctx context.Context, req model.CreateAccountRequest) (*model.Account, error)
}

// Default returns the embedded demo state: three currencies, four rates, five customers, six accounts.
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Load reads a seed document from path.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a seed document.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("could not parse seed data: %w", err)
	}
	return &d, nil
}

// Apply creates everything in d, in dependency order. It stops at the first failure.
func (d *Data) Apply(ctx context.Context, bank Target) error {
	for _, c := range d.Currencies {
		if err := bank.AddCurrency(ctx, c); err != nil {
			return fmt.Errorf("seed currency %s: %w", c.Code, err)
		}
	}

	for _, r := range d.ExchangeRates {
		rate, err := decimal.NewFromString(r.Rate)
		if err != nil {
			return fmt.Errorf("seed rate %s->%s: invalid rate %q: %w", r.From, r.To, r.Rate, err)
		}
		if _, err := bank.AddExchangeRate(ctx, r.From, r.To, rate); err != nil {
			return fmt.Errorf("seed rate %s->%s: %w", r.From, r.To, err)
		}
	}

	for _, c := range d.Customers {
		req := model.CreateCustomerRequest{CustomerID: c.ID, FirstName: c.FirstName, LastName: c.LastName}
		if _, err := bank.AddCustomer(ctx, req); err != nil {
			return fmt.Errorf("seed customer %s: %w", c.ID, err)
		}
	}

	for _, a := range d.Accounts {
		initial, err := parseAmount(a.InitialBalance)
		if err != nil {
			return fmt.Errorf("seed account %s: initial balance: %w", a.Number, err)
		}
		minimum, err := parseAmount(a.MinimumBalance)
		if err != nil {
			return fmt.Errorf("seed account %s: minimum balance: %w", a.Number, err)
		}
		req := model.CreateAccountRequest{
			AccountNumber:  a.Number,
			CustomerID:     a.CustomerID,
			CurrencyCode:   a.Currency,
			InitialBalance: initial,
			MinimumBalance: minimum,
		}
		if _, err := bank.CreateAccount(ctx, req); err != nil {
			return fmt.Errorf("seed account %s: %w", a.Number, err)
		}
	}

	return nil
}

// parseAmount treats an empty value as missing, so the service reports it.
func parseAmount(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
