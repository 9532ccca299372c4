// storage/postgres.go

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-bank-api/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// PostgresStore implements the Store interface for PostgreSQL.
// Identifiers are stored as given and matched case-insensitively through upper() indexes.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore, connects to the database, and initializes the schema.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	var pool *pgxpool.Pool
	var err error

	// Retry connecting to the database for a few seconds
	for i := 0; i < 5; i++ {
		pool, err = pgxpool.New(ctx, connString)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to database after retries: %w", err)
	}

	store := &PostgresStore{db: pool}
	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}

	return store, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS currencies (
        code TEXT PRIMARY KEY,
        details TEXT NOT NULL DEFAULT ''
    )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS currencies_code_ci ON currencies (upper(code))`,
	`CREATE TABLE IF NOT EXISTS exchange_rates (
        from_code TEXT NOT NULL REFERENCES currencies (code),
        to_code TEXT NOT NULL REFERENCES currencies (code),
        rate NUMERIC NOT NULL,
        PRIMARY KEY (from_code, to_code)
    )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS exchange_rates_pair_ci ON exchange_rates (upper(from_code), upper(to_code))`,
	`CREATE TABLE IF NOT EXISTS customers (
        customer_id TEXT PRIMARY KEY,
        first_name TEXT NOT NULL,
        last_name TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS customers_id_ci ON customers (upper(customer_id))`,
	`CREATE TABLE IF NOT EXISTS accounts (
        account_number TEXT PRIMARY KEY,
        customer_id TEXT NOT NULL REFERENCES customers (customer_id),
        currency_code TEXT NOT NULL REFERENCES currencies (code),
        initial_balance NUMERIC NOT NULL,
        minimum_balance NUMERIC NOT NULL,
        monthly_fee NUMERIC NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS accounts_number_ci ON accounts (upper(account_number))`,
	// Ledger rows outlive their account, so account_number carries no foreign key.
	`CREATE TABLE IF NOT EXISTS transactions (
        seq BIGSERIAL PRIMARY KEY,
        transaction_id UUID NOT NULL UNIQUE,
        transaction_type TEXT NOT NULL,
        account_number TEXT NOT NULL,
        currency_code TEXT NOT NULL REFERENCES currencies (code),
        amount NUMERIC NOT NULL,
        exchange_rate NUMERIC NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        posted_at TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS transactions_account_ci ON transactions (upper(account_number), seq)`,
}

// initSchema creates the necessary tables if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) CreateCurrency(ctx context.Context, c model.Currency) error {
	query := "INSERT INTO currencies (code, details) VALUES ($1, $2)"
	_, err := s.db.Exec(ctx, query, c.Code, c.Details)
	return mapWriteError(err)
}

func (s *PostgresStore) GetCurrency(ctx context.Context, code string) (*model.Currency, error) {
	c := &model.Currency{}
	query := "SELECT code, details FROM currencies WHERE upper(code) = upper($1)"
	err := s.db.QueryRow(ctx, query, code).Scan(&c.Code, &c.Details)
	if err != nil {
		return nil, mapReadError(err)
	}
	return c, nil
}

func (s *PostgresStore) ListCurrencies(ctx context.Context) ([]model.Currency, error) {
	rows, err := s.db.Query(ctx, "SELECT code, details FROM currencies ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("could not query currencies: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Currency, error) {
		var c model.Currency
		err := row.Scan(&c.Code, &c.Details)
		return c, err
	})
}

func (s *PostgresStore) SaveExchangeRate(ctx context.Context, rate model.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (from_code, to_code, rate)
		SELECT f.code, t.code, $3
		FROM currencies f, currencies t
		WHERE upper(f.code) = upper($1) AND upper(t.code) = upper($2)`
	tag, err := s.db.Exec(ctx, query, rate.From.Code, rate.To.Code, rate.Rate)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const rateSelect = `
	SELECT f.code, f.details, t.code, t.details, r.rate
	FROM exchange_rates r
	JOIN currencies f ON f.code = r.from_code
	JOIN currencies t ON t.code = r.to_code`

func (s *PostgresStore) FindExchangeRate(ctx context.Context, fromCode, toCode string) (*model.ExchangeRate, error) {
	query := rateSelect + " WHERE upper(r.from_code) = upper($1) AND upper(r.to_code) = upper($2)"
	rate, err := scanRate(s.db.QueryRow(ctx, query, fromCode, toCode))
	if err != nil {
		return nil, mapReadError(err)
	}
	return &rate, nil
}

func (s *PostgresStore) ListExchangeRates(ctx context.Context) ([]model.ExchangeRate, error) {
	rows, err := s.db.Query(ctx, rateSelect+" ORDER BY r.from_code, r.to_code")
	if err != nil {
		return nil, fmt.Errorf("could not query exchange rates: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ExchangeRate, error) {
		return scanRate(row)
	})
}

func (s *PostgresStore) CreateCustomer(ctx context.Context, c model.Customer) error {
	query := "INSERT INTO customers (customer_id, first_name, last_name) VALUES ($1, $2, $3)"
	_, err := s.db.Exec(ctx, query, c.ID, c.FirstName, c.LastName)
	return mapWriteError(err)
}

func (s *PostgresStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	c := &model.Customer{}
	query := "SELECT customer_id, first_name, last_name FROM customers WHERE upper(customer_id) = upper($1)"
	if err := s.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.FirstName, &c.LastName); err != nil {
		return nil, mapReadError(err)
	}
	return c, nil
}

func (s *PostgresStore) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	rows, err := s.db.Query(ctx, "SELECT customer_id, first_name, last_name FROM customers ORDER BY created_at, customer_id")
	if err != nil {
		return nil, fmt.Errorf("could not query customers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Customer, error) {
		var c model.Customer
		err := row.Scan(&c.ID, &c.FirstName, &c.LastName)
		return c, err
	})
}

func (s *PostgresStore) UpdateCustomer(ctx context.Context, c model.Customer) error {
	query := "UPDATE customers SET first_name = $2, last_name = $3 WHERE upper(customer_id) = upper($1)"
	tag, err := s.db.Exec(ctx, query, c.ID, c.FirstName, c.LastName)
	if err != nil {
		return fmt.Errorf("could not update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteCustomer(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM customers WHERE upper(customer_id) = upper($1)", id)
	if err != nil {
		return fmt.Errorf("could not delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateAccount(ctx context.Context, acc model.Account) error {
	query := `
		INSERT INTO accounts (account_number, customer_id, currency_code, initial_balance, minimum_balance, monthly_fee)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.Exec(ctx, query,
		acc.Number, acc.CustomerID, acc.DefaultCurrency.Code,
		acc.InitialBalance, acc.MinimumBalance, acc.MonthlyFee)
	return mapWriteError(err)
}

const accountSelect = `
	SELECT a.account_number, a.customer_id, c.code, c.details, a.initial_balance, a.minimum_balance, a.monthly_fee
	FROM accounts a
	JOIN currencies c ON c.code = a.currency_code`

// GetAccount retrieves a single account by its number.
func (s *PostgresStore) GetAccount(ctx context.Context, number string) (*model.Account, error) {
	acc, err := scanAccount(s.db.QueryRow(ctx, accountSelect+" WHERE upper(a.account_number) = upper($1)", number))
	if err != nil {
		return nil, mapReadError(err)
	}
	return &acc, nil
}

func (s *PostgresStore) ListAccountsByCustomer(ctx context.Context, customerID string) ([]model.Account, error) {
	query := accountSelect + " WHERE upper(a.customer_id) = upper($1) ORDER BY a.created_at, a.account_number"
	rows, err := s.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("could not query accounts: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Account, error) {
		return scanAccount(row)
	})
}

func (s *PostgresStore) UpdateAccount(ctx context.Context, acc model.Account) error {
	query := `
		UPDATE accounts SET currency_code = $2, minimum_balance = $3, monthly_fee = $4
		WHERE upper(account_number) = upper($1)`
	tag, err := s.db.Exec(ctx, query, acc.Number, acc.DefaultCurrency.Code, acc.MinimumBalance, acc.MonthlyFee)
	if err != nil {
		return fmt.Errorf("could not update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteAccount(ctx context.Context, number string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM accounts WHERE upper(account_number) = upper($1)", number)
	if err != nil {
		return fmt.Errorf("could not delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendTransactions inserts the records within a single database transaction, so a transfer's
// two legs are committed together or not at all.
func (s *PostgresStore) AppendTransactions(ctx context.Context, txs ...model.Transaction) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // Rollback is a no-op if the transaction has been committed.

	query := `
		INSERT INTO transactions
			(transaction_id, transaction_type, account_number, currency_code, amount, exchange_rate, description, posted_at)
		VALUES ($1, $2, $3, (SELECT code FROM currencies WHERE upper(code) = upper($4)), $5, $6, $7, $8)`
	for _, t := range txs {
		_, err := tx.Exec(ctx, query,
			t.ID, string(t.Type), t.AccountNumber, t.Currency.Code,
			t.Amount, t.ExchangeRate, t.Description, t.PostedAt)
		if err != nil {
			return fmt.Errorf("could not insert transaction %s: %w", t.ID, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) ListTransactionsByAccount(ctx context.Context, accountNumber string) ([]model.Transaction, error) {
	query := `
		SELECT t.transaction_id, t.transaction_type, t.account_number, c.code, c.details,
		       t.amount, t.exchange_rate, t.description, t.posted_at
		FROM transactions t
		JOIN currencies c ON c.code = t.currency_code
		WHERE upper(t.account_number) = upper($1)
		ORDER BY t.seq`
	rows, err := s.db.Query(ctx, query, accountNumber)
	if err != nil {
		return nil, fmt.Errorf("could not query transactions: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Transaction, error) {
		var t model.Transaction
		var txType string
		err := row.Scan(&t.ID, &txType, &t.AccountNumber, &t.Currency.Code, &t.Currency.Details,
			&t.Amount, &t.ExchangeRate, &t.Description, &t.PostedAt)
		t.Type = model.TransactionType(txType)
		return t, err
	})
}

func (s *PostgresStore) CountTransactions(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n); err != nil {
		return 0, fmt.Errorf("could not count transactions: %w", err)
	}
	return n, nil
}

func scanRate(row pgx.Row) (model.ExchangeRate, error) {
	var r model.ExchangeRate
	err := row.Scan(&r.From.Code, &r.From.Details, &r.To.Code, &r.To.Details, &r.Rate)
	return r, err
}

func scanAccount(row pgx.Row) (model.Account, error) {
	var a model.Account
	err := row.Scan(&a.Number, &a.CustomerID, &a.DefaultCurrency.Code, &a.DefaultCurrency.Details,
		&a.InitialBalance, &a.MinimumBalance, &a.MonthlyFee)
	return a, err
}

func mapReadError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func mapWriteError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

var _ Store = (*PostgresStore)(nil)
