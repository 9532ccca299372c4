package storage

import (
	"context"
	"slices"
	"sync"

	"go-bank-api/model"
)

// MemoryStore implements the Store interface in process memory.
//
// Customers, accounts and ledger entries are kept in insertion order. The ledger also keeps an
// index from normalized account number to the positions of that account's entries, so balance
// derivation scans only the account's own records.
type MemoryStore struct {
	mu sync.RWMutex

	currencies []model.Currency
	rates      []model.ExchangeRate
	customers  []model.Customer
	accounts   []model.Account

	ledger    []model.Transaction
	byAccount map[string][]int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byAccount: make(map[string][]int)}
}

func (s *MemoryStore) CreateCurrency(_ context.Context, c model.Currency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currencyIndex(c.Code) >= 0 {
		return ErrDuplicate
	}
	s.currencies = append(s.currencies, c)
	return nil
}

func (s *MemoryStore) GetCurrency(_ context.Context, code string) (*model.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.currencyIndex(code)
	if i < 0 {
		return nil, ErrNotFound
	}
	c := s.currencies[i]
	return &c, nil
}

func (s *MemoryStore) ListCurrencies(_ context.Context) ([]model.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.currencies), nil
}

func (s *MemoryStore) SaveExchangeRate(_ context.Context, rate model.ExchangeRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rateIndex(rate.From.Code, rate.To.Code) >= 0 {
		return ErrDuplicate
	}
	s.rates = append(s.rates, rate)
	return nil
}

func (s *MemoryStore) FindExchangeRate(_ context.Context, fromCode, toCode string) (*model.ExchangeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.rateIndex(fromCode, toCode)
	if i < 0 {
		return nil, ErrNotFound
	}
	r := s.rates[i]
	return &r, nil
}

func (s *MemoryStore) ListExchangeRates(_ context.Context) ([]model.ExchangeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rates), nil
}

func (s *MemoryStore) CreateCustomer(_ context.Context, c model.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customerIndex(c.ID) >= 0 {
		return ErrDuplicate
	}
	s.customers = append(s.customers, c)
	return nil
}

func (s *MemoryStore) GetCustomer(_ context.Context, id string) (*model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.customerIndex(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	c := s.customers[i]
	return &c, nil
}

func (s *MemoryStore) ListCustomers(_ context.Context) ([]model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.customers), nil
}

func (s *MemoryStore) UpdateCustomer(_ context.Context, c model.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.customerIndex(c.ID)
	if i < 0 {
		return ErrNotFound
	}
	// The id is immutable; keep the stored spelling.
	c.ID = s.customers[i].ID
	s.customers[i] = c
	return nil
}

func (s *MemoryStore) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.customerIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	s.customers = slices.Delete(s.customers, i, i+1)
	return nil
}

func (s *MemoryStore) CreateAccount(_ context.Context, acc model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountIndex(acc.Number) >= 0 {
		return ErrDuplicate
	}
	s.accounts = append(s.accounts, acc)
	return nil
}

func (s *MemoryStore) GetAccount(_ context.Context, number string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.accountIndex(number)
	if i < 0 {
		return nil, ErrNotFound
	}
	acc := s.accounts[i]
	return &acc, nil
}

func (s *MemoryStore) ListAccountsByCustomer(_ context.Context, customerID string) ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Account
	for _, acc := range s.accounts {
		if acc.HeldBy(customerID) {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateAccount(_ context.Context, acc model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.accountIndex(acc.Number)
	if i < 0 {
		return ErrNotFound
	}
	stored := &s.accounts[i]
	stored.DefaultCurrency = acc.DefaultCurrency
	stored.MinimumBalance = acc.MinimumBalance
	stored.MonthlyFee = acc.MonthlyFee
	return nil
}

func (s *MemoryStore) DeleteAccount(_ context.Context, number string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.accountIndex(number)
	if i < 0 {
		return ErrNotFound
	}
	s.accounts = slices.Delete(s.accounts, i, i+1)
	return nil
}

func (s *MemoryStore) AppendTransactions(ctx context.Context, txs ...model.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		key := model.NormalizeKey(tx.AccountNumber)
		s.byAccount[key] = append(s.byAccount[key], len(s.ledger))
		s.ledger = append(s.ledger, tx)
	}
	return nil
}

func (s *MemoryStore) ListTransactionsByAccount(_ context.Context, accountNumber string) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	positions := s.byAccount[model.NormalizeKey(accountNumber)]
	out := make([]model.Transaction, 0, len(positions))
	for _, pos := range positions {
		out = append(out, s.ledger[pos])
	}
	return out, nil
}

func (s *MemoryStore) CountTransactions(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ledger), nil
}

func (s *MemoryStore) currencyIndex(code string) int {
	return slices.IndexFunc(s.currencies, func(c model.Currency) bool { return model.SameKey(c.Code, code) })
}

func (s *MemoryStore) rateIndex(fromCode, toCode string) int {
	return slices.IndexFunc(s.rates, func(r model.ExchangeRate) bool {
		return model.SameKey(r.From.Code, fromCode) && model.SameKey(r.To.Code, toCode)
	})
}

func (s *MemoryStore) customerIndex(id string) int {
	return slices.IndexFunc(s.customers, func(c model.Customer) bool { return model.SameKey(c.ID, id) })
}

func (s *MemoryStore) accountIndex(number string) int {
	return slices.IndexFunc(s.accounts, func(a model.Account) bool { return model.SameKey(a.Number, number) })
}

var _ Store = (*MemoryStore)(nil)
