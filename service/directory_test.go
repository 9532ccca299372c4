package service_test

import (
	"go-bank-api/apperrors"
	"go-bank-api/model"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

// --- Customers ---

func (s *BankTestSuite) TestAddCustomer() {
	cases := []struct {
		name    string
		req     model.CreateCustomerRequest
		wantErr error
	}{
		{name: "success", req: model.CreateCustomerRequest{CustomerID: "123", FirstName: "Peter", LastName: "Griffin"}},
		{name: "no last name", req: model.CreateCustomerRequest{CustomerID: "124", FirstName: "Brian"}},
		{name: "empty id", req: model.CreateCustomerRequest{CustomerID: " ", FirstName: "Peter"}, wantErr: apperrors.ErrValidation},
		{name: "empty first name", req: model.CreateCustomerRequest{CustomerID: "125", LastName: "Griffin"}, wantErr: apperrors.ErrValidation},
		{name: "id already present", req: model.CreateCustomerRequest{CustomerID: "777", FirstName: "Other"}, wantErr: apperrors.ErrValidation},
		{name: "id present with surrounding blanks", req: model.CreateCustomerRequest{CustomerID: "002 ", FirstName: "Other"}, wantErr: apperrors.ErrValidation},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			c, err := s.bank.AddCustomer(s.ctx, tc.req)

			if tc.wantErr != nil {
				s.ErrorIs(err, tc.wantErr)
				s.Nil(c)
				return
			}
			s.Require().NoError(err)
			got, err := s.bank.GetCustomer(s.ctx, tc.req.CustomerID)
			s.Require().NoError(err)
			s.Equal(*c, *got)
		})
	}
}

func (s *BankTestSuite) TestListCustomers() {
	list, err := s.bank.ListCustomers(s.ctx)

	s.Require().NoError(err)
	s.Require().Len(list, 4)
	s.Equal("777", list[0].ID)
	s.Equal("999", list[3].ID)
}

func (s *BankTestSuite) TestUpdateCustomer() {
	s.Run("rename", func() {
		c, err := s.bank.UpdateCustomer(s.ctx, "777", model.UpdateCustomerRequest{FirstName: strPtr("Stewart")})

		s.Require().NoError(err)
		s.Equal("Stewart Griffin", c.FullName())
	})

	s.Run("clear last name", func() {
		c, err := s.bank.UpdateCustomer(s.ctx, "777", model.UpdateCustomerRequest{LastName: strPtr("")})

		s.Require().NoError(err)
		s.Equal("Stewart", c.FullName())
	})

	s.Run("empty first name", func() {
		_, err := s.bank.UpdateCustomer(s.ctx, "777", model.UpdateCustomerRequest{FirstName: strPtr("  ")})

		s.ErrorIs(err, apperrors.ErrValidation)
		c, err := s.bank.GetCustomer(s.ctx, "777")
		s.Require().NoError(err)
		s.Equal("Stewart", c.FirstName)
	})

	s.Run("unknown customer", func() {
		_, err := s.bank.UpdateCustomer(s.ctx, "000", model.UpdateCustomerRequest{FirstName: strPtr("X")})

		s.ErrorIs(err, apperrors.ErrCustomerNotFound)
	})
}

func (s *BankTestSuite) TestDeleteCustomer_HoldingAnAccount() {
	err := s.bank.DeleteCustomer(s.ctx, "777")

	s.ErrorIs(err, apperrors.ErrConflict)
	_, err = s.bank.GetCustomer(s.ctx, "777")
	s.NoError(err, "customer must remain in the directory")
}

func (s *BankTestSuite) TestDeleteCustomer_WithoutAccounts() {
	s.Require().NoError(s.bank.DeleteCustomer(s.ctx, "999"))

	_, err := s.bank.GetCustomer(s.ctx, "999")
	s.ErrorIs(err, apperrors.ErrCustomerNotFound)
}

func (s *BankTestSuite) TestDeleteCustomer_Unknown() {
	err := s.bank.DeleteCustomer(s.ctx, "000")

	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *BankTestSuite) TestDeleteCustomer_AfterClosingAccount() {
	s.Require().NoError(s.bank.DeleteAccount(s.ctx, "1234"))

	s.NoError(s.bank.DeleteCustomer(s.ctx, "777"))
}

// --- Accounts ---

func (s *BankTestSuite) TestCreateAccount() {
	valid := func() model.CreateAccountRequest {
		return model.CreateAccountRequest{
			AccountNumber:  "9001",
			CustomerID:     "999",
			CurrencyCode:   "cad",
			InitialBalance: amount("2500"),
			MinimumBalance: amount("0"),
		}
	}

	cases := []struct {
		name    string
		mutate  func(r *model.CreateAccountRequest)
		wantErr error
	}{
		{name: "blank number", mutate: func(r *model.CreateAccountRequest) { r.AccountNumber = "" }, wantErr: apperrors.ErrValidation},
		{name: "number already used", mutate: func(r *model.CreateAccountRequest) { r.AccountNumber = "1234" }, wantErr: apperrors.ErrConflict},
		{name: "conflict reported before balance checks", mutate: func(r *model.CreateAccountRequest) {
			r.AccountNumber = "1234"
			r.InitialBalance = decimal.NullDecimal{}
		}, wantErr: apperrors.ErrConflict},
		{name: "missing initial balance", mutate: func(r *model.CreateAccountRequest) { r.InitialBalance = decimal.NullDecimal{} }, wantErr: apperrors.ErrValidation},
		{name: "initial balance below one", mutate: func(r *model.CreateAccountRequest) { r.InitialBalance = amount("0.99") }, wantErr: apperrors.ErrValidation},
		{name: "negative initial balance", mutate: func(r *model.CreateAccountRequest) { r.InitialBalance = amount("-65000") }, wantErr: apperrors.ErrValidation},
		{name: "missing minimum balance", mutate: func(r *model.CreateAccountRequest) { r.MinimumBalance = decimal.NullDecimal{} }, wantErr: apperrors.ErrValidation},
		{name: "negative minimum balance", mutate: func(r *model.CreateAccountRequest) { r.MinimumBalance = amount("-1") }, wantErr: apperrors.ErrValidation},
		{name: "unknown customer", mutate: func(r *model.CreateAccountRequest) { r.CustomerID = "900" }, wantErr: apperrors.ErrCustomerNotFound},
		{name: "unknown currency", mutate: func(r *model.CreateAccountRequest) { r.CurrencyCode = "EUR" }, wantErr: apperrors.ErrCurrencyNotFound},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := valid()
			tc.mutate(&req)

			acc, err := s.bank.CreateAccount(s.ctx, req)

			s.ErrorIs(err, tc.wantErr)
			s.Nil(acc)
		})
	}

	s.Run("success", func() {
		acc, err := s.bank.CreateAccount(s.ctx, valid())

		s.Require().NoError(err)
		s.Equal("9001", acc.Number)
		s.Equal("999", acc.CustomerID)
		s.Equal(cad, acc.DefaultCurrency, "currency is stored with its canonical code")
		s.True(decimal.NewFromInt(2500).Equal(s.balance("9001")))
	})

	s.Run("minimum above initial is accepted at creation", func() {
		req := valid()
		req.AccountNumber = "9002"
		req.InitialBalance = amount("10")
		req.MinimumBalance = amount("50")

		_, err := s.bank.CreateAccount(s.ctx, req)

		s.NoError(err)
	})
}

func (s *BankTestSuite) TestListCustomerAccounts() {
	accounts, err := s.bank.ListCustomerAccounts(s.ctx, "002")
	s.Require().NoError(err)
	s.Len(accounts, 2)

	accounts, err = s.bank.ListCustomerAccounts(s.ctx, "999")
	s.Require().NoError(err)
	s.Empty(accounts)

	_, err = s.bank.ListCustomerAccounts(s.ctx, "000")
	s.ErrorIs(err, apperrors.ErrCustomerNotFound)
}

func (s *BankTestSuite) TestDeleteAccount() {
	s.Require().NoError(s.perform(model.TransactionRequest{
		CustomerID: "777", ToAccountNumber: "1234", CurrencyCode: "CAD", Amount: amount("5"), Type: model.TransactionTypeDeposit,
	}))

	s.Require().NoError(s.bank.DeleteAccount(s.ctx, "1234"))

	_, err := s.bank.GetAccount(s.ctx, "1234")
	s.ErrorIs(err, apperrors.ErrAccountNotFound)
	s.Equal(1, s.ledgerLen(), "ledger entries outlive the account")
	s.ErrorIs(s.bank.DeleteAccount(s.ctx, "1234"), apperrors.ErrAccountNotFound)
}

func (s *BankTestSuite) TestUpdateMinimumBalance() {
	s.Run("negative", func() {
		s.ErrorIs(s.bank.UpdateMinimumBalance(s.ctx, "1234", decimal.NewFromInt(-1)), apperrors.ErrValidation)
	})

	s.Run("above current balance", func() {
		s.ErrorIs(s.bank.UpdateMinimumBalance(s.ctx, "1234", decimal.RequireFromString("100.01")), apperrors.ErrValidation)
	})

	s.Run("checked against the derived balance", func() {
		s.Require().NoError(s.perform(model.TransactionRequest{
			CustomerID: "777", ToAccountNumber: "1234", CurrencyCode: "CAD", Amount: amount("50"), Type: model.TransactionTypeDeposit,
		}))

		s.Require().NoError(s.bank.UpdateMinimumBalance(s.ctx, "1234", decimal.NewFromInt(150)))

		acc, err := s.bank.GetAccount(s.ctx, "1234")
		s.Require().NoError(err)
		s.True(decimal.NewFromInt(150).Equal(acc.MinimumBalance))
	})

	s.Run("unknown account", func() {
		s.ErrorIs(s.bank.UpdateMinimumBalance(s.ctx, "0000", decimal.Zero), apperrors.ErrAccountNotFound)
	})
}

func (s *BankTestSuite) TestUpdateMonthlyFee() {
	s.ErrorIs(s.bank.UpdateMonthlyFee(s.ctx, "1234", decimal.NewFromInt(-1)), apperrors.ErrValidation)
	s.Require().NoError(s.bank.UpdateMonthlyFee(s.ctx, "1234", decimal.RequireFromString("4.95")))

	acc, err := s.bank.GetAccount(s.ctx, "1234")
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("4.95").Equal(acc.MonthlyFee))
}

func (s *BankTestSuite) TestUpdateDefaultCurrency() {
	s.ErrorIs(s.bank.UpdateDefaultCurrency(s.ctx, "1234", ""), apperrors.ErrValidation)
	s.ErrorIs(s.bank.UpdateDefaultCurrency(s.ctx, "1234", "EUR"), apperrors.ErrCurrencyNotFound)
	s.Require().NoError(s.bank.UpdateDefaultCurrency(s.ctx, "1234", "usd"))

	acc, err := s.bank.GetAccount(s.ctx, "1234")
	s.Require().NoError(err)
	s.Equal(usd, acc.DefaultCurrency)
}

func (s *BankTestSuite) TestUpdateAccount_FailingFieldStoresNothing() {
	_, err := s.bank.UpdateAccount(s.ctx, "1234", model.UpdateAccountRequest{
		MonthlyFee:      decimal.NewNullDecimal(decimal.NewFromInt(3)),
		DefaultCurrency: strPtr("EUR"),
	})
	s.ErrorIs(err, apperrors.ErrCurrencyNotFound)

	acc, err := s.bank.GetAccount(s.ctx, "1234")
	s.Require().NoError(err)
	s.True(acc.MonthlyFee.IsZero())
	s.Equal(cad, acc.DefaultCurrency)
}

func (s *BankTestSuite) TestConvert() {
	got, err := s.bank.Convert(s.ctx, "CAD", "MXN", decimal.NewFromInt(3))
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(30).Equal(got))

	_, err = s.bank.Convert(s.ctx, "MXN", "USD", decimal.NewFromInt(3))
	s.ErrorIs(err, apperrors.ErrConversionUnavailable)
}

func (s *BankTestSuite) TestAddCurrency() {
	s.Require().NoError(s.bank.AddCurrency(s.ctx, model.Currency{Code: "EUR", Details: "Euro"}))
	s.ErrorIs(s.bank.AddCurrency(s.ctx, model.Currency{Code: "eur"}), apperrors.ErrConflict)
	s.ErrorIs(s.bank.AddCurrency(s.ctx, model.Currency{Code: " "}), apperrors.ErrValidation)

	list, err := s.bank.ListCurrencies(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 4)
}
