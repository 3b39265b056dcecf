package portfolio

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/payoff/internal/model"
)

const sampleTOML = `
strategy = "snowball"
monthly_budget = 900

[[debt]]
id = "visa"
name = "Visa"
balance = 4200.499
apr = 22.9
minimum_payment = 120
next_payment_date = 2025-02-15T00:00:00Z
category = "card"

[[debt]]
id = "car"
balance = "11250.00"
apr = "6.4"
minimum_payment = "310"

[[funding]]
date = 2025-04-01T00:00:00Z
amount = 1500
note = "tax refund"
`

func TestDecodeTOML(t *testing.T) {
	p, err := Decode(strings.NewReader(sampleTOML), TOML)
	require.NoError(t, err)

	assert.Equal(t, "snowball", p.Strategy)
	require.NotNil(t, p.MonthlyBudget)
	assert.True(t, p.MonthlyBudget.Equal(decimal.NewFromInt(900)))

	require.Len(t, p.Debts, 2)
	visa, ok := p.Debt("visa")
	require.True(t, ok)
	assert.Equal(t, "Visa", visa.Label())
	assert.Equal(t, "4200.5", visa.Balance.String())
	assert.True(t, visa.APR.Equal(decimal.RequireFromString("22.9")))
	assert.Equal(t, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), visa.NextPaymentDate.UTC())

	car, _ := p.Debt("car")
	assert.Equal(t, "car", car.Label())
	assert.True(t, car.MinimumPayment.Equal(decimal.NewFromInt(310)))

	require.Len(t, p.Fundings, 1)
	assert.Equal(t, "tax refund", p.Fundings[0].Note)
	assert.True(t, p.TotalBalance().Equal(decimal.RequireFromString("15450.5")))
}

func TestDecodeJSON(t *testing.T) {
	body := `{
  "monthly_budget": "500.00",
  "debts": [
    {"id": "a", "balance": 1000, "apr": 12, "minimum_payment": 50},
    {"id": "b", "balance": "250.25", "apr": "0", "minimum_payment": "25"}
  ],
  "fundings": [{"date": "2025-06-01T00:00:00Z", "amount": 200, "applied": true}],
  "on_time_payments": 10,
  "total_payments": 12
}`
	p, err := Decode(strings.NewReader(body), JSON)
	require.NoError(t, err)
	require.Len(t, p.Debts, 2)
	assert.True(t, p.Fundings[0].Applied)
	assert.Equal(t, 10, p.OnTimePayments)

	_, err = Decode(strings.NewReader(`{"debts": [], "bogus": 1}`), JSON)
	assert.Error(t, err)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	p := Portfolio{
		Debts: []model.Debt{
			{ID: "", Balance: decimal.NewFromInt(10)},
			{ID: "x", Balance: decimal.NewFromInt(-5), APR: decimal.NewFromInt(-1)},
			{ID: "x", APR: decimal.NewFromInt(250), MinimumPayment: decimal.NewFromInt(-3)},
		},
		Fundings: []model.OneTimeFunding{{Amount: decimal.Zero}},
	}

	err := p.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	want := []string{
		"debt #1: missing id",
		`debt "x": negative balance -5`,
		`debt "x": negative apr -1`,
		`debt "x": duplicate id (also debt #2)`,
		`debt "x": negative minimum payment -3`,
		"funding #1: missing date",
		"funding #1: amount must be positive, got 0",
	}
	assert.Equal(t, want, verr.Problems)
	assert.Contains(t, err.Error(), "7 problems")
}

func TestValidateAllowsHighAPR(t *testing.T) {
	p := Portfolio{Debts: []model.Debt{
		{ID: "payday", Balance: decimal.NewFromInt(400), APR: decimal.NewFromInt(390), MinimumPayment: decimal.NewFromInt(150)},
	}}
	assert.NoError(t, p.Validate())
}

func TestValidateAllowsNonAmortizingMinimum(t *testing.T) {
	p := Portfolio{Debts: []model.Debt{{
		ID:             "loan",
		Balance:        decimal.NewFromInt(10000),
		APR:            decimal.NewFromInt(24),
		MinimumPayment: decimal.NewFromInt(100),
	}}}
	assert.NoError(t, p.Validate())
}

func TestValidateEmpty(t *testing.T) {
	err := Portfolio{}.Validate()
	require.Error(t, err)
	assert.Equal(t, "invalid portfolio: no debts", err.Error())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	budget := decimal.RequireFromString("750")
	p := Portfolio{
		Strategy:      "avalanche",
		MonthlyBudget: &budget,
		Debts: []model.Debt{
			{ID: "a", Balance: decimal.RequireFromString("1999.99"), APR: decimal.RequireFromString("17.24"), MinimumPayment: decimal.NewFromInt(60)},
		},
	}

	for _, name := range []string{"p.toml", "p.json"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, Save(path, p))

		got, err := Load(path)
		require.NoError(t, err, name)
		require.Len(t, got.Debts, 1)
		assert.True(t, got.Debts[0].Balance.Equal(p.Debts[0].Balance), name)
		assert.True(t, got.Debts[0].APR.Equal(p.Debts[0].APR), name)
		assert.True(t, got.MonthlyBudget.Equal(budget), name)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloneIsIndependent(t *testing.T) {
	p, err := Decode(strings.NewReader(sampleTOML), TOML)
	require.NoError(t, err)

	c := p.Clone()
	c.Debts[0].Balance = decimal.Zero
	c.Fundings = append(c.Fundings, model.OneTimeFunding{})

	assert.False(t, p.Debts[0].Balance.IsZero())
	assert.Len(t, p.Fundings, 1)
}
