package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoneyFromString("123.45", CurrencyUSD)
	require.NoError(t, err)
	assert.Equal(t, "123.45 USD", m.String())

	_, err = NewMoney(decimal.NewFromInt(1), Currency("DOLLARS"))
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	_, err = NewMoneyFromString("not-a-number", CurrencyUSD)
	assert.Error(t, err)
}

func TestMoneyArithmetic(t *testing.T) {
	a, _ := NewMoneyFromString("100.00", CurrencyUSD)
	b, _ := NewMoneyFromString("36.00", CurrencyUSD)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "136.00 USD", sum.String())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "64.00 USD", diff.String())

	eur := Zero(CurrencyEUR)
	_, err = a.Add(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
	_, err = a.Subtract(eur)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMoneyPercent(t *testing.T) {
	// 2 x 100.00 with 18% tax is the canonical invoice line: 236.00
	unit, _ := NewMoneyFromString("100.00", CurrencyUSD)
	lineTotal := unit.Multiply(decimal.NewFromInt(2))
	tax := lineTotal.Percent(decimal.NewFromInt(18)).RoundCents()
	total := lineTotal.MustAdd(tax)

	assert.Equal(t, "200.00 USD", lineTotal.String())
	assert.Equal(t, "36.00 USD", tax.String())
	assert.Equal(t, "236.00 USD", total.String())
}

func TestMoneyRoundCents(t *testing.T) {
	// half-up at the second decimal place
	m, _ := NewMoneyFromString("10.005", CurrencyUSD)
	assert.Equal(t, "10.01", m.RoundCents().Amount().StringFixed(2))

	m, _ = NewMoneyFromString("10.004", CurrencyUSD)
	assert.Equal(t, "10.00", m.RoundCents().Amount().StringFixed(2))
}

func TestMoneyCompare(t *testing.T) {
	a, _ := NewMoneyFromString("5", CurrencyUSD)
	b, _ := NewMoneyFromString("7", CurrencyUSD)

	lt, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := a.GreaterThan(b)
	require.NoError(t, err)
	assert.False(t, gt)

	_, err = a.Compare(Zero(CurrencyGBP))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m, _ := NewMoneyFromString("99.90", CurrencyEUR)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"99.9","currency":"EUR"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, m.Equals(back))
}

func TestMoneyDivide(t *testing.T) {
	m, _ := NewMoneyFromString("10", CurrencyUSD)
	half, err := m.Divide(decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.Equal(t, "5.00 USD", half.String())

	_, err = m.Divide(decimal.Zero)
	assert.ErrorIs(t, err, ErrDivideByZero)
}
