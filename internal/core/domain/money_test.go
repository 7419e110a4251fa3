package domain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/metasettings/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
		want    string
	}{
		{name: "integer", amount: "10", want: "10"},
		{name: "decimal", amount: "10.25", want: "10.25"},
		{name: "negative", amount: "-3.5", want: "-3.5"},
		{name: "surrounding spaces", amount: " 7.10 ", want: "7.1"},
		{name: "not a number", amount: "ten", wantErr: true},
		{name: "empty", amount: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := domain.NewMoney(tt.amount, "USD")
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrMalformedAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Amount().String())
			assert.Equal(t, "USD", m.Currency())
		})
	}
}

func TestMoney_AddMismatchedCurrencies(t *testing.T) {
	_, err := domain.MustMoney("10", "USD").Add(domain.MustMoney("5", "EUR"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCurrencyMismatch)

	var mismatch *domain.CurrencyMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "USD", mismatch.Left)
	assert.Equal(t, "EUR", mismatch.Right)
	assert.Equal(t, "+", mismatch.Op)
	assert.Contains(t, err.Error(), "USD")
	assert.Contains(t, err.Error(), "EUR")
	assert.Contains(t, err.Error(), "+")
}

func TestMoney_BinaryOperatorsRequireSameCurrency(t *testing.T) {
	usd := domain.MustMoney("10", "USD")
	eur := domain.MustMoney("5", "EUR")

	ops := []struct {
		op string
		fn func() error
	}{
		{"-", func() error { _, err := usd.Sub(eur); return err }},
		{"<=>", func() error { _, err := usd.Cmp(eur); return err }},
		{"<", func() error { _, err := usd.LessThan(eur); return err }},
		{"<=", func() error { _, err := usd.LessThanOrEqual(eur); return err }},
		{">", func() error { _, err := usd.GreaterThan(eur); return err }},
		{">=", func() error { _, err := usd.GreaterThanOrEqual(eur); return err }},
		{"/", func() error { _, err := usd.DivMoney(eur); return err }},
		{"//", func() error { _, err := usd.FloorDivMoney(eur); return err }},
	}

	for _, tt := range ops {
		t.Run(tt.op, func(t *testing.T) {
			err := tt.fn()
			var mismatch *domain.CurrencyMismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, tt.op, mismatch.Op)
		})
	}
}

func TestMoney_Equal(t *testing.T) {
	assert.True(t, domain.MustMoney("10.0", "USD").Equal(domain.MustMoney("10", "USD")))
	assert.False(t, domain.MustMoney("10", "USD").Equal(domain.MustMoney("10", "EUR")))
	assert.False(t, domain.MustMoney("10", "USD").Equal(domain.MustMoney("11", "USD")))
}

func TestMoney_Arithmetic(t *testing.T) {
	a := domain.MustMoney("10.50", "EUR")
	b := domain.MustMoney("4.25", "EUR")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "14.75", sum.Amount().String())
	assert.Equal(t, "EUR", sum.Currency())

	diff, err := b.Sub(a)
	require.NoError(t, err)
	assert.Equal(t, "-6.25", diff.Amount().String())

	less, err := b.LessThan(a)
	require.NoError(t, err)
	assert.True(t, less)

	cmp, err := a.Cmp(a)
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	ratio, err := domain.MustMoney("9", "EUR").DivMoney(domain.MustMoney("4", "EUR"))
	require.NoError(t, err)
	assert.Equal(t, "2.25", ratio.String())

	floor, err := domain.MustMoney("9", "EUR").FloorDivMoney(domain.MustMoney("4", "EUR"))
	require.NoError(t, err)
	assert.Equal(t, "2", floor.String())

	assert.Equal(t, "31.5", a.Mul(decimal.NewFromInt(3)).Amount().String())
	assert.Equal(t, "-10.5", a.Neg().Amount().String())
	assert.Equal(t, "10.5", a.Neg().Abs().Amount().String())
	squared, err := domain.MustMoney("10", "EUR").Pow(decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.Equal(t, "100", squared.Amount().String())

	mod, err := domain.MustMoney("10", "EUR").Mod(decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "1", mod.Amount().String())

	half, err := domain.MustMoney("7", "EUR").FloorDiv(decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.Equal(t, "3", half.Amount().String())

	// operations never mutate their receiver
	assert.Equal(t, "10.5", a.Amount().String())
}

func TestMoney_DivisionByZero(t *testing.T) {
	m := domain.MustMoney("10", "USD")

	_, err := m.Div(decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrDivisionByZero)

	_, err = m.FloorDiv(decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrDivisionByZero)

	_, err = m.Mod(decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrDivisionByZero)

	_, err = m.DivMoney(domain.MustMoney("0", "USD"))
	assert.ErrorIs(t, err, domain.ErrDivisionByZero)

	_, err = m.FloorDivMoney(domain.MustMoney("0.00", "USD"))
	assert.ErrorIs(t, err, domain.ErrDivisionByZero)
}

func TestMoney_UndefinedPower(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		exp    string
	}{
		{"zero to negative power", "0", "-1"},
		{"negative to fractional power", "-8", "0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.MustMoney(tt.amount, "USD").Pow(decimal.RequireFromString(tt.exp))
			assert.ErrorIs(t, err, domain.ErrUndefinedPower)
		})
	}

	root, err := domain.MustMoney("4", "USD").Pow(decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	assert.True(t, root.Amount().Sub(decimal.NewFromInt(2)).Abs().LessThan(decimal.RequireFromString("0.000001")), "got %s", root)
}

func TestMoney_FloorDivModIdentity(t *testing.T) {
	tests := []struct {
		amount, divisor, quotient, remainder string
	}{
		{"7", "2", "3", "1"},
		{"-7", "2", "-4", "1"},
		{"7", "-2", "-4", "-1"},
		{"-7", "-2", "3", "-1"},
		{"-6", "2", "-3", "0"},
		{"-7.5", "2", "-4", "0.5"},
	}
	for _, tt := range tests {
		t.Run(tt.amount+" by "+tt.divisor, func(t *testing.T) {
			m := domain.MustMoney(tt.amount, "USD")
			d := decimal.RequireFromString(tt.divisor)

			q, err := m.FloorDiv(d)
			require.NoError(t, err)
			r, err := m.Mod(d)
			require.NoError(t, err)

			assert.Equal(t, tt.quotient, q.Amount().String())
			assert.Equal(t, tt.remainder, r.Amount().String())
			assert.True(t, q.Amount().Mul(d).Add(r.Amount()).Equal(m.Amount()))
		})
	}
}

func TestMoney_IsZero(t *testing.T) {
	assert.True(t, domain.MustMoney("0", "USD").IsZero())
	assert.True(t, domain.MustMoney("0.000", "").IsZero())
	assert.False(t, domain.MustMoney("0.01", "USD").IsZero())
}

func TestMoney_StringAndFormat(t *testing.T) {
	assert.Equal(t, "12.5 USD", domain.MustMoney("12.5", "USD").String())
	assert.Equal(t, "12.5", domain.MustMoney("12.5", "").String())
	assert.Equal(t, "12.35", domain.MustMoney("12.3456", "USD").Format(2))
	assert.Equal(t, "12", domain.MustMoney("12.3456", "JPY").Format(0))
}

type stubConverter struct {
	calls int
	rate  decimal.Decimal
	err   error
}

func (s *stubConverter) ConvertAmount(_ context.Context, _, _ string, amount decimal.Decimal, opts domain.ConvertOptions) (decimal.Decimal, error) {
	s.calls++
	if s.err != nil {
		return decimal.Zero, s.err
	}
	out := amount.Mul(s.rate)
	if opts.Ceil {
		out = out.Ceil()
	}
	return out, nil
}

func TestMoney_To(t *testing.T) {
	ctx := context.Background()
	conv := &stubConverter{rate: decimal.RequireFromString("0.5")}
	m := domain.MustMoney("15", "USD")

	same, err := m.To(ctx, conv, "USD", false)
	require.NoError(t, err)
	assert.True(t, same.Equal(m))

	unset, err := m.To(ctx, conv, "", true)
	require.NoError(t, err)
	assert.True(t, unset.Equal(m))
	assert.Equal(t, 0, conv.calls)

	eur, err := m.To(ctx, conv, "EUR", false)
	require.NoError(t, err)
	assert.Equal(t, "EUR", eur.Currency())
	assert.Equal(t, "7.5", eur.Amount().String())

	ceiled, err := m.To(ctx, conv, "EUR", true)
	require.NoError(t, err)
	assert.Equal(t, "8", ceiled.Amount().String())

	conv.err = errors.New("boom")
	_, err = m.To(ctx, conv, "GBP", false)
	assert.ErrorContains(t, err, "boom")
}
