package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCentsFromDecimal(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "10.50", want: 1050},
		{in: "0.01", want: 1},
		{in: "30", want: 3000},
		{in: "1234567.89", want: 123456789},
		{in: "10.505", wantErr: true},
		{in: "0", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "-0.01", wantErr: true},
	}
	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.in)
		require.NoError(t, err)
		got, err := CentsFromDecimal(d)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidAmount, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestDecimalFromCents(t *testing.T) {
	assert.Equal(t, "20.5", DecimalFromCents(2050).String())
	assert.Equal(t, "0.01", DecimalFromCents(1).String())
	assert.Equal(t, "0", DecimalFromCents(0).String())
	assert.Equal(t, "-3", DecimalFromCents(-300).String())
}
