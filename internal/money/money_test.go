package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int64
		wantErr error
	}{
		{name: "whole units", in: "150", want: 15000},
		{name: "two decimals", in: "12.50", want: 1250},
		{name: "one decimal", in: "0.5", want: 50},
		{name: "surrounding space", in: " 30.00 ", want: 3000},
		{name: "negative passes through", in: "-1.25", want: -125},
		{name: "too precise", in: "1.005", wantErr: ErrTooPrecise},
		{name: "trailing zeros beyond scale", in: "1.2500", want: 125},
		{name: "overflow", in: "100000000000000000000", wantErr: ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount_NotANumber(t *testing.T) {
	_, err := ParseAmount("ten")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12.50", Format(1250))
	assert.Equal(t, "0.05", Format(5))
	assert.Equal(t, "0.00", Format(0))
	assert.Equal(t, "1000000.00", Format(100000000))
}

func TestToDecimal(t *testing.T) {
	assert.True(t, decimal.RequireFromString("150.00").Equal(ToDecimal(15000)))
}
