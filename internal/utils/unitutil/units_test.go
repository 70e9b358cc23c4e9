package unitutil

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "whole", input: "1", want: "1000000000000000000"},
		{name: "fraction", input: "1.5", want: "1500000000000000000"},
		{name: "padded", input: "  0.25 ", want: "250000000000000000"},
		{name: "smallest unit", input: "0.000000000000000001", want: "1"},
		{name: "full precision", input: "2.000000000000000000", want: "2000000000000000000"},
		{name: "zero", input: "0", want: "0"},
		{name: "zero fraction", input: "0.0", want: "0"},
		{name: "trailing zeros past precision", input: "2.0000000000000000000", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "negative zero fraction", input: "-0.5", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "too precise", input: "0.0000000000000000001", wantErr: true},
		{name: "exponent", input: "1e3", wantErr: true},
		{name: "negative exponent", input: "1E-2", wantErr: true},
		{name: "huge exponent", input: "1e300000000", wantErr: true},
		{name: "leading dot", input: ".5", want: "500000000000000000"},
		{name: "trailing dot", input: "1.", want: "1000000000000000000"},
		{name: "negative zero", input: "-0", want: "0"},
		{name: "lone dot", input: ".", wantErr: true},
		{name: "double dot", input: "1.2.3", wantErr: true},
		{name: "plus sign", input: "+1", wantErr: true},
		{name: "hex", input: "0x10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEther(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "0.0", FormatEther(nil))
	assert.Equal(t, "0.0", FormatEther(big.NewInt(0)))
	assert.Equal(t, "1.0", FormatEther(big.NewInt(1e18)))
	assert.Equal(t, "1.5", FormatEther(big.NewInt(15e17)))
	assert.Equal(t, "0.000000000000000001", FormatEther(big.NewInt(1)))
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"1.0", "42.125", "0.000001"} {
		wei, err := ParseEther(s)
		require.NoError(t, err)
		assert.Equal(t, s, FormatEther(wei))
	}
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "12.34", FormatUnits(big.NewInt(1234), 2))
}
