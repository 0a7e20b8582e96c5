package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"0", 0, false},
		{"1", 100_000_000, false},
		{"5.00000000", 500_000_000, false},
		{"0.1", 10_000_000, false},
		{"0.00000001", 1, false},
		{"0.00005460", 5460, false},
		{"123456.78901234", 12_345_678_901_234, false},
		{"0.000000001", 0, true},
		{"-1", 0, true},
		{"", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSignedAmount(t *testing.T) {
	got, err := ParseSignedAmount("-0.5")
	require.NoError(t, err)
	assert.Equal(t, int64(-50_000_000), got)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00000000", FormatAmount(0))
	assert.Equal(t, "0.10000000", FormatAmount(10_000_000))
	assert.Equal(t, "1.90000000", FormatAmount(190_000_000))
	assert.Equal(t, "9.10000000", FormatAmount(910_000_000))
	assert.Equal(t, "-0.50000000", FormatSignedAmount(-50_000_000))
	assert.Equal(t, "8.00000000", FormatSignedAmount(800_000_000))
}
