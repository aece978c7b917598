package amount

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/compta/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"142,02", 14202},
		{"142", 14200},
		{"142.02", 14202},
		{"142,2", 14220},
		{" 7.5 ", 750},
		{"0", 0},
		{"0,01", 1},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"abc", "", "-5", "1,234", "1.2.3", "12,", ",5", "1e3", "99999999999999999999"} {
		_, err := Parse(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, errors.Is(err, model.ErrValidation), "input %q", input)
	}
}

func TestParse_Limits(t *testing.T) {
	got, err := Parse("10000000000000")
	require.NoError(t, err)
	assert.Equal(t, MaxMinor, got)

	for _, input := range []string{"10000000000000,01", "92233720368547758,07", "9223372036854775807", "1000000000000000000000"} {
		_, err := Parse(input)
		assert.ErrorIs(t, err, model.ErrValidation, "input %q", input)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "142.02", String(14202))
	assert.Equal(t, "-100.00", String(-10000))
	assert.Equal(t, "0.05", String(5))
	assert.True(t, Decimal(14202).Equal(Decimal(14202)))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "142.02", Format(14202, ""))

	out := Format(14202, "EUR")
	assert.Contains(t, out, "142")
	assert.Contains(t, out, "02")
}
