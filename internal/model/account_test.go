package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountType(t *testing.T) {
	for _, at := range AccountTypes {
		got, err := ParseAccountType(at.String())
		require.NoError(t, err)
		assert.Equal(t, at, got)
	}

	got, err := ParseAccountType("")
	require.NoError(t, err)
	assert.Equal(t, TypeNone, got)

	got, err = ParseAccountType(" Revenue ")
	require.NoError(t, err)
	assert.Equal(t, TypeRevenue, got)

	_, err = ParseAccountType("bogus")
	assert.Error(t, err)
}

func TestAccountTypeValid(t *testing.T) {
	assert.True(t, TypeVolunteering.Valid())
	assert.False(t, AccountType(42).Valid())
	assert.Equal(t, "AccountType(42)", AccountType(42).String())

	_, err := AccountType(-1).MarshalText()
	assert.Error(t, err)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "512A", NormalizeCode(" 512a "))
}
