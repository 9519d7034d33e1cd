package gst

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGSTINAccepted(t *testing.T) {
	cases := []struct {
		gstin     string
		stateCode string
		stateName string
		pan       string
	}{
		{"27AAPFU0939F1ZV", "27", "Maharashtra", "AAPFU0939F"},
		{"29ABCDE1234F1ZW", "29", "Karnataka", "ABCDE1234F"},
		{"07AABCU9603R1ZP", "07", "Delhi", "AABCU9603R"},
		{"33AAGCC7144L1ZJ", "33", "Tamil Nadu", "AAGCC7144L"},
		{"06BZAHM6385P6Z0", "06", "Haryana", "BZAHM6385P"},
	}
	for _, tc := range cases {
		v := ValidateGSTIN(tc.gstin)
		require.True(t, v.Valid, "expected %s to be valid: %s", tc.gstin, v.Error)
		assert.Equal(t, tc.stateCode, v.StateCode)
		assert.Equal(t, tc.stateName, v.StateName)
		assert.Equal(t, tc.pan, v.PAN)
		assert.Empty(t, v.Error)
	}
}

func TestValidateGSTINNormalisesInput(t *testing.T) {
	v := ValidateGSTIN("  29abcde1234f1zw ")
	require.True(t, v.Valid, v.Error)
	assert.Equal(t, "29ABCDE1234F1ZW", v.GSTIN)
}

func TestValidateGSTINRejected(t *testing.T) {
	cases := []struct {
		name   string
		gstin  string
		reason string
	}{
		{"empty", "", "required"},
		{"too short", "29ABCDE1234F1", "15 characters"},
		{"too long", "29ABCDE1234F1ZWX", "15 characters"},
		{"bad character class", "29ABC0E1234F1ZW", "format"},
		{"lowercase pan digits", "29ABCDEA234F1ZW", "format"},
		{"missing z marker", "29ABCDE1234F1AW", "format"},
		{"zero entity code", "29ABCDE1234F0ZW", "format"},
		{"state code 00", "00ABCDE1234F1ZW", "unknown state code"},
		{"state code 99", "99ABCDE1234F1ZW", "unknown state code"},
		{"check digit mismatch", "29ABCDE1234F1ZX", "check digit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := ValidateGSTIN(tc.gstin)
			require.False(t, v.Valid)
			assert.Contains(t, v.Error, tc.reason)
		})
	}
}

func TestStateCode(t *testing.T) {
	code, err := StateCode("27AAPFU0939F1ZV")
	require.NoError(t, err)
	assert.Equal(t, "27", code)

	_, err = StateCode("27AAPFU0939F1ZZ")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid gstin"))
}
