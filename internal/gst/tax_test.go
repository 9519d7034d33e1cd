package gst

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gstinKarnatakaA  = "29ABCDE1234F1ZW"
	gstinKarnatakaB  = "29AAACB2230M1ZS"
	gstinMaharashtra = "27ABCDE1234F1Z0"
	gstinDelhi       = "07AABCU9603R1ZP"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateTaxIntraState(t *testing.T) {
	split, err := CalculateTax(dec("1000"), gstinKarnatakaA, gstinKarnatakaB, dec("18"))
	require.NoError(t, err)

	assert.Equal(t, SplitIntraState, split.Type)
	assert.True(t, split.CGST.Equal(dec("90")), "cgst = %s", split.CGST)
	assert.True(t, split.SGST.Equal(dec("90")), "sgst = %s", split.SGST)
	assert.True(t, split.IGST.IsZero())
	assert.True(t, split.TotalTax.Equal(dec("180")))
}

func TestCalculateTaxInterState(t *testing.T) {
	split, err := CalculateTax(dec("1000"), gstinMaharashtra, gstinKarnatakaB, dec("18"))
	require.NoError(t, err)

	assert.Equal(t, SplitInterState, split.Type)
	assert.True(t, split.CGST.IsZero())
	assert.True(t, split.SGST.IsZero())
	assert.True(t, split.IGST.Equal(dec("180")), "igst = %s", split.IGST)
	assert.True(t, split.TotalTax.Equal(dec("180")))
}

func TestCalculateTaxComponentsSumToTotal(t *testing.T) {
	cases := []struct {
		amount string
		rate   string
		buyer  string
		seller string
	}{
		{"1000", "18", gstinKarnatakaA, gstinKarnatakaB},
		{"1000", "18", gstinMaharashtra, gstinKarnatakaB},
		{"102.55", "18", gstinKarnatakaA, gstinKarnatakaB},
		{"102.55", "28", gstinDelhi, gstinKarnatakaB},
		{"0.01", "5", gstinKarnatakaA, gstinKarnatakaB},
		{"99999999.99", "12", gstinDelhi, gstinMaharashtra},
		{"750", "0", gstinKarnatakaA, gstinKarnatakaB},
	}
	for _, tc := range cases {
		split, err := CalculateTax(dec(tc.amount), tc.buyer, tc.seller, dec(tc.rate))
		require.NoError(t, err)

		expected := dec(tc.amount).Mul(dec(tc.rate)).Shift(-2)
		sum := split.CGST.Add(split.SGST).Add(split.IGST)
		assert.True(t, sum.Equal(expected), "%s @ %s%%: components %s want %s", tc.amount, tc.rate, sum, expected)
		assert.True(t, split.TotalTax.Equal(expected), "%s @ %s%%: total %s want %s", tc.amount, tc.rate, split.TotalTax, expected)
		if split.Type == SplitIntraState {
			assert.True(t, split.CGST.Equal(split.SGST))
			assert.True(t, split.IGST.IsZero())
		} else {
			assert.True(t, split.CGST.IsZero())
			assert.True(t, split.SGST.IsZero())
		}
	}
}

func TestCalculateTaxOddPaise(t *testing.T) {
	// 101 @ 18% = 18.18, halves of 9.09 exactly.
	split, err := CalculateTax(dec("101"), gstinKarnatakaA, gstinKarnatakaB, dec("18"))
	require.NoError(t, err)
	assert.True(t, split.CGST.Equal(dec("9.09")), "cgst = %s", split.CGST)
	assert.True(t, split.SGST.Equal(dec("9.09")))

	// 33.33 @ 5% halves to 0.83325 without loss.
	split, err = CalculateTax(dec("33.33"), gstinKarnatakaA, gstinKarnatakaB, dec("5"))
	require.NoError(t, err)
	assert.True(t, split.CGST.Equal(dec("0.83325")), "cgst = %s", split.CGST)
	assert.True(t, split.TotalTax.Equal(dec("1.6665")))
}

func TestCalculateTaxRejectsBadInput(t *testing.T) {
	_, err := CalculateTax(dec("0"), gstinKarnatakaA, gstinKarnatakaB, dec("18"))
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = CalculateTax(dec("-5"), gstinKarnatakaA, gstinKarnatakaB, dec("18"))
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = CalculateTax(dec("100"), gstinKarnatakaA, gstinKarnatakaB, dec("101"))
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = CalculateTax(dec("100"), gstinKarnatakaA, gstinKarnatakaB, dec("-1"))
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = CalculateTax(dec("100"), "29SHORT", gstinKarnatakaB, dec("18"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidGSTIN)
	assert.Contains(t, err.Error(), "buyer")

	_, err = CalculateTax(dec("100"), gstinKarnatakaA, "00ABCDE1234F1ZW", dec("18"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seller")
}
