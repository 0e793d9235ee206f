package textops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("-1227.75"))
	assert.True(t, IsNumeric("42"))
	assert.False(t, IsNumeric("-1,227.75"))
	assert.True(t, IsNumeric(CorrectNumericString("-1,227.75", false)))
	assert.True(t, IsNumeric(CorrectNumericString("-1.227,75", true)))
	assert.False(t, IsNumeric("$19.99 each"))
	assert.False(t, IsNumeric(""))
	assert.False(t, IsNumeric("-"))
	assert.False(t, IsNumeric("12."))
	assert.False(t, IsNumeric("1.2.3"))
	assert.False(t, IsNumeric("1-2"))
}

func TestCorrectNumericString(t *testing.T) {
	assert.Equal(t, "-1227.75", CorrectNumericString("-1,227.75", false))
	assert.Equal(t, "-1227.75", CorrectNumericString("-1.227,75", true))
	assert.Equal(t, "1500000", CorrectNumericString("1.500.000", false))
	assert.Equal(t, "Ho pagato 15.00€ per l'ingresso.",
		CorrectNumericString("Ho pagato 15,00€ per l'ingresso.", true))
}

func TestNumericExtraction(t *testing.T) {
	s := "I spent £9999.99 on 2 motorbikes at the age of 72."

	assert.Equal(t, "9999.99 2 72", StripNonNumeric(s))
	assert.Equal(t, []float64{9999.99, 2, 72}, ToNumbers[float64](s))
	assert.Equal(t, []int{2, 72}, ToNumbers[int](s))

	f, ok := FirstNumber[float32](s)
	require.True(t, ok)
	assert.Equal(t, float32(9999.99), f)

	f, ok = FirstNumber[float32]("I'd like 2.5lb of flour please")
	require.True(t, ok)
	assert.Equal(t, float32(2.5), f)

	f, ok = FirstNumber[float32]("Il conto è del 1.999,50€. Come vuole pagare?")
	require.True(t, ok)
	assert.Equal(t, float32(1999.5), f)

	u, ok := FirstNumberEuro[uint32]("Il furgone pesa 1.500kg")
	require.True(t, ok)
	assert.Equal(t, uint32(1500), u)

	_, ok = FirstNumber[int]("no numbers here")
	assert.False(t, ok)
}

func TestNumericStringsEuro(t *testing.T) {
	s := "Ho pagato 12,50€ per 1.500 grammi di sale."

	assert.Equal(t, []string{"12.50", "1500"}, NumericStringsEuro(s))
	assert.Equal(t, []float64{12.5, 1500}, ToNumbersEuro[float64](s))
}

func TestNumericStrings_NegativeAndSeparators(t *testing.T) {
	assert.Equal(t, []string{"-4", "10"}, NumericStrings("from -4 to 10"))
	assert.Equal(t, []string{"1234567.5"}, NumericStrings("total 1,234,567.5 units"))
	// A trailing separator is not part of the number.
	assert.Equal(t, []string{"3"}, NumericStrings("chapter 3."))
	assert.Empty(t, NumericStrings(""))
}

func TestSplitToNumbers(t *testing.T) {
	assert.Equal(t, []int{12, 7, 2024}, SplitToNumbers[int]("12/7/2024", "/"))
	assert.Equal(t, []float64{1.5, 3}, SplitToNumbers[float64]("a1.5; b; c3", ";"))
}

func TestParseNumber(t *testing.T) {
	n, err := ParseNumber[int8]("127")
	require.NoError(t, err)
	assert.Equal(t, int8(127), n)

	_, err = ParseNumber[int8]("128")
	assert.Error(t, err)

	_, err = ParseNumber[uint]("-1")
	assert.Error(t, err)
}
