package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundHalfUp(t *testing.T) {
	cases := map[string]string{
		"96.005":  "96.01",
		"96.004":  "96.00",
		"0.125":   "0.13",
		"1056":    "1056.00",
		"132.999": "133.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, MustParse(in).Round().String(), in)
	}
}

func TestArithmeticKeepsPrecisionUntilRound(t *testing.T) {
	subtotal := MustParse("333.33")
	tax := subtotal.MulRate(decimal.RequireFromString("0.11"))

	assert.Equal(t, "36.6663", tax.Decimal().String())
	assert.Equal(t, "36.67", tax.Round().String())
	assert.Equal(t, "370.00", subtotal.Add(tax.Round()).Round().String())
}

func TestTimesAndSum(t *testing.T) {
	unit := MustParse("480.00").Add(MustParse("80.00"))
	total := unit.Times(3)

	assert.Equal(t, "1680.00", total.String())
	assert.True(t, Sum(MustParse("1.10"), MustParse("2.20"), MustParse("3.30")).Equal(MustParse("6.6")))
	assert.True(t, Sum().IsZero())
}

func TestJSONRoundTrip(t *testing.T) {
	type body struct {
		Total Money `json:"total"`
	}
	data, err := json.Marshal(body{Total: MustParse("1056")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":"1056.00"}`, string(data))

	var out body
	require.NoError(t, json.Unmarshal([]byte(`{"total":12.5}`), &out))
	assert.Equal(t, "12.50", out.Total.String())
}

func TestScanValue(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan(96.3))
	assert.Equal(t, "96.30", m.String())

	require.NoError(t, m.Scan(int64(480)))
	assert.Equal(t, "480.00", m.String())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	v, err := MustParse("12.345").Value()
	require.NoError(t, err)
	assert.Equal(t, "12.35", v)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("twelve")
	assert.Error(t, err)
}
