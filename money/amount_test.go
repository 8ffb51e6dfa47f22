package money_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fezbot3000/Interestfree-tracker/money"
)

func TestSum(t *testing.T) {
	total := money.Sum(money.MustParse("0.10"), money.MustParse("0.20"), money.MustParse("1000"))
	assert.Equal(t, "1000.30", total.String())
	assert.True(t, money.Sum().IsZero())
}

func TestUnmarshalJSON_NumberOrString(t *testing.T) {
	var payload struct {
		A money.Amount `json:"a"`
		B money.Amount `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12.5, "b": "7.25"}`), &payload))

	assert.Equal(t, "12.50", payload.A.String())
	assert.Equal(t, "7.25", payload.B.String())
}

func TestMarshalJSON_BareNumber(t *testing.T) {
	out, err := json.Marshal(map[string]money.Amount{"amount": money.MustParse("1000")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 1000}`, string(out))
}

func TestParse_Rejects(t *testing.T) {
	_, err := money.Parse("ten dollars")
	assert.Error(t, err)
}

func TestExact_KeepsAllDigits(t *testing.T) {
	a := money.MustParse("12.345")
	assert.Equal(t, "12.35", a.String())
	assert.Equal(t, "12.345", a.Exact())
}
