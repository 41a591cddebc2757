package subgraph

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestOrderTokens(t *testing.T) {

	low := common.HexToAddress("0x1111111111111111111111111111111111111111")
	high := common.HexToAddress("0x9999999999999999999999999999999999999999")

	token0, token1, flipped := OrderTokens(low, high)
	assert.Equal(t, low, token0)
	assert.Equal(t, high, token1)
	assert.False(t, flipped)

	token0, token1, flipped = OrderTokens(high, low)
	assert.Equal(t, low, token0)
	assert.Equal(t, high, token1)
	assert.True(t, flipped)
}

func TestReservesFor(t *testing.T) {

	pair := &Pair{
		Address:  common.HexToAddress("0x5555555555555555555555555555555555555555"),
		Token0:   Token{Address: common.HexToAddress("0x1111111111111111111111111111111111111111")},
		Token1:   Token{Address: common.HexToAddress("0x9999999999999999999999999999999999999999")},
		Reserve0: big.NewInt(100),
		Reserve1: big.NewInt(200),
	}

	in, out, err := pair.ReservesFor(pair.Token0.Address)
	assert.NoError(t, err)
	assert.Equal(t, "100", in.String())
	assert.Equal(t, "200", out.String())

	in, out, err = pair.ReservesFor(pair.Token1.Address)
	assert.NoError(t, err)
	assert.Equal(t, "200", in.String())
	assert.Equal(t, "100", out.String())

	_, _, err = pair.ReservesFor(common.HexToAddress("0x2222222222222222222222222222222222222222"))
	assert.Error(t, err)
}

func TestMidPrice(t *testing.T) {

	pair := &Pair{Reserve0: big.NewInt(100), Reserve1: big.NewInt(250)}
	assert.Equal(t, "5/2", pair.MidPrice().String())

	empty := &Pair{Reserve0: big.NewInt(0), Reserve1: big.NewInt(0)}
	assert.Nil(t, empty.MidPrice())
}

func TestParseBigDecimal(t *testing.T) {

	cases := []struct {
		in       string
		decimals int
		want     string
	}{
		{"1.5", 6, "1500000"},
		{"0.000001", 6, "1"},
		{"1234567.89", 18, "1234567890000000000000000"},
		{"42", 0, "42"},
		{"-2.5", 2, "-250"},
		{".5", 1, "5"},
		{"1.23456789", 4, "12345"}, // excess fraction truncated
		{"0", 18, "0"},
	}

	for _, c := range cases {
		got, err := ParseBigDecimal(c.in, c.decimals)
		assert.NoError(t, err, c.in)
		assert.Equal(t, c.want, got.String(), c.in)
	}

	_, err := ParseBigDecimal("", 6)
	assert.Error(t, err)

	_, err = ParseBigDecimal("12a.5", 6)
	assert.Error(t, err)

	_, err = ParseBigDecimal("1e18", 6)
	assert.Error(t, err)
}
