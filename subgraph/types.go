package subgraph

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrPairNotFound is returned when the indexer has no pair entity for
	// the requested token combination.
	ErrPairNotFound = errors.New("pair not found in subgraph")
)

// Token is the indexer's view of an ERC20 token.
type Token struct {
	Address  common.Address
	Symbol   string
	Decimals int
}

// Pair is the indexer's view of a constant-product pool, reserves converted
// to base units so downstream math stays on big.Int.
type Pair struct {
	Address  common.Address
	Token0   Token
	Token1   Token
	Reserve0 *big.Int
	Reserve1 *big.Int
}

// DayData is one daily aggregate row for a pair.
type DayData struct {
	Date         int64
	VolumeToken0 *big.Int
	VolumeToken1 *big.Int
	VolumeUSD    string
	ReserveUSD   string
	TxCount      int64
}

// OrderTokens returns the pair's canonical token ordering: the lower address
// is token0, matching the factory contract. flipped reports whether the
// caller's (a, b) orientation was reversed.
func OrderTokens(a, b common.Address) (token0, token1 common.Address, flipped bool) {
	if strings.ToLower(a.Hex()) < strings.ToLower(b.Hex()) {
		return a, b, false
	}
	return b, a, true
}

// ReservesFor orients the pair's reserves for a trade entering with tokenIn.
func (p *Pair) ReservesFor(tokenIn common.Address) (reserveIn, reserveOut *big.Int, err error) {
	switch tokenIn {
	case p.Token0.Address:
		return p.Reserve0, p.Reserve1, nil
	case p.Token1.Address:
		return p.Reserve1, p.Reserve0, nil
	default:
		return nil, nil, fmt.Errorf("token %s is not part of pair %s", tokenIn.Hex(), p.Address.Hex())
	}
}

// MidPrice returns reserve1/reserve0 as a rational, the pool's spot ratio in
// base units. Zero reserves yield a nil price.
func (p *Pair) MidPrice() *big.Rat {
	if p.Reserve0 == nil || p.Reserve1 == nil || p.Reserve0.Sign() == 0 {
		return nil
	}
	return new(big.Rat).SetFrac(p.Reserve1, p.Reserve0)
}

// ParseBigDecimal converts a subgraph BigDecimal string into base units for
// a token with the given decimals. "1.5" with 6 decimals => 1500000.
// Fractional digits beyond the token's precision are truncated.
func ParseBigDecimal(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty decimal string")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		frac = frac[:decimals]
	}
	frac = frac + strings.Repeat("0", decimals-len(frac))

	v, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("malformed decimal string: %q", s)
	}
	if neg {
		v.Neg(v)
	}
	return v, nil
}
