package util

import (
	"errors"
	"fmt"
	"math/big"

	"dexpilot/dex/pkg/types"
)

// Pair math for a constant-product pool. Mirrors the on-chain router
// quoting so previews match what the contract will settle.

var (
	// ErrNoLiquidity is returned when a swap quote is requested against a
	// pool with empty reserves.
	ErrNoLiquidity = errors.New("pair has no liquidity")

	feeMul = big.NewInt(997) // 0.3% swap fee
	feeDen = big.NewInt(1000)
)

// QuoteCounterAmount returns the deposit amount of the counterpart token that
// keeps the pool ratio: amount * reserveOut / reserveIn, floor division.
// The caller orients reserves for the direction it wants, so the same
// function serves both input sides. A pool that does not exist yet has zero
// reserves; the first deposit sets the price, so the quote defaults to 1:1.
func QuoteCounterAmount(amount, reserveIn, reserveOut *big.Int) *big.Int {
	if amount == nil || amount.Sign() <= 0 {
		return big.NewInt(0)
	}
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return new(big.Int).Set(amount)
	}

	out := new(big.Int).Mul(amount, reserveOut)
	return out.Div(out, reserveIn)
}

// GetAmountOut quotes a swap output after the 0.3% fee, identical to the
// pair contract: amountIn*997*reserveOut / (reserveIn*1000 + amountIn*997).
func GetAmountOut(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, fmt.Errorf("amountIn must be > 0")
	}
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() == 0 || reserveOut.Sign() == 0 {
		return nil, ErrNoLiquidity
	}

	amountInWithFee := new(big.Int).Mul(amountIn, feeMul)
	numerator := new(big.Int).Mul(amountInWithFee, reserveOut)
	denominator := new(big.Int).Mul(reserveIn, feeDen)
	denominator.Add(denominator, amountInWithFee)

	return numerator.Div(numerator, denominator), nil
}

// CalculateMinAmount calculates minimum amount with slippage protection
// amountMin = amountDesired * (100 - slippagePct) / 100
func CalculateMinAmount(amountDesired *big.Int, slippagePct int) *big.Int {
	if amountDesired == nil {
		return big.NewInt(0)
	}

	multiplier := big.NewInt(int64(100 - slippagePct))
	divisor := big.NewInt(100)

	result := new(big.Int).Mul(amountDesired, multiplier)
	result.Div(result, divisor)

	return result
}

// ExtractGasCost extracts gas cost from transaction receipt
// Returns gas cost in wei (GasUsed * EffectiveGasPrice)
func ExtractGasCost(receipt *types.TxReceipt) (*big.Int, error) {
	if receipt == nil {
		return nil, fmt.Errorf("receipt is nil")
	}

	gasUsed := new(big.Int)
	if _, ok := gasUsed.SetString(receipt.GasUsed, 0); !ok {
		return nil, fmt.Errorf("failed to parse GasUsed: %s", receipt.GasUsed)
	}

	gasPrice := new(big.Int)
	if _, ok := gasPrice.SetString(receipt.EffectiveGasPrice, 0); !ok {
		return nil, fmt.Errorf("failed to parse EffectiveGasPrice: %s", receipt.EffectiveGasPrice)
	}

	return new(big.Int).Mul(gasUsed, gasPrice), nil
}
