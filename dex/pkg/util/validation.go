package util

import (
	"fmt"
	"math/big"
	"strings"
)

// Validation and helper functions for swap and liquidity operations

// ValidateSwapRequest validates input parameters for a swap
// Returns error if validation fails, nil otherwise
func ValidateSwapRequest(amountIn *big.Int, slippagePct int) error {
	if amountIn == nil || amountIn.Cmp(big.NewInt(0)) <= 0 {
		return fmt.Errorf("amountIn must be > 0")
	}

	// Slippage validation (1-50 percent)
	if slippagePct <= 0 || slippagePct > 50 {
		return fmt.Errorf("slippage tolerance must be between 1 and 50 percent, got %d", slippagePct)
	}

	return nil
}

// ValidateLiquidityRequest validates input parameters for an add-liquidity
// operation. amountB may be nil when the caller wants the counterpart amount
// derived from the pool ratio.
func ValidateLiquidityRequest(amountA, amountB *big.Int, slippagePct int) error {
	if amountA == nil || amountA.Cmp(big.NewInt(0)) <= 0 {
		return fmt.Errorf("amountA must be > 0")
	}
	if amountB != nil && amountB.Cmp(big.NewInt(0)) <= 0 {
		return fmt.Errorf("amountB must be > 0 when supplied")
	}

	if slippagePct <= 0 || slippagePct > 50 {
		return fmt.Errorf("slippage tolerance must be between 1 and 50 percent, got %d", slippagePct)
	}

	return nil
}

// IsRetryableSubmitError reports whether a transaction submission error is
// worth resubmitting with a fresh nonce and a bumped gas price. On a
// high-throughput chain these show up when a pending transaction was
// dropped, replaced, or raced by another submission from the same account.
// Any other error is terminal and retrying would only repeat the revert.
func IsRetryableSubmitError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	retryablePatterns := []string{
		"nonce too low",
		"nonce too high",
		"replacement transaction underpriced",
		"transaction underpriced",
		"already known",
		"known transaction",
		"future transaction tries to replace pending",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// IsCriticalError determines if an error is critical and requires immediate halt
// Critical errors require immediate halt, non-critical errors use threshold-based logic
func IsCriticalError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	criticalPatterns := []string{
		"insufficient balance",
		"insufficient funds",
		"insufficient allowance",
		"transaction reverted",
		"execution reverted",
		"unauthorized",
		"contract paused",
	}

	for _, pattern := range criticalPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
