package dex

import (
	"fmt"
	"math/big"
	"time"

	"dexpilot/dex/pkg/types"

	"github.com/ethereum/go-ethereum/common"
)

// ensureApproval ensures the spender's allowance covers requiredAmount.
// When an approval transaction is needed, the allowance is re-read after the
// receipt until the new value is visible; some RPC nodes serve state slightly
// behind their own receipts and the follow-up action would revert with
// "insufficient allowance".
func (r *Router) ensureApproval(token common.Address, spender common.Address, requiredAmount *big.Int) (*TransactionRecord, error) {

	tokenClient, err := r.Client(token.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to get token client for %s: %w", token.Hex(), err)
	}

	result, err := tokenClient.CallWithRetry(&r.myAddr, "allowance", r.myAddr, spender)
	if err != nil {
		return nil, fmt.Errorf("failed to check allowance: %w", err)
	}

	currentAllowance, err := bigIntResult(result, "allowance")
	if err != nil {
		return nil, err
	}

	if currentAllowance.Cmp(requiredAmount) >= 0 {
		// Sufficient allowance already exists
		return nil, nil
	}

	txHash, err := tokenClient.Send(types.Standard, &r.myAddr, r.privateKey, "approve", spender, requiredAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to approve tokens: %w", err)
	}

	receipt, err := r.tl.WaitForTransaction(txHash)
	if err != nil {
		return nil, fmt.Errorf("approval transaction failed: %w", err)
	}

	if err := r.awaitAllowance(tokenClient, spender, requiredAmount); err != nil {
		return nil, err
	}

	return newRecord(tokenClient, "Approve", txHash, receipt)
}

func (r *Router) awaitAllowance(tokenClient ContractClient, spender common.Address, requiredAmount *big.Int) error {
	const (
		pollInterval = 2 * time.Second
		maxPolls     = 15
	)

	for i := 0; i < maxPolls; i++ {
		result, err := tokenClient.CallWithRetry(&r.myAddr, "allowance", r.myAddr, spender)
		if err != nil {
			return fmt.Errorf("failed to re-check allowance: %w", err)
		}
		allowance, err := bigIntResult(result, "allowance")
		if err != nil {
			return err
		}
		if allowance.Cmp(requiredAmount) >= 0 {
			return nil
		}
		time.Sleep(pollInterval)
	}

	return fmt.Errorf("allowance for %s not visible after approval", spender.Hex())
}
