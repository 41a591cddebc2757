package dex

import (
	"fmt"
	"math/big"
)

// StakeLP deposits LP tokens into the staking contract's pool. The LP token is
// approved for the staking contract first when the allowance is short.
func (r *Router) StakeLP(params *FarmParams) (*FarmResult, error) {
	if params.Amount == nil || params.Amount.Sign() <= 0 {
		err := fmt.Errorf("stake amount must be positive")
		return &FarmResult{PoolID: params.PoolID, Success: false, ErrorMessage: err.Error()}, err
	}

	chefClient, err := r.Client(r.chefAddr)
	if err != nil {
		return &FarmResult{PoolID: params.PoolID, Success: false, ErrorMessage: err.Error()}, err
	}

	var transactions []TransactionRecord

	approveRec, err := r.ensureApproval(params.LPToken, *chefClient.ContractAddress(), params.Amount)
	if err != nil {
		return &FarmResult{PoolID: params.PoolID, Success: false, ErrorMessage: fmt.Sprintf("failed to approve LP token: %v", err)},
			fmt.Errorf("failed to approve LP token: %w", err)
	}
	if approveRec != nil {
		transactions = append(transactions, *approveRec)
	}

	stakeRecs, _, err := r.submitAndWait(chefClient, "StakeLP", "deposit", params.PoolID, params.Amount)
	transactions = append(transactions, stakeRecs...)
	if err != nil {
		return &FarmResult{
			PoolID:       params.PoolID,
			Transactions: transactions,
			TotalGasCost: totalGas(transactions),
			Success:      false,
			ErrorMessage: fmt.Sprintf("stake transaction failed: %v", err),
		}, fmt.Errorf("stake transaction failed: %w", err)
	}

	result := &FarmResult{
		PoolID:       params.PoolID,
		Amount:       params.Amount,
		Transactions: transactions,
		TotalGasCost: totalGas(transactions),
		Success:      true,
	}

	r.lg.Info().Str("poolId", params.PoolID.String()).Str("amount", params.Amount.String()).
		Str("gas", result.TotalGasCost.String()).Msg("StakeLP completed")

	return result, nil
}

// UnstakeLP withdraws staked LP tokens from the pool. Pending rewards are paid
// out by the staking contract as part of the withdrawal.
func (r *Router) UnstakeLP(params *FarmParams) (*FarmResult, error) {
	if params.Amount == nil || params.Amount.Sign() <= 0 {
		err := fmt.Errorf("unstake amount must be positive")
		return &FarmResult{PoolID: params.PoolID, Success: false, ErrorMessage: err.Error()}, err
	}

	chefClient, err := r.Client(r.chefAddr)
	if err != nil {
		return &FarmResult{PoolID: params.PoolID, Success: false, ErrorMessage: err.Error()}, err
	}

	unstakeRecs, _, err := r.submitAndWait(chefClient, "UnstakeLP", "withdraw", params.PoolID, params.Amount)
	if err != nil {
		return &FarmResult{
			PoolID:       params.PoolID,
			Transactions: unstakeRecs,
			TotalGasCost: totalGas(unstakeRecs),
			Success:      false,
			ErrorMessage: fmt.Sprintf("unstake transaction failed: %v", err),
		}, fmt.Errorf("unstake transaction failed: %w", err)
	}

	result := &FarmResult{
		PoolID:       params.PoolID,
		Amount:       params.Amount,
		Transactions: unstakeRecs,
		TotalGasCost: totalGas(unstakeRecs),
		Success:      true,
	}

	r.lg.Info().Str("poolId", params.PoolID.String()).Str("amount", params.Amount.String()).
		Str("gas", result.TotalGasCost.String()).Msg("UnstakeLP completed")

	return result, nil
}

// Harvest claims pending rewards without changing the staked balance.
// A zero-amount deposit triggers the staking contract's reward payout.
func (r *Router) Harvest(poolID *big.Int) (*FarmResult, error) {

	chefClient, err := r.Client(r.chefAddr)
	if err != nil {
		return &FarmResult{PoolID: poolID, Success: false, ErrorMessage: err.Error()}, err
	}

	harvestRecs, _, err := r.submitAndWait(chefClient, "Harvest", "deposit", poolID, big.NewInt(0))
	if err != nil {
		return &FarmResult{
			PoolID:       poolID,
			Transactions: harvestRecs,
			TotalGasCost: totalGas(harvestRecs),
			Success:      false,
			ErrorMessage: fmt.Sprintf("harvest transaction failed: %v", err),
		}, fmt.Errorf("harvest transaction failed: %w", err)
	}

	result := &FarmResult{
		PoolID:       poolID,
		Transactions: harvestRecs,
		TotalGasCost: totalGas(harvestRecs),
		Success:      true,
	}

	r.lg.Info().Str("poolId", poolID.String()).Str("gas", result.TotalGasCost.String()).
		Msg("Harvest completed")

	return result, nil
}

// PendingReward reads the claimable reward for the wallet in a pool.
func (r *Router) PendingReward(poolID *big.Int) (*big.Int, error) {

	chefClient, err := r.Client(r.chefAddr)
	if err != nil {
		return nil, err
	}

	result, err := chefClient.CallWithRetry(&r.myAddr, "pendingReward", poolID, r.myAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending reward: %w", err)
	}

	return bigIntResult(result, "pendingReward")
}

// StakedBalance reads the wallet's staked LP amount in a pool from the
// staking contract's userInfo mapping.
func (r *Router) StakedBalance(poolID *big.Int) (*big.Int, error) {

	chefClient, err := r.Client(r.chefAddr)
	if err != nil {
		return nil, err
	}

	result, err := chefClient.CallWithRetry(&r.myAddr, "userInfo", poolID, r.myAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to read staked balance: %w", err)
	}

	return bigIntResult(result, "userInfo")
}
