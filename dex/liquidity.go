package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"dexpilot/dex/pkg/util"
	"dexpilot/subgraph"

	"github.com/ethereum/go-ethereum/common"
)

// CounterAmount quotes the counterpart deposit amount for amountIn of tokenIn
// at the pair's current reserve ratio. When the pair does not exist yet the
// quote defaults to 1:1 and NewPool is set so the caller knows the figure is
// a placeholder rather than a market price.
func (r *Router) CounterAmount(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (*CounterQuote, error) {

	pair, err := r.reserves.PairByTokens(ctx, tokenIn, tokenOut)
	if err != nil {
		if errors.Is(err, subgraph.ErrPairNotFound) {
			return &CounterQuote{
				TokenIn:       tokenIn,
				TokenOut:      tokenOut,
				AmountIn:      amountIn,
				CounterAmount: new(big.Int).Set(amountIn),
				NewPool:       true,
			}, nil
		}
		return nil, fmt.Errorf("failed to resolve pair: %w", err)
	}

	reserveIn, reserveOut, err := pair.ReservesFor(tokenIn)
	if err != nil {
		return nil, err
	}

	return &CounterQuote{
		Pair:          pair.Address,
		TokenIn:       tokenIn,
		TokenOut:      tokenOut,
		AmountIn:      amountIn,
		CounterAmount: util.QuoteCounterAmount(amountIn, reserveIn, reserveOut),
		NewPool:       false,
	}, nil
}

// AddLiquidity deposits a token pair into the pool. When AmountB is nil the
// counterpart amount is derived from the live pool ratio so the deposit does
// not move the price. Both tokens are approved for the router before the
// deposit is submitted.
func (r *Router) AddLiquidity(params *AddLiquidityParams) (*LiquidityResult, error) {
	if err := util.ValidateLiquidityRequest(params.AmountA, params.AmountB, params.SlippagePct); err != nil {
		return &LiquidityResult{Success: false, ErrorMessage: err.Error()}, err
	}

	amountB := params.AmountB
	var pairAddr common.Address
	if amountB == nil {
		quote, err := r.CounterAmount(context.Background(), params.TokenA, params.TokenB, params.AmountA)
		if err != nil {
			return &LiquidityResult{Success: false, ErrorMessage: fmt.Sprintf("failed to quote counter amount: %v", err)},
				fmt.Errorf("failed to quote counter amount: %w", err)
		}
		amountB = quote.CounterAmount
		pairAddr = quote.Pair
		if quote.NewPool {
			r.lg.Info().Str("tokenA", params.TokenA.Hex()).Str("tokenB", params.TokenB.Hex()).
				Msg("Pair not found. Seeding new pool at 1:1")
		}
	} else if pair, err := r.reserves.PairByTokens(context.Background(), params.TokenA, params.TokenB); err == nil {
		pairAddr = pair.Address
	}

	amountAMin := util.CalculateMinAmount(params.AmountA, params.SlippagePct)
	amountBMin := util.CalculateMinAmount(amountB, params.SlippagePct)

	var transactions []TransactionRecord

	routerClient, err := r.Client(r.routerAddr)
	if err != nil {
		return &LiquidityResult{Success: false, ErrorMessage: err.Error()}, err
	}
	spender := *routerClient.ContractAddress()

	for _, leg := range []struct {
		token  common.Address
		amount *big.Int
	}{{params.TokenA, params.AmountA}, {params.TokenB, amountB}} {
		rec, err := r.ensureApproval(leg.token, spender, leg.amount)
		if err != nil {
			return &LiquidityResult{
					Transactions: transactions,
					TotalGasCost: totalGas(transactions),
					Success:      false,
					ErrorMessage: fmt.Sprintf("failed to approve %s: %v", leg.token.Hex(), err),
				},
				fmt.Errorf("failed to approve %s: %w", leg.token.Hex(), err)
		}
		if rec != nil {
			transactions = append(transactions, *rec)
		}
	}

	recipient := params.Recipient
	if recipient == (common.Address{}) {
		recipient = r.myAddr
	}
	deadline := big.NewInt(time.Now().Add(txDeadline).Unix())

	addRecs, _, err := r.submitAndWait(routerClient, "AddLiquidity", "addLiquidity",
		params.TokenA, params.TokenB, params.AmountA, amountB, amountAMin, amountBMin, recipient, deadline)
	transactions = append(transactions, addRecs...)
	if err != nil {
		return &LiquidityResult{
			Pair:         pairAddr,
			Transactions: transactions,
			TotalGasCost: totalGas(transactions),
			Success:      false,
			ErrorMessage: fmt.Sprintf("add liquidity transaction failed: %v", err),
		}, fmt.Errorf("add liquidity transaction failed: %w", err)
	}

	result := &LiquidityResult{
		Pair:         pairAddr,
		AmountA:      params.AmountA,
		AmountB:      amountB,
		AmountAMin:   amountAMin,
		AmountBMin:   amountBMin,
		Transactions: transactions,
		TotalGasCost: totalGas(transactions),
		Success:      true,
	}

	r.lg.Info().Str("pair", pairAddr.Hex()).Str("amountA", params.AmountA.String()).
		Str("amountB", amountB.String()).Str("gas", result.TotalGasCost.String()).
		Msg("AddLiquidity completed")

	return result, nil
}

// RemoveLiquidity burns LP tokens back into the pair's underlying tokens.
// The LP token itself must be approved for the router before the burn.
func (r *Router) RemoveLiquidity(params *RemoveLiquidityParams) (*LiquidityResult, error) {
	if params.Liquidity == nil || params.Liquidity.Sign() <= 0 {
		err := fmt.Errorf("liquidity amount must be positive")
		return &LiquidityResult{Success: false, ErrorMessage: err.Error()}, err
	}

	pair, err := r.reserves.PairByTokens(context.Background(), params.TokenA, params.TokenB)
	if err != nil {
		return &LiquidityResult{Success: false, ErrorMessage: fmt.Sprintf("failed to resolve pair: %v", err)},
			fmt.Errorf("failed to resolve pair: %w", err)
	}

	// Underlying amounts backing the burned LP are not known up front, so the
	// minimums are left at zero and slippage is bounded by the pool ratio.
	amountAMin := big.NewInt(0)
	amountBMin := big.NewInt(0)

	var transactions []TransactionRecord

	routerClient, err := r.Client(r.routerAddr)
	if err != nil {
		return &LiquidityResult{Success: false, ErrorMessage: err.Error()}, err
	}

	approveRec, err := r.ensureApproval(pair.Address, *routerClient.ContractAddress(), params.Liquidity)
	if err != nil {
		return &LiquidityResult{Success: false, ErrorMessage: fmt.Sprintf("failed to approve LP token: %v", err)},
			fmt.Errorf("failed to approve LP token: %w", err)
	}
	if approveRec != nil {
		transactions = append(transactions, *approveRec)
	}

	recipient := params.Recipient
	if recipient == (common.Address{}) {
		recipient = r.myAddr
	}
	deadline := big.NewInt(time.Now().Add(txDeadline).Unix())

	removeRecs, _, err := r.submitAndWait(routerClient, "RemoveLiquidity", "removeLiquidity",
		params.TokenA, params.TokenB, params.Liquidity, amountAMin, amountBMin, recipient, deadline)
	transactions = append(transactions, removeRecs...)
	if err != nil {
		return &LiquidityResult{
			Pair:         pair.Address,
			Transactions: transactions,
			TotalGasCost: totalGas(transactions),
			Success:      false,
			ErrorMessage: fmt.Sprintf("remove liquidity transaction failed: %v", err),
		}, fmt.Errorf("remove liquidity transaction failed: %w", err)
	}

	result := &LiquidityResult{
		Pair:         pair.Address,
		AmountAMin:   amountAMin,
		AmountBMin:   amountBMin,
		Transactions: transactions,
		TotalGasCost: totalGas(transactions),
		Success:      true,
	}

	r.lg.Info().Str("pair", pair.Address.Hex()).Str("liquidity", params.Liquidity.String()).
		Str("gas", result.TotalGasCost.String()).Msg("RemoveLiquidity completed")

	return result, nil
}
