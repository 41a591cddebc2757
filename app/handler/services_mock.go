package handler

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"dexpilot/dex"
	dextypes "dexpilot/dex/pkg/types"
	m "dexpilot/internal/model"
	"dexpilot/subgraph"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kr/pretty"
)

/***************************** Pair ***********************************/

type PairRetrieverMock struct {
	pair     *subgraph.Pair
	dayDatas []subgraph.DayData
	err      error
}

func (mock *PairRetrieverMock) PairByTokens(ctx context.Context, a, b common.Address) (*subgraph.Pair, error) {
	fmt.Println("PairByTokens Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.pair, nil
}

func (mock *PairRetrieverMock) PairDayDatas(ctx context.Context, pair common.Address, days int) ([]subgraph.DayData, error) {
	fmt.Println("PairDayDatas Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.dayDatas, nil
}

type SnapshotRetrieverMock struct {
	snaps []m.PairSnapshot
	err   error
}

func (mock *SnapshotRetrieverMock) RetrievePairSnapshots(pair string, since time.Time) ([]m.PairSnapshot, error) {
	fmt.Println("RetrievePairSnapshots Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.snaps, nil
}

type QuoterMock struct {
	quote *dex.CounterQuote
	err   error
}

func (mock *QuoterMock) CounterAmount(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (*dex.CounterQuote, error) {
	fmt.Println("CounterAmount Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.quote, nil
}

/***************************** Trader ***********************************/

type TraderMock struct {
	lastSwap      *dex.SwapParams
	lastAdd       *dex.AddLiquidityParams
	lastRemove    *dex.RemoveLiquidityParams
	lastFarm      *dex.FarmParams
	pendingReward *big.Int
	err           error
}

func (mock *TraderMock) Swap(params *dex.SwapParams) (*dex.SwapResult, error) {
	pretty.Println("Swap Called:", params.AmountIn)

	mock.lastSwap = params
	if mock.err != nil {
		return nil, mock.err
	}
	return &dex.SwapResult{Success: true, AmountIn: params.AmountIn}, nil
}

func (mock *TraderMock) AddLiquidity(params *dex.AddLiquidityParams) (*dex.LiquidityResult, error) {
	pretty.Println("AddLiquidity Called:", params.AmountA)

	mock.lastAdd = params
	if mock.err != nil {
		return nil, mock.err
	}
	return &dex.LiquidityResult{Success: true, AmountA: params.AmountA, AmountB: params.AmountB}, nil
}

func (mock *TraderMock) RemoveLiquidity(params *dex.RemoveLiquidityParams) (*dex.LiquidityResult, error) {
	fmt.Println("RemoveLiquidity Called")

	mock.lastRemove = params
	if mock.err != nil {
		return nil, mock.err
	}
	return &dex.LiquidityResult{Success: true}, nil
}

func (mock *TraderMock) StakeLP(params *dex.FarmParams) (*dex.FarmResult, error) {
	fmt.Println("StakeLP Called")

	mock.lastFarm = params
	if mock.err != nil {
		return nil, mock.err
	}
	return &dex.FarmResult{Success: true, PoolID: params.PoolID, Amount: params.Amount}, nil
}

func (mock *TraderMock) UnstakeLP(params *dex.FarmParams) (*dex.FarmResult, error) {
	fmt.Println("UnstakeLP Called")

	mock.lastFarm = params
	if mock.err != nil {
		return nil, mock.err
	}
	return &dex.FarmResult{Success: true, PoolID: params.PoolID, Amount: params.Amount}, nil
}

func (mock *TraderMock) Harvest(poolID *big.Int) (*dex.FarmResult, error) {
	fmt.Println("Harvest Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return &dex.FarmResult{Success: true, PoolID: poolID}, nil
}

func (mock *TraderMock) PendingReward(poolID *big.Int) (*big.Int, error) {
	fmt.Println("PendingReward Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.pendingReward, nil
}

/***************************** Submission ***********************************/

type SubmissionRetrieverMock struct {
	subs []m.Submission
	err  error
}

func (mock *SubmissionRetrieverMock) RetrieveSubmissions(limit int) ([]m.Submission, error) {
	fmt.Println("RetrieveSubmissions Called")

	if mock.err != nil {
		return nil, mock.err
	}
	if limit < len(mock.subs) {
		return mock.subs[:limit], nil
	}
	return mock.subs, nil
}

func (mock *SubmissionRetrieverMock) RetrieveSubmissionByTxHash(txHash string) (*m.Submission, error) {
	fmt.Println("RetrieveSubmissionByTxHash Called")

	if mock.err != nil {
		return nil, mock.err
	}
	for i := range mock.subs {
		if mock.subs[i].TxHash == txHash {
			return &mock.subs[i], nil
		}
	}
	return nil, fmt.Errorf("submission not found")
}

type TxDecoderMock struct {
	decoded *dextypes.DecodedTransaction
	err     error
}

func (mock *TxDecoderMock) DecodeByHash(txHash common.Hash) (*dextypes.DecodedTransaction, error) {
	fmt.Println("DecodeByHash Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.decoded, nil
}
