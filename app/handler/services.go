package handler

import (
	"context"
	"math/big"
	"time"

	"dexpilot/dex"
	dextypes "dexpilot/dex/pkg/types"
	m "dexpilot/internal/model"
	"dexpilot/subgraph"

	"github.com/ethereum/go-ethereum/common"
)

type PairRetriever interface {
	PairByTokens(ctx context.Context, a, b common.Address) (*subgraph.Pair, error)
	PairDayDatas(ctx context.Context, pair common.Address, days int) ([]subgraph.DayData, error)
}

type SnapshotRetriever interface {
	RetrievePairSnapshots(pair string, since time.Time) ([]m.PairSnapshot, error)
}

type Quoter interface {
	CounterAmount(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int) (*dex.CounterQuote, error)
}

type Trader interface {
	Swap(params *dex.SwapParams) (*dex.SwapResult, error)
	AddLiquidity(params *dex.AddLiquidityParams) (*dex.LiquidityResult, error)
	RemoveLiquidity(params *dex.RemoveLiquidityParams) (*dex.LiquidityResult, error)
	StakeLP(params *dex.FarmParams) (*dex.FarmResult, error)
	UnstakeLP(params *dex.FarmParams) (*dex.FarmResult, error)
	Harvest(poolID *big.Int) (*dex.FarmResult, error)
	PendingReward(poolID *big.Int) (*big.Int, error)
}

type SubmissionRetriever interface {
	RetrieveSubmissions(limit int) ([]m.Submission, error)
	RetrieveSubmissionByTxHash(txHash string) (*m.Submission, error)
}

type TxDecoder interface {
	DecodeByHash(txHash common.Hash) (*dextypes.DecodedTransaction, error)
}

type UserRetriever interface {
	RetrieveUserByUsername(username string) (*m.User, error)
}
