package dexpilot

import (
	"context"
	"math/big"
	"time"

	"dexpilot/dex"
	"dexpilot/dex/pkg/types"
	m "dexpilot/internal/model"
	"dexpilot/subgraph"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

type Storage interface {
	SaveSubmission(sub *m.Submission) error
	UpdateSubmissionStatus(txHash string, status m.SubmissionStatus, failReason string) error
	RetrievePendingSubmissions() ([]m.Submission, error)
	RetrieveSubmissions(limit int) ([]m.Submission, error)
	RetrieveSubmissionByTxHash(txHash string) (*m.Submission, error)

	SavePairSnapshot(snap *m.PairSnapshot) error
	RetrievePairSnapshots(pair string, since time.Time) ([]m.PairSnapshot, error)

	SetCache(key string, value interface{}, exp time.Duration)
	GetCache(key string) *redis.StringCmd
}

type PairSource interface {
	PairByTokens(ctx context.Context, a, b common.Address) (*subgraph.Pair, error)
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

// ReceiptReader rechecks submitted transactions during reconciliation.
type ReceiptReader interface {
	GetReceipt(txHash common.Hash) (*types.TxReceipt, error)
}
