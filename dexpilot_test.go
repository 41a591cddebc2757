package dexpilot

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	"dexpilot/dex"
	"dexpilot/dex/pkg/types"
	m "dexpilot/internal/model"
	"dexpilot/subgraph"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/***************************** mocks ***********************************/

type StorageMock struct {
	saved    []*m.Submission
	snaps    []*m.PairSnapshot
	pending  []m.Submission
	statuses map[string]m.SubmissionStatus
	cache    map[string]string
}

func NewStorageMock() *StorageMock {
	return &StorageMock{
		statuses: map[string]m.SubmissionStatus{},
		cache:    map[string]string{},
	}
}

func (mock *StorageMock) SaveSubmission(sub *m.Submission) error {
	fmt.Println("SaveSubmission Called")
	mock.saved = append(mock.saved, sub)
	return nil
}

func (mock *StorageMock) UpdateSubmissionStatus(txHash string, status m.SubmissionStatus, failReason string) error {
	mock.statuses[txHash] = status
	return nil
}

func (mock *StorageMock) RetrievePendingSubmissions() ([]m.Submission, error) {
	return mock.pending, nil
}

func (mock *StorageMock) RetrieveSubmissions(limit int) ([]m.Submission, error) {
	return nil, nil
}

func (mock *StorageMock) RetrieveSubmissionByTxHash(txHash string) (*m.Submission, error) {
	return nil, nil
}

func (mock *StorageMock) SavePairSnapshot(snap *m.PairSnapshot) error {
	fmt.Println("SavePairSnapshot Called")
	mock.snaps = append(mock.snaps, snap)
	return nil
}

func (mock *StorageMock) RetrievePairSnapshots(pair string, since time.Time) ([]m.PairSnapshot, error) {
	return nil, nil
}

func (mock *StorageMock) SetCache(key string, value interface{}, exp time.Duration) {
	mock.cache[key] = fmt.Sprintf("%v", value)
}

func (mock *StorageMock) GetCache(key string) *redis.StringCmd {
	if v, ok := mock.cache[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

type PairSourceMock struct {
	pair *subgraph.Pair
	err  error
}

func (mock *PairSourceMock) PairByTokens(ctx context.Context, a, b common.Address) (*subgraph.Pair, error) {
	if mock.err != nil {
		return nil, mock.err
	}
	return mock.pair, nil
}

type TraderMock struct {
	swapResult *dex.SwapResult
	swapErr    error
}

func (mock *TraderMock) Swap(params *dex.SwapParams) (*dex.SwapResult, error) {
	return mock.swapResult, mock.swapErr
}

func (mock *TraderMock) AddLiquidity(params *dex.AddLiquidityParams) (*dex.LiquidityResult, error) {
	return &dex.LiquidityResult{Success: true}, nil
}

func (mock *TraderMock) RemoveLiquidity(params *dex.RemoveLiquidityParams) (*dex.LiquidityResult, error) {
	return &dex.LiquidityResult{Success: true}, nil
}

func (mock *TraderMock) StakeLP(params *dex.FarmParams) (*dex.FarmResult, error) {
	return &dex.FarmResult{Success: true, PoolID: params.PoolID}, nil
}

func (mock *TraderMock) UnstakeLP(params *dex.FarmParams) (*dex.FarmResult, error) {
	return &dex.FarmResult{Success: true, PoolID: params.PoolID}, nil
}

func (mock *TraderMock) Harvest(poolID *big.Int) (*dex.FarmResult, error) {
	return &dex.FarmResult{Success: true, PoolID: poolID}, nil
}

func (mock *TraderMock) PendingReward(poolID *big.Int) (*big.Int, error) {
	return big.NewInt(0), nil
}

type ReceiptReaderMock struct {
	receipts map[string]*types.TxReceipt
	err      error // returned for every lookup when set
}

func (mock *ReceiptReaderMock) GetReceipt(txHash common.Hash) (*types.TxReceipt, error) {
	if mock.err != nil {
		return nil, mock.err
	}
	if r, ok := mock.receipts[txHash.Hex()]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

/***************************** tests ***********************************/

func newTestPilot(stg *StorageMock, pairs PairSource, td Trader, receipts ReceiptReader, watch []WatchedPair) *DexPilot {
	return &DexPilot{
		stg:      stg,
		pairs:    pairs,
		td:       td,
		receipts: receipts,
		watch:    watch,
		lg:       zerolog.New(os.Stdout).Level(zerolog.Disabled),
	}
}

func TestSwapJournaling(t *testing.T) {

	tokenIn := common.HexToAddress("0x3333333333333333333333333333333333333333")
	tokenOut := common.HexToAddress("0x4444444444444444444444444444444444444444")

	t.Run("successful swap journals every transaction as confirmed", func(t *testing.T) {
		stg := NewStorageMock()
		td := &TraderMock{swapResult: &dex.SwapResult{
			Pair:         common.HexToAddress("0x5555555555555555555555555555555555555555"),
			AmountIn:     big.NewInt(1000),
			AmountOutMin: big.NewInt(1892),
			TotalGasCost: big.NewInt(42000),
			Success:      true,
			Transactions: []dex.TransactionRecord{
				{TxHash: common.HexToHash("0xaaa"), Operation: "Approve", GasCost: big.NewInt(21000)},
				{TxHash: common.HexToHash("0xbbb"), Operation: "Swap", GasCost: big.NewInt(21000)},
			},
		}}
		pilot := newTestPilot(stg, nil, td, nil, nil)

		_, err := pilot.Swap(&dex.SwapParams{TokenIn: tokenIn, TokenOut: tokenOut, AmountIn: big.NewInt(1000), SlippagePct: 5})

		require.NoError(t, err)
		require.Len(t, stg.saved, 2)
		assert.Equal(t, "Approve", stg.saved[0].Operation)
		assert.Equal(t, m.StatusConfirmed, stg.saved[0].Status)
		assert.Equal(t, "Swap", stg.saved[1].Operation)
		assert.Equal(t, "1000", stg.saved[1].AmountIn)
	})

	t.Run("dropped swap journals every broadcast hash as pending", func(t *testing.T) {
		stg := NewStorageMock()
		td := &TraderMock{
			swapResult: &dex.SwapResult{
				Success:      false,
				ErrorMessage: "swap transaction failed: transaction dropped 3 times",
				Transactions: []dex.TransactionRecord{
					{TxHash: common.HexToHash("0xd1"), Operation: "Swap", GasPrice: big.NewInt(0), GasCost: big.NewInt(0), Pending: true},
					{TxHash: common.HexToHash("0xd2"), Operation: "Swap", GasPrice: big.NewInt(0), GasCost: big.NewInt(0), Pending: true},
					{TxHash: common.HexToHash("0xd3"), Operation: "Swap", GasPrice: big.NewInt(0), GasCost: big.NewInt(0), Pending: true},
				},
			},
			swapErr: fmt.Errorf("swap transaction failed: transaction dropped 3 times"),
		}
		pilot := newTestPilot(stg, nil, td, nil, nil)

		_, err := pilot.Swap(&dex.SwapParams{TokenIn: tokenIn, TokenOut: tokenOut, AmountIn: big.NewInt(1000), SlippagePct: 5})

		assert.Error(t, err)
		// reconciliation needs a pending row per broadcast hash
		require.Len(t, stg.saved, 3)
		for _, sub := range stg.saved {
			assert.Equal(t, m.StatusPending, sub.Status)
			assert.Empty(t, sub.FailReason)
		}
	})

	t.Run("failed swap marks the last record failed", func(t *testing.T) {
		stg := NewStorageMock()
		td := &TraderMock{
			swapResult: &dex.SwapResult{
				Success:      false,
				ErrorMessage: "swap transaction failed: reverted",
				Transactions: []dex.TransactionRecord{
					{TxHash: common.HexToHash("0xaaa"), Operation: "Approve", GasCost: big.NewInt(21000)},
				},
			},
			swapErr: fmt.Errorf("swap transaction failed: reverted"),
		}
		pilot := newTestPilot(stg, nil, td, nil, nil)

		_, err := pilot.Swap(&dex.SwapParams{TokenIn: tokenIn, TokenOut: tokenOut, AmountIn: big.NewInt(1000), SlippagePct: 5})

		assert.Error(t, err)
		require.Len(t, stg.saved, 1)
		assert.Equal(t, m.StatusFailed, stg.saved[0].Status)
		assert.Contains(t, stg.saved[0].FailReason, "reverted")
	})
}

func TestReconcileEvent(t *testing.T) {

	stg := NewStorageMock()
	stg.pending = []m.Submission{
		{TxHash: common.HexToHash("0x1").Hex(), Operation: "Swap", Status: m.StatusPending, CreatedAt: time.Now()},
		{TxHash: common.HexToHash("0x2").Hex(), Operation: "Swap", Status: m.StatusPending, CreatedAt: time.Now()},
		{TxHash: common.HexToHash("0x3").Hex(), Operation: "Swap", Status: m.StatusPending, CreatedAt: time.Now().Add(-time.Hour)},
		{TxHash: common.HexToHash("0x4").Hex(), Operation: "Swap", Status: m.StatusPending, CreatedAt: time.Now()},
	}
	receipts := &ReceiptReaderMock{receipts: map[string]*types.TxReceipt{
		common.HexToHash("0x1").Hex(): {Status: "0x1"},
		common.HexToHash("0x2").Hex(): {Status: "0x0"},
	}}
	pilot := newTestPilot(stg, nil, nil, receipts, nil)

	pilot.ReconcileEvent()

	assert.Equal(t, m.StatusConfirmed, stg.statuses[common.HexToHash("0x1").Hex()])
	assert.Equal(t, m.StatusFailed, stg.statuses[common.HexToHash("0x2").Hex()])
	// past the grace period without a receipt
	assert.Equal(t, m.StatusDropped, stg.statuses[common.HexToHash("0x3").Hex()])
	// still within the grace period, left pending
	_, touched := stg.statuses[common.HexToHash("0x4").Hex()]
	assert.False(t, touched)
}

func TestReconcileEventRPCError(t *testing.T) {

	stg := NewStorageMock()
	stg.pending = []m.Submission{
		{TxHash: common.HexToHash("0x1").Hex(), Operation: "Swap", Status: m.StatusPending, CreatedAt: time.Now().Add(-time.Hour)},
	}
	receipts := &ReceiptReaderMock{err: fmt.Errorf("connection refused")}
	pilot := newTestPilot(stg, nil, nil, receipts, nil)

	// a node outage must not drop or fail anything, and must not panic
	pilot.ReconcileEvent()

	assert.Empty(t, stg.statuses)
}

func TestPairWatchEvent(t *testing.T) {

	pair := &subgraph.Pair{
		Address:  common.HexToAddress("0x5555555555555555555555555555555555555555"),
		Token0:   subgraph.Token{Address: common.HexToAddress("0x3333333333333333333333333333333333333333"), Symbol: "TKA"},
		Token1:   subgraph.Token{Address: common.HexToAddress("0x4444444444444444444444444444444444444444"), Symbol: "TKB"},
		Reserve0: big.NewInt(1000000),
		Reserve1: big.NewInt(2000000),
	}
	watch := []WatchedPair{{TokenA: pair.Token0.Address, TokenB: pair.Token1.Address}}

	t.Run("saves a snapshot and caches the ratio", func(t *testing.T) {
		stg := NewStorageMock()
		pilot := newTestPilot(stg, &PairSourceMock{pair: pair}, nil, nil, watch)

		pilot.PairWatchEvent()

		require.Len(t, stg.snaps, 1)
		assert.Equal(t, "1000000", stg.snaps[0].Reserve0)
		assert.Equal(t, "2", stg.cache["ratio:"+pair.Address.Hex()])
	})

	t.Run("fetch failure skips the pair", func(t *testing.T) {
		stg := NewStorageMock()
		pilot := newTestPilot(stg, &PairSourceMock{err: fmt.Errorf("indexer down")}, nil, nil, watch)

		pilot.PairWatchEvent()

		assert.Empty(t, stg.snaps)
	})
}
