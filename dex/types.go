package dex

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// SwapParams describes an exact-in token swap through the router.
type SwapParams struct {
	TokenIn     common.Address
	TokenOut    common.Address
	AmountIn    *big.Int
	SlippagePct int
	Recipient   common.Address // zero => wallet address
}

// SwapResult reports a completed (or failed) swap.
type SwapResult struct {
	Pair         common.Address
	AmountIn     *big.Int
	AmountOutMin *big.Int
	QuotedOut    *big.Int
	Transactions []TransactionRecord
	TotalGasCost *big.Int
	Success      bool
	ErrorMessage string
}

// AddLiquidityParams describes a proportional deposit into a pair.
// AmountB nil means "derive the counterpart amount from the pool ratio";
// for a pool that does not exist yet the derived amount defaults to 1:1.
type AddLiquidityParams struct {
	TokenA      common.Address
	TokenB      common.Address
	AmountA     *big.Int
	AmountB     *big.Int
	SlippagePct int
	Recipient   common.Address
}

// LiquidityResult reports an add/remove liquidity operation.
type LiquidityResult struct {
	Pair         common.Address
	AmountA      *big.Int
	AmountB      *big.Int
	AmountAMin   *big.Int
	AmountBMin   *big.Int
	Transactions []TransactionRecord
	TotalGasCost *big.Int
	Success      bool
	ErrorMessage string
}

// RemoveLiquidityParams burns LP tokens back into the underlying pair.
type RemoveLiquidityParams struct {
	TokenA      common.Address
	TokenB      common.Address
	Liquidity   *big.Int
	SlippagePct int
	Recipient   common.Address
}

// FarmParams targets a staking-rewards pool by its pool id.
type FarmParams struct {
	PoolID  *big.Int
	LPToken common.Address
	Amount  *big.Int
}

// FarmResult reports a stake/unstake/harvest operation.
type FarmResult struct {
	PoolID       *big.Int
	Amount       *big.Int
	Transactions []TransactionRecord
	TotalGasCost *big.Int
	Success      bool
	ErrorMessage string
}

// TransactionRecord captures one submitted transaction for journaling.
type TransactionRecord struct {
	TxHash    common.Hash
	GasUsed   uint64
	GasPrice  *big.Int
	GasCost   *big.Int
	Timestamp time.Time
	Operation string
	Events    string // parsed receipt events as JSON, empty when unparsed
	Pending   bool   // broadcast but never saw a receipt; final state unknown
}

// CounterQuote is the preview for the auto-ratio liquidity form: given one
// side's amount, the other side's amount at the current pool ratio.
type CounterQuote struct {
	Pair          common.Address
	TokenIn       common.Address
	TokenOut      common.Address
	AmountIn      *big.Int
	CounterAmount *big.Int
	NewPool       bool // no pair yet; quote defaulted to 1:1
}
