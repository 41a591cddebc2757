package dexpilot

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"dexpilot/dex"
	m "dexpilot/internal/model"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/robfig/cron"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// WatchedPair is one pool whose reserves get sampled on the watch schedule.
type WatchedPair struct {
	TokenA common.Address
	TokenB common.Address
}

// DexPilot wraps the on-chain router with journaling, reserve watching and
// pending-transaction reconciliation. It is the service handed to the API
// layer, so every trade that goes through it ends up in the journal.
type DexPilot struct {
	stg      Storage
	pairs    PairSource
	td       Trader
	receipts ReceiptReader
	ch       chan<- string
	watch    []WatchedPair
	lg       zerolog.Logger
}

type DexPilotConfig struct {
	Storage      Storage
	Pairs        PairSource
	Trader       Trader
	Receipts     ReceiptReader
	Channel      chan<- string
	WatchedPairs []WatchedPair
}

func NewDexPilot(conf DexPilotConfig) *DexPilot {

	return &DexPilot{
		stg:      conf.Storage,
		pairs:    conf.Pairs,
		td:       conf.Trader,
		receipts: conf.Receipts,
		ch:       conf.Channel,
		watch:    conf.WatchedPairs,
		lg:       zerolog.New(os.Stdout).With().Str("Module", "DexPilot").Timestamp().Logger(),
	}
}

const (
	PairWatchSpec = "0 */5 * * * *"
	ReconcileSpec = "0 */2 * * * *"
)

// ratio moves beyond this fraction trigger a chat alert
var alertThreshold = big.NewRat(5, 100)

func (d *DexPilot) Run() {
	c := cron.New()
	c.AddFunc(PairWatchSpec, d.PairWatchEvent)
	c.AddFunc(ReconcileSpec, d.ReconcileEvent)
	c.Start()
}

/********************************** scheduled events ***********************************/

// PairWatchEvent samples reserves for every watched pair, journals a
// snapshot, and alerts the chat when the mid price moved more than the
// threshold since the previous sample.
func (d *DexPilot) PairWatchEvent() {

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range d.watch {
		pair, err := d.pairs.PairByTokens(ctx, w.TokenA, w.TokenB)
		if err != nil {
			d.lg.Error().Err(err).Str("tokenA", w.TokenA.Hex()).Str("tokenB", w.TokenB.Hex()).
				Msg("Failed to fetch watched pair")
			continue
		}

		err = d.stg.SavePairSnapshot(&m.PairSnapshot{
			Pair:         pair.Address.Hex(),
			Token0Symbol: pair.Token0.Symbol,
			Token1Symbol: pair.Token1.Symbol,
			Reserve0:     m.BigIntString(pair.Reserve0),
			Reserve1:     m.BigIntString(pair.Reserve1),
			Timestamp:    time.Now(),
		})
		if err != nil {
			d.lg.Error().Err(err).Msg("Failed to save pair snapshot")
		}

		mid := pair.MidPrice()
		if mid == nil {
			continue
		}

		cacheKey := "ratio:" + pair.Address.Hex()
		prev, err := d.stg.GetCache(cacheKey).Result()
		if err == nil && prev != "" {
			prevRat, ok := new(big.Rat).SetString(prev)
			if ok && prevRat.Sign() > 0 {
				diff := new(big.Rat).Sub(mid, prevRat)
				diff.Abs(diff)
				diff.Quo(diff, prevRat)
				if diff.Cmp(alertThreshold) > 0 {
					d.notify(fmt.Sprintf("%s/%s ratio moved %s%%. now %s",
						pair.Token0.Symbol, pair.Token1.Symbol,
						new(big.Rat).Mul(diff, big.NewRat(100, 1)).FloatString(1),
						mid.FloatString(6)))
				}
			}
		}
		d.stg.SetCache(cacheKey, mid.RatString(), 24*time.Hour)
	}
}

// ReconcileEvent rechecks every journaled submission still marked pending.
// Submissions whose receipt never appears are marked dropped after a grace
// period; mined ones flip to confirmed or failed by receipt status.
func (d *DexPilot) ReconcileEvent() {

	const dropAfter = 10 * time.Minute

	pending, err := d.stg.RetrievePendingSubmissions()
	if err != nil {
		d.lg.Error().Err(err).Msg("Failed to load pending submissions")
		return
	}

	for _, sub := range pending {
		receipt, err := d.receipts.GetReceipt(common.HexToHash(sub.TxHash))
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				if time.Since(sub.CreatedAt) > dropAfter {
					d.stg.UpdateSubmissionStatus(sub.TxHash, m.StatusDropped, "no receipt after grace period")
					d.notify(fmt.Sprintf("%s %s dropped", sub.Operation, sub.TxHash))
				}
				continue
			}
			d.lg.Error().Err(err).Str("txHash", sub.TxHash).Msg("Receipt check failed")
			continue
		}

		if receipt.Status == "0x0" {
			d.stg.UpdateSubmissionStatus(sub.TxHash, m.StatusFailed, "reverted on chain")
			d.notify(fmt.Sprintf("%s %s reverted", sub.Operation, sub.TxHash))
		} else {
			d.stg.UpdateSubmissionStatus(sub.TxHash, m.StatusConfirmed, "")
		}
	}
}

/********************************** journaled trading ***********************************/

func (d *DexPilot) Swap(params *dex.SwapParams) (*dex.SwapResult, error) {

	result, err := d.td.Swap(params)
	if result != nil {
		d.journal(result.Transactions, result.Pair.Hex(), result.Success, result.ErrorMessage, func(sub *m.Submission) {
			sub.TokenIn = params.TokenIn.Hex()
			sub.TokenOut = params.TokenOut.Hex()
			sub.AmountIn = m.BigIntString(params.AmountIn)
			sub.AmountOut = m.BigIntString(result.AmountOutMin)
		})
	}
	if err != nil {
		d.notify(fmt.Sprintf("Swap failed: %v", err))
		return result, err
	}

	d.notify(fmt.Sprintf("Swap done. in %s, min out %s, gas %s",
		m.BigIntString(result.AmountIn), m.BigIntString(result.AmountOutMin), m.BigIntString(result.TotalGasCost)))
	return result, nil
}

func (d *DexPilot) AddLiquidity(params *dex.AddLiquidityParams) (*dex.LiquidityResult, error) {

	result, err := d.td.AddLiquidity(params)
	if result != nil {
		d.journal(result.Transactions, result.Pair.Hex(), result.Success, result.ErrorMessage, func(sub *m.Submission) {
			sub.TokenIn = params.TokenA.Hex()
			sub.TokenOut = params.TokenB.Hex()
			sub.AmountIn = m.BigIntString(result.AmountA)
			sub.AmountOut = m.BigIntString(result.AmountB)
		})
	}
	if err != nil {
		d.notify(fmt.Sprintf("AddLiquidity failed: %v", err))
		return result, err
	}

	d.notify(fmt.Sprintf("AddLiquidity done. %s + %s, gas %s",
		m.BigIntString(result.AmountA), m.BigIntString(result.AmountB), m.BigIntString(result.TotalGasCost)))
	return result, nil
}

func (d *DexPilot) RemoveLiquidity(params *dex.RemoveLiquidityParams) (*dex.LiquidityResult, error) {

	result, err := d.td.RemoveLiquidity(params)
	if result != nil {
		d.journal(result.Transactions, result.Pair.Hex(), result.Success, result.ErrorMessage, func(sub *m.Submission) {
			sub.TokenIn = params.TokenA.Hex()
			sub.TokenOut = params.TokenB.Hex()
			sub.AmountIn = m.BigIntString(params.Liquidity)
		})
	}
	if err != nil {
		d.notify(fmt.Sprintf("RemoveLiquidity failed: %v", err))
		return result, err
	}

	d.notify(fmt.Sprintf("RemoveLiquidity done. gas %s", m.BigIntString(result.TotalGasCost)))
	return result, nil
}

func (d *DexPilot) StakeLP(params *dex.FarmParams) (*dex.FarmResult, error) {

	result, err := d.td.StakeLP(params)
	if result != nil {
		d.journal(result.Transactions, params.LPToken.Hex(), result.Success, result.ErrorMessage, func(sub *m.Submission) {
			sub.AmountIn = m.BigIntString(params.Amount)
		})
	}
	if err != nil {
		d.notify(fmt.Sprintf("StakeLP failed: %v", err))
		return result, err
	}

	d.notify(fmt.Sprintf("StakeLP done. pool %s, amount %s", params.PoolID, m.BigIntString(params.Amount)))
	return result, nil
}

func (d *DexPilot) UnstakeLP(params *dex.FarmParams) (*dex.FarmResult, error) {

	result, err := d.td.UnstakeLP(params)
	if result != nil {
		d.journal(result.Transactions, "", result.Success, result.ErrorMessage, func(sub *m.Submission) {
			sub.AmountIn = m.BigIntString(params.Amount)
		})
	}
	if err != nil {
		d.notify(fmt.Sprintf("UnstakeLP failed: %v", err))
		return result, err
	}

	d.notify(fmt.Sprintf("UnstakeLP done. pool %s, amount %s", params.PoolID, m.BigIntString(params.Amount)))
	return result, nil
}

func (d *DexPilot) Harvest(poolID *big.Int) (*dex.FarmResult, error) {

	result, err := d.td.Harvest(poolID)
	if result != nil {
		d.journal(result.Transactions, "", result.Success, result.ErrorMessage, nil)
	}
	if err != nil {
		d.notify(fmt.Sprintf("Harvest failed: %v", err))
		return result, err
	}

	d.notify(fmt.Sprintf("Harvest done. pool %s", poolID))
	return result, nil
}

func (d *DexPilot) PendingReward(poolID *big.Int) (*big.Int, error) {
	return d.td.PendingReward(poolID)
}

/********************************** internals ***********************************/

func (d *DexPilot) journal(records []dex.TransactionRecord, pair string, success bool, errMsg string, fill func(*m.Submission)) {

	for i, rec := range records {
		sub := &m.Submission{
			Operation: rec.Operation,
			TxHash:    rec.TxHash.Hex(),
			Pair:      pair,
			GasUsed:   rec.GasUsed,
			GasPrice:  m.BigIntString(rec.GasPrice),
			GasCost:   m.BigIntString(rec.GasCost),
			Status:    m.StatusConfirmed,
		}
		if rec.Events != "" {
			sub.ReceiptLogs = datatypes.JSON(rec.Events)
		}
		if fill != nil {
			fill(sub)
		}
		// broadcast but never mined; reconciliation settles its final state
		if rec.Pending {
			sub.Status = m.StatusPending
		}
		// an unsuccessful operation still has confirmed approvals; only the
		// last journaled non-pending record carries the failure
		if !success && !rec.Pending && i == len(records)-1 {
			sub.Status = m.StatusFailed
			sub.FailReason = errMsg
		}

		if err := d.stg.SaveSubmission(sub); err != nil {
			d.lg.Error().Err(err).Str("txHash", sub.TxHash).Msg("Failed to journal submission")
		}
	}
}

func (d *DexPilot) notify(msg string) {
	if d.ch == nil {
		return
	}
	select {
	case d.ch <- msg:
	default:
		d.lg.Warn().Msg("Notification channel full, message dropped")
	}
}
