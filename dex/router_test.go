package dex

import (
	"context"
	"math/big"
	"os"
	"testing"

	"dexpilot/dex/pkg/txlistener"
	"dexpilot/subgraph"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRouterAddr = "0x1111111111111111111111111111111111111111"
	testChefAddr   = "0x2222222222222222222222222222222222222222"
	testTokenA     = "0x3333333333333333333333333333333333333333"
	testTokenB     = "0x4444444444444444444444444444444444444444"
)

func newTestRouter(t *testing.T, tl TxListener, reserves ReserveSource, clients map[string]*clientMock) *Router {
	t.Helper()

	pk, err := crypto.GenerateKey()
	require.NoError(t, err)

	ccm := make(map[string]ContractClient)
	for addr, c := range clients {
		ccm[common.HexToAddress(addr).Hex()] = c
	}

	return &Router{
		privateKey:    pk,
		myAddr:        crypto.PubkeyToAddress(pk.PublicKey),
		tl:            tl,
		reserves:      reserves,
		ccm:           ccm,
		routerAddr:    testRouterAddr,
		chefAddr:      testChefAddr,
		submitRetries: 2,
		lg:            zerolog.New(os.Stdout).Level(zerolog.Disabled),
	}
}

func testPair() *subgraph.Pair {
	return &subgraph.Pair{
		Address:  common.HexToAddress("0x5555555555555555555555555555555555555555"),
		Token0:   subgraph.Token{Address: common.HexToAddress(testTokenA), Symbol: "TKA", Decimals: 18},
		Token1:   subgraph.Token{Address: common.HexToAddress(testTokenB), Symbol: "TKB", Decimals: 18},
		Reserve0: big.NewInt(1000000),
		Reserve1: big.NewInt(2000000),
	}
}

func TestSwap(t *testing.T) {

	t.Run("approves then swaps when allowance is short", func(t *testing.T) {
		routerClient := newClientMock(testRouterAddr)
		tokenClient := newClientMock(testTokenA)
		r := newTestRouter(t, &listenerMock{}, &reservesMock{pair: testPair()}, map[string]*clientMock{
			testRouterAddr: routerClient,
			testTokenA:     tokenClient,
		})

		result, err := r.Swap(&SwapParams{
			TokenIn:     common.HexToAddress(testTokenA),
			TokenOut:    common.HexToAddress(testTokenB),
			AmountIn:    big.NewInt(1000),
			SlippagePct: 5,
		})

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, []string{"approve"}, tokenClient.sentMethods)
		assert.Equal(t, []string{"swapExactTokensForTokens"}, routerClient.sentMethods)
		assert.Len(t, result.Transactions, 2)
		// 1000 in against 1M:2M reserves after the 0.3% fee
		assert.Equal(t, "1992", result.QuotedOut.String())
		assert.Equal(t, "1892", result.AmountOutMin.String()) // 5% slippage floor
	})

	t.Run("skips approval when allowance is sufficient", func(t *testing.T) {
		routerClient := newClientMock(testRouterAddr)
		tokenClient := newClientMock(testTokenA)
		tokenClient.allowance = big.NewInt(10000)
		r := newTestRouter(t, &listenerMock{}, &reservesMock{pair: testPair()}, map[string]*clientMock{
			testRouterAddr: routerClient,
			testTokenA:     tokenClient,
		})

		result, err := r.Swap(&SwapParams{
			TokenIn:     common.HexToAddress(testTokenA),
			TokenOut:    common.HexToAddress(testTokenB),
			AmountIn:    big.NewInt(1000),
			SlippagePct: 5,
		})

		require.NoError(t, err)
		assert.Empty(t, tokenClient.sentMethods)
		assert.Len(t, result.Transactions, 1)
	})

	t.Run("rejects out-of-range slippage", func(t *testing.T) {
		r := newTestRouter(t, &listenerMock{}, &reservesMock{pair: testPair()}, nil)

		result, err := r.Swap(&SwapParams{
			TokenIn:     common.HexToAddress(testTokenA),
			TokenOut:    common.HexToAddress(testTokenB),
			AmountIn:    big.NewInt(1000),
			SlippagePct: 80,
		})

		assert.Error(t, err)
		assert.False(t, result.Success)
	})
}

func TestSubmitAndWait(t *testing.T) {

	t.Run("resubmits with high priority after receipt timeout", func(t *testing.T) {
		routerClient := newClientMock(testRouterAddr)
		tl := &listenerMock{err: txlistener.ErrTimeout, errTimes: 1}
		r := newTestRouter(t, tl, nil, map[string]*clientMock{testRouterAddr: routerClient})

		recs, receipt, err := r.submitAndWait(routerClient, "Swap", "swapExactTokensForTokens")

		require.NoError(t, err)
		assert.Len(t, routerClient.sentMethods, 2)
		assert.Equal(t, "0x1", receipt.Status)
		// the dropped first attempt is kept as a pending record
		require.Len(t, recs, 2)
		assert.True(t, recs[0].Pending)
		assert.False(t, recs[1].Pending)
		assert.Equal(t, "Swap", recs[1].Operation)
	})

	t.Run("gives up after bounded drop retries, surfacing every hash", func(t *testing.T) {
		routerClient := newClientMock(testRouterAddr)
		tl := &listenerMock{err: txlistener.ErrTimeout}
		r := newTestRouter(t, tl, nil, map[string]*clientMock{testRouterAddr: routerClient})

		recs, _, err := r.submitAndWait(routerClient, "Swap", "swapExactTokensForTokens")

		assert.Error(t, err)
		assert.Len(t, routerClient.sentMethods, 3) // initial + submitRetries
		// every broadcast hash must reach the caller for journaling
		require.Len(t, recs, 3)
		seen := map[string]bool{}
		for _, rec := range recs {
			assert.True(t, rec.Pending)
			assert.NotEqual(t, common.Hash{}, rec.TxHash)
			seen[rec.TxHash.Hex()] = true
		}
		assert.Len(t, seen, 3)
	})

	t.Run("reverted transaction is terminal", func(t *testing.T) {
		routerClient := newClientMock(testRouterAddr)
		tl := &listenerMock{err: txlistener.ErrTransactionFailed}
		r := newTestRouter(t, tl, nil, map[string]*clientMock{testRouterAddr: routerClient})

		_, _, err := r.submitAndWait(routerClient, "Swap", "swapExactTokensForTokens")

		assert.ErrorIs(t, err, txlistener.ErrTransactionFailed)
		assert.Len(t, routerClient.sentMethods, 1)
	})

	t.Run("dropped swap returns the pending records in the result", func(t *testing.T) {
		routerClient := newClientMock(testRouterAddr)
		tokenClient := newClientMock(testTokenA)
		tokenClient.allowance = big.NewInt(10000)
		tl := &listenerMock{err: txlistener.ErrTimeout}
		r := newTestRouter(t, tl, &reservesMock{pair: testPair()}, map[string]*clientMock{
			testRouterAddr: routerClient,
			testTokenA:     tokenClient,
		})

		result, err := r.Swap(&SwapParams{
			TokenIn:     common.HexToAddress(testTokenA),
			TokenOut:    common.HexToAddress(testTokenB),
			AmountIn:    big.NewInt(1000),
			SlippagePct: 5,
		})

		assert.Error(t, err)
		assert.False(t, result.Success)
		require.Len(t, result.Transactions, 3)
		for _, rec := range result.Transactions {
			assert.True(t, rec.Pending)
		}
	})
}

func TestAddLiquidity(t *testing.T) {

	t.Run("derives counterpart amount from pool ratio", func(t *testing.T) {
		routerClient := newClientMock(testRouterAddr)
		tokenAClient := newClientMock(testTokenA)
		tokenBClient := newClientMock(testTokenB)
		r := newTestRouter(t, &listenerMock{}, &reservesMock{pair: testPair()}, map[string]*clientMock{
			testRouterAddr: routerClient,
			testTokenA:     tokenAClient,
			testTokenB:     tokenBClient,
		})

		result, err := r.AddLiquidity(&AddLiquidityParams{
			TokenA:      common.HexToAddress(testTokenA),
			TokenB:      common.HexToAddress(testTokenB),
			AmountA:     big.NewInt(500),
			SlippagePct: 1,
		})

		require.NoError(t, err)
		assert.True(t, result.Success)
		// reserves are 1:2 so 500 of token0 pairs with 1000 of token1
		assert.Equal(t, "1000", result.AmountB.String())
		assert.Equal(t, []string{"approve"}, tokenAClient.sentMethods)
		assert.Equal(t, []string{"approve"}, tokenBClient.sentMethods)
		assert.Equal(t, []string{"addLiquidity"}, routerClient.sentMethods)
	})

	t.Run("uses both supplied amounts verbatim", func(t *testing.T) {
		routerClient := newClientMock(testRouterAddr)
		tokenAClient := newClientMock(testTokenA)
		tokenBClient := newClientMock(testTokenB)
		r := newTestRouter(t, &listenerMock{}, &reservesMock{pair: testPair()}, map[string]*clientMock{
			testRouterAddr: routerClient,
			testTokenA:     tokenAClient,
			testTokenB:     tokenBClient,
		})

		result, err := r.AddLiquidity(&AddLiquidityParams{
			TokenA:      common.HexToAddress(testTokenA),
			TokenB:      common.HexToAddress(testTokenB),
			AmountA:     big.NewInt(500),
			AmountB:     big.NewInt(700),
			SlippagePct: 1,
		})

		require.NoError(t, err)
		assert.Equal(t, "700", result.AmountB.String())
	})
}

func TestCounterAmount(t *testing.T) {

	t.Run("existing pool follows reserve ratio", func(t *testing.T) {
		r := newTestRouter(t, &listenerMock{}, &reservesMock{pair: testPair()}, nil)

		quote, err := r.CounterAmount(context.Background(),
			common.HexToAddress(testTokenB), common.HexToAddress(testTokenA), big.NewInt(2000))

		require.NoError(t, err)
		assert.False(t, quote.NewPool)
		// entering with token1: 2000 * 1M / 2M
		assert.Equal(t, "1000", quote.CounterAmount.String())
	})

	t.Run("missing pool defaults to 1:1", func(t *testing.T) {
		r := newTestRouter(t, &listenerMock{}, &reservesMock{err: subgraph.ErrPairNotFound}, nil)

		quote, err := r.CounterAmount(context.Background(),
			common.HexToAddress(testTokenA), common.HexToAddress(testTokenB), big.NewInt(2000))

		require.NoError(t, err)
		assert.True(t, quote.NewPool)
		assert.Equal(t, "2000", quote.CounterAmount.String())
	})
}

func TestFarm(t *testing.T) {

	t.Run("stake approves LP for the staking contract", func(t *testing.T) {
		chefClient := newClientMock(testChefAddr)
		lpClient := newClientMock(testTokenA)
		r := newTestRouter(t, &listenerMock{}, nil, map[string]*clientMock{
			testChefAddr: chefClient,
			testTokenA:   lpClient,
		})

		result, err := r.StakeLP(&FarmParams{
			PoolID:  big.NewInt(3),
			LPToken: common.HexToAddress(testTokenA),
			Amount:  big.NewInt(42),
		})

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, []string{"approve"}, lpClient.sentMethods)
		assert.Equal(t, []string{"deposit"}, chefClient.sentMethods)
	})

	t.Run("harvest is a zero-amount deposit", func(t *testing.T) {
		chefClient := newClientMock(testChefAddr)
		r := newTestRouter(t, &listenerMock{}, nil, map[string]*clientMock{testChefAddr: chefClient})

		result, err := r.Harvest(big.NewInt(3))

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, []string{"deposit"}, chefClient.sentMethods)
		assert.Equal(t, "0", chefClient.sentArgs[0][1].(*big.Int).String())
	})

	t.Run("unstake rejects zero amount", func(t *testing.T) {
		r := newTestRouter(t, &listenerMock{}, nil, nil)

		_, err := r.UnstakeLP(&FarmParams{PoolID: big.NewInt(3), Amount: big.NewInt(0)})

		assert.Error(t, err)
	})

	t.Run("pending reward with a misshapen ABI result errors instead of panicking", func(t *testing.T) {
		chefClient := newClientMock(testChefAddr)
		chefClient.callResults["pendingReward"] = []interface{}{"not a big.Int"}
		r := newTestRouter(t, &listenerMock{}, nil, map[string]*clientMock{testChefAddr: chefClient})

		_, err := r.PendingReward(big.NewInt(3))

		assert.Error(t, err)
	})
}

func TestEnsureApprovalBadAllowanceShape(t *testing.T) {

	tokenClient := newClientMock(testTokenA)
	tokenClient.callResults["allowance"] = []interface{}{}
	r := newTestRouter(t, &listenerMock{}, nil, map[string]*clientMock{testTokenA: tokenClient})

	_, err := r.ensureApproval(common.HexToAddress(testTokenA),
		common.HexToAddress(testRouterAddr), big.NewInt(1000))

	assert.Error(t, err)
	assert.Empty(t, tokenClient.sentMethods)
}
