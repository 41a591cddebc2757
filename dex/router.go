package dex

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"dexpilot/dex/pkg/contractclient"
	"dexpilot/dex/pkg/txlistener"
	"dexpilot/dex/pkg/types"
	"dexpilot/dex/pkg/util"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

const txDeadline = 20 * time.Minute

// Router orchestrates wallet-signed operations against the AMM deployment:
// swaps, proportional liquidity deposits, LP staking. It owns one contract
// client per deployed contract and the wallet key used for signing.
type Router struct {
	privateKey *ecdsa.PrivateKey
	myAddr     common.Address
	tl         TxListener
	reserves   ReserveSource
	ccm        map[string]ContractClient // keyed by contract address

	routerAddr    string
	chefAddr      string
	submitRetries int

	lg zerolog.Logger
}

// ContractConfig binds a deployed contract address to its ABI file.
type ContractConfig struct {
	Address string
	Abipath string
}

// Config carries everything needed to construct a Router.
type Config struct {
	pk              string
	routerAddr      string
	chefAddr        string
	defaultGasLimit *big.Int
	submitRetries   int
	contracts       []ContractConfig
}

func NewConfig(pk, routerAddr, chefAddr string, defaultGasLimit *big.Int, contracts []ContractConfig) *Config {
	if defaultGasLimit == nil {
		defaultGasLimit = big.NewInt(1000000)
	}
	return &Config{
		pk:              pk,
		routerAddr:      routerAddr,
		chefAddr:        chefAddr,
		defaultGasLimit: defaultGasLimit,
		submitRetries:   2,
		contracts:       contracts,
	}
}

func NewRouter(client *ethclient.Client, conf *Config, reserves ReserveSource, tl TxListener) (*Router, error) {

	privateKey, err := crypto.HexToECDSA(conf.pk)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("error casting public key to ECDSA")
	}
	address := crypto.PubkeyToAddress(*publicKey)

	ccm := make(map[string]ContractClient)
	for _, c := range conf.contracts {
		ABI, err := util.LoadABI(c.Abipath)
		if err != nil {
			return nil, fmt.Errorf("failed to load ABI for %s: %w", c.Address, err)
		}
		addr := common.HexToAddress(c.Address)
		cc := contractclient.NewContractClient(client, addr, ABI,
			contractclient.WithDefaultGasLimit(conf.defaultGasLimit))
		ccm[addr.Hex()] = cc
	}

	return &Router{
		privateKey:    privateKey,
		myAddr:        address,
		tl:            tl,
		reserves:      reserves,
		ccm:           ccm,
		routerAddr:    conf.routerAddr,
		chefAddr:      conf.chefAddr,
		submitRetries: conf.submitRetries,
		lg:            zerolog.New(os.Stdout).With().Str("Module", "Router").Timestamp().Logger(),
	}, nil
}

// WalletAddress returns the signing wallet's address.
func (r *Router) WalletAddress() common.Address {
	return r.myAddr
}

func (r *Router) Client(address string) (ContractClient, error) {

	c := r.ccm[common.HexToAddress(address).Hex()]
	if c == nil {
		return nil, fmt.Errorf("no mapped client for %s", address)
	}
	return c, nil
}

// Swap swaps an exact input amount through the router. The input token is
// approved first when the live allowance is short, then the swap is
// submitted with a slippage-derived minimum output.
func (r *Router) Swap(params *SwapParams) (*SwapResult, error) {
	if err := util.ValidateSwapRequest(params.AmountIn, params.SlippagePct); err != nil {
		return &SwapResult{Success: false, ErrorMessage: err.Error()}, err
	}

	pair, err := r.reserves.PairByTokens(context.Background(), params.TokenIn, params.TokenOut)
	if err != nil {
		return &SwapResult{Success: false, ErrorMessage: fmt.Sprintf("failed to resolve pair: %v", err)},
			fmt.Errorf("failed to resolve pair: %w", err)
	}

	reserveIn, reserveOut, err := pair.ReservesFor(params.TokenIn)
	if err != nil {
		return &SwapResult{Success: false, ErrorMessage: err.Error()}, err
	}

	quotedOut, err := util.GetAmountOut(params.AmountIn, reserveIn, reserveOut)
	if err != nil {
		return &SwapResult{Success: false, ErrorMessage: fmt.Sprintf("swap quote failed: %v", err)},
			fmt.Errorf("swap quote failed: %w", err)
	}
	amountOutMin := util.CalculateMinAmount(quotedOut, params.SlippagePct)

	var transactions []TransactionRecord

	routerClient, err := r.Client(r.routerAddr)
	if err != nil {
		return &SwapResult{Success: false, ErrorMessage: err.Error()}, err
	}

	approveRec, err := r.ensureApproval(params.TokenIn, *routerClient.ContractAddress(), params.AmountIn)
	if err != nil {
		return &SwapResult{Success: false, ErrorMessage: fmt.Sprintf("failed to approve input token: %v", err)},
			fmt.Errorf("failed to approve input token: %w", err)
	}
	if approveRec != nil {
		transactions = append(transactions, *approveRec)
	}

	recipient := params.Recipient
	if recipient == (common.Address{}) {
		recipient = r.myAddr
	}
	deadline := big.NewInt(time.Now().Add(txDeadline).Unix())
	path := []common.Address{params.TokenIn, params.TokenOut}

	swapRecs, _, err := r.submitAndWait(routerClient, "Swap", "swapExactTokensForTokens",
		params.AmountIn, amountOutMin, path, recipient, deadline)
	transactions = append(transactions, swapRecs...)
	if err != nil {
		return &SwapResult{
			Pair:         pair.Address,
			Transactions: transactions,
			TotalGasCost: totalGas(transactions),
			Success:      false,
			ErrorMessage: fmt.Sprintf("swap transaction failed: %v", err),
		}, fmt.Errorf("swap transaction failed: %w", err)
	}

	result := &SwapResult{
		Pair:         pair.Address,
		AmountIn:     params.AmountIn,
		AmountOutMin: amountOutMin,
		QuotedOut:    quotedOut,
		Transactions: transactions,
		TotalGasCost: totalGas(transactions),
		Success:      true,
	}

	r.lg.Info().Str("pair", pair.Address.Hex()).Str("amountIn", params.AmountIn.String()).
		Str("minOut", amountOutMin.String()).Str("gas", result.TotalGasCost.String()).
		Msg("Swap completed")

	return result, nil
}

/********************************** submission plumbing ***********************************/

// submitAndWait submits a router transaction and waits for its receipt.
// A receipt timeout means the transaction was likely dropped on the way to a
// block, so the whole submit is retried with High priority, bounded by
// submitRetries. Failed-status receipts and other errors are terminal.
// Every hash that was actually broadcast comes back as a record: timed-out
// attempts are returned as pending records so the journal can track them and
// reconciliation can settle their final state later.
func (r *Router) submitAndWait(client ContractClient, op, method string, args ...interface{}) ([]TransactionRecord, *types.TxReceipt, error) {

	priority := types.Standard

	var records []TransactionRecord
	var lastErr error
	for attempt := 0; attempt <= r.submitRetries; attempt++ {
		if attempt > 0 {
			r.lg.Warn().Str("op", op).Int("attempt", attempt).Err(lastErr).
				Msg("Retrying dropped transaction")
			priority = types.High
		}

		txHash, err := client.Send(priority, &r.myAddr, r.privateKey, method, args...)
		if err != nil {
			return records, nil, err
		}

		receipt, err := r.tl.WaitForTransaction(txHash)
		if err != nil {
			if errors.Is(err, txlistener.ErrTimeout) {
				records = append(records, pendingRecord(op, txHash))
				lastErr = err
				continue
			}
			return records, receipt, err
		}

		rec, err := newRecord(client, op, txHash, receipt)
		if err != nil {
			return records, receipt, err
		}
		records = append(records, *rec)
		return records, receipt, nil
	}

	return records, nil, fmt.Errorf("%s: transaction dropped %d times: %w", op, r.submitRetries+1, lastErr)
}

func pendingRecord(op string, txHash common.Hash) TransactionRecord {
	return TransactionRecord{
		TxHash:    txHash,
		GasPrice:  big.NewInt(0),
		GasCost:   big.NewInt(0),
		Timestamp: time.Now(),
		Operation: op,
		Pending:   true,
	}
}

func newRecord(client ContractClient, op string, txHash common.Hash, receipt *types.TxReceipt) (*TransactionRecord, error) {
	gasCost, err := util.ExtractGasCost(receipt)
	if err != nil {
		return nil, fmt.Errorf("failed to extract gas cost: %w", err)
	}

	gasPrice := new(big.Int)
	gasPrice.SetString(receipt.EffectiveGasPrice, 0)
	gasUsed := new(big.Int)
	gasUsed.SetString(receipt.GasUsed, 0)

	events, err := client.ParseReceipt(receipt)
	if err != nil {
		events = ""
	}

	return &TransactionRecord{
		TxHash:    txHash,
		GasUsed:   gasUsed.Uint64(),
		GasPrice:  gasPrice,
		GasCost:   gasCost,
		Timestamp: time.Now(),
		Operation: op,
		Events:    events,
	}, nil
}

// bigIntResult extracts the single *big.Int a read method is expected to
// return. A misconfigured ABI entry surfaces as an error instead of a panic.
func bigIntResult(result []interface{}, method string) (*big.Int, error) {
	if len(result) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	v, ok := result[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s returned %T, expected *big.Int", method, result[0])
	}
	return v, nil
}

func totalGas(transactions []TransactionRecord) *big.Int {
	total := big.NewInt(0)
	for _, tx := range transactions {
		total.Add(total, tx.GasCost)
	}
	return total
}
