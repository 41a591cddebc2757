package contractclient

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	contracttypes "dexpilot/dex/pkg/types"
	"dexpilot/dex/pkg/util"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// ContractClient wraps a single deployed contract: ABI packing, read calls,
// and signed transaction submission with nonce/gas management.
type ContractClient struct {
	contractAddress common.Address
	abi             *abi.ABI
	client          *ethclient.Client
	chainId         *big.Int

	defaultGasLimit *big.Int
	gasBufferPct    int64 // safety margin on top of EstimateGas
	gasPremiumPct   int64 // bump on the suggested gas price
	maxRetries      int
	retryBaseDelay  time.Duration
	callRetries     int

	lg zerolog.Logger
}

func NewContractClient(client *ethclient.Client, contractAddress common.Address, abi *abi.ABI, opts ...Option) *ContractClient {
	chainID := big.NewInt(0)
	if client != nil {
		cid, err := client.ChainID(context.Background())
		if err == nil {
			chainID = cid
		}
	}

	cc := &ContractClient{
		contractAddress: contractAddress,
		abi:             abi,
		client:          client,
		chainId:         chainID,
		gasBufferPct:    20,
		gasPremiumPct:   10,
		maxRetries:      3,
		retryBaseDelay:  500 * time.Millisecond,
		callRetries:     3,
		lg:              zerolog.New(os.Stdout).With().Str("Module", "ContractClient").Str("contract", contractAddress.Hex()).Timestamp().Logger(),
	}

	for _, opt := range opts {
		opt(cc)
	}

	return cc
}

// Option is a functional option for configuring ContractClient
type Option func(*ContractClient)

// WithDefaultGasLimit sets the gas limit used when estimation fails.
func WithDefaultGasLimit(gasLimit *big.Int) Option {
	return func(cc *ContractClient) {
		cc.defaultGasLimit = gasLimit
	}
}

// WithGasBuffer sets the percentage added on top of the gas estimate.
func WithGasBuffer(pct int64) Option {
	return func(cc *ContractClient) {
		cc.gasBufferPct = pct
	}
}

// WithGasPremium sets the percentage added on top of the suggested gas price.
func WithGasPremium(pct int64) Option {
	return func(cc *ContractClient) {
		cc.gasPremiumPct = pct
	}
}

// WithMaxRetries bounds submission retries for dropped/replaced/nonce errors.
func WithMaxRetries(n int) Option {
	return func(cc *ContractClient) {
		cc.maxRetries = n
	}
}

// WithRetryBaseDelay sets the first backoff interval; it doubles per attempt.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(cc *ContractClient) {
		cc.retryBaseDelay = d
	}
}

func (cm *ContractClient) Call(from *common.Address, method string, args ...interface{}) ([]interface{}, error) {

	if from == nil {
		from = &common.Address{}
	}
	packed, err := cm.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%s call: abi pack: %w", method, err)
	}

	raw, err := cm.client.CallContract(context.Background(), ethereum.CallMsg{
		From: *from,
		To:   &cm.contractAddress,
		Data: packed,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call: CallContract: %w", method, err)
	}

	rtn, err := cm.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("%s call: abi unpack: %w", method, err)
	}

	return rtn, nil
}

// CallWithRetry retries a read call on transient RPC failures. A revert or
// other critical contract error is deterministic for the same call, so it
// surfaces immediately instead of burning the retry budget.
func (cm *ContractClient) CallWithRetry(from *common.Address, method string, args ...interface{}) ([]interface{}, error) {
	var (
		rtn []interface{}
		err error
	)

	delay := cm.retryBaseDelay
	for attempt := 0; attempt <= cm.callRetries; attempt++ {
		rtn, err = cm.Call(from, method, args...)
		if err == nil {
			return rtn, nil
		}
		if util.IsCriticalError(err) {
			return nil, err
		}
		if attempt < cm.callRetries {
			time.Sleep(delay)
			delay *= 2
		}
	}

	return nil, err
}

// Send submits a signed dynamic-fee transaction. Nonce, gas limit, and gas
// price are acquired fresh on every attempt: on a high-throughput chain a
// pending transaction can be dropped or replaced between submission and
// inclusion, so nonce conflicts and underpriced-replacement errors are
// retried with exponential backoff and a doubled price premium. Other
// errors are terminal.
func (cm *ContractClient) Send(priority contracttypes.Priority, from *common.Address, privateKey *ecdsa.PrivateKey, method string, args ...interface{}) (common.Hash, error) {
	if from == nil {
		from = &common.Address{}
	}
	packed, err := cm.abi.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s send: abi pack: %w", method, err)
	}

	premiumPct := cm.gasPremiumPct
	delay := cm.retryBaseDelay

	var lastErr error
	for attempt := 0; attempt <= cm.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
			delay *= 2
			premiumPct *= 2
			cm.lg.Warn().Int("attempt", attempt).Int64("premiumPct", premiumPct).
				Str("method", method).Err(lastErr).Msg("Resubmitting transaction")
		}

		txHash, err := cm.submitOnce(priority, *from, privateKey, method, packed, premiumPct)
		if err == nil {
			return txHash, nil
		}

		lastErr = err
		if !util.IsRetryableSubmitError(err) {
			return common.Hash{}, err
		}
	}

	return common.Hash{}, fmt.Errorf("%s send: gave up after %d attempts: %w", method, cm.maxRetries+1, lastErr)
}

func (cm *ContractClient) submitOnce(priority contracttypes.Priority, from common.Address, privateKey *ecdsa.PrivateKey, method string, packed []byte, premiumPct int64) (common.Hash, error) {

	nonce, err := cm.client.PendingNonceAt(context.Background(), from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s send: PendingNonceAt: %w", method, err)
	}

	gasPrice, err := cm.client.SuggestGasPrice(context.Background())
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s send: SuggestGasPrice: %w", method, err)
	}

	gasLimit, err := cm.client.EstimateGas(context.Background(), ethereum.CallMsg{
		From: from,
		To:   &cm.contractAddress,
		Data: packed,
	})
	if err != nil {
		if cm.defaultGasLimit != nil {
			gasLimit = cm.defaultGasLimit.Uint64()
		} else {
			return common.Hash{}, fmt.Errorf("%s send: EstimateGas: %w", method, err)
		}
	}

	// Safety buffer so a slightly heavier execution path does not run out of gas
	gasLimit = gasLimit + gasLimit*uint64(cm.gasBufferPct)/100
	if priority == contracttypes.High {
		gasLimit = gasLimit * 2
	}

	// Premium over the suggested price; the fee cap is the premium price
	// plus the tip so the tip always fits under the cap
	premium := new(big.Int).Mul(gasPrice, big.NewInt(premiumPct))
	premium.Div(premium, big.NewInt(100))
	pricedGas := new(big.Int).Add(gasPrice, premium)

	gasTipCap := big.NewInt(1500000000) // 1.5 Gwei
	gasFeeCap := new(big.Int).Add(pricedGas, gasTipCap)

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:    cm.chainId,
		Nonce:      nonce,
		GasTipCap:  gasTipCap, // a.k.a. maxPriorityFeePerGas
		GasFeeCap:  gasFeeCap, // a.k.a. maxFeePerGas
		Gas:        gasLimit,
		To:         &cm.contractAddress,
		Value:      big.NewInt(0),
		Data:       packed,
		AccessList: nil,
	})

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(cm.chainId), privateKey)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s send: SignTx: %w", method, err)
	}

	err = cm.client.SendTransaction(context.Background(), signedTx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%s send: SendTransaction: %w", method, err)
	}

	cm.lg.Info().Str("method", method).Uint64("nonce", nonce).Uint64("gasLimit", gasLimit).
		Str("tx", signedTx.Hash().Hex()).Msg("Transaction submitted")

	return signedTx.Hash(), nil
}

func (cm *ContractClient) GetReceipt(txHash common.Hash) (*contracttypes.TxReceipt, error) {

	var r *contracttypes.TxReceipt

	err := cm.client.Client().CallContext(context.Background(), &r, "eth_getTransactionReceipt", txHash)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ethereum.NotFound
	}

	return r, nil
}

func (cm *ContractClient) ParseReceipt(receipt *contracttypes.TxReceipt) (string, error) {

	events := make([]*contracttypes.EventInfo, len(receipt.Logs))
	for i, log := range receipt.Logs {

		eventInfo := contracttypes.EventInfo{}
		events[i] = &eventInfo

		if log.Address != cm.contractAddress {
			continue // log emitted by another contract in the same tx
		}
		eventInfo.Address = log.Address
		eventInfo.Index = log.Index

		var abiEvent *abi.Event
		for _, event := range cm.abi.Events {
			if event.ID.Hex() == log.Topics[0].Hex() {
				abiEvent = &event
				break
			}
		}
		if abiEvent == nil {
			continue
		}

		eventInfo.EventName = abiEvent.Name

		paramMap := make(map[string]interface{})
		eventInfo.Parameter = paramMap

		err := abiEvent.Inputs.UnpackIntoMap(paramMap, log.Data)
		if err != nil {
			return "", err
		}

		indexed := make([]abi.Argument, len(log.Topics)-1)
		idx := 0
		for _, input := range abiEvent.Inputs {
			if input.Indexed && idx < len(indexed) {
				indexed[idx] = input
				idx++
			}
		}

		err = abi.ParseTopicsIntoMap(paramMap, indexed, log.Topics[1:])
		if err != nil {
			return "", err
		}

		// fixed-bytes topics come back as arrays; keep the hex form
		for i, input := range indexed {
			if input.Type.T == abi.FixedBytesTy || input.Type.T == abi.BytesTy {
				topic := log.Topics[i+1]
				paramMap[input.Name] = topic.Hex()
			}
		}

	}

	jsonData, err := json.Marshal(events)
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (cm *ContractClient) ContractAddress() *common.Address {
	return &cm.contractAddress
}

func (cm *ContractClient) ChainId() *big.Int {
	return cm.chainId
}

func (cm *ContractClient) Abi() *abi.ABI {
	return cm.abi
}

func (cm *ContractClient) TransactionData(hash common.Hash) ([]byte, error) {
	tx, _, err := cm.client.TransactionByHash(context.Background(), hash)
	if err != nil {
		return nil, err
	}

	return tx.Data(), nil
}

// DecodeTransaction decodes raw transaction input data using the contract's ABI
func (cm *ContractClient) DecodeTransaction(data []byte) (*contracttypes.DecodedTransaction, error) {
	if len(data) < 4 {
		return nil, errors.New("transaction data too short: must be at least 4 bytes for method selector")
	}

	methodSelector := data[:4]

	method, err := cm.abi.MethodById(methodSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to find method by selector %s: %w", hex.EncodeToString(methodSelector), err)
	}

	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, fmt.Errorf("failed to unpack arguments for method %s: %w", method.Name, err)
	}

	params := make([]contracttypes.DecodedParam, len(method.Inputs))
	for i, input := range method.Inputs {
		value := args[i]

		value = convertValueForJSON(value, input.Type)

		params[i] = contracttypes.DecodedParam{
			Name:  input.Name,
			Type:  input.Type.String(),
			Value: value,
		}
	}

	signature := buildMethodSignature(method)

	return &contracttypes.DecodedTransaction{
		ContractAddress: cm.contractAddress,
		MethodName:      method.Name,
		MethodSignature: signature,
		Parameters:      params,
		RawData:         data,
	}, nil
}

// DecodeTransactionHex decodes hex-encoded transaction data
func (cm *ContractClient) DecodeTransactionHex(hexData string) (*contracttypes.DecodedTransaction, error) {
	if len(hexData) >= 2 && hexData[:2] == "0x" {
		hexData = hexData[2:]
	}

	data, err := hex.DecodeString(hexData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex data: %w", err)
	}

	return cm.DecodeTransaction(data)
}

// DecodeByHash fetches a transaction by hash and decodes its input data
func (cm *ContractClient) DecodeByHash(txHash common.Hash) (*contracttypes.DecodedTransaction, error) {
	tx, _, err := cm.client.TransactionByHash(context.Background(), txHash)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction %s: %w", txHash.Hex(), err)
	}

	return cm.DecodeTransaction(tx.Data())
}

/*********************************** internal utils *********************************************/

// buildMethodSignature constructs the full method signature string
func buildMethodSignature(method *abi.Method) string {
	var inputs []string
	for _, input := range method.Inputs {
		inputs = append(inputs, input.Type.String())
	}
	return fmt.Sprintf("%s(%s)", method.Name, joinStrings(inputs, ","))
}

func joinStrings(strs []string, sep string) string {
	if len(strs) == 0 {
		return ""
	}
	result := strs[0]
	for i := 1; i < len(strs); i++ {
		result += sep + strs[i]
	}
	return result
}

// convertValueForJSON converts ABI values to JSON-friendly representations
func convertValueForJSON(value interface{}, abiType abi.Type) interface{} {
	switch abiType.T {
	case abi.AddressTy:
		if addr, ok := value.(common.Address); ok {
			return addr.Hex()
		}
	case abi.BytesTy, abi.FixedBytesTy:
		switch v := value.(type) {
		case []byte:
			return "0x" + hex.EncodeToString(v)
		case [4]byte:
			return "0x" + hex.EncodeToString(v[:])
		case [8]byte:
			return "0x" + hex.EncodeToString(v[:])
		case [16]byte:
			return "0x" + hex.EncodeToString(v[:])
		case [20]byte:
			return "0x" + hex.EncodeToString(v[:])
		case [32]byte:
			return "0x" + hex.EncodeToString(v[:])
		}
	case abi.IntTy, abi.UintTy:
		if bigInt, ok := value.(*big.Int); ok {
			return bigInt.String()
		}
	case abi.SliceTy, abi.ArrayTy:
		return convertSliceForJSON(value, abiType.Elem)
	}
	return value
}

// convertSliceForJSON converts slice/array values for JSON representation
func convertSliceForJSON(value interface{}, elemType *abi.Type) interface{} {
	if elemType == nil {
		return value
	}

	switch slice := value.(type) {
	case []common.Address:
		result := make([]string, len(slice))
		for i, addr := range slice {
			result[i] = addr.Hex()
		}
		return result
	case []*big.Int:
		result := make([]string, len(slice))
		for i, v := range slice {
			result[i] = v.String()
		}
		return result
	case [][]byte:
		result := make([]string, len(slice))
		for i, v := range slice {
			result[i] = "0x" + hex.EncodeToString(v)
		}
		return result
	}

	return value
}
