package dex

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"dexpilot/dex/pkg/types"
	"dexpilot/subgraph"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

/***************************** ContractClient ***********************************/

// clientMock stands in for a deployed contract. Allowance reads and send
// results are scripted per test.
type clientMock struct {
	address     common.Address
	allowance   *big.Int
	callErr     error
	sendErr     error
	sendErrOnce error // returned on the first Send only
	sentMethods []string
	sentArgs    [][]interface{}
	callResults map[string][]interface{}
}

func newClientMock(address string) *clientMock {
	return &clientMock{
		address:     common.HexToAddress(address),
		allowance:   big.NewInt(0),
		callResults: map[string][]interface{}{},
	}
}

func (mock *clientMock) Send(priority types.Priority, from *common.Address, privateKey *ecdsa.PrivateKey, method string, args ...interface{}) (common.Hash, error) {
	fmt.Println("Send Called:", method)

	mock.sentMethods = append(mock.sentMethods, method)
	mock.sentArgs = append(mock.sentArgs, args)
	if mock.sendErrOnce != nil {
		err := mock.sendErrOnce
		mock.sendErrOnce = nil
		return common.Hash{}, err
	}
	if mock.sendErr != nil {
		return common.Hash{}, mock.sendErr
	}
	if method == "approve" {
		// approval lands; subsequent allowance reads see the new value
		mock.allowance = args[1].(*big.Int)
	}
	// distinct hash per broadcast
	return common.HexToHash(fmt.Sprintf("0xabc%d", len(mock.sentMethods))), nil
}

func (mock *clientMock) Call(from *common.Address, method string, args ...interface{}) ([]interface{}, error) {
	fmt.Println("Call Called:", method)

	if mock.callErr != nil {
		return nil, mock.callErr
	}
	if res, ok := mock.callResults[method]; ok {
		return res, nil
	}
	if method == "allowance" {
		return []interface{}{new(big.Int).Set(mock.allowance)}, nil
	}
	return []interface{}{big.NewInt(0)}, nil
}

func (mock *clientMock) CallWithRetry(from *common.Address, method string, args ...interface{}) ([]interface{}, error) {
	return mock.Call(from, method, args...)
}

func (mock *clientMock) GetReceipt(txHash common.Hash) (*types.TxReceipt, error) {
	return minedReceipt(), nil
}

func (mock *clientMock) ParseReceipt(receipt *types.TxReceipt) (string, error) {
	return "[]", nil
}

func (mock *clientMock) TransactionData(hash common.Hash) ([]byte, error) {
	return nil, nil
}

func (mock *clientMock) ContractAddress() *common.Address {
	return &mock.address
}

func (mock *clientMock) ChainId() *big.Int {
	return big.NewInt(2040)
}

func (mock *clientMock) Abi() *abi.ABI {
	return nil
}

func (mock *clientMock) DecodeTransaction(data []byte) (*types.DecodedTransaction, error) {
	return nil, nil
}

func (mock *clientMock) DecodeTransactionHex(hexData string) (*types.DecodedTransaction, error) {
	return nil, nil
}

func (mock *clientMock) DecodeByHash(txHash common.Hash) (*types.DecodedTransaction, error) {
	return nil, nil
}

/***************************** TxListener ***********************************/

type listenerMock struct {
	err      error
	errTimes int // return err this many times, then succeed
	calls    int
}

func (mock *listenerMock) WaitForTransaction(txHash common.Hash) (*types.TxReceipt, error) {
	fmt.Println("WaitForTransaction Called")

	mock.calls++
	if mock.err != nil && (mock.errTimes == 0 || mock.calls <= mock.errTimes) {
		return nil, mock.err
	}
	return minedReceipt(), nil
}

func minedReceipt() *types.TxReceipt {
	return &types.TxReceipt{
		TxHash:            common.HexToHash("0xabc123"),
		Status:            "0x1",
		GasUsed:           "0x5208",
		EffectiveGasPrice: "0x3b9aca00",
	}
}

/***************************** ReserveSource ***********************************/

type reservesMock struct {
	pair *subgraph.Pair
	err  error
}

func (mock *reservesMock) PairByTokens(ctx context.Context, a, b common.Address) (*subgraph.Pair, error) {
	fmt.Println("PairByTokens Called")

	if mock.err != nil {
		return nil, mock.err
	}
	return mock.pair, nil
}
