package dex

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"dexpilot/dex/pkg/types"
	"dexpilot/subgraph"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ContractClient combines all contract interaction capabilities
type ContractClient interface {
	TxSender
	TxReader
	TxDecoder
	Abi() *abi.ABI
}

// TxSender defines methods for sending transactions to the blockchain
type TxSender interface {
	// Send executes a contract method with transaction
	Send(priority types.Priority, from *common.Address, privateKey *ecdsa.PrivateKey, method string, args ...interface{}) (common.Hash, error)
}

// TxReader defines methods for reading blockchain and contract state
type TxReader interface {
	// Call executes a read-only contract method (does not create transaction)
	Call(from *common.Address, method string, args ...interface{}) ([]interface{}, error)

	// CallWithRetry retries a read call on transient RPC failures
	CallWithRetry(from *common.Address, method string, args ...interface{}) ([]interface{}, error)

	// GetReceipt retrieves transaction receipt by hash
	GetReceipt(txHash common.Hash) (*types.TxReceipt, error)

	// ParseReceipt parses events from transaction receipt
	ParseReceipt(receipt *types.TxReceipt) (string, error)

	// TransactionData retrieves raw transaction input data by hash
	TransactionData(hash common.Hash) ([]byte, error)

	// ContractAddress returns the contract address this client is bound to
	ContractAddress() *common.Address

	// ChainId returns the chain ID
	ChainId() *big.Int
}

// TxDecoder defines methods for decoding transaction data
type TxDecoder interface {
	// DecodeTransaction decodes raw transaction input data using the contract's ABI
	DecodeTransaction(data []byte) (*types.DecodedTransaction, error)

	// DecodeTransactionHex decodes hex-encoded transaction data
	DecodeTransactionHex(hexData string) (*types.DecodedTransaction, error)

	// DecodeByHash fetches a transaction by hash and decodes its input data
	DecodeByHash(txHash common.Hash) (*types.DecodedTransaction, error)
}

// TxListener waits for a submitted transaction to be mined.
type TxListener interface {
	WaitForTransaction(txHash common.Hash) (*types.TxReceipt, error)
}

// ReserveSource resolves a token pair's current reserves from the indexer.
type ReserveSource interface {
	PairByTokens(ctx context.Context, a, b common.Address) (*subgraph.Pair, error)
}
