package model

import (
	"math/big"
	"time"

	"gorm.io/datatypes"
)

// SubmissionStatus tracks a journaled transaction through its lifecycle.
type SubmissionStatus string

const (
	StatusPending   SubmissionStatus = "pending"
	StatusConfirmed SubmissionStatus = "confirmed"
	StatusFailed    SubmissionStatus = "failed"
	StatusDropped   SubmissionStatus = "dropped"
)

// Submission is one wallet transaction journaled for history and
// reconciliation. Amounts are big.Int strings since wei values overflow
// any integer column.
type Submission struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Operation   string `gorm:"size:32;index;not null"`
	TxHash      string `gorm:"size:66;uniqueIndex"`
	Pair        string `gorm:"size:42;index"`
	TokenIn     string `gorm:"size:42"`
	TokenOut    string `gorm:"size:42"`
	AmountIn    string `gorm:"type:varchar(78)"`
	AmountOut   string `gorm:"type:varchar(78)"`
	GasUsed     uint64
	GasPrice    string           `gorm:"type:varchar(78)"`
	GasCost     string           `gorm:"type:varchar(78)"`
	Status      SubmissionStatus `gorm:"size:16;index;default:pending"`
	FailReason  string           `gorm:"size:255"`
	ReceiptLogs datatypes.JSON
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// PairSnapshot is a periodic capture of a pair's reserves from the indexer,
// kept so ratio history survives indexer downtime.
type PairSnapshot struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Pair         string    `gorm:"size:42;index;not null"`
	Token0Symbol string    `gorm:"size:16"`
	Token1Symbol string    `gorm:"size:16"`
	Reserve0     string    `gorm:"type:varchar(78);not null"`
	Reserve1     string    `gorm:"type:varchar(78);not null"`
	Timestamp    time.Time `gorm:"index;not null"`
}

type User struct {
	ID       int
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

// BigIntString converts a wei value for storage, nil maps to "0".
func BigIntString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
