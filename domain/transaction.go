package domain

import "time"

// TransactionDirection tells whether money moved into or out of the wallet.
type TransactionDirection string

const (
	DirectionReceived TransactionDirection = "received"
	DirectionSent     TransactionDirection = "sent"
)

// TransactionState mirrors the resource server's payment states.
type TransactionState string

const (
	TransactionStatePending   TransactionState = "PENDING"
	TransactionStateCompleted TransactionState = "COMPLETED"
	TransactionStateFailed    TransactionState = "FAILED"
	TransactionStateExpired   TransactionState = "EXPIRED"
)

// Amount is a protocol amount. Value is an opaque decimal string and is
// passed through byte-identically, never parsed into a float.
type Amount struct {
	Value      string `json:"value"`
	AssetCode  string `json:"assetCode"`
	AssetScale int    `json:"assetScale"`
}

// Transaction is the normalized history view over incoming and outgoing
// payment resources. Derived and read-only, recomputed on every request.
type Transaction struct {
	ID        string               `json:"id"`
	Direction TransactionDirection `json:"type"`
	Amount    Amount               `json:"amount"`
	State     TransactionState     `json:"state"`
	CreatedAt time.Time            `json:"createdAt"`
}
