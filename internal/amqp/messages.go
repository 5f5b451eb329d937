package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Reasons a ledger changed.
const (
	ReasonExpenseAdded = "expense_added"
	ReasonIncomeAdded  = "income_added"
)

// LedgerChangedMessage announces that an owner's ledger changed and any
// derived report snapshots should be recomputed. It deliberately carries
// no record data: consumers refetch the ledger so a recomputation is
// always a function of the current snapshot, never of message payloads.
type LedgerChangedMessage struct {
	MessageID string    `json:"message_id"`
	Owner     string    `json:"owner"`
	Reason    string    `json:"reason"`
	RecordID  int64     `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChangedMessage(owner, reason string, recordID int64) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		MessageID: uuid.NewString(),
		Owner:     owner,
		Reason:    reason,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
