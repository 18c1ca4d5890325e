package domain

import (
	"encoding/json"
	"time"
)

// Transfer outcome recorded in the journal.
const (
	RecordStatusCompleted = "completed"
	RecordStatusRejected  = "rejected"
)

// TransferRecord is the audit entry written after each transfer attempt.
// It is best-effort observability output; balances are never rebuilt from
// it.
type TransferRecord struct {
	TransferID  string `json:"transfer_id"`
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
}

// RecordEnvelope wraps a record with metadata for line-delimited JSON
// storage.
type RecordEnvelope struct {
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// SerializeRecord converts a record to JSON bytes with envelope.
func SerializeRecord(rec TransferRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}

	envelope := RecordEnvelope{
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	return json.Marshal(envelope)
}

// DeserializeRecord converts JSON bytes back to a TransferRecord.
func DeserializeRecord(data []byte) (TransferRecord, error) {
	var envelope RecordEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return TransferRecord{}, err
	}

	var rec TransferRecord
	if err := json.Unmarshal(envelope.Data, &rec); err != nil {
		return TransferRecord{}, err
	}

	return rec, nil
}
