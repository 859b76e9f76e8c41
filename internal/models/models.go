package models

import (
	"encoding/json"
	"time"
)

// Record is a persisted chain block. A chain file is a JSON array of records.
type Record struct {
	Index        uint64          `json:"index"`
	PreviousHash string          `json:"previous_hash"`
	Timestamp    time.Time       `json:"timestamp"`
	Actor        string          `json:"actor,omitempty"`
	Payload      json.RawMessage `json:"payload"`
	Hash         string          `json:"hash"`
}
