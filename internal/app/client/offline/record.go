// Package offline очередь записей, созданных без сети, с последующей отправкой на сервер.
package offline

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrFlushInProgress = errors.New("flush already in progress")
	ErrOffline         = errors.New("client is offline")
	ErrUnknownDataType = errors.New("unknown data type")
	ErrInvalidPayload  = errors.New("invalid payload")
)

type DataType string

const (
	DietEntry     DataType = "diet_entry"
	Message       DataType = "message"
	Goal          DataType = "goal"
	ProfileUpdate DataType = "profile_update"
	Meal          DataType = "meal"
	AIMessage     DataType = "ai_message"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSyncing Status = "syncing"
	StatusSynced  Status = "synced"
	StatusFailed  Status = "failed"
)

// SyncRecord одна отложенная запись
type SyncRecord struct {
	ID            string          `json:"id"`
	DataType      DataType        `json:"dataType"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"createdAt"`
	Status        Status          `json:"status"`
	Attempts      int             `json:"attempts"`
	LastError     string          `json:"lastError,omitempty"`
	NextAttemptAt time.Time       `json:"nextAttemptAt"`
}

// canTransition допустимые переходы: pending -> syncing -> synced|failed, failed -> syncing
func canTransition(from, to Status) bool {
	switch from {
	case StatusPending, StatusFailed:
		return to == StatusSyncing
	case StatusSyncing:
		return to == StatusSynced || to == StatusFailed
	}
	return false
}

// FlushResult итог одного прохода Flush
type FlushResult struct {
	Attempted int
	Synced    int
	Failed    int
}

// Stats снимок состояния очереди
type Stats struct {
	Total   int
	Pending int
	Syncing int
	Synced  int
	Failed  int
	// Dead записи, исчерпавшие попытки. Входят в Failed.
	Dead int
}
