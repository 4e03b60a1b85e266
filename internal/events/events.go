package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type doubles as the routing key of the published message.
type Type string

const (
	TransactionAppended Type = "transaction.appended"
	TransactionRemoved  Type = "transaction.removed"
	TransactionReverted Type = "transaction.reverted"
	AccountCreated      Type = "account.created"
	AccountDeleted      Type = "account.deleted"
)

type Event struct {
	Type          Type       `json:"type"`
	UserID        uuid.UUID  `json:"user_id"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
	AccountID     *uuid.UUID `json:"account_id,omitempty"`
	Kind          string     `json:"kind,omitempty"`
	Amount        string     `json:"amount,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

//go:generate mockgen -source=events.go -destination=publisher_mock.go -package=events
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
