package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/transaction"
)

type partyResponse struct {
	AccountID *uuid.UUID `json:"account_id,omitempty"`
	Label     string     `json:"label,omitempty"`
}

type Response struct {
	ID         uuid.UUID        `json:"id"`
	Kind       transaction.Kind `json:"kind"`
	KindLabel  string           `json:"kind_label"`
	Amount     decimal.Decimal  `json:"amount"`
	From       partyResponse    `json:"from"`
	To         partyResponse    `json:"to"`
	Category   string           `json:"category,omitempty"`
	Date       time.Time        `json:"date"`
	Note       string           `json:"note,omitempty"`
	Reverses   transaction.Kind `json:"reverses,omitempty"`
	ReversalOf *uuid.UUID       `json:"reversal_of,omitempty"`
	RevertedBy *uuid.UUID       `json:"reverted_by,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

func toParty(p transaction.Party) partyResponse {
	return partyResponse{AccountID: p.AccountID, Label: p.Label}
}

func ToResponse(tx transaction.Transaction) Response {
	return Response{
		ID:         tx.ID,
		Kind:       tx.Kind,
		KindLabel:  tx.Kind.String(),
		Amount:     tx.Amount,
		From:       toParty(tx.From),
		To:         toParty(tx.To()),
		Category:   tx.Category,
		Date:       tx.Date,
		Note:       tx.Note,
		Reverses:   tx.Reverses,
		ReversalOf: tx.ReversalOf,
		RevertedBy: tx.RevertedBy,
		CreatedAt:  tx.CreatedAt,
	}
}

func ToResponseList(txs []transaction.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}
