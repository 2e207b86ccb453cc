package dto

import (
	"time"

	"github.com/bmoreira/bet-ledger-poc/internal/domain/bet"
	"github.com/bmoreira/bet-ledger-poc/internal/domain/money"
)

// BetResponse representa uma aposta nas respostas da API.
type BetResponse struct {
	BetID     int64        `json:"bet_id"`
	EventID   int64        `json:"event_id"`
	Amount    money.Amount `json:"amount"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

func BetResponseFrom(b bet.Bet) BetResponse {
	return BetResponse{
		BetID:     b.ID,
		EventID:   b.EventID,
		Amount:    b.Amount,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
	}
}

// ErrorResponse é o envelope de erro da API.
type ErrorResponse struct {
	Error string `json:"error"`
}
