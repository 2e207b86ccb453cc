package dto

import "github.com/bmoreira/bet-ledger-poc/internal/domain/money"

// PlaceBetRequest é o payload de criação de aposta. O bet_id enviado pelo
// cliente, se houver, é ignorado; o amount já valida formato no decode.
type PlaceBetRequest struct {
	EventID int64        `json:"event_id"`
	Amount  money.Amount `json:"amount"`
}
