package events

// Evento publicado no tópico "bet_settled" a cada transição PENDING -> WON/LOST
// aplicada pelo loop de reconciliação do bet-maker.
type BetSettled struct {
	SettlementID string `json:"settlement_id"`
	BetID        int64  `json:"bet_id"`
	EventID      int64  `json:"event_id"`
	Amount       string `json:"amount"`       // decimal com 2 casas, ex: "10.00"
	Status       string `json:"status"`       // "WON" | "LOST"
	EventStatus  string `json:"event_status"` // "FINISHED_WIN" | "FINISHED_LOSE"
	TsUnixMs     int64  `json:"ts_unix_ms"`
}
