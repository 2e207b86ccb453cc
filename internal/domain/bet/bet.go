package bet

import (
	"fmt"
	"time"

	"github.com/bmoreira/bet-ledger-poc/internal/domain/event"
	"github.com/bmoreira/bet-ledger-poc/internal/domain/money"
)

// Status é a máquina de estados de uma aposta: nasce PENDING e transiciona
// no máximo uma vez, para WON ou LOST, dirigida pelo desfecho do evento.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusWon     Status = "WON"
	StatusLost    Status = "LOST"
)

// StatusFromEventStatus mapeia o estado terminal do evento para o status
// da aposta. Evento ainda NEW mantém a aposta PENDING.
func StatusFromEventStatus(es event.Status) Status {
	switch es {
	case event.StatusFinishedWin:
		return StatusWon
	case event.StatusFinishedLose:
		return StatusLost
	}
	return StatusPending
}

// Bet é uma aposta monetária contra um evento. O ID e o CreatedAt são
// atribuídos pelo repositório na criação; o event_id não tem integridade
// referencial no banco, a validade é garantida na admissão.
type Bet struct {
	ID        int64        `json:"bet_id"`
	EventID   int64        `json:"event_id"`
	Amount    money.Amount `json:"amount"`
	Status    Status       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

// IsSettled informa se a aposta já chegou a um estado terminal.
func (b Bet) IsSettled() bool { return b.Status != StatusPending }

// Motivos de rejeição na admissão de apostas.
const (
	ReasonEventNotFound  = "event not found"
	ReasonEventFinished  = "event already finished"
	ReasonDeadlinePassed = "deadline passed"
)

// RejectionError é a falha de regra de negócio na admissão: terminal para a
// requisição, nunca re-tentada automaticamente. Distinta de indisponibilidade
// do line-provider, que propaga inalterada para o chamador.
type RejectionError struct {
	EventID int64
	Reason  string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("bet on event %d rejected: %s", e.EventID, e.Reason)
}
