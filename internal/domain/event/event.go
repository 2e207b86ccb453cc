package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/bmoreira/bet-ledger-poc/internal/domain/money"
)

// Status é o ciclo de vida de um evento no line-provider.
// Transições válidas: NEW -> FINISHED_WIN ou NEW -> FINISHED_LOSE; nunca volta.
type Status string

const (
	StatusNew          Status = "NEW"
	StatusFinishedWin  Status = "FINISHED_WIN"
	StatusFinishedLose Status = "FINISHED_LOSE"
)

var ErrInvalidStatus = errors.New("invalid event status")

// ParseStatus valida a representação textual do status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusFinishedWin, StatusFinishedLose:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// IsActive informa se o status ainda aceita apostas.
func (s Status) IsActive() bool { return s == StatusNew }

// IsFinished informa se o evento chegou a um estado terminal.
func (s Status) IsFinished() bool {
	return s == StatusFinishedWin || s == StatusFinishedLose
}

// CanTransitionTo valida a máquina de estados do evento.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusNew && next.IsFinished()
}

// UnmarshalJSON rejeita status desconhecidos já no decode.
func (s *Status) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrInvalidStatus
	}
	parsed, err := ParseStatus(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Event é um evento apostável do line-provider. No bet-maker ele é sempre
// uma cópia remota, possivelmente defasada, obtida via gateway.
type Event struct {
	ID          int64        `json:"event_id"`
	Coefficient money.Amount `json:"coefficient"`
	Deadline    int64        `json:"deadline"` // unix segundos
	Status      Status       `json:"status"`
}

// IsActive aplica o predicado derivado de atividade: status NEW e deadline
// estritamente no futuro. deadline == now conta como expirado.
func (e Event) IsActive(now time.Time) bool {
	return e.Status.IsActive() && e.Deadline > now.Unix()
}

// Validate confere os campos obrigatórios de um evento recebido de fora.
func (e Event) Validate() error {
	if e.ID <= 0 {
		return errors.New("event_id must be a positive integer")
	}
	if e.Coefficient.IsZero() {
		return errors.New("coefficient is required")
	}
	if e.Deadline <= 0 {
		return errors.New("deadline must be a positive unix timestamp")
	}
	if _, err := ParseStatus(string(e.Status)); err != nil {
		return err
	}
	return nil
}
