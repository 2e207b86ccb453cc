package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/bmoreira/bet-ledger-poc/internal/domain/bet"
)

// ErrBetNotFound indica lookup por ID sem resultado no armazenamento local.
var ErrBetNotFound = errors.New("bet not found")

// ConnectionError distingue "banco inacessível" de "registro ausente";
// os chamadores não podem confundir os dois.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("bet store unavailable during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// BetRepository é o contrato de persistência de apostas do bet-maker.
// Implementações: Postgres (produção) e Memory (dublê de teste).
type BetRepository interface {
	GetAll(ctx context.Context) ([]bet.Bet, error)
	GetByID(ctx context.Context, betID int64) (bet.Bet, error)
	GetByEventID(ctx context.Context, eventID int64) ([]bet.Bet, error)
	GetByStatus(ctx context.Context, status bet.Status) ([]bet.Bet, error)
	// Create persiste uma aposta nova; o bet_id e o created_at são
	// atribuídos pelo repositório e devolvidos na entidade.
	Create(ctx context.Context, b bet.Bet) (bet.Bet, error)
	// UpdateStatus transiciona uma aposta ainda PENDING para o status
	// terminal informado. Retorna false sem erro se a aposta já não era
	// PENDING; é isso que torna a reconciliação idempotente.
	UpdateStatus(ctx context.Context, betID int64, status bet.Status) (bool, error)
}
