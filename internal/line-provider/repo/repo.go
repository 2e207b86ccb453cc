package repo

import (
	"context"
	"errors"

	"github.com/bmoreira/bet-ledger-poc/internal/domain/event"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrInvalidTransition = errors.New("invalid event status transition")
)

// EventRepository é o contrato de persistência de eventos do line-provider.
// Implementações: Memory (default) e Redis.
type EventRepository interface {
	GetAll(ctx context.Context) ([]event.Event, error)
	GetByID(ctx context.Context, eventID int64) (event.Event, error)
	// Upsert cria o evento se não existir, ou aplica uma mudança legal de
	// status/coeficiente/deadline sobre o existente.
	Upsert(ctx context.Context, ev event.Event) (event.Event, error)
	Exists(ctx context.Context, eventID int64) (bool, error)
}
