package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bmoreira/bet-ledger-poc/internal/domain/bet"
)

// Memory é o dublê em memória do BetRepository, com a mesma disciplina do
// adapter Postgres: ids sequenciais, created_at do lado do repositório e
// transição de status só a partir de PENDING.
type Memory struct {
	mu     sync.RWMutex
	bets   map[int64]bet.Bet
	nextID int64

	// Now permite injetar o relógio nos testes; default time.Now.
	Now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{bets: make(map[int64]bet.Bet), nextID: 1, Now: time.Now}
}

func (m *Memory) GetAll(_ context.Context) ([]bet.Bet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]bet.Bet, 0, len(m.bets))
	for _, b := range m.bets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetByID(_ context.Context, betID int64) (bet.Bet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bets[betID]
	if !ok {
		return bet.Bet{}, ErrBetNotFound
	}
	return b, nil
}

func (m *Memory) GetByEventID(_ context.Context, eventID int64) ([]bet.Bet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []bet.Bet
	for _, b := range m.bets {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetByStatus(_ context.Context, status bet.Status) ([]bet.Bet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []bet.Bet
	for _, b := range m.bets {
		if b.Status == status {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Create(_ context.Context, b bet.Bet) (bet.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b.ID = m.nextID
	m.nextID++
	b.Status = bet.StatusPending
	b.CreatedAt = m.Now()
	m.bets[b.ID] = b
	return b, nil
}

func (m *Memory) UpdateStatus(_ context.Context, betID int64, status bet.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// aposta ausente e aposta já liquidada respondem igual: zero linhas
	// tocadas, como no UPDATE guardado do adapter Postgres
	b, ok := m.bets[betID]
	if !ok || b.Status != bet.StatusPending {
		return false, nil
	}
	b.Status = status
	m.bets[betID] = b
	return true, nil
}
