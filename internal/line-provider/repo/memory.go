package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/bmoreira/bet-ledger-poc/internal/domain/event"
)

// Memory guarda os eventos em um mapa protegido por RWMutex.
// É o backend default do line-provider e o dublê de teste do contrato.
type Memory struct {
	mu     sync.RWMutex
	events map[int64]event.Event
}

func NewMemory(seed ...event.Event) *Memory {
	m := &Memory{events: make(map[int64]event.Event, len(seed))}
	for _, ev := range seed {
		m.events[ev.ID] = ev
	}
	return m
}

func (m *Memory) GetAll(_ context.Context) ([]event.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]event.Event, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetByID(_ context.Context, eventID int64) (event.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ev, ok := m.events[eventID]
	if !ok {
		return event.Event{}, ErrEventNotFound
	}
	return ev, nil
}

func (m *Memory) Upsert(_ context.Context, ev event.Event) (event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.events[ev.ID]
	if ok && cur.Status != ev.Status && !cur.Status.CanTransitionTo(ev.Status) {
		return event.Event{}, ErrInvalidTransition
	}
	m.events[ev.ID] = ev
	return ev, nil
}

func (m *Memory) Exists(_ context.Context, eventID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.events[eventID]
	return ok, nil
}
