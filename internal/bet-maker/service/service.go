package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bmoreira/bet-ledger-poc/internal/bet-maker/gateway"
	"github.com/bmoreira/bet-ledger-poc/internal/bet-maker/repo"
	"github.com/bmoreira/bet-ledger-poc/internal/domain/bet"
	"github.com/bmoreira/bet-ledger-poc/internal/domain/event"
	"github.com/bmoreira/bet-ledger-poc/internal/domain/money"
	cevents "github.com/bmoreira/bet-ledger-poc/pkg/contracts/events"
)

// SettlementPublisher notifica o restante da plataforma sobre liquidações.
type SettlementPublisher interface {
	PublishBetSettled(ctx context.Context, e cevents.BetSettled) error
}

// BetService concentra a admissão de apostas e a iteração de reconciliação.
// A admissão lê um snapshot fresco do evento a cada chamada, já que odds e
// deadline são sensíveis a tempo e a fonte de verdade é remota; a janela de
// staleness entre o fetch e o commit é aceita, não resolvida com lock
// distribuído.
type BetService struct {
	log    *zap.Logger
	bets   repo.BetRepository
	events gateway.EventGateway
	publ   SettlementPublisher // opcional; nil desliga a publicação

	now func() time.Time
}

func New(log *zap.Logger, bets repo.BetRepository, events gateway.EventGateway, publ SettlementPublisher) *BetService {
	return &BetService{log: log, bets: bets, events: events, publ: publ, now: time.Now}
}

// PlaceBet valida a aposta contra o estado atual do evento e a persiste.
// Falhas de regra de negócio voltam como *bet.RejectionError; indisponibilidade
// do line-provider propaga inalterada (o chamador vê "tente de novo", não
// "aposta rejeitada").
func (s *BetService) PlaceBet(ctx context.Context, eventID int64, amount money.Amount) (bet.Bet, error) {
	ev, err := s.events.GetEvent(ctx, eventID)
	if errors.Is(err, gateway.ErrEventNotFound) {
		return bet.Bet{}, &bet.RejectionError{EventID: eventID, Reason: bet.ReasonEventNotFound}
	}
	if err != nil {
		return bet.Bet{}, err
	}

	if !ev.Status.IsActive() {
		return bet.Bet{}, &bet.RejectionError{EventID: eventID, Reason: bet.ReasonEventFinished}
	}
	// deadline == now já conta como expirado; a atividade exige deadline > now
	if ev.Deadline <= s.now().Unix() {
		return bet.Bet{}, &bet.RejectionError{EventID: eventID, Reason: bet.ReasonDeadlinePassed}
	}

	created, err := s.bets.Create(ctx, bet.Bet{
		EventID: eventID,
		Amount:  amount,
		Status:  bet.StatusPending,
	})
	if err != nil {
		return bet.Bet{}, err
	}

	s.log.Info("bet placed",
		zap.Int64("betId", created.ID),
		zap.Int64("eventId", created.EventID),
		zap.String("amount", created.Amount.String()),
	)
	return created, nil
}

// GetAllBets retorna todas as apostas registradas.
func (s *BetService) GetAllBets(ctx context.Context) ([]bet.Bet, error) {
	return s.bets.GetAll(ctx)
}

// GetBetByID retorna uma aposta ou repo.ErrBetNotFound.
func (s *BetService) GetBetByID(ctx context.Context, betID int64) (bet.Bet, error) {
	return s.bets.GetByID(ctx, betID)
}

// GetBetsByEvent retorna as apostas de um evento.
func (s *BetService) GetBetsByEvent(ctx context.Context, eventID int64) ([]bet.Bet, error) {
	return s.bets.GetByEventID(ctx, eventID)
}

// ActiveEvents lista os eventos ainda apostáveis segundo o line-provider.
func (s *BetService) ActiveEvents(ctx context.Context) ([]event.Event, error) {
	evs, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	active := make([]event.Event, 0, len(evs))
	for _, ev := range evs {
		if ev.IsActive(now) {
			active = append(active, ev)
		}
	}
	return active, nil
}

// SettlePendingBets é uma iteração da reconciliação: busca todos os eventos,
// ignora os não finalizados e transiciona as apostas ainda PENDING de cada
// evento finalizado para WON/LOST. Retorna quantas apostas mudaram.
//
// Reprocessar o mesmo evento finalizado em iterações seguintes é seguro:
// o filtro é sempre "PENDING agora", e o repositório só transiciona linhas
// ainda PENDING, então nenhuma transição é aplicada duas vezes.
func (s *BetService) SettlePendingBets(ctx context.Context) (int, error) {
	evs, err := s.events.ListEvents(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, ev := range evs {
		if !ev.Status.IsFinished() {
			continue
		}
		target := bet.StatusFromEventStatus(ev.Status)

		bets, err := s.bets.GetByEventID(ctx, ev.ID)
		if err != nil {
			return updated, err
		}
		for _, b := range bets {
			if b.Status != bet.StatusPending {
				continue
			}
			ok, err := s.bets.UpdateStatus(ctx, b.ID, target)
			if err != nil {
				return updated, err
			}
			if !ok {
				continue // outra iteração chegou antes
			}
			updated++

			s.log.Info("bet settled",
				zap.Int64("betId", b.ID),
				zap.Int64("eventId", ev.ID),
				zap.String("status", string(target)),
			)
			s.publishSettled(ctx, b, ev, target)
		}
	}
	return updated, nil
}

// publishSettled emite bet_settled em melhor esforço; falha de publicação
// não desfaz a transição já commitada.
func (s *BetService) publishSettled(ctx context.Context, b bet.Bet, ev event.Event, target bet.Status) {
	if s.publ == nil {
		return
	}
	err := s.publ.PublishBetSettled(ctx, cevents.BetSettled{
		BetID:       b.ID,
		EventID:     ev.ID,
		Amount:      b.Amount.String(),
		Status:      string(target),
		EventStatus: string(ev.Status),
	})
	if err != nil {
		s.log.Warn("publish bet_settled", zap.Int64("betId", b.ID), zap.Error(err))
	}
}
