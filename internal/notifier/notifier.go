package notifier

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/bmoreira/bet-ledger-poc/pkg/contracts/events"
)

// Recorder persiste a liquidação na trilha de auditoria.
type Recorder interface {
	Record(ctx context.Context, s events.BetSettled) error
}

// DeadLetter recebe as mensagens que não puderam ser processadas.
type DeadLetter interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

// Handler processa mensagens bet_settled consumidas pelo worker.
type Handler struct {
	log *zap.Logger
	rec Recorder
	dlq DeadLetter // opcional; nil desliga a DLQ
}

func NewHandler(log *zap.Logger, rec Recorder, dlq DeadLetter) *Handler {
	return &Handler{log: log, rec: rec, dlq: dlq}
}

// Handle decodifica e grava uma liquidação. O offset já foi commitado pelo
// reader quando chegamos aqui, então mensagem que não decodifica ou não
// persiste vai para a DLQ; descartar em silêncio perderia a liquidação.
func (h *Handler) Handle(ctx context.Context, value []byte) {
	var settled events.BetSettled
	if err := json.Unmarshal(value, &settled); err != nil {
		h.log.Error("unmarshal bet_settled", zap.Error(err))
		h.toDeadLetter(ctx, "decode-error", value)
		return
	}

	if err := h.rec.Record(ctx, settled); err != nil {
		h.log.Error("record settlement", zap.Int64("betId", settled.BetID), zap.Error(err))
		h.toDeadLetter(ctx, "persist-error", value)
		return
	}

	h.log.Info("settlement recorded",
		zap.String("settlementId", settled.SettlementID),
		zap.Int64("betId", settled.BetID),
		zap.String("status", settled.Status),
	)
}

func (h *Handler) toDeadLetter(ctx context.Context, key string, value []byte) {
	if h.dlq == nil {
		return
	}
	if err := h.dlq.Publish(ctx, key, value); err != nil {
		h.log.Error("publish to dlq", zap.String("key", key), zap.Error(err))
	}
}

// PostgresRecorder grava a liquidação em bet_settlements; o ON CONFLICT
// torna o consumo re-entregável sem duplicar registros.
type PostgresRecorder struct {
	DB *sql.DB
}

func (r *PostgresRecorder) Record(ctx context.Context, s events.BetSettled) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO bet_settlements (settlement_id, bet_id, event_id, amount, status, event_status, settled_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (settlement_id) DO NOTHING`,
		s.SettlementID, s.BetID, s.EventID, s.Amount, s.Status, s.EventStatus,
		time.UnixMilli(s.TsUnixMs),
	)
	return err
}
