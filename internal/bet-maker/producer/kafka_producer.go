package producer

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/bmoreira/bet-ledger-poc/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

// PublishBetSettled emite o evento de liquidação; a chave é o bet_id para
// manter a ordem por aposta na partição.
func (p *KafkaPublisher) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	if e.SettlementID == "" {
		e.SettlementID = uuid.NewString()
	}
	e.TsUnixMs = time.Now().UnixMilli()

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.BetID, 10)),
		Value: b,
	})
}
