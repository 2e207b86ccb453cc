package repo

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/bmoreira/bet-ledger-poc/internal/domain/event"
)

// hash Redis com todos os eventos: field = event_id, value = JSON
const eventsKey = "line:events"

// Redis persiste os eventos em um hash, para que o line-provider sobreviva
// a restarts. A validação de transição é feita com um WATCH otimista.
type Redis struct {
	Client *redis.Client
}

func NewRedis(c *redis.Client) *Redis { return &Redis{Client: c} }

func (r *Redis) GetAll(ctx context.Context) ([]event.Event, error) {
	raw, err := r.Client.HGetAll(ctx, eventsKey).Result()
	if err != nil {
		return nil, err
	}

	out := make([]event.Event, 0, len(raw))
	for _, v := range raw {
		var ev event.Event
		if err := json.Unmarshal([]byte(v), &ev); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Redis) GetByID(ctx context.Context, eventID int64) (event.Event, error) {
	raw, err := r.Client.HGet(ctx, eventsKey, field(eventID)).Result()
	if err == redis.Nil {
		return event.Event{}, ErrEventNotFound
	}
	if err != nil {
		return event.Event{}, err
	}

	var ev event.Event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return event.Event{}, err
	}
	return ev, nil
}

func (r *Redis) Upsert(ctx context.Context, ev event.Event) (event.Event, error) {
	err := r.Client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.HGet(ctx, eventsKey, field(ev.ID)).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		if err == nil {
			var cur event.Event
			if jerr := json.Unmarshal([]byte(raw), &cur); jerr != nil {
				return jerr
			}
			if cur.Status != ev.Status && !cur.Status.CanTransitionTo(ev.Status) {
				return ErrInvalidTransition
			}
		}

		b, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, eventsKey, field(ev.ID), b)
			return nil
		})
		return err
	}, eventsKey)

	if err != nil {
		return event.Event{}, err
	}
	return ev, nil
}

func (r *Redis) Exists(ctx context.Context, eventID int64) (bool, error) {
	return r.Client.HExists(ctx, eventsKey, field(eventID)).Result()
}

func field(eventID int64) string { return strconv.FormatInt(eventID, 10) }
