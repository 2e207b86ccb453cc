package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bmoreira/bet-ledger-poc/internal/domain/event"
)

// ErrEventNotFound é o 404 afirmativo do line-provider: o evento não existe.
// Não é re-tentado; a admissão traduz em rejeição da aposta.
var ErrEventNotFound = errors.New("event not found on line-provider")

// SourceUnavailableError normaliza qualquer falha de transporte ao falar com
// o line-provider: conexão recusada, timeout, resposta não-2xx ou corpo
// malformado. Os chamadores nunca veem o erro cru do transporte.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("event source %q unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// EventGateway é a visão somente-leitura que o bet-maker tem do line-provider.
type EventGateway interface {
	ListEvents(ctx context.Context) ([]event.Event, error)
	GetEvent(ctx context.Context, eventID int64) (event.Event, error)
	Exists(ctx context.Context, eventID int64) (bool, error)
}

const sourceName = "line-provider"

// Client fala HTTP com o line-provider. Sem estado mutável além da
// configuração de conexão; todo request carrega o timeout fixo do client.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// ListEvents busca todos os eventos. Qualquer falha vira SourceUnavailableError.
func (c *Client) ListEvents(ctx context.Context) ([]event.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/v1/events", nil)
	if err != nil {
		return nil, &SourceUnavailableError{Source: sourceName, Err: err}
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &SourceUnavailableError{Source: sourceName, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, &SourceUnavailableError{Source: sourceName, Err: fmt.Errorf("http %d", res.StatusCode)}
	}

	var out []event.Event
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, &SourceUnavailableError{Source: sourceName, Err: fmt.Errorf("decode events: %w", err)}
	}
	return out, nil
}

// GetEvent busca um evento pelo ID. 404 vira ErrEventNotFound; o resto das
// falhas vira SourceUnavailableError, para que "fonte fora do ar" nunca se
// confunda com "evento inexistente".
func (c *Client) GetEvent(ctx context.Context, eventID int64) (event.Event, error) {
	url := fmt.Sprintf("%s/api/v1/events/%d", c.BaseURL, eventID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return event.Event{}, &SourceUnavailableError{Source: sourceName, Err: err}
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return event.Event{}, &SourceUnavailableError{Source: sourceName, Err: err}
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return event.Event{}, ErrEventNotFound
	case res.StatusCode != http.StatusOK:
		return event.Event{}, &SourceUnavailableError{Source: sourceName, Err: fmt.Errorf("http %d", res.StatusCode)}
	}

	var out event.Event
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return event.Event{}, &SourceUnavailableError{Source: sourceName, Err: fmt.Errorf("decode event: %w", err)}
	}
	return out, nil
}

// Exists engole ErrEventNotFound em false; indisponibilidade da fonte
// propaga, porque fonte fora do ar não pode reportar "não existe" em silêncio.
func (c *Client) Exists(ctx context.Context, eventID int64) (bool, error) {
	_, err := c.GetEvent(ctx, eventID)
	if errors.Is(err, ErrEventNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
