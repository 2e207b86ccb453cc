package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bmoreira/bet-ledger-poc/internal/domain/event"
	"github.com/bmoreira/bet-ledger-poc/internal/line-provider/repo"
)

// API expõe os endpoints REST do line-provider: consulta e upsert de eventos
type API struct {
	Log  *zap.Logger
	Repo repo.EventRepository
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/events", a.listEvents)        // Lista todos os eventos
	r.Get("/api/v1/events/{id}", a.getEvent)     // Evento por ID
	r.Put("/api/v1/events", a.upsertEvent)       // Cria ou atualiza um evento
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// listEvents retorna todos os eventos, inclusive os já encerrados
func (a *API) listEvents(w http.ResponseWriter, r *http.Request) {
	evs, err := a.Repo.GetAll(r.Context())
	if err != nil {
		a.Log.Error("list events", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if evs == nil {
		evs = []event.Event{}
	}
	writeJSON(w, http.StatusOK, evs)
}

// getEvent retorna um evento pelo ID ou 404
func (a *API) getEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid event id"})
		return
	}

	ev, err := a.Repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrEventNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "event not found"})
			return
		}
		a.Log.Error("get event", zap.Int64("eventId", id), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// upsertEvent cria um evento novo ou aplica uma mudança sobre o existente.
// Transição ilegal de status (ex: reabrir um finalizado) responde 409.
func (a *API) upsertEvent(w http.ResponseWriter, r *http.Request) {
	var ev event.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := ev.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// evento novo precisa nascer apostável
	exists, err := a.Repo.Exists(r.Context(), ev.ID)
	if err != nil {
		a.Log.Error("upsert event", zap.Int64("eventId", ev.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !exists && ev.Deadline <= time.Now().Unix() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "deadline must be in the future"})
		return
	}

	if _, err := a.Repo.Upsert(r.Context(), ev); err != nil {
		if errors.Is(err, repo.ErrInvalidTransition) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "invalid status transition"})
			return
		}
		a.Log.Error("upsert event", zap.Int64("eventId", ev.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{})
}
