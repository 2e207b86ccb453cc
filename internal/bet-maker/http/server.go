package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bmoreira/bet-ledger-poc/internal/bet-maker/dto"
	"github.com/bmoreira/bet-ledger-poc/internal/bet-maker/gateway"
	"github.com/bmoreira/bet-ledger-poc/internal/bet-maker/repo"
	"github.com/bmoreira/bet-ledger-poc/internal/bet-maker/service"
	"github.com/bmoreira/bet-ledger-poc/internal/domain/bet"
)

// Server expõe a API REST do bet-maker por cima do BetService.
type Server struct {
	log *zap.Logger
	svc *service.BetService
}

func NewServer(log *zap.Logger, svc *service.BetService) *Server {
	return &Server{log: log, svc: svc}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/api/v1/bets", s.placeBet)
	r.Get("/api/v1/bets", s.listBets)
	r.Get("/api/v1/bets/{id}", s.getBet)
	r.Get("/api/v1/bets/event/{id}", s.listBetsByEvent)
	r.Get("/api/v1/events", s.listActiveEvents)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mapeia a taxonomia de erros do domínio para HTTP:
// rejeição de negócio 400, aposta ausente 404, fonte fora do ar 503.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var rejection *bet.RejectionError
	var unavailable *gateway.SourceUnavailableError

	switch {
	case errors.As(err, &rejection):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: rejection.Error()})
	case errors.Is(err, repo.ErrBetNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "bet not found"})
	case errors.As(err, &unavailable):
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "event source unavailable, try again later"})
	default:
		s.log.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if req.EventID <= 0 || req.Amount.IsZero() {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "event_id and amount are required"})
		return
	}

	created, err := s.svc.PlaceBet(r.Context(), req.EventID, req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.BetResponseFrom(created))
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	bets, err := s.svc.GetAllBets(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]dto.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, dto.BetResponseFrom(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid bet id"})
		return
	}

	b, err := s.svc.GetBetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.BetResponseFrom(b))
}

func (s *Server) listBetsByEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid event id"})
		return
	}

	bets, err := s.svc.GetBetsByEvent(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]dto.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, dto.BetResponseFrom(b))
	}
	writeJSON(w, http.StatusOK, out)
}

// listActiveEvents é a visão de eventos apostáveis, lida do line-provider.
func (s *Server) listActiveEvents(w http.ResponseWriter, r *http.Request) {
	evs, err := s.svc.ActiveEvents(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, evs)
}
