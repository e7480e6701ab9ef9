// Package api serves consumption history, live status, device switching
// and the account profile and budget over HTTP.
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"codeberg.org/mutker/wattd/internal/account"
	"codeberg.org/mutker/wattd/internal/errors"
	"codeberg.org/mutker/wattd/internal/household"
	"codeberg.org/mutker/wattd/internal/logger"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodyBytes = 64 << 10

// Options wires the router. Gatherer backs /metrics and AccessLog receives
// one line per request; either may be nil to disable it.
type Options struct {
	Aggregator Aggregator
	Household  Household
	Account    Account
	Gatherer   prometheus.Gatherer
	AccessLog  io.Writer
	Logger     logger.Logger
}

type Server struct {
	agg     Aggregator
	house   Household
	account Account
	log     logger.Logger
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type switchRequest struct {
	On *bool `json:"on"`
}

type switchResponse struct {
	Room    string  `json:"room"`
	Device  string  `json:"device"`
	On      bool    `json:"on"`
	Reading float64 `json:"reading"`
}

type statusResponse struct {
	State   string             `json:"state"`
	Sum     float64            `json:"sum"`
	Count   int                `json:"count"`
	Current float64            `json:"current"`
	Reading float64            `json:"reading"`
	Rooms   map[string]float64 `json:"rooms"`
	History []float64          `json:"history"`
}

// NewRouter builds the route table
func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{agg: opts.Aggregator, house: opts.Household, account: opts.Account, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/history", s.history).Methods(http.MethodGet)
	r.HandleFunc("/status", s.status).Methods(http.MethodGet)
	r.HandleFunc("/rooms", s.rooms).Methods(http.MethodGet)
	r.HandleFunc("/rooms/{room}/devices/{device}", s.setDevice).Methods(http.MethodPut)
	r.HandleFunc("/rooms/{room}/devices/{device}/toggle", s.toggleDevice).Methods(http.MethodPost)
	r.HandleFunc("/profile", s.getProfile).Methods(http.MethodGet)
	r.HandleFunc("/profile", s.putProfile).Methods(http.MethodPut)
	r.HandleFunc("/budget", s.getBudget).Methods(http.MethodGet)
	r.HandleFunc("/budget", s.putBudget).Methods(http.MethodPut)
	r.HandleFunc("/budget", s.deleteBudget).Methods(http.MethodDelete)
	r.HandleFunc("/spending", s.spending).Methods(http.MethodGet)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	if opts.AccessLog == nil {
		return r
	}
	return handlers.LoggingHandler(opts.AccessLog, r)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	snap := s.agg.Snapshot()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "state": snap.State})
}

func (s *Server) history(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]float64{"history": s.agg.Snapshot().History})
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	snap := s.agg.Snapshot()
	writeJSON(w, http.StatusOK, statusResponse{
		State:   snap.State,
		Sum:     snap.Sum,
		Count:   snap.Count,
		Current: snap.Current,
		Reading: s.house.Reading(),
		Rooms:   s.house.RoomTotals(),
		History: snap.History,
	})
}

func (s *Server) rooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.house.Rooms())
}

func (s *Server) setDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	room, device := vars["room"], vars["device"]

	var req switchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil || req.On == nil {
		writeError(w, errors.New().WithMessage(ErrInvalidBody, `expected {"on": true|false}`))
		return
	}

	if err := s.house.Set(r.Context(), room, device, *req.On); err != nil && !s.persistOnly(err) {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, switchResponse{Room: room, Device: device, On: *req.On, Reading: s.house.Reading()})
}

func (s *Server) toggleDevice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	room, device := vars["room"], vars["device"]

	on, err := s.house.Toggle(r.Context(), room, device)
	if err != nil && !s.persistOnly(err) {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, switchResponse{Room: room, Device: device, On: on, Reading: s.house.Reading()})
}

func (s *Server) getProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.account.Profile())
}

func (s *Server) putProfile(w http.ResponseWriter, r *http.Request) {
	var p account.Profile
	if err := decodeBody(r, &p); err != nil {
		writeError(w, err)
		return
	}

	saved, err := s.account.SetProfile(r.Context(), p)
	if err != nil && !s.persistOnly(err) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) getBudget(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.account.Budget())
}

func (s *Server) putBudget(w http.ResponseWriter, r *http.Request) {
	var b account.Budget
	if err := decodeBody(r, &b); err != nil {
		writeError(w, err)
		return
	}

	saved, err := s.account.SetBudget(r.Context(), b)
	if err != nil && !s.persistOnly(err) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) deleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.account.ClearBudget(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) spending(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.account.Spending(s.agg.Snapshot().History))
}

// persistOnly reports whether err is a persistence failure for a change
// that already took effect in memory. Such failures are logged only.
func (s *Server) persistOnly(err error) bool {
	switch errors.CodeOf(err) {
	case household.ErrPersistState, account.ErrPersist:
	default:
		return false
	}
	s.log.Warn().Err(err).Msg("Change applied but not persisted")
	return true
}

func statusFor(code errors.ErrorCode) int {
	switch code {
	case household.ErrUnknownRoom, household.ErrUnknownDevice:
		return http.StatusNotFound
	case ErrInvalidBody, account.ErrInvalidProfile, account.ErrInvalidBudget:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		return errors.New().Wrap(ErrInvalidBody, err)
	}
	return nil
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	writeJSON(w, statusFor(code), errorResponse{Error: string(code), Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
