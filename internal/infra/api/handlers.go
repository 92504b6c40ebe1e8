package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"paychangu-gateway/internal/domain"
	"paychangu-gateway/internal/domain/model"
	"paychangu-gateway/internal/infra/logging"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.gw.CreatePayment(r.Context(), req)
	s.respond(w, r, http.StatusCreated, res, err)
}

func (s *Server) verifyPayment(w http.ResponseWriter, r *http.Request) {
	res, err := s.gw.VerifyPayment(r.Context(), chi.URLParam(r, "ref"))
	s.respond(w, r, http.StatusOK, res, err)
}

func (s *Server) listBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := s.gw.ListBanks(r.Context(), r.URL.Query().Get("currency"))
	if err != nil {
		status := statusFor(err)
		logging.With(r.Context(), s.log).Warn().Err(err).Int("status", status).Msg("list banks failed")
		writeJSON(w, status, model.Result{Error: err.Error()})
		return
	}
	if banks == nil {
		banks = []model.Bank{}
	}
	writeJSON(w, http.StatusOK, struct {
		Success bool         `json:"success"`
		Banks   []model.Bank `json:"banks"`
	}{Success: true, Banks: banks})
}

func (s *Server) createMobilePayout(w http.ResponseWriter, r *http.Request) {
	var req model.MobilePayoutRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.gw.CreateMobilePayout(r.Context(), req)
	s.respond(w, r, http.StatusCreated, res, err)
}

func (s *Server) createBankPayout(w http.ResponseWriter, r *http.Request) {
	var req model.BankPayoutRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := s.gw.CreateBankPayout(r.Context(), req)
	s.respond(w, r, http.StatusCreated, res, err)
}

func (s *Server) verifyPayout(w http.ResponseWriter, r *http.Request) {
	res, err := s.gw.VerifyPayout(r.Context(), chi.URLParam(r, "ref"))
	s.respond(w, r, http.StatusOK, res, err)
}

// respond writes the Result envelope. Remote rejections map to 502 so callers
// can tell them apart from relay-side input errors (400).
func (s *Server) respond(w http.ResponseWriter, r *http.Request, okStatus int, res model.Result, err error) {
	switch {
	case err != nil:
		status := statusFor(err)
		logging.With(r.Context(), s.log).Warn().Err(err).Int("status", status).Msg("gateway call failed")
		writeJSON(w, status, res)
	case !res.Success:
		writeJSON(w, http.StatusBadGateway, res)
	default:
		writeJSON(w, okStatus, res)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnrecognizedOperator):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrRemote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// readJSON parses a request body into dst, rejecting unknown fields.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.Result{Error: message})
}
