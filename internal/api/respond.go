package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/internal/store"
)

// Response is the standard JSON envelope for all API responses.
type Response struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

const maxBodyBytes = 8 << 20 // logos travel as data URLs

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	writeResponse(w, status, Response{Data: data})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeResponse(w, status, Response{Error: msg})
}

// writeResponse encodes resp before touching the header, so a value that
// cannot be encoded turns into a 500 instead of an empty success.
func writeResponse(w http.ResponseWriter, status int, resp Response) {
	body, err := json.Marshal(resp)
	if err != nil {
		log := logger.WithComponent("api")
		log.Error().
			Err(err).
			Int("status", status).
			Msg("Failed to encode response")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(Response{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// decodeJSON decodes the request body into dst. Fields absent from the body
// keep the values dst already holds.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeFailure maps workbook and storage errors onto status codes.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErr *invoice.ValidationError
		pErr *store.PersistError
	)
	for _, notFound := range []error{invoice.ErrInvoiceNotFound, invoice.ErrItemNotFound, invoice.ErrProductNotFound} {
		if errors.Is(err, notFound) {
			writeError(w, http.StatusNotFound, notFound.Error())
			return
		}
	}

	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &pErr):
		s.log.Error().Err(err).Str("slot", pErr.Slot).Str("kind", string(pErr.Kind)).Msg("Storage failure")
		status := http.StatusInternalServerError
		if pErr.Kind == store.KindQuotaExceeded {
			status = http.StatusInsufficientStorage
		}
		writeError(w, status, pErr.Message())
	default:
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
