package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"invoicer/internal/invoice"
	"invoicer/internal/render"
	"invoicer/pkg/models"
)

// ---- Settings & company ------------------------------------------------------

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.wb.Settings(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// putSettings applies the fields present in the body to the stored settings.
func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.wb.Settings(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if err := decodeJSON(w, r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.wb.SaveSettings(r.Context(), settings); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	company, err := s.wb.Company(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (s *Server) putCompany(w http.ResponseWriter, r *http.Request) {
	company, err := s.wb.Company(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if err := decodeJSON(w, r, &company); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.wb.SaveCompany(r.Context(), company); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

// ---- Current invoice -----------------------------------------------------------

func (s *Server) getCurrent(w http.ResponseWriter, r *http.Request) {
	inv, err := s.wb.EnsureCurrent(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) putCurrent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := s.wb.SetCurrent(r.Context(), req.ID); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.getCurrent(w, r)
}

// ---- Products ----------------------------------------------------------------

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.wb.Products(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.wb.Product(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var p models.Product
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	p.ID = ""
	created, err := s.wb.CreateProduct(r.Context(), p)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var patch json.RawMessage
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.wb.UpdateProduct(r.Context(), chi.URLParam(r, "id"), func(p *models.Product) error {
		return applyPatch(patch, p)
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := s.wb.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Totals ------------------------------------------------------------------

// totalsView is the derived state returned for an invoice.
type totalsView struct {
	InvoiceID string               `json:"invoiceId,omitempty"`
	Currency  string               `json:"currency"`
	Totals    models.InvoiceTotals `json:"totals"`
	Lines     []models.LineTotals  `json:"lines"`
	Mode      invoice.DisplayMode  `json:"mode"`
	Summary   []render.SummaryLine `json:"summary"`
}

func newTotalsView(inv models.Invoice, settings models.Settings) totalsView {
	totals := invoice.ComputeTotals(inv, settings)
	return totalsView{
		InvoiceID: inv.ID,
		Currency:  settings.Currency,
		Totals:    totals,
		Lines:     invoice.ComputeLines(inv),
		Mode:      invoice.DisplayModeFor(totals, settings),
		Summary:   render.SummaryLines(inv, totals, settings),
	}
}

// computeTotals evaluates an invoice sent in the body without storing it.
// Settings default to the stored ones when the body has none.
func (s *Server) computeTotals(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Invoice  models.Invoice  `json:"invoice"`
		Settings json.RawMessage `json:"settings"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := s.wb.Settings(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if len(req.Settings) > 0 && string(req.Settings) != "null" {
		settings = models.DefaultSettings()
		if err := json.Unmarshal(req.Settings, &settings); err != nil {
			writeError(w, http.StatusBadRequest, "invalid settings: "+err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, newTotalsView(req.Invoice, settings))
}

// applyPatch overlays the fields present in patch onto dst.
func applyPatch(patch json.RawMessage, dst any) error {
	if len(patch) == 0 {
		return nil
	}
	if err := json.Unmarshal(patch, dst); err != nil {
		return invoice.NewValidationError("body", "json", err.Error())
	}
	return nil
}
