package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"invoicer/internal/invoice"
	"invoicer/internal/render"
	"invoicer/pkg/models"
)

func (s *Server) listInvoices(w http.ResponseWriter, r *http.Request) {
	invs, err := s.wb.Invoices(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invs)
}

func (s *Server) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.wb.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) createInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.wb.Create(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) duplicateInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.wb.Duplicate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// updateInvoice overlays the body onto the stored invoice. An items array
// replaces the lines outright. Lines sent without an id get one.
func (s *Server) updateInvoice(w http.ResponseWriter, r *http.Request) {
	var patch json.RawMessage
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	_, replaceItems := fields["items"]

	inv, err := s.wb.Update(r.Context(), chi.URLParam(r, "id"), func(inv *models.Invoice) error {
		if replaceItems {
			// decoding into the old backing array would keep stale fields
			inv.Items = nil
		}
		if err := applyPatch(patch, inv); err != nil {
			return err
		}
		for i := range inv.Items {
			if inv.Items[i].ID == "" {
				inv.Items[i].ID = invoice.NewID("it")
			}
		}
		return nil
	})
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	if _, err := s.wb.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) batchDeleteInvoices(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids is required")
		return
	}
	n, err := s.wb.Delete(r.Context(), req.IDs...)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

// ---- Items -------------------------------------------------------------------

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"productId"`
	}
	// an empty body adds a blank line
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	it, err := s.wb.AddItem(r.Context(), chi.URLParam(r, "id"), req.ProductID)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// updateItem overlays the body onto one line. A productId in the body
// refills the line from the catalog before the other fields are applied,
// in the same update.
func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	var patch json.RawMessage
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var parsed models.InvoiceItem
	if err := applyPatch(patch, &parsed); err != nil {
		s.writeFailure(w, r, err)
		return
	}

	invoiceID, itemID := chi.URLParam(r, "id"), chi.URLParam(r, "itemID")
	overlay := func(it *models.InvoiceItem) error {
		return applyPatch(patch, it)
	}
	var (
		it  models.InvoiceItem
		err error
	)
	if parsed.ProductID != "" {
		it, err = s.wb.RefillItem(r.Context(), invoiceID, itemID, parsed.ProductID, overlay)
	} else {
		it, err = s.wb.UpdateItem(r.Context(), invoiceID, itemID, overlay)
	}
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	if err := s.wb.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID")); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- Derived views -----------------------------------------------------------

func (s *Server) invoiceTotals(w http.ResponseWriter, r *http.Request) {
	_, inv, settings, err := s.wb.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTotalsView(inv, settings))
}

func (s *Server) document(r *http.Request) (render.Document, error) {
	company, inv, settings, err := s.wb.Snapshot(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return render.Document{}, err
	}
	return render.BuildDocument(company, inv, settings), nil
}

func (s *Server) invoicePreview(w http.ResponseWriter, r *http.Request) {
	doc, err := s.document(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := render.WriteText(&buf, doc); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (s *Server) invoicePDF(w http.ResponseWriter, r *http.Request) {
	doc, err := s.document(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	data, err := render.PDF(doc)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.FileName(doc.Number)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
