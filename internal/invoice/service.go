// Package invoice holds the totals engine and the invoice workflow.
//
// The engine (ComputeTotals, ComputeLine, DisplayModeFor) is pure: it takes
// an invoice and settings snapshot and returns derived numbers, never fails
// and never touches storage. Malformed numeric input is normalized by
// clamping instead of being rejected.
//
// The Workbook layers the editing workflow on top of a store.Repository:
//   - invoices are kept newest first and one of them is always "current"
//   - every invoice mutation refreshes UpdatedAt
//   - lines created from a product copy its name, description and price
//   - deleting the current invoice moves the cursor to the next one, or to a
//     freshly created invoice when none remain
package invoice

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"invoicer/internal/logger"
	"invoicer/internal/store"
	"invoicer/pkg/models"
)

// Workbook is the editing service over the persisted state.
type Workbook struct {
	repo *store.Repository
	now  func() time.Time
	log  zerolog.Logger
}

// NewWorkbook creates a workbook over repo. A nil clock uses time.Now.
func NewWorkbook(repo *store.Repository, clock func() time.Time) *Workbook {
	if clock == nil {
		clock = time.Now
	}
	return &Workbook{
		repo: repo,
		now:  clock,
		log:  logger.WithComponent("workbook"),
	}
}

// tolerate lets unreadable slots degrade to their defaults, which the next
// save overwrites.
func (w *Workbook) tolerate(err error) error {
	if err != nil && errors.Is(err, store.ErrParse) {
		w.log.Warn().Err(err).Msg("Continuing with defaults for unreadable slot")
		return nil
	}
	return err
}

// Snapshot returns everything a renderer needs for one invoice.
func (w *Workbook) Snapshot(ctx context.Context, id string) (models.Company, models.Invoice, models.Settings, error) {
	company, err := w.Company(ctx)
	if err != nil {
		return models.Company{}, models.Invoice{}, models.Settings{}, err
	}
	settings, err := w.Settings(ctx)
	if err != nil {
		return models.Company{}, models.Invoice{}, models.Settings{}, err
	}
	inv, err := w.Get(ctx, id)
	if err != nil {
		return models.Company{}, models.Invoice{}, models.Settings{}, err
	}
	return company, inv, settings, nil
}

// Totals computes the totals of a stored invoice with the stored settings.
func (w *Workbook) Totals(ctx context.Context, id string) (models.Invoice, models.InvoiceTotals, error) {
	settings, err := w.Settings(ctx)
	if err != nil {
		return models.Invoice{}, models.InvoiceTotals{}, err
	}
	inv, err := w.Get(ctx, id)
	if err != nil {
		return models.Invoice{}, models.InvoiceTotals{}, err
	}
	return inv, ComputeTotals(inv, settings), nil
}

// ---- Settings & company ------------------------------------------------------

func (w *Workbook) Settings(ctx context.Context) (models.Settings, error) {
	s, err := w.repo.Settings(ctx)
	return s, w.tolerate(err)
}

// SaveSettings validates the enumerated fields and stores s.
func (w *Workbook) SaveSettings(ctx context.Context, s models.Settings) error {
	if err := ValidateSettings(s); err != nil {
		return err
	}
	return wrap("SaveSettings", "", w.repo.SaveSettings(ctx, s))
}

func (w *Workbook) Company(ctx context.Context) (models.Company, error) {
	c, err := w.repo.Company(ctx)
	return c, w.tolerate(err)
}

func (w *Workbook) SaveCompany(ctx context.Context, c models.Company) error {
	return wrap("SaveCompany", "", w.repo.SaveCompany(ctx, c))
}

// ---- Products ----------------------------------------------------------------

// Products lists the catalog, filtered by query when it is not empty.
func (w *Workbook) Products(ctx context.Context, query string) ([]models.Product, error) {
	ps, err := w.repo.Products(ctx)
	if err = w.tolerate(err); err != nil {
		return nil, err
	}
	return FilterProducts(ps, query), nil
}

func (w *Workbook) Product(ctx context.Context, id string) (models.Product, error) {
	ps, err := w.repo.Products(ctx)
	if err = w.tolerate(err); err != nil {
		return models.Product{}, err
	}
	i := slices.IndexFunc(ps, func(p models.Product) bool { return p.ID == id })
	if i < 0 {
		return models.Product{}, wrap("Product", id, ErrProductNotFound)
	}
	return ps[i], nil
}

// CreateProduct adds p at the top of the catalog, assigning an id if needed.
func (w *Workbook) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	const op = "CreateProduct"
	if p.ID == "" {
		p.ID = NewID("prd")
	}
	err := w.repo.Locked(func() error {
		ps, err := w.repo.Products(ctx)
		if err = w.tolerate(err); err != nil {
			return err
		}
		if slices.ContainsFunc(ps, func(q models.Product) bool { return q.ID == p.ID }) {
			return NewValidationError("id", p.ID, "a product with this id already exists")
		}
		return w.repo.SaveProducts(ctx, append([]models.Product{p}, ps...))
	})
	if err != nil {
		return models.Product{}, wrap(op, p.ID, err)
	}
	w.log.Info().Str("product_id", p.ID).Str("name", p.Name).Msg("Product created")
	return p, nil
}

// UpdateProduct applies fn to the product. Existing invoice lines keep their
// own copies and are not touched.
func (w *Workbook) UpdateProduct(ctx context.Context, id string, fn func(*models.Product) error) (models.Product, error) {
	const op = "UpdateProduct"
	var out models.Product
	err := w.repo.Locked(func() error {
		ps, err := w.repo.Products(ctx)
		if err = w.tolerate(err); err != nil {
			return err
		}
		i := slices.IndexFunc(ps, func(p models.Product) bool { return p.ID == id })
		if i < 0 {
			return ErrProductNotFound
		}
		if err := fn(&ps[i]); err != nil {
			return err
		}
		ps[i].ID = id
		out = ps[i]
		return w.repo.SaveProducts(ctx, ps)
	})
	return out, wrap(op, id, err)
}

func (w *Workbook) DeleteProduct(ctx context.Context, id string) error {
	const op = "DeleteProduct"
	err := w.repo.Locked(func() error {
		ps, err := w.repo.Products(ctx)
		if err = w.tolerate(err); err != nil {
			return err
		}
		n := len(ps)
		kept := slices.DeleteFunc(ps, func(p models.Product) bool { return p.ID == id })
		if len(kept) == n {
			return ErrProductNotFound
		}
		return w.repo.SaveProducts(ctx, kept)
	})
	return wrap(op, id, err)
}

// ---- Invoices ----------------------------------------------------------------

// Invoices lists invoices matching query, most recently updated first.
func (w *Workbook) Invoices(ctx context.Context, query string) ([]models.Invoice, error) {
	invs, err := w.repo.Invoices(ctx)
	if err = w.tolerate(err); err != nil {
		return nil, err
	}
	return Filter(invs, query), nil
}

func (w *Workbook) Get(ctx context.Context, id string) (models.Invoice, error) {
	invs, err := w.repo.Invoices(ctx)
	if err = w.tolerate(err); err != nil {
		return models.Invoice{}, err
	}
	i := indexOf(invs, id)
	if i < 0 {
		return models.Invoice{}, wrap("Get", id, ErrInvoiceNotFound)
	}
	return invs[i], nil
}

func indexOf(invs []models.Invoice, id string) int {
	return slices.IndexFunc(invs, func(inv models.Invoice) bool { return inv.ID == id })
}

// EnsureCurrent returns the invoice being edited, creating one when the cursor is
// unset or points at an invoice that no longer exists.
func (w *Workbook) EnsureCurrent(ctx context.Context) (models.Invoice, error) {
	var cur models.Invoice
	err := w.repo.Locked(func() error {
		invs, err := w.repo.Invoices(ctx)
		if err = w.tolerate(err); err != nil {
			return err
		}
		id, err := w.repo.CurrentInvoiceID(ctx)
		if err = w.tolerate(err); err != nil {
			return err
		}
		if i := indexOf(invs, id); id != "" && i >= 0 {
			cur = invs[i]
			return nil
		}
		cur = NewInvoice(w.now())
		if err := w.repo.SaveInvoices(ctx, append([]models.Invoice{cur}, invs...)); err != nil {
			return err
		}
		w.log.Info().Str("invoice_id", cur.ID).Msg("No current invoice, created a new one")
		return w.repo.SetCurrentInvoiceID(ctx, cur.ID)
	})
	return cur, wrap("EnsureCurrent", "", err)
}

// CurrentID returns the cursor without creating anything. It may name an
// invoice that no longer exists.
func (w *Workbook) CurrentID(ctx context.Context) (string, error) {
	id, err := w.repo.CurrentInvoiceID(ctx)
	return id, wrap("CurrentID", "", w.tolerate(err))
}

// SetCurrent moves the cursor to an existing invoice.
func (w *Workbook) SetCurrent(ctx context.Context, id string) error {
	err := w.repo.Locked(func() error {
		invs, err := w.repo.Invoices(ctx)
		if err = w.tolerate(err); err != nil {
			return err
		}
		if indexOf(invs, id) < 0 {
			return ErrInvoiceNotFound
		}
		return w.repo.SetCurrentInvoiceID(ctx, id)
	})
	return wrap("SetCurrent", id, err)
}

// Create adds a new empty invoice at the top and makes it current.
func (w *Workbook) Create(ctx context.Context) (models.Invoice, error) {
	inv := NewInvoice(w.now())
	if err := w.insertCurrent(ctx, inv); err != nil {
		return models.Invoice{}, wrap("Create", inv.ID, err)
	}
	w.log.Info().Str("invoice_id", inv.ID).Str("number", inv.Number).Msg("Invoice created")
	return inv, nil
}

// Duplicate copies an invoice into a new current invoice.
func (w *Workbook) Duplicate(ctx context.Context, id string) (models.Invoice, error) {
	src, err := w.Get(ctx, id)
	if err != nil {
		return models.Invoice{}, err
	}
	dup := Duplicate(src, w.now())
	if err := w.insertCurrent(ctx, dup); err != nil {
		return models.Invoice{}, wrap("Duplicate", id, err)
	}
	w.log.Info().Str("source_id", id).Str("invoice_id", dup.ID).Msg("Invoice duplicated")
	return dup, nil
}

func (w *Workbook) insertCurrent(ctx context.Context, inv models.Invoice) error {
	return w.repo.Locked(func() error {
		invs, err := w.repo.Invoices(ctx)
		if err = w.tolerate(err); err != nil {
			return err
		}
		if err := w.repo.SaveInvoices(ctx, append([]models.Invoice{inv}, invs...)); err != nil {
			return err
		}
		return w.repo.SetCurrentInvoiceID(ctx, inv.ID)
	})
}

// Update applies fn to a copy of the invoice and stores it with a refreshed
// UpdatedAt. The id and creation time cannot be changed by fn.
func (w *Workbook) Update(ctx context.Context, id string, fn func(*models.Invoice) error) (models.Invoice, error) {
	var out models.Invoice
	err := w.repo.Locked(func() error {
		invs, err := w.repo.Invoices(ctx)
		if err = w.tolerate(err); err != nil {
			return err
		}
		i := indexOf(invs, id)
		if i < 0 {
			return ErrInvoiceNotFound
		}
		inv := invs[i].Clone()
		if err := fn(&inv); err != nil {
			return err
		}
		inv.ID = invs[i].ID
		inv.CreatedAt = invs[i].CreatedAt
		if inv.Items == nil {
			inv.Items = []models.InvoiceItem{}
		}
		Touch(&inv, w.now())
		invs[i] = inv
		out = inv
		return w.repo.SaveInvoices(ctx, invs)
	})
	return out, wrap("Update", id, err)
}

// Delete removes the given invoices and returns how many were removed. When
// the current invoice is among them the cursor moves to the first remaining
// invoice, or to a new one if none remain.
func (w *Workbook) Delete(ctx context.Context, ids ...string) (int, error) {
	var removed int
	err := w.repo.Locked(func() error {
		invs, err := w.repo.Invoices(ctx)
		if err = w.tolerate(err); err != nil {
			return err
		}
		before := len(invs)
		remaining := slices.DeleteFunc(slices.Clone(invs), func(inv models.Invoice) bool {
			return slices.Contains(ids, inv.ID)
		})
		removed = before - len(remaining)
		if removed == 0 {
			return ErrInvoiceNotFound
		}

		current, err := w.repo.CurrentInvoiceID(ctx)
		if err = w.tolerate(err); err != nil {
			return err
		}
		if slices.Contains(ids, current) || indexOf(remaining, current) < 0 {
			if len(remaining) > 0 {
				current = remaining[0].ID
			} else {
				fresh := NewInvoice(w.now())
				remaining = []models.Invoice{fresh}
				current = fresh.ID
			}
		}
		if err := w.repo.SaveInvoices(ctx, remaining); err != nil {
			return err
		}
		return w.repo.SetCurrentInvoiceID(ctx, current)
	})
	if err != nil {
		return 0, wrap("Delete", "", err)
	}
	w.log.Info().Int("removed", removed).Strs("ids", ids).Msg("Invoices deleted")
	return removed, nil
}

// ---- Items -------------------------------------------------------------------

// AddItem appends a line to the invoice. With a productID the line is filled
// from the catalog; otherwise it is blank.
func (w *Workbook) AddItem(ctx context.Context, invoiceID, productID string) (models.InvoiceItem, error) {
	item := NewBlankItem()
	if productID != "" {
		p, err := w.Product(ctx, productID)
		if err != nil {
			return models.InvoiceItem{}, err
		}
		item = ApplyProduct(item, p)
	}
	_, err := w.Update(ctx, invoiceID, func(inv *models.Invoice) error {
		inv.Items = append(inv.Items, item)
		return nil
	})
	if err != nil {
		return models.InvoiceItem{}, err
	}
	return item, nil
}

// UpdateItem applies fn to one line of the invoice.
func (w *Workbook) UpdateItem(ctx context.Context, invoiceID, itemID string, fn func(*models.InvoiceItem) error) (models.InvoiceItem, error) {
	var out models.InvoiceItem
	_, err := w.Update(ctx, invoiceID, func(inv *models.Invoice) error {
		i := slices.IndexFunc(inv.Items, func(it models.InvoiceItem) bool { return it.ID == itemID })
		if i < 0 {
			return ErrItemNotFound
		}
		if err := fn(&inv.Items[i]); err != nil {
			return err
		}
		inv.Items[i].ID = itemID
		out = inv.Items[i]
		return nil
	})
	return out, err
}

// RefillItem refills a line from the catalog and then applies fn, in one
// update. When fn fails nothing is saved, including the refill.
func (w *Workbook) RefillItem(ctx context.Context, invoiceID, itemID, productID string, fn func(*models.InvoiceItem) error) (models.InvoiceItem, error) {
	p, err := w.Product(ctx, productID)
	if err != nil {
		return models.InvoiceItem{}, err
	}
	return w.UpdateItem(ctx, invoiceID, itemID, func(it *models.InvoiceItem) error {
		*it = ApplyProduct(*it, p)
		if fn != nil {
			return fn(it)
		}
		return nil
	})
}

func (w *Workbook) RemoveItem(ctx context.Context, invoiceID, itemID string) error {
	_, err := w.Update(ctx, invoiceID, func(inv *models.Invoice) error {
		n := len(inv.Items)
		inv.Items = slices.DeleteFunc(inv.Items, func(it models.InvoiceItem) bool { return it.ID == itemID })
		if len(inv.Items) == n {
			return ErrItemNotFound
		}
		return nil
	})
	return err
}
