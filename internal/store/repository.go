package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

// Repository gives typed access to the slots of a Store.
//
// Loads of an empty slot return the slot's default. A slot that cannot be
// decoded also yields the default, together with a *PersistError of kind
// parse_error so the caller can warn and carry on; the next save overwrites it.
type Repository struct {
	store Store
	log   zerolog.Logger
	mu    sync.Mutex
}

// NewRepository wraps s.
func NewRepository(s Store) *Repository {
	return &Repository{
		store: s,
		log:   logger.WithComponent("repository"),
	}
}

// Store returns the underlying store.
func (r *Repository) Store() Store {
	return r.store
}

// Locked runs fn while holding the repository's write lock. Read-modify-write
// sequences go through it so concurrent requests do not lose updates.
func (r *Repository) Locked(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn()
}

func (r *Repository) load(ctx context.Context, slot string, dst any) (bool, error) {
	data, err := r.store.Get(ctx, slot)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, newPersistError("load", slot, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.log.Warn().Err(err).Str("slot", slot).Msg("Failed to decode stored slot, using defaults")
		return false, &PersistError{Op: "load", Slot: slot, Kind: KindParse, Err: fmt.Errorf("%w: %v", ErrParse, err)}
	}
	return true, nil
}

func (r *Repository) save(ctx context.Context, slot string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("save %s: encoding: %w", slot, err)
	}
	if err := r.store.Set(ctx, slot, data); err != nil {
		perr := newPersistError("save", slot, err)
		r.log.Error().Err(err).Str("slot", slot).Str("kind", string(perr.Kind)).Msg("Failed to save slot")
		return perr
	}
	return nil
}

// Company loads the issuer profile.
func (r *Repository) Company(ctx context.Context) (models.Company, error) {
	var c models.Company
	if _, err := r.load(ctx, SlotCompany, &c); err != nil {
		return models.Company{}, err
	}
	return c, nil
}

// SaveCompany stores the issuer profile.
func (r *Repository) SaveCompany(ctx context.Context, c models.Company) error {
	return r.save(ctx, SlotCompany, c)
}

// Products loads the catalog.
func (r *Repository) Products(ctx context.Context) ([]models.Product, error) {
	var ps []models.Product
	if _, err := r.load(ctx, SlotProducts, &ps); err != nil {
		return []models.Product{}, err
	}
	if ps == nil {
		ps = []models.Product{}
	}
	return ps, nil
}

// SaveProducts stores the catalog.
func (r *Repository) SaveProducts(ctx context.Context, ps []models.Product) error {
	if ps == nil {
		ps = []models.Product{}
	}
	return r.save(ctx, SlotProducts, ps)
}

// Invoices loads every invoice in stored order.
func (r *Repository) Invoices(ctx context.Context) ([]models.Invoice, error) {
	var invs []models.Invoice
	if _, err := r.load(ctx, SlotInvoices, &invs); err != nil {
		return []models.Invoice{}, err
	}
	if invs == nil {
		invs = []models.Invoice{}
	}
	return invs, nil
}

// SaveInvoices stores every invoice.
func (r *Repository) SaveInvoices(ctx context.Context, invs []models.Invoice) error {
	if invs == nil {
		invs = []models.Invoice{}
	}
	return r.save(ctx, SlotInvoices, invs)
}

// CurrentInvoiceID returns the id of the invoice being edited, or "".
func (r *Repository) CurrentInvoiceID(ctx context.Context) (string, error) {
	var id *string
	if _, err := r.load(ctx, SlotCurrentInvoiceID, &id); err != nil {
		return "", err
	}
	if id == nil {
		return "", nil
	}
	return *id, nil
}

// SetCurrentInvoiceID stores the id of the invoice being edited. An empty id
// is stored as null.
func (r *Repository) SetCurrentInvoiceID(ctx context.Context, id string) error {
	if id == "" {
		return r.save(ctx, SlotCurrentInvoiceID, nil)
	}
	return r.save(ctx, SlotCurrentInvoiceID, id)
}

// legacySettings captures fields whose presence matters for migration.
type legacySettings struct {
	TaxPercent        *float64 `json:"taxPercent"`
	DefaultTaxPercent *float64 `json:"defaultTaxPercent"`
	InvoiceFooter     *string  `json:"invoiceFooter"`
}

// Settings loads preferences on top of the defaults and migrates older
// documents: defaultTaxPercent fills a missing taxPercent, and an absent
// footer or accent falls back to the default.
func (r *Repository) Settings(ctx context.Context) (models.Settings, error) {
	s := models.DefaultSettings()

	data, err := r.store.Get(ctx, SlotSettings)
	if errors.Is(err, ErrNotFound) {
		return s, nil
	}
	if err != nil {
		return s, newPersistError("load", SlotSettings, err)
	}

	var legacy legacySettings
	if err := json.Unmarshal(data, &s); err != nil {
		r.log.Warn().Err(err).Str("slot", SlotSettings).Msg("Failed to decode settings, using defaults")
		return models.DefaultSettings(), &PersistError{Op: "load", Slot: SlotSettings, Kind: KindParse, Err: fmt.Errorf("%w: %v", ErrParse, err)}
	}
	_ = json.Unmarshal(data, &legacy)

	if legacy.TaxPercent == nil && legacy.DefaultTaxPercent != nil {
		s.TaxPercent = *legacy.DefaultTaxPercent
	}
	if legacy.InvoiceFooter == nil {
		s.InvoiceFooter = models.DefaultFooter
	}
	if s.Accent == "" {
		s.Accent = models.DefaultSettings().Accent
	}
	return s, nil
}

// SaveSettings stores preferences.
func (r *Repository) SaveSettings(ctx context.Context, s models.Settings) error {
	return r.save(ctx, SlotSettings, s)
}
