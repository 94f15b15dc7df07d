package invoice

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"invoicer/pkg/models"
)

// NewID returns an opaque identifier such as "inv_1b4e28ba2fa1".
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "_" + raw[:12]
}

// NewNumber builds a human readable invoice number: ILI-YYYYMMDD-NNN.
// Numbers are not guaranteed unique.
func NewNumber(now time.Time) string {
	return fmt.Sprintf("ILI-%s-%03d", now.Format("20060102"), rand.IntN(900)+100)
}

// NewInvoice returns an empty invoice with discounts off.
func NewInvoice(now time.Time) models.Invoice {
	ms := now.UnixMilli()
	return models.Invoice{
		ID:                   NewID("inv"),
		CreatedAt:            ms,
		UpdatedAt:            ms,
		Number:               NewNumber(now),
		Items:                []models.InvoiceItem{},
		InvoiceDiscountType:  models.DiscountPercent,
		InvoiceDiscountValue: 0,
	}
}

// NewBlankItem returns a manual line with quantity 1 and no discount.
func NewBlankItem() models.InvoiceItem {
	return models.InvoiceItem{
		ID:           NewID("it"),
		Quantity:     1,
		DiscountType: models.DiscountPercent,
	}
}

// ApplyProduct copies the catalog fields into the line. The line's own
// quantity and discount settings are kept.
func ApplyProduct(it models.InvoiceItem, p models.Product) models.InvoiceItem {
	it.ProductID = p.ID
	it.Name = p.Name
	it.Description = p.Description
	it.Price = p.Price
	it.DiscountType = it.DiscountType.Normalize()
	return it
}

// Duplicate copies the customer, lines, notes and invoice discount of src into
// a fresh invoice with its own id, number and timestamps.
func Duplicate(src models.Invoice, now time.Time) models.Invoice {
	dup := NewInvoice(now)
	dup.Customer = src.Customer
	dup.Items = slices.Clone(src.Items)
	if dup.Items == nil {
		dup.Items = []models.InvoiceItem{}
	}
	dup.Notes = src.Notes
	dup.InvoiceDiscountEnabled = src.InvoiceDiscountEnabled
	dup.InvoiceDiscountType = src.InvoiceDiscountType
	dup.InvoiceDiscountValue = src.InvoiceDiscountValue
	return dup
}

// Touch refreshes UpdatedAt.
func Touch(inv *models.Invoice, now time.Time) {
	inv.UpdatedAt = now.UnixMilli()
}

// Filter returns invoices whose number, customer name or notes contain query
// (case-insensitive), most recently updated first. The input is not modified.
func Filter(invoices []models.Invoice, query string) []models.Invoice {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if q == "" ||
			strings.Contains(strings.ToLower(inv.Number), q) ||
			strings.Contains(strings.ToLower(inv.Customer.Name), q) ||
			strings.Contains(strings.ToLower(inv.Notes), q) {
			out = append(out, inv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt > out[j].UpdatedAt
	})
	return out
}

// FilterProducts returns products whose name or description contains query.
func FilterProducts(products []models.Product, query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out
}

// ValidateSettings checks the enumerated presentation fields.
func ValidateSettings(s models.Settings) error {
	if !slices.Contains(models.Currencies, s.Currency) {
		return NewValidationError("currency", s.Currency, "must be one of "+strings.Join(models.Currencies, ", "))
	}
	switch s.Theme {
	case models.ThemeSystem, models.ThemeLight, models.ThemeDark:
	default:
		return NewValidationError("theme", s.Theme, "must be one of system, light, dark")
	}
	if !slices.Contains(models.Accents, s.Accent) {
		return NewValidationError("accent", s.Accent, "must be one of "+strings.Join(models.Accents, ", "))
	}
	return nil
}
