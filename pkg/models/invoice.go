package models

import "time"

// DiscountType selects how a discount value is interpreted.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

// Normalize maps anything other than "amount" (including the empty value) to percent.
func (t DiscountType) Normalize() DiscountType {
	if t == DiscountAmount {
		return DiscountAmount
	}
	return DiscountPercent
}

// Discount is the normalized view of a line or invoice discount.
type Discount struct {
	Enabled bool
	Type    DiscountType
	Value   float64
}

// Active reports whether the discount contributes anything at all.
func (d Discount) Active() bool {
	return d.Enabled && d.Value > 0
}

type Customer struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// InvoiceItem is one billable line. Name, description and price are copies
// taken from the catalog, so later product edits never touch existing invoices.
type InvoiceItem struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId,omitempty"` // weak reference into the catalog
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"` // unit price

	DiscountEnabled bool         `json:"discountEnabled"`
	DiscountType    DiscountType `json:"discountType,omitempty"`
	DiscountValue   float64      `json:"discountValue"`
}

// Discount returns the line discount with its type defaulted.
func (it InvoiceItem) Discount() Discount {
	return Discount{
		Enabled: it.DiscountEnabled,
		Type:    it.DiscountType.Normalize(),
		Value:   it.DiscountValue,
	}
}

type Invoice struct {
	ID        string        `json:"id"`
	CreatedAt int64         `json:"createdAt"` // ms since epoch
	UpdatedAt int64         `json:"updatedAt"` // ms since epoch, refreshed on every mutation
	Number    string        `json:"number"`
	Customer  Customer      `json:"customer"`
	Items     []InvoiceItem `json:"items"`
	Notes     string        `json:"notes,omitempty"`

	InvoiceDiscountEnabled bool         `json:"invoiceDiscountEnabled"`
	InvoiceDiscountType    DiscountType `json:"invoiceDiscountType,omitempty"`
	InvoiceDiscountValue   float64      `json:"invoiceDiscountValue"`
}

// Discount returns the invoice-level discount with its type defaulted.
func (inv Invoice) Discount() Discount {
	return Discount{
		Enabled: inv.InvoiceDiscountEnabled,
		Type:    inv.InvoiceDiscountType.Normalize(),
		Value:   inv.InvoiceDiscountValue,
	}
}

// Created returns CreatedAt as a time value.
func (inv Invoice) Created() time.Time {
	return time.UnixMilli(inv.CreatedAt)
}

// Updated returns UpdatedAt as a time value.
func (inv Invoice) Updated() time.Time {
	return time.UnixMilli(inv.UpdatedAt)
}

// Clone returns a deep copy so callers can mutate items without aliasing.
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.Items != nil {
		out.Items = make([]InvoiceItem, len(inv.Items))
		copy(out.Items, inv.Items)
	}
	return out
}

// InvoiceTotals is derived from an Invoice and Settings on every read and is never stored.
type InvoiceTotals struct {
	SubtotalBase       float64 `json:"subtotalBase"`
	ItemDiscountTotal  float64 `json:"itemDiscountTotal"`
	InvoiceDiscount    float64 `json:"invoiceDiscount"`
	SubtotalAfterItems float64 `json:"subtotalAfterItems"`
	Taxable            float64 `json:"taxable"`
	TaxTotal           float64 `json:"taxTotal"`
	Total              float64 `json:"total"`
}

// LineTotals are the per-row amounts behind InvoiceTotals.
type LineTotals struct {
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Base      float64 `json:"base"`
	Discount  float64 `json:"discount"`
	LineTotal float64 `json:"lineTotal"`
}
