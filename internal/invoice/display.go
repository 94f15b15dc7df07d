package invoice

import (
	"fmt"

	"invoicer/pkg/models"
)

// DisplayMode decides how a totals block is laid out.
type DisplayMode int

const (
	// DisplaySimple shows only the grand total.
	DisplaySimple DisplayMode = iota
	// DisplayItemized shows the subtotal, discount and tax breakdown.
	DisplayItemized
)

func (m DisplayMode) String() string {
	if m == DisplayItemized {
		return "itemized"
	}
	return "simple"
}

// MarshalText lets the mode travel as "simple" / "itemized" in JSON.
func (m DisplayMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *DisplayMode) UnmarshalText(b []byte) error {
	switch string(b) {
	case "simple":
		*m = DisplaySimple
	case "itemized":
		*m = DisplayItemized
	default:
		return fmt.Errorf("invalid display mode %q", b)
	}
	return nil
}

// HasDiscount reports whether any discount actually reduced the invoice.
func HasDiscount(t models.InvoiceTotals) bool {
	return t.ItemDiscountTotal > 0 || t.InvoiceDiscount > 0
}

// HasTax reports whether tax is shown with a positive rate.
func HasTax(s models.Settings) bool {
	return s.ShowTax && TaxPercent(s) > 0
}

// DisplayModeFor is the only place the simple/itemized decision is made;
// every renderer goes through it.
func DisplayModeFor(t models.InvoiceTotals, s models.Settings) DisplayMode {
	if !HasDiscount(t) && !HasTax(s) {
		return DisplaySimple
	}
	return DisplayItemized
}

// AnyItemDiscount reports whether at least one row carries an active discount,
// which is when renderers add a discount column.
func AnyItemDiscount(inv models.Invoice) bool {
	for _, it := range inv.Items {
		d := it.Discount()
		if d.Enabled && finite(d.Value) > 0 {
			return true
		}
	}
	return false
}
