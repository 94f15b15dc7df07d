package invoice

import (
	"math"

	"invoicer/pkg/models"
)

// clamp bounds n to [min, max]. NaN collapses to min.
func clamp(n, min, max float64) float64 {
	if math.IsNaN(n) {
		return min
	}
	return math.Min(math.Max(n, min), max)
}

// nonNegative is clamp with the default bounds [0, +Inf).
func nonNegative(n float64) float64 {
	return clamp(n, 0, math.Inf(1))
}

// finite treats malformed numbers (NaN, ±Inf) as zero.
func finite(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// saturate keeps a sum or product in float64 range: overflow pins to the
// largest finite value, NaN becomes zero.
func saturate(n float64) float64 {
	if math.IsNaN(n) {
		return 0
	}
	return clamp(n, -math.MaxFloat64, math.MaxFloat64)
}

// discountOn returns the discount d takes from base, capped at base.
func discountOn(d models.Discount, base float64) float64 {
	value := finite(d.Value)
	if !d.Enabled || value <= 0 {
		return 0
	}
	if d.Type == models.DiscountAmount {
		return clamp(value, 0, base)
	}
	return clamp(saturate(value/100*base), 0, base)
}

// ComputeLine returns the amounts of a single row. Renderers use it instead
// of repeating the formula.
func ComputeLine(it models.InvoiceItem) models.LineTotals {
	qty := nonNegative(finite(it.Quantity))
	price := nonNegative(finite(it.Price))
	base := saturate(qty * price)
	discount := discountOn(it.Discount(), base)

	return models.LineTotals{
		Quantity:  qty,
		UnitPrice: price,
		Base:      base,
		Discount:  discount,
		LineTotal: nonNegative(base - discount),
	}
}

// ComputeLines returns ComputeLine for every item, in item order.
func ComputeLines(inv models.Invoice) []models.LineTotals {
	lines := make([]models.LineTotals, len(inv.Items))
	for i, it := range inv.Items {
		lines[i] = ComputeLine(it)
	}
	return lines
}

// ComputeTotals derives the invoice totals. Item discounts apply first, the
// invoice discount is taken from what remains, and tax is charged last on the
// fully discounted amount. Every intermediate value is clamped at zero, so no
// input can drive a total negative. It never fails and has no side effects.
func ComputeTotals(inv models.Invoice, settings models.Settings) models.InvoiceTotals {
	var subtotalBase, itemDiscountTotal float64
	for _, it := range inv.Items {
		line := ComputeLine(it)
		subtotalBase = saturate(subtotalBase + line.Base)
		itemDiscountTotal = saturate(itemDiscountTotal + line.Discount)
	}

	subtotalAfterItems := nonNegative(subtotalBase - itemDiscountTotal)
	invoiceDiscount := discountOn(inv.Discount(), subtotalAfterItems)
	taxable := nonNegative(subtotalAfterItems - invoiceDiscount)

	var taxTotal float64
	if settings.ShowTax {
		pct := TaxPercent(settings)
		taxTotal = taxable * pct / 100
		if math.IsInf(taxTotal, 0) {
			taxTotal = saturate(taxable / 100 * pct)
		}
	}

	return models.InvoiceTotals{
		SubtotalBase:       subtotalBase,
		ItemDiscountTotal:  itemDiscountTotal,
		InvoiceDiscount:    invoiceDiscount,
		SubtotalAfterItems: subtotalAfterItems,
		Taxable:            taxable,
		TaxTotal:           taxTotal,
		Total:              saturate(taxable + taxTotal),
	}
}

// TaxPercent is the effective tax rate: malformed or negative values count as 0.
func TaxPercent(settings models.Settings) float64 {
	return nonNegative(finite(settings.TaxPercent))
}
