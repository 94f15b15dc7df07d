package render

import (
	"fmt"
	"time"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

// Issuer is the company block as it should be printed.
type Issuer struct {
	Name    string
	Address string
	Phone   string // empty when hidden by settings
	Email   string // empty when hidden by settings
	HasLogo bool
}

// Row is one printed invoice line. Quantity and UnitPrice come from the
// engine, so they are the clamped values the totals were computed from.
type Row struct {
	No          int
	Name        string
	Description string
	models.LineTotals
}

// SummaryLine is one row of the totals block.
type SummaryLine struct {
	Label    string  `json:"label"`
	Amount   float64 `json:"amount"`
	Negative bool    `json:"negative,omitempty"` // printed with a leading minus
	Strong   bool    `json:"strong,omitempty"`
}

// Document is the view model every renderer consumes. It is derived once so
// the preview and the PDF cannot disagree.
type Document struct {
	Number             string
	Date               time.Time
	Currency           string
	Issuer             Issuer
	Customer           models.Customer
	Rows               []Row
	ShowDiscountColumn bool
	Mode               invoice.DisplayMode
	Totals             models.InvoiceTotals
	Summary            []SummaryLine
	Notes              string
	Footer             string
}

// BuildDocument derives the printable view of inv.
func BuildDocument(company models.Company, inv models.Invoice, settings models.Settings) Document {
	totals := invoice.ComputeTotals(inv, settings)

	doc := Document{
		Number:   inv.Number,
		Date:     inv.Created(),
		Currency: settings.Currency,
		Issuer: Issuer{
			Name:    company.Name,
			Address: company.Address,
			HasLogo: company.LogoDataURL != "",
		},
		Customer:           inv.Customer,
		Rows:               make([]Row, 0, len(inv.Items)),
		ShowDiscountColumn: invoice.AnyItemDiscount(inv),
		Mode:               invoice.DisplayModeFor(totals, settings),
		Totals:             totals,
		Notes:              inv.Notes,
		Footer:             settings.InvoiceFooter,
	}
	if settings.ShowCompanyPhone {
		doc.Issuer.Phone = company.Phone
	}
	if settings.ShowCompanyEmail {
		doc.Issuer.Email = company.Email
	}
	if doc.Footer == "" {
		doc.Footer = models.DefaultFooter
	}

	for i, it := range inv.Items {
		doc.Rows = append(doc.Rows, Row{
			No:          i + 1,
			Name:        it.Name,
			Description: it.Description,
			LineTotals:  invoice.ComputeLine(it),
		})
	}

	doc.Summary = SummaryLines(inv, totals, settings)
	return doc
}

// SummaryLines lists the rows of the totals block for the display mode
// chosen by invoice.DisplayModeFor.
func SummaryLines(inv models.Invoice, t models.InvoiceTotals, settings models.Settings) []SummaryLine {
	if invoice.DisplayModeFor(t, settings) == invoice.DisplaySimple {
		return []SummaryLine{{Label: "Total", Amount: t.Total, Strong: true}}
	}

	lines := []SummaryLine{{Label: "Subtotal (before discounts)", Amount: t.SubtotalBase}}
	if t.ItemDiscountTotal > 0 {
		lines = append(lines, SummaryLine{Label: "Item discounts", Amount: t.ItemDiscountTotal, Negative: true})
	}
	if t.ItemDiscountTotal > 0 || inv.InvoiceDiscountEnabled {
		lines = append(lines, SummaryLine{Label: "Subtotal after item discounts", Amount: t.SubtotalAfterItems})
	}
	if t.InvoiceDiscount > 0 {
		lines = append(lines, SummaryLine{Label: "Invoice discount", Amount: t.InvoiceDiscount, Negative: true})
	}
	lines = append(lines, SummaryLine{Label: "Subtotal", Amount: t.Taxable})
	if settings.ShowTax {
		lines = append(lines, SummaryLine{
			Label:  fmt.Sprintf("Tax (%s%%)", FormatPercent(invoice.TaxPercent(settings))),
			Amount: t.TaxTotal,
		})
	}
	return append(lines, SummaryLine{Label: "Total", Amount: t.Total, Strong: true})
}

// Format prints the amount of l, with a minus sign for deductions.
func (l SummaryLine) Format(currency string) string {
	s := FormatCurrency(l.Amount, currency)
	if l.Negative {
		return "- " + s
	}
	return s
}
