package render

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"invoicer/internal/invoice"
	"invoicer/pkg/models"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		value    float64
		currency string
		want     string
	}{
		{200000, models.CurrencyIDR, "Rp 200.000"},
		{1234.4, models.CurrencyIDR, "Rp 1.234"},
		{1234.5, models.CurrencyUSD, "$1,234.50"},
		{1234.5, models.CurrencyEUR, "1.234,50 €"},
		{0.005, models.CurrencySGD, "S$0.01"},
		{1234.5, models.CurrencyJPY, "¥1,235"},
		{-50, models.CurrencyUSD, "-$50.00"},
		{math.NaN(), models.CurrencyIDR, "Rp 0"},
		{math.Inf(1), models.CurrencyUSD, "$0.00"},
		{12.3, "GBP", "GBP 12.30"},
	}
	for _, tt := range tests {
		t.Run(tt.currency+"/"+tt.want, func(t *testing.T) {
			if got := FormatCurrency(tt.value, tt.currency); got != tt.want {
				t.Errorf("FormatCurrency(%v, %s) = %q, want %q", tt.value, tt.currency, got, tt.want)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	tests := map[float64]string{10: "10", 12.5: "12.5", 0: "0", math.NaN(): "0"}
	for in, want := range tests {
		if got := FormatPercent(in); got != want {
			t.Errorf("FormatPercent(%v) = %q, want %q", in, got, want)
		}
	}
}

func sampleInvoice() models.Invoice {
	return models.Invoice{
		ID:        "inv_1",
		Number:    "ILI-20240307-123",
		CreatedAt: time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC).UnixMilli(),
		Customer:  models.Customer{Name: "Budi", Address: "Jl. Merdeka 1"},
		Items: []models.InvoiceItem{
			{ID: "a", Name: "Kopi", Description: "Arabica 250g", Quantity: 2, Price: 50000},
			{ID: "b", Name: "Teh", Quantity: 1, Price: 20000, DiscountEnabled: true, DiscountType: models.DiscountPercent, DiscountValue: 50},
		},
		Notes:                  "Thanks",
		InvoiceDiscountEnabled: true,
		InvoiceDiscountType:    models.DiscountAmount,
		InvoiceDiscountValue:   10000,
	}
}

func sampleCompany() models.Company {
	return models.Company{Name: "Toko Maju", Address: "Bandung", Phone: "0812", Email: "toko@example.com"}
}

func labels(lines []SummaryLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Label
	}
	return out
}

func TestSummaryLines(t *testing.T) {
	s := models.DefaultSettings()

	tests := []struct {
		name     string
		invoice  models.Invoice
		settings models.Settings
		want     []string
	}{
		{
			name:     "simple",
			invoice:  models.Invoice{Items: []models.InvoiceItem{{Quantity: 1, Price: 10}}},
			settings: func() models.Settings { s := s; s.ShowTax = false; return s }(),
			want:     []string{"Total"},
		},
		{
			name:     "tax only",
			invoice:  models.Invoice{Items: []models.InvoiceItem{{Quantity: 1, Price: 10}}},
			settings: s,
			want:     []string{"Subtotal (before discounts)", "Subtotal", "Tax (10%)", "Total"},
		},
		{
			name:     "every row",
			invoice:  sampleInvoice(),
			settings: s,
			want: []string{
				"Subtotal (before discounts)",
				"Item discounts",
				"Subtotal after item discounts",
				"Invoice discount",
				"Subtotal",
				"Tax (10%)",
				"Total",
			},
		},
		{
			name: "enabled invoice discount of zero still shows the intermediate subtotal",
			invoice: models.Invoice{
				Items:                  []models.InvoiceItem{{Quantity: 1, Price: 10}},
				InvoiceDiscountEnabled: true,
			},
			settings: s,
			want:     []string{"Subtotal (before discounts)", "Subtotal after item discounts", "Subtotal", "Tax (10%)", "Total"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := invoice.ComputeTotals(tt.invoice, tt.settings)
			got := labels(SummaryLines(tt.invoice, totals, tt.settings))
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("SummaryLines() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildDocument(t *testing.T) {
	s := models.DefaultSettings()
	s.ShowCompanyEmail = false
	s.InvoiceFooter = ""

	doc := BuildDocument(sampleCompany(), sampleInvoice(), s)

	if doc.Mode != invoice.DisplayItemized {
		t.Errorf("Mode = %v, want itemized", doc.Mode)
	}
	if !doc.ShowDiscountColumn {
		t.Error("ShowDiscountColumn = false")
	}
	if doc.Issuer.Phone != "0812" || doc.Issuer.Email != "" {
		t.Errorf("Issuer = %+v", doc.Issuer)
	}
	if doc.Footer != models.DefaultFooter {
		t.Errorf("Footer = %q", doc.Footer)
	}
	if len(doc.Rows) != 2 || doc.Rows[1].LineTotal != 10000 || doc.Rows[1].Discount != 10000 {
		t.Errorf("Rows = %+v", doc.Rows)
	}
	// 120000 - 10000 item - 10000 invoice = 100000, +10% tax
	if doc.Totals.Total != 110000 {
		t.Errorf("Total = %v, want 110000", doc.Totals.Total)
	}
}

func TestWriteText(t *testing.T) {
	doc := BuildDocument(sampleCompany(), sampleInvoice(), models.DefaultSettings())

	var buf bytes.Buffer
	if err := WriteText(&buf, doc); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"INVOICE ILI-20240307-123",
		"Date: 2024-03-07",
		"Toko Maju",
		"Budi",
		"Arabica 250g",
		"Discount",
		"- Rp 10.000",
		"Tax (10%)",
		"Rp 110.000",
		"Thanks",
		models.DefaultFooter,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("preview does not contain %q:\n%s", want, out)
		}
	}
}

func TestWriteTextClampsRows(t *testing.T) {
	inv := models.Invoice{
		Number: "NEG-1",
		Items:  []models.InvoiceItem{{ID: "a", Name: "neg", Quantity: -2, Price: -50}},
	}
	doc := BuildDocument(models.Company{}, inv, models.Settings{Currency: models.CurrencyUSD})
	if r := doc.Rows[0]; r.Quantity != 0 || r.UnitPrice != 0 {
		t.Errorf("row = %+v, want clamped quantity and price", r)
	}

	var buf bytes.Buffer
	if err := WriteText(&buf, doc); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	if strings.Contains(buf.String(), "-$50.00") || strings.Contains(buf.String(), "-2") {
		t.Errorf("preview prints raw negative values:\n%s", buf.String())
	}
}

func TestPDF(t *testing.T) {
	doc := BuildDocument(sampleCompany(), sampleInvoice(), models.DefaultSettings())
	data, err := PDF(doc)
	if err != nil {
		t.Fatalf("PDF() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
}

func TestExportBatch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := models.DefaultSettings()

	inv := sampleInvoice()
	docs := []Document{
		BuildDocument(sampleCompany(), inv, s),
		BuildDocument(sampleCompany(), inv, s), // same number
		BuildDocument(models.Company{}, models.Invoice{Number: "A/1"}, s),
	}

	results, err := ExportBatch(context.Background(), docs, dir, 2)
	if err != nil {
		t.Fatalf("ExportBatch() error = %v", err)
	}
	want := []string{"ILI-20240307-123.pdf", "ILI-20240307-123-2.pdf", "A_1.pdf"}
	for i, r := range results {
		if r.Status != "ok" || r.Index != i {
			t.Fatalf("result %d = %+v", i, r)
		}
		if filepath.Base(r.Path) != want[i] {
			t.Errorf("result %d path = %s, want %s", i, r.Path, want[i])
		}
		if _, err := os.Stat(r.Path); err != nil {
			t.Errorf("missing file: %v", err)
		}
	}
}

func TestExportBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := []Document{BuildDocument(models.Company{}, models.Invoice{Number: "X"}, models.DefaultSettings())}
	results, err := ExportBatch(ctx, docs, t.TempDir(), 1)
	if err != nil {
		t.Fatalf("ExportBatch() error = %v", err)
	}
	if results[0].Status != "skipped" {
		t.Errorf("Status = %q, want skipped", results[0].Status)
	}
}
