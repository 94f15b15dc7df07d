package sheets

import (
	"testing"
	"time"

	"invoicer/pkg/models"
)

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://docs.google.com/spreadsheets/d/1AbC-xyz_09/edit#gid=0", "1AbC-xyz_09", false},
		{"https://docs.google.com/spreadsheets/d/abc", "abc", false},
		{"https://example.com/sheet", "", true},
	}
	for _, tt := range tests {
		got, err := extractSpreadsheetID(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("extractSpreadsheetID(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("extractSpreadsheetID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestHistoryRows(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	invs := []models.Invoice{{
		Number:    "ILI-20240501-321",
		CreatedAt: created.UnixMilli(),
		UpdatedAt: created.UnixMilli(),
		Customer:  models.Customer{Name: "Rina"},
		Items: []models.InvoiceItem{
			{Quantity: 2, Price: 1000, DiscountEnabled: true, DiscountType: models.DiscountAmount, DiscountValue: 500},
		},
		InvoiceDiscountEnabled: true,
		InvoiceDiscountType:    models.DiscountPercent,
		InvoiceDiscountValue:   10,
	}}

	rows := HistoryRows(invs, models.DefaultSettings())
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d", len(rows))
	}
	r := rows[0]
	// 2000 - 500 = 1500, -10% = 1350, +10% tax = 1485
	if r.Subtotal != 2000 || r.Discounts != 650 || r.Tax != 135 || r.Total != 1485 {
		t.Errorf("row amounts = %+v", r)
	}
	if r.Customer != "Rina" || r.Items != 1 || r.Currency != models.CurrencyIDR || r.Date != "2024-05-01" {
		t.Errorf("row = %+v", r)
	}
	if got := len(rowToValues(r)); got != len(headers) {
		t.Errorf("row has %d values, header has %d", got, len(headers))
	}
}
