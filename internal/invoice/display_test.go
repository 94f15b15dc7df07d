package invoice

import (
	"encoding/json"
	"testing"

	"invoicer/pkg/models"
)

func TestDisplayModeFor(t *testing.T) {
	tests := []struct {
		name     string
		totals   models.InvoiceTotals
		settings models.Settings
		want     DisplayMode
	}{
		{"nothing to break down", models.InvoiceTotals{Total: 100}, noTax(), DisplaySimple},
		{"tax shown at zero rate", models.InvoiceTotals{Total: 100}, withTax(0), DisplaySimple},
		{"tax shown", models.InvoiceTotals{Total: 110}, withTax(10), DisplayItemized},
		{"item discount", models.InvoiceTotals{ItemDiscountTotal: 5}, noTax(), DisplayItemized},
		{"invoice discount", models.InvoiceTotals{InvoiceDiscount: 5}, noTax(), DisplayItemized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayModeFor(tt.totals, tt.settings); got != tt.want {
				t.Errorf("DisplayModeFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisplayModeJSON(t *testing.T) {
	data, err := json.Marshal(map[string]DisplayMode{"mode": DisplayItemized})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"mode":"itemized"}` {
		t.Errorf("Marshal() = %s", data)
	}
}

func TestAnyItemDiscount(t *testing.T) {
	disabled := item(1, 10)
	disabled.DiscountValue = 50

	tests := []struct {
		name  string
		items []models.InvoiceItem
		want  bool
	}{
		{"no items", nil, false},
		{"disabled with value", []models.InvoiceItem{disabled}, false},
		{"enabled with zero", []models.InvoiceItem{itemDiscount(1, 10, models.DiscountPercent, 0)}, false},
		{"enabled with value", []models.InvoiceItem{item(1, 1), itemDiscount(1, 10, models.DiscountAmount, 2)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnyItemDiscount(models.Invoice{Items: tt.items}); got != tt.want {
				t.Errorf("AnyItemDiscount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisplayModeUnmarshalText(t *testing.T) {
	var m DisplayMode
	if err := json.Unmarshal([]byte(`"itemized"`), &m); err != nil || m != DisplayItemized {
		t.Errorf("Unmarshal(itemized) = %v, %v", m, err)
	}
	if err := json.Unmarshal([]byte(`"grid"`), &m); err == nil {
		t.Error("Unmarshal(grid) succeeded, want error")
	}
}
