package invoice

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"invoicer/pkg/models"
)

var fixedNow = time.Date(2024, 3, 7, 10, 30, 0, 0, time.UTC)

func TestNewNumber(t *testing.T) {
	re := regexp.MustCompile(`^ILI-20240307-\d{3}$`)
	for range 20 {
		if n := NewNumber(fixedNow); !re.MatchString(n) {
			t.Fatalf("NewNumber() = %q", n)
		}
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID("inv"), NewID("inv")
	if !strings.HasPrefix(a, "inv_") || len(a) != len("inv_")+12 {
		t.Errorf("NewID() = %q", a)
	}
	if a == b {
		t.Errorf("NewID() returned %q twice", a)
	}
}

func TestNewInvoice(t *testing.T) {
	inv := NewInvoice(fixedNow)
	if inv.CreatedAt != fixedNow.UnixMilli() || inv.UpdatedAt != inv.CreatedAt {
		t.Errorf("timestamps = %d/%d", inv.CreatedAt, inv.UpdatedAt)
	}
	if inv.Items == nil || len(inv.Items) != 0 {
		t.Errorf("Items = %v, want empty slice", inv.Items)
	}
	if inv.InvoiceDiscountEnabled {
		t.Error("new invoice has an enabled discount")
	}
}

func TestApplyProduct(t *testing.T) {
	it := itemDiscount(4, 1, models.DiscountAmount, 3)
	got := ApplyProduct(it, models.Product{ID: "prd_1", Name: "Coffee", Description: "250g", Price: 45000})

	if got.ProductID != "prd_1" || got.Name != "Coffee" || got.Description != "250g" || got.Price != 45000 {
		t.Errorf("catalog fields not copied: %+v", got)
	}
	if got.Quantity != 4 || !got.DiscountEnabled || got.DiscountType != models.DiscountAmount || got.DiscountValue != 3 {
		t.Errorf("line settings not kept: %+v", got)
	}
}

func TestDuplicate(t *testing.T) {
	src := NewInvoice(fixedNow.Add(-time.Hour))
	src.Customer = models.Customer{Name: "Budi"}
	src.Items = []models.InvoiceItem{item(1, 10)}
	src.Notes = "paid"
	src.InvoiceDiscountEnabled = true
	src.InvoiceDiscountValue = 5

	dup := Duplicate(src, fixedNow)
	if dup.ID == src.ID {
		t.Error("duplicate kept the source id")
	}
	if dup.CreatedAt != fixedNow.UnixMilli() {
		t.Errorf("CreatedAt = %d", dup.CreatedAt)
	}
	if dup.Customer != src.Customer || dup.Notes != src.Notes || !dup.InvoiceDiscountEnabled || dup.InvoiceDiscountValue != 5 {
		t.Errorf("fields not copied: %+v", dup)
	}
	dup.Items[0].Price = 99
	if src.Items[0].Price != 10 {
		t.Error("duplicate shares items with the source")
	}
}

func TestFilter(t *testing.T) {
	invs := []models.Invoice{
		{ID: "a", Number: "ILI-1", UpdatedAt: 1, Customer: models.Customer{Name: "Andi"}},
		{ID: "b", Number: "ILI-2", UpdatedAt: 3, Notes: "Rush order"},
		{ID: "c", Number: "XYZ-3", UpdatedAt: 2, Customer: models.Customer{Name: "Citra"}},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"b", "c", "a"}},
		{"ili", []string{"b", "a"}},
		{"  CITRA ", []string{"c"}},
		{"rush", []string{"b"}},
		{"nope", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Filter(invs, tt.query)
			ids := make([]string, len(got))
			for i, inv := range got {
				ids[i] = inv.ID
			}
			if strings.Join(ids, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Filter(%q) = %v, want %v", tt.query, ids, tt.want)
			}
		})
	}
	if invs[0].ID != "a" {
		t.Error("Filter reordered its input")
	}
}

func TestValidateSettings(t *testing.T) {
	valid := models.DefaultSettings()
	if err := ValidateSettings(valid); err != nil {
		t.Fatalf("ValidateSettings(defaults) = %v", err)
	}

	tests := []struct {
		name  string
		edit  func(*models.Settings)
		field string
	}{
		{"currency", func(s *models.Settings) { s.Currency = "GBP" }, "currency"},
		{"theme", func(s *models.Settings) { s.Theme = "sepia" }, "theme"},
		{"accent", func(s *models.Settings) { s.Accent = "" }, "accent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.edit(&s)
			err := ValidateSettings(s)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("ValidateSettings() = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.field)
			}
		})
	}
}
