package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"invoicer/internal/invoice"
	"invoicer/internal/store"
	"invoicer/pkg/models"
)

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("invoicer %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func useFileStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("STORE_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestTotalsFromFile(t *testing.T) {
	dir := t.TempDir()
	inv := models.Invoice{
		ID: "inv_test",
		Items: []models.InvoiceItem{
			{ID: "a", Quantity: 2, Price: 50000, DiscountEnabled: true, DiscountType: models.DiscountPercent, DiscountValue: 10},
			{ID: "b", Quantity: 1, Price: 20000},
		},
		InvoiceDiscountEnabled: true,
		InvoiceDiscountType:    models.DiscountAmount,
		InvoiceDiscountValue:   10000,
	}
	data, _ := json.Marshal(inv)
	path := filepath.Join(dir, "invoice.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	var out TotalsOutput
	if err := json.Unmarshal([]byte(run(t, "totals", "--file", path)), &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}

	// default settings: IDR, 10% tax
	want := models.InvoiceTotals{
		SubtotalBase:       120000,
		ItemDiscountTotal:  10000,
		InvoiceDiscount:    10000,
		SubtotalAfterItems: 110000,
		Taxable:            100000,
		TaxTotal:           10000,
		Total:              110000,
	}
	if out.Totals != want {
		t.Errorf("totals = %+v, want %+v", out.Totals, want)
	}
	if out.Currency != models.CurrencyIDR {
		t.Errorf("currency = %q, want IDR", out.Currency)
	}
	if got := out.Summary[len(out.Summary)-1]; got.Label != "Total" || got.Formatted != "Rp 110.000" {
		t.Errorf("last summary row = %+v", got)
	}
}

func TestCatalogToPreview(t *testing.T) {
	useFileStore(t)

	var p models.Product
	if err := json.Unmarshal([]byte(run(t, "product", "add", "--name", "Kopi susu", "--price", "18000")), &p); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if p.ID == "" {
		t.Fatal("product has no id")
	}

	var it models.InvoiceItem
	if err := json.Unmarshal([]byte(run(t, "item", "add", "--product", p.ID)), &it); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	if it.Name != "Kopi susu" || it.Price != 18000 || it.Quantity != 1 {
		t.Errorf("item = %+v, want a copy of the product", it)
	}

	preview := run(t, "preview")
	for _, want := range []string{"Kopi susu", "Rp 18.000", "TOTAL"} {
		if !strings.Contains(preview, want) {
			t.Errorf("preview missing %q:\n%s", want, preview)
		}
	}
}

func TestLogoDataURL(t *testing.T) {
	dir := t.TempDir()

	png := filepath.Join(dir, "logo.png")
	// PNG signature followed by an empty IHDR chunk header
	os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR"), 0o644)
	got, err := logoDataURL(png)
	if err != nil {
		t.Fatalf("logoDataURL() error = %v", err)
	}
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Errorf("logoDataURL() = %q", got)
	}

	txt := filepath.Join(dir, "logo.txt")
	os.WriteFile(txt, []byte("not an image"), 0o644)
	if _, err := logoDataURL(txt); err == nil {
		t.Error("logoDataURL() accepted a text file")
	}

	if got, err := logoDataURL(""); err != nil || got != "" {
		t.Errorf("logoDataURL(\"\") = %q, %v; want empty", got, err)
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "missing invoice",
			err:  fmt.Errorf("Get inv_x: %w", invoice.ErrInvoiceNotFound),
			want: "invoice not found",
		},
		{
			name: "quota",
			err:  &store.PersistError{Op: "save", Slot: store.SlotInvoices, Kind: store.KindQuotaExceeded, Err: store.ErrQuotaExceeded},
			want: "Storage quota exceeded",
		},
		{
			name: "other",
			err:  errors.New("boom"),
			want: "boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeError(tt.err).Error(); !strings.HasPrefix(got, tt.want) {
				t.Errorf("describeError() = %q, want prefix %q", got, tt.want)
			}
		})
	}
}
