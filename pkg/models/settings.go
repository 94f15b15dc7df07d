package models

type ThemeMode string

const (
	ThemeSystem ThemeMode = "system"
	ThemeLight  ThemeMode = "light"
	ThemeDark   ThemeMode = "dark"
)

// Currency codes supported by the builder.
const (
	CurrencyIDR = "IDR"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencySGD = "SGD"
	CurrencyJPY = "JPY"
)

// Accents lists the accepted accent keys.
var Accents = []string{"indigo", "emerald", "sky", "amber", "rose", "violet", "neutral"}

// Currencies lists the accepted currency codes.
var Currencies = []string{CurrencyIDR, CurrencyUSD, CurrencyEUR, CurrencySGD, CurrencyJPY}

// DefaultFooter is printed when the settings carry no footer text.
const DefaultFooter = "Terimakasih sudah berbelanja"

// Settings are user preferences. Only Currency, ShowTax and TaxPercent affect totals.
type Settings struct {
	Theme            ThemeMode `json:"theme"`
	Accent           string    `json:"accent"`
	Currency         string    `json:"currency"`
	ShowTax          bool      `json:"showTax"`
	TaxPercent       float64   `json:"taxPercent"` // applies to the subtotal after all discounts
	ShowCompanyPhone bool      `json:"showCompanyPhone"`
	ShowCompanyEmail bool      `json:"showCompanyEmail"`
	InvoiceFooter    string    `json:"invoiceFooter"`
}

// DefaultSettings returns the settings used before the user saves any.
func DefaultSettings() Settings {
	return Settings{
		Theme:            ThemeSystem,
		Accent:           "neutral",
		Currency:         CurrencyIDR,
		ShowTax:          true,
		TaxPercent:       10,
		ShowCompanyPhone: true,
		ShowCompanyEmail: true,
		InvoiceFooter:    DefaultFooter,
	}
}

// Company is the issuer profile printed in the invoice header.
type Company struct {
	LogoDataURL string `json:"logoDataUrl,omitempty"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Product is a catalog entry. Items created from it keep their own copies.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
}
