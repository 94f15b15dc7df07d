package cmd

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Show or edit the issuer profile",
}

var companyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the issuer profile as JSON",
	Args:  cobra.NoArgs,
	RunE:  runCompanyShow,
}

var companySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Edit the issuer profile",
	Example: `  invoicer company set --name "Toko Ilham" --address "Jl. Merdeka 1, Bandung"
  invoicer company set --logo logo.png`,
	Args: cobra.NoArgs,
	RunE: runCompanySet,
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or edit preferences",
	Long: `Show or edit preferences. Currency, tax visibility and tax percentage
change totals; the rest only affects presentation.`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the settings as JSON",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Edit the settings",
	Example: `  # Bill in euros with 19% tax
  invoicer settings set --currency EUR --tax-percent 19

  # Hide tax altogether
  invoicer settings set --show-tax=false`,
	Args: cobra.NoArgs,
	RunE: runSettingsSet,
}

func init() {
	rootCmd.AddCommand(companyCmd, settingsCmd)
	companyCmd.AddCommand(companyShowCmd, companySetCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)

	companySetCmd.Flags().String("name", "", "Company name")
	companySetCmd.Flags().String("address", "", "Company address")
	companySetCmd.Flags().String("phone", "", "Company phone")
	companySetCmd.Flags().String("email", "", "Company email")
	companySetCmd.Flags().String("logo", "", "Logo image file, stored as a data URL (empty to clear)")

	settingsSetCmd.Flags().String("currency", "", "Currency code (IDR, USD, EUR, SGD, JPY)")
	settingsSetCmd.Flags().Bool("show-tax", true, "Apply and print tax")
	settingsSetCmd.Flags().Float64("tax-percent", 0, "Tax percentage")
	settingsSetCmd.Flags().String("theme", "", "Theme (system, light, dark)")
	settingsSetCmd.Flags().String("accent", "", "Accent color")
	settingsSetCmd.Flags().Bool("show-company-phone", true, "Print the company phone")
	settingsSetCmd.Flags().Bool("show-company-email", true, "Print the company email")
	settingsSetCmd.Flags().String("footer", "", "Footer text")
}

func runCompanyShow(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("company")
	ctx := cmd.Context()

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	company, err := sess.wb.Company(ctx)
	if err != nil {
		return err
	}
	return outputJSON(cmd, company, log)
}

func runCompanySet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("company")
	ctx := cmd.Context()

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	company, err := sess.wb.Company(ctx)
	if err != nil {
		return err
	}
	setString(cmd, "name", &company.Name)
	setString(cmd, "address", &company.Address)
	setString(cmd, "phone", &company.Phone)
	setString(cmd, "email", &company.Email)
	if cmd.Flags().Changed("logo") {
		path, _ := cmd.Flags().GetString("logo")
		if company.LogoDataURL, err = logoDataURL(path); err != nil {
			return err
		}
	}

	if err := sess.wb.SaveCompany(ctx, company); err != nil {
		return err
	}
	return outputJSON(cmd, company, log)
}

// logoDataURL reads an image file into a data URL. An empty path clears the logo.
func logoDataURL(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read logo: %w", err)
	}
	mime := http.DetectContentType(data)
	switch mime {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
	default:
		return "", fmt.Errorf("logo must be a PNG, JPEG, GIF or WebP image, got %s", mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("settings")
	ctx := cmd.Context()

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	settings, err := sess.wb.Settings(ctx)
	if err != nil {
		return err
	}
	return outputJSON(cmd, settings, log)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("settings")
	ctx := cmd.Context()

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	settings, err := sess.wb.Settings(ctx)
	if err != nil {
		return err
	}
	setString(cmd, "currency", &settings.Currency)
	setBool(cmd, "show-tax", &settings.ShowTax)
	setFloat(cmd, "tax-percent", &settings.TaxPercent)
	setString(cmd, "accent", &settings.Accent)
	setBool(cmd, "show-company-phone", &settings.ShowCompanyPhone)
	setBool(cmd, "show-company-email", &settings.ShowCompanyEmail)
	setString(cmd, "footer", &settings.InvoiceFooter)
	if cmd.Flags().Changed("theme") {
		theme, _ := cmd.Flags().GetString("theme")
		settings.Theme = models.ThemeMode(theme)
	}

	if err := sess.wb.SaveSettings(ctx, settings); err != nil {
		return err
	}
	return outputJSON(cmd, settings, log)
}
