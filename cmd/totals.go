package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/internal/render"
	"invoicer/pkg/models"
)

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Compute the totals of an invoice",
	Long: `Compute the derived totals of an invoice.

By default the current invoice of the workbook is used together with the
stored settings. With --file an invoice JSON document is evaluated without
touching the store; --settings-file supplies the settings for it (the
defaults are used otherwise).

The pipeline is: line bases, line discounts, invoice discount on the
subtotal after line discounts, tax on the remainder.`,
	Example: `  # Totals of the current invoice as JSON
  invoicer totals

  # Evaluate a document from disk with custom settings
  invoicer totals --file invoice.json --settings-file settings.json

  # Print the summary rows as they appear on the invoice
  invoicer totals --id inv_1b4e28ba2fa1 --summary`,
	Args: cobra.NoArgs,
	RunE: runTotals,
}

// TotalsOutput is the JSON document printed by the totals command.
type TotalsOutput struct {
	InvoiceID string               `json:"invoiceId,omitempty"`
	Number    string               `json:"number,omitempty"`
	Currency  string               `json:"currency"`
	Mode      invoice.DisplayMode  `json:"mode"`
	Totals    models.InvoiceTotals `json:"totals"`
	Lines     []models.LineTotals  `json:"lines"`
	Summary   []SummaryOutput      `json:"summary"`
}

// SummaryOutput is one summary row with its formatted amount.
type SummaryOutput struct {
	render.SummaryLine
	Formatted string `json:"formatted"`
}

func init() {
	rootCmd.AddCommand(totalsCmd)

	totalsCmd.Flags().String("id", "", "Invoice id (default: current invoice)")
	totalsCmd.Flags().String("file", "", "Evaluate an invoice JSON document instead of a stored invoice (- for stdin)")
	totalsCmd.Flags().String("settings-file", "", "Settings JSON document used with --file")
	totalsCmd.Flags().Bool("summary", false, "Print the formatted summary rows instead of JSON")
}

func runTotals(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("totals")
	ctx := cmd.Context()

	id, _ := cmd.Flags().GetString("id")
	file, _ := cmd.Flags().GetString("file")
	settingsFile, _ := cmd.Flags().GetString("settings-file")
	summaryOnly, _ := cmd.Flags().GetBool("summary")

	var (
		inv      models.Invoice
		settings models.Settings
	)
	if file != "" {
		if id != "" {
			return fmt.Errorf("--id and --file are mutually exclusive")
		}
		if err := readJSONFile(cmd, file, &inv); err != nil {
			return err
		}
		settings = models.DefaultSettings()
		if settingsFile != "" {
			if err := readJSONFile(cmd, settingsFile, &settings); err != nil {
				return err
			}
		}
	} else {
		if settingsFile != "" {
			return fmt.Errorf("--settings-file requires --file")
		}
		sess, err := openWorkbook(ctx)
		if err != nil {
			return err
		}
		defer sess.close()

		if inv, err = sess.resolveInvoice(ctx, id); err != nil {
			return err
		}
		if settings, err = sess.wb.Settings(ctx); err != nil {
			return err
		}
	}

	out := buildTotalsOutput(inv, settings)
	log.Debug().
		Str("invoice_id", inv.ID).
		Float64("total", out.Totals.Total).
		Msg("Totals computed")

	if summaryOnly {
		var b strings.Builder
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
		for _, l := range out.Summary {
			fmt.Fprintf(tw, "%s\t%s\t\n", l.Label, l.Formatted)
		}
		tw.Flush()
		return writeOutput(cmd, []byte(b.String()), log)
	}
	return outputJSON(cmd, out, log)
}

func buildTotalsOutput(inv models.Invoice, settings models.Settings) TotalsOutput {
	totals := invoice.ComputeTotals(inv, settings)
	out := TotalsOutput{
		InvoiceID: inv.ID,
		Number:    inv.Number,
		Currency:  settings.Currency,
		Mode:      invoice.DisplayModeFor(totals, settings),
		Totals:    totals,
		Lines:     invoice.ComputeLines(inv),
	}
	for _, l := range render.SummaryLines(inv, totals, settings) {
		out.Summary = append(out.Summary, SummaryOutput{SummaryLine: l, Formatted: l.Format(settings.Currency)})
	}
	return out
}
