package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/internal/render"
	"invoicer/pkg/models"
)

var invoiceCmd = &cobra.Command{
	Use:     "invoice",
	Aliases: []string{"inv"},
	Short:   "Manage invoices",
	Long: `Create, list, edit, duplicate and delete invoices.

Commands that take an optional invoice id work on the current invoice when
none is given. A new workbook gets a fresh current invoice on first use.`,
}

var invoiceNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an empty invoice and make it current",
	Args:  cobra.NoArgs,
	RunE:  runInvoiceNew,
}

var invoiceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List invoices, newest first",
	Example: `  # Search by number or customer name
  invoicer invoice list --query sari`,
	Args: cobra.NoArgs,
	RunE: runInvoiceList,
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show [invoice-id]",
	Short: "Print an invoice as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInvoiceShow,
}

var invoiceUseCmd = &cobra.Command{
	Use:   "use <invoice-id>",
	Short: "Make an invoice current",
	Args:  cobra.ExactArgs(1),
	RunE:  runInvoiceUse,
}

var invoiceSetCmd = &cobra.Command{
	Use:   "set [invoice-id]",
	Short: "Edit invoice fields",
	Long: `Edit the header fields and the invoice discount. Only the flags given
are changed.`,
	Example: `  # Bill a customer and take 5% off the whole invoice
  invoicer invoice set --customer-name "PT Sinar" --discount --discount-value 5

  # A fixed amount off instead
  invoicer invoice set --discount-type amount --discount-value 20000`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInvoiceSet,
}

var invoiceDuplicateCmd = &cobra.Command{
	Use:   "duplicate [invoice-id]",
	Short: "Copy an invoice under a new id and number",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInvoiceDuplicate,
}

var invoiceDeleteCmd = &cobra.Command{
	Use:     "delete <invoice-id>...",
	Aliases: []string{"rm"},
	Short:   "Delete one or more invoices",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runInvoiceDelete,
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceNewCmd, invoiceListCmd, invoiceShowCmd, invoiceUseCmd,
		invoiceSetCmd, invoiceDuplicateCmd, invoiceDeleteCmd)

	invoiceListCmd.Flags().StringP("query", "q", "", "Filter by invoice number or customer name")
	invoiceListCmd.Flags().Bool("json", false, "Print JSON instead of a table")

	invoiceSetCmd.Flags().String("number", "", "Invoice number")
	invoiceSetCmd.Flags().String("customer-name", "", "Customer name")
	invoiceSetCmd.Flags().String("customer-address", "", "Customer address")
	invoiceSetCmd.Flags().String("customer-phone", "", "Customer phone")
	invoiceSetCmd.Flags().String("customer-email", "", "Customer email")
	invoiceSetCmd.Flags().String("notes", "", "Notes printed under the totals")
	discountFlags(invoiceSetCmd)
}

func runInvoiceNew(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")
	ctx := cmd.Context()

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	inv, err := sess.wb.Create(ctx)
	if err != nil {
		return err
	}
	return outputJSON(cmd, inv, log)
}

func runInvoiceList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")
	ctx := cmd.Context()
	query, _ := cmd.Flags().GetString("query")
	asJSON, _ := cmd.Flags().GetBool("json")

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	invoices, err := sess.wb.Invoices(ctx, query)
	if err != nil {
		return err
	}
	if asJSON {
		return outputJSON(cmd, invoices, log)
	}

	settings, err := sess.wb.Settings(ctx)
	if err != nil {
		return err
	}
	currentID, _ := sess.wb.CurrentID(ctx)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNUMBER\tCUSTOMER\tITEMS\tTOTAL\tUPDATED")
	for _, inv := range invoices {
		marker := ""
		if inv.ID == currentID {
			marker = "*"
		}
		t := invoice.ComputeTotals(inv, settings)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			marker, inv.ID, inv.Number, inv.Customer.Name, len(inv.Items),
			render.FormatCurrency(t.Total, settings.Currency),
			inv.Updated().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func runInvoiceShow(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")
	ctx := cmd.Context()

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	inv, err := sess.resolveInvoice(ctx, optionalArg(args))
	if err != nil {
		return err
	}
	return outputJSON(cmd, inv, log)
}

func runInvoiceUse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	if err := sess.wb.SetCurrent(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Current invoice: %s\n", args[0])
	return nil
}

func runInvoiceSet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")
	ctx := cmd.Context()

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	target, err := sess.resolveInvoice(ctx, optionalArg(args))
	if err != nil {
		return err
	}
	inv, err := sess.wb.Update(ctx, target.ID, func(inv *models.Invoice) error {
		setString(cmd, "number", &inv.Number)
		setString(cmd, "customer-name", &inv.Customer.Name)
		setString(cmd, "customer-address", &inv.Customer.Address)
		setString(cmd, "customer-phone", &inv.Customer.Phone)
		setString(cmd, "customer-email", &inv.Customer.Email)
		setString(cmd, "notes", &inv.Notes)
		return applyDiscountFlags(cmd, &inv.InvoiceDiscountEnabled, &inv.InvoiceDiscountType, &inv.InvoiceDiscountValue)
	})
	if err != nil {
		return err
	}
	return outputJSON(cmd, inv, log)
}

func runInvoiceDuplicate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")
	ctx := cmd.Context()

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	src, err := sess.resolveInvoice(ctx, optionalArg(args))
	if err != nil {
		return err
	}
	inv, err := sess.wb.Duplicate(ctx, src.ID)
	if err != nil {
		return err
	}
	return outputJSON(cmd, inv, log)
}

func runInvoiceDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	n, err := sess.wb.Delete(ctx, args...)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d invoice(s)\n", n)
	return nil
}

func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
