package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"invoicer/internal/logger"
	"invoicer/pkg/models"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage the lines of an invoice",
	Long: `Add, edit and remove invoice lines.

A line added from a product copies its name, description and price; later
catalog edits do not change the line. Use --invoice to target an invoice
other than the current one.`,
}

var itemAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a line, blank or from a product",
	Example: `  # A blank line, quantity 1
  invoicer item add

  # A line filled from the catalog
  invoicer item add --product prd_4c2a1e9b0d77`,
	Args: cobra.NoArgs,
	RunE: runItemAdd,
}

var itemSetCmd = &cobra.Command{
	Use:   "set <item-id>",
	Short: "Edit a line",
	Long: `Edit a line. Only the flags given are changed. --product refills name,
description and price from the catalog before the other flags apply.`,
	Example: `  # Two units at 50.000 with 10% off
  invoicer item set it_9f1c0b2e4a11 --quantity 2 --price 50000 --discount --discount-value 10`,
	Args: cobra.ExactArgs(1),
	RunE: runItemSet,
}

var itemRemoveCmd = &cobra.Command{
	Use:     "remove <item-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a line",
	Args:    cobra.ExactArgs(1),
	RunE:    runItemRemove,
}

func init() {
	rootCmd.AddCommand(itemCmd)
	itemCmd.AddCommand(itemAddCmd, itemSetCmd, itemRemoveCmd)
	itemCmd.PersistentFlags().String("invoice", "", "Invoice id (default: current invoice)")

	itemAddCmd.Flags().String("product", "", "Product id to copy from")

	itemSetCmd.Flags().String("product", "", "Refill from a product")
	itemSetCmd.Flags().String("name", "", "Line name")
	itemSetCmd.Flags().String("description", "", "Line description")
	itemSetCmd.Flags().Float64("quantity", 0, "Quantity")
	itemSetCmd.Flags().Float64("price", 0, "Unit price")
	discountFlags(itemSetCmd)
}

func runItemAdd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("item")
	ctx := cmd.Context()
	invoiceID, _ := cmd.Flags().GetString("invoice")
	productID, _ := cmd.Flags().GetString("product")

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	inv, err := sess.resolveInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	it, err := sess.wb.AddItem(ctx, inv.ID, productID)
	if err != nil {
		return err
	}
	return outputJSON(cmd, it, log)
}

func runItemSet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("item")
	ctx := cmd.Context()
	invoiceID, _ := cmd.Flags().GetString("invoice")
	productID, _ := cmd.Flags().GetString("product")

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	inv, err := sess.resolveInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	edit := func(it *models.InvoiceItem) error {
		setString(cmd, "name", &it.Name)
		setString(cmd, "description", &it.Description)
		setFloat(cmd, "quantity", &it.Quantity)
		setFloat(cmd, "price", &it.Price)
		return applyDiscountFlags(cmd, &it.DiscountEnabled, &it.DiscountType, &it.DiscountValue)
	}
	var it models.InvoiceItem
	if productID != "" {
		it, err = sess.wb.RefillItem(ctx, inv.ID, args[0], productID, edit)
	} else {
		it, err = sess.wb.UpdateItem(ctx, inv.ID, args[0], edit)
	}
	if err != nil {
		return err
	}
	return outputJSON(cmd, it, log)
}

func runItemRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	invoiceID, _ := cmd.Flags().GetString("invoice")

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	inv, err := sess.resolveInvoice(ctx, invoiceID)
	if err != nil {
		return err
	}
	if err := sess.wb.RemoveItem(ctx, inv.ID, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed item %s from %s\n", args[0], inv.Number)
	return nil
}
