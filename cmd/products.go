package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"invoicer/internal/logger"
	"invoicer/internal/render"
	"invoicer/pkg/models"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage the product catalog",
}

var productAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add a product",
	Example: `  invoicer product add --name "Kopi susu" --price 18000`,
	Args:    cobra.NoArgs,
	RunE:    runProductAdd,
}

var productListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List products",
	Args:    cobra.NoArgs,
	RunE:    runProductList,
}

var productSetCmd = &cobra.Command{
	Use:   "set <product-id>",
	Short: "Edit a product; existing invoice lines keep their copies",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductSet,
}

var productDeleteCmd = &cobra.Command{
	Use:     "delete <product-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a product",
	Args:    cobra.ExactArgs(1),
	RunE:    runProductDelete,
}

func init() {
	rootCmd.AddCommand(productCmd)
	productCmd.AddCommand(productAddCmd, productListCmd, productSetCmd, productDeleteCmd)

	for _, c := range []*cobra.Command{productAddCmd, productSetCmd} {
		c.Flags().String("name", "", "Product name")
		c.Flags().String("description", "", "Product description")
		c.Flags().Float64("price", 0, "Unit price")
	}
	productAddCmd.MarkFlagRequired("name")

	productListCmd.Flags().StringP("query", "q", "", "Filter by name or description")
	productListCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}

func runProductAdd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("product")
	ctx := cmd.Context()

	var p models.Product
	setString(cmd, "name", &p.Name)
	setString(cmd, "description", &p.Description)
	setFloat(cmd, "price", &p.Price)

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	created, err := sess.wb.CreateProduct(ctx, p)
	if err != nil {
		return err
	}
	return outputJSON(cmd, created, log)
}

func runProductList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("product")
	ctx := cmd.Context()
	query, _ := cmd.Flags().GetString("query")
	asJSON, _ := cmd.Flags().GetBool("json")

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	products, err := sess.wb.Products(ctx, query)
	if err != nil {
		return err
	}
	if asJSON {
		return outputJSON(cmd, products, log)
	}

	settings, err := sess.wb.Settings(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tDESCRIPTION")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, render.FormatCurrency(p.Price, settings.Currency), p.Description)
	}
	return tw.Flush()
}

func runProductSet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("product")
	ctx := cmd.Context()

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	p, err := sess.wb.UpdateProduct(ctx, args[0], func(p *models.Product) error {
		setString(cmd, "name", &p.Name)
		setString(cmd, "description", &p.Description)
		setFloat(cmd, "price", &p.Price)
		return nil
	})
	if err != nil {
		return err
	}
	return outputJSON(cmd, p, log)
}

func runProductDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	if err := sess.wb.DeleteProduct(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %s\n", args[0])
	return nil
}
