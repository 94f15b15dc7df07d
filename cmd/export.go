package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"invoicer/internal/logger"
	"invoicer/internal/render"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render an invoice as plain text",
	Long: `Render an invoice the way it is printed, as an aligned plain-text document.

The summary shows a single total when the invoice has neither discounts
nor tax, and the full breakdown otherwise.`,
	Example: `  # Preview the current invoice
  invoicer preview

  # Preview a specific invoice into a file
  invoicer preview --id inv_1b4e28ba2fa1 -o invoice.txt`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export invoices as PDF",
	Long: `Export one invoice, or every invoice in the workbook, as A4 PDF documents.

A single export writes to --output, or to <number>.pdf in --dir. With --all
the invoices are rendered in parallel (EXPORT_WORKERS, default 4) into
--dir; repeated invoice numbers get a numeric suffix.`,
	Example: `  # Export the current invoice
  invoicer export

  # Export one invoice to a chosen path
  invoicer export --id inv_1b4e28ba2fa1 -o march.pdf

  # Export everything
  invoicer export --all --dir ./pdf`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(exportCmd)

	previewCmd.Flags().String("id", "", "Invoice id (default: current invoice)")

	exportCmd.Flags().String("id", "", "Invoice id (default: current invoice)")
	exportCmd.Flags().Bool("all", false, "Export every invoice")
	exportCmd.Flags().String("dir", ".", "Output directory")
	exportCmd.Flags().Int("workers", 0, "Parallel workers for --all (default: EXPORT_WORKERS)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("preview")
	ctx := cmd.Context()
	id, _ := cmd.Flags().GetString("id")

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	inv, err := sess.resolveInvoice(ctx, id)
	if err != nil {
		return err
	}
	company, inv, settings, err := sess.wb.Snapshot(ctx, inv.ID)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render.WriteText(&buf, render.BuildDocument(company, inv, settings)); err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	return writeOutput(cmd, buf.Bytes(), log)
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export")
	ctx := cmd.Context()

	id, _ := cmd.Flags().GetString("id")
	all, _ := cmd.Flags().GetBool("all")
	dir, _ := cmd.Flags().GetString("dir")
	workers, _ := cmd.Flags().GetInt("workers")
	outputPath, _ := cmd.Flags().GetString("output")

	if all && (id != "" || outputPath != "") {
		return fmt.Errorf("--all cannot be combined with --id or --output")
	}

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	if !all {
		inv, err := sess.resolveInvoice(ctx, id)
		if err != nil {
			return err
		}
		company, inv, settings, err := sess.wb.Snapshot(ctx, inv.ID)
		if err != nil {
			return err
		}
		doc := render.BuildDocument(company, inv, settings)
		data, err := render.PDF(doc)
		if err != nil {
			return err
		}
		if outputPath == "" {
			outputPath = filepath.Join(dir, render.FileName(doc.Number))
		}
		return writeTo(cmd, outputPath, data, log)
	}

	if workers <= 0 {
		workers = sess.cfg.ExportWorkers
	}

	company, err := sess.wb.Company(ctx)
	if err != nil {
		return err
	}
	settings, err := sess.wb.Settings(ctx)
	if err != nil {
		return err
	}
	invoices, err := sess.wb.Invoices(ctx, "")
	if err != nil {
		return err
	}
	if len(invoices) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No invoices to export.")
		return nil
	}

	docs := make([]render.Document, len(invoices))
	for i, inv := range invoices {
		docs[i] = render.BuildDocument(company, inv, settings)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "Exporting %d invoices to %s (%d workers)\n", len(docs), dir, workers)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	results, err := render.ExportBatch(ctx, docs, dir, workers)
	if err != nil {
		return err
	}

	var failed int
	for _, r := range results {
		fmt.Fprintf(out, "[%d/%d] %s - %s", r.Index+1, len(results), r.Number, r.Status)
		switch {
		case r.Error != nil:
			failed++
			fmt.Fprintf(out, " (%s)", r.Error)
		case r.Path != "":
			fmt.Fprintf(out, " -> %s", r.Path)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, strings.Repeat("=", 60))

	if failed > 0 {
		return fmt.Errorf("%d of %d invoices failed to export", failed, len(results))
	}
	return nil
}
