package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/internal/store"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "Invoicer - build invoices and compute their totals",
	Long: `Invoicer keeps a small workbook of invoices, a product catalog, the
issuer profile and display settings, and derives every total on read.

Invoices can be edited from the command line, rendered as text or PDF,
exported in bulk, mirrored to a Google Sheet, or served over HTTP to the
browser builder.

Storage is selected with STORE_BACKEND (file, redis or memory).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", describeError(err))
		os.Exit(1)
	}
}

// describeError turns workbook and storage failures into user-friendly messages
func describeError(err error) error {
	var (
		pErr *store.PersistError
		vErr *invoice.ValidationError
	)
	errStr := err.Error()

	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("operation was canceled")
	case errors.Is(err, invoice.ErrInvoiceNotFound):
		return fmt.Errorf("invoice not found. Run 'invoicer invoice list' to see the available ids")
	case errors.Is(err, invoice.ErrProductNotFound):
		return fmt.Errorf("product not found. Run 'invoicer product list' to see the available ids")
	case errors.Is(err, invoice.ErrItemNotFound):
		return fmt.Errorf("item not found on this invoice. Run 'invoicer invoice show' to see its lines")
	case errors.As(err, &vErr):
		return vErr
	case errors.As(err, &pErr):
		return fmt.Errorf("%s (%s)", pErr.Message(), pErr.Slot)
	case strings.Contains(errStr, "invalid_grant") ||
		strings.Contains(errStr, "Unauthenticated"):
		return fmt.Errorf("Google authentication failed. Check GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS")
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path (default: stdout)")
}
