package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"invoicer/internal/api"
	"invoicer/internal/logger"
	"invoicer/internal/sheets"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workbook over HTTP",
	Long: `Serve the workbook as a JSON API for the browser builder.

Configuration:
  HTTP_ADDR        - Listen address (default: :8080)
  AUTH_USER        - Basic auth user (optional, requires AUTH_PASS)
  AUTH_PASS        - Basic auth password
  ALLOWED_ORIGINS  - Comma separated CORS origins (default: *)`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var syncSheetCmd = &cobra.Command{
	Use:   "sync-sheet",
	Short: "Append the invoice history to a Google Sheet",
	Long: `Append one row per invoice (number, date, customer, subtotal, discounts,
tax, total, currency, item count, last update) to a worksheet. The worksheet
is created with a header row when missing.

Required environment variables:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_SHEET_URL - Google Sheets URL (or --url)`,
	Example: `  invoicer sync-sheet --worksheet "2024"`,
	Args:    cobra.NoArgs,
	RunE:    runSyncSheet,
}

func init() {
	rootCmd.AddCommand(serveCmd, syncSheetCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default: HTTP_ADDR)")

	syncSheetCmd.Flags().String("url", "", "Spreadsheet URL (default: GOOGLE_SHEET_URL)")
	syncSheetCmd.Flags().String("worksheet", "", "Worksheet name (default: GOOGLE_SHEET_WORKSHEET)")
	syncSheetCmd.Flags().StringP("query", "q", "", "Only sync invoices matching the query")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = sess.cfg.HTTPAddr
	}

	handler := api.NewRouter(sess.wb, api.Options{
		AuthUser:       sess.cfg.AuthUser,
		AuthPass:       sess.cfg.AuthPass,
		AllowedOrigins: sess.cfg.AllowedOrigins,
	})
	srv := api.NewHTTPServer(addr, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", addr).
			Str("store", sess.cfg.StoreBackend).
			Bool("auth", sess.cfg.AuthEnabled()).
			Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func runSyncSheet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("sync-sheet")
	ctx := cmd.Context()

	sess, err := openWorkbook(ctx)
	if err != nil {
		return err
	}
	defer sess.close()

	sheetURL, _ := cmd.Flags().GetString("url")
	if sheetURL == "" {
		sheetURL = sess.cfg.GoogleSheetURL
	}
	if sheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required (or --url)")
	}
	worksheet, _ := cmd.Flags().GetString("worksheet")
	if worksheet == "" {
		worksheet = sess.cfg.GoogleSheetWorksheet
	}
	query, _ := cmd.Flags().GetString("query")

	invoices, err := sess.wb.Invoices(ctx, query)
	if err != nil {
		return err
	}
	settings, err := sess.wb.Settings(ctx)
	if err != nil {
		return err
	}

	svc, err := sheets.NewSheetsService(ctx, sheetURL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize Google Sheets service")
		return fmt.Errorf("failed to initialize Google Sheets service: %w", err)
	}
	if err := svc.WriteInvoiceHistory(ctx, invoices, settings, worksheet); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Sheet: %s\n", worksheet)
	fmt.Fprintf(cmd.OutOrStdout(), "Rows appended: %d\n", len(invoices))
	fmt.Fprintf(cmd.OutOrStdout(), "URL: %s\n", sheetURL)
	return nil
}
