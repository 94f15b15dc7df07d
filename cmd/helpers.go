package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"invoicer/internal/config"
	"invoicer/internal/invoice"
	"invoicer/internal/store"
	"invoicer/pkg/models"
)

// session is an opened workbook together with the config it came from.
type session struct {
	cfg   *config.Config
	st    store.Store
	wb    *invoice.Workbook
	close func()
}

// openWorkbook loads the configuration and opens the configured store.
func openWorkbook(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreBackend, err)
	}
	return &session{
		cfg:   cfg,
		st:    st,
		wb:    invoice.NewWorkbook(store.NewRepository(st), nil),
		close: func() { st.Close() },
	}, nil
}

// resolveInvoice returns the invoice named by id, or the current one when id is empty.
func (s *session) resolveInvoice(ctx context.Context, id string) (models.Invoice, error) {
	if id == "" {
		return s.wb.EnsureCurrent(ctx)
	}
	return s.wb.Get(ctx, id)
}

// writeOutput writes data to the --output path or stdout.
func writeOutput(cmd *cobra.Command, data []byte, log zerolog.Logger) error {
	outputPath, _ := cmd.Flags().GetString("output")
	return writeTo(cmd, outputPath, data, log)
}

// writeTo writes data to outputPath, or stdout when it is empty.
func writeTo(cmd *cobra.Command, outputPath string, data []byte, log zerolog.Logger) error {
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(data)).
			Msg("Output written to file")
		return nil
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// outputJSON pretty prints v to the --output path or stdout.
func outputJSON(cmd *cobra.Command, v any, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON output")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}
	return writeOutput(cmd, append(jsonData, '\n'), log)
}

// readJSONFile decodes a JSON document from path. "-" reads stdin.
func readJSONFile(cmd *cobra.Command, path string, dst any) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// discountFlags registers the enabled/type/value trio.
func discountFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("discount", false, "Enable the discount")
	cmd.Flags().String("discount-type", "percent", "Discount type (percent or amount)")
	cmd.Flags().Float64("discount-value", 0, "Discount value")
}

// applyDiscountFlags copies the discount flags that were set on the command line.
func applyDiscountFlags(cmd *cobra.Command, enabled *bool, typ *models.DiscountType, value *float64) error {
	flags := cmd.Flags()
	if flags.Changed("discount") {
		*enabled, _ = flags.GetBool("discount")
	}
	if flags.Changed("discount-type") {
		t, _ := flags.GetString("discount-type")
		switch models.DiscountType(t) {
		case models.DiscountPercent, models.DiscountAmount:
			*typ = models.DiscountType(t)
		default:
			return fmt.Errorf("invalid discount type: %s (must be 'percent' or 'amount')", t)
		}
	}
	if flags.Changed("discount-value") {
		*value, _ = flags.GetFloat64("discount-value")
	}
	return nil
}

// setString copies a string flag into dst when it was given.
func setString(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

func setFloat(cmd *cobra.Command, name string, dst *float64) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetFloat64(name)
	}
}

func setBool(cmd *cobra.Command, name string, dst *bool) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetBool(name)
	}
}
