package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const dateLayout = "2006-01-02"

// WriteText writes a plain-text preview of doc to w.
func WriteText(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "INVOICE %s\n", doc.Number)
	fmt.Fprintf(bw, "Date: %s\n\n", doc.Date.Format(dateLayout))

	writeBlock(bw, "From", doc.Issuer.Name, doc.Issuer.Address, doc.Issuer.Phone, doc.Issuer.Email)
	writeBlock(bw, "Bill to", doc.Customer.Name, doc.Customer.Address, doc.Customer.Phone, doc.Customer.Email)

	tw := tabwriter.NewWriter(bw, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := []string{"#", "Item", "Qty", "Price"}
	if doc.ShowDiscountColumn {
		header = append(header, "Discount")
	}
	header = append(header, "Amount")
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")

	if len(doc.Rows) == 0 {
		fmt.Fprintln(tw, "\tNo items\t")
	}
	for _, r := range doc.Rows {
		cols := []string{
			fmt.Sprint(r.No),
			r.Name,
			FormatQuantity(r.Quantity),
			FormatCurrency(r.UnitPrice, doc.Currency),
		}
		if doc.ShowDiscountColumn {
			label := "-"
			if r.Discount > 0 {
				label = "- " + FormatCurrency(r.Discount, doc.Currency)
			}
			cols = append(cols, label)
		}
		cols = append(cols, FormatCurrency(r.LineTotal, doc.Currency))
		fmt.Fprintln(tw, strings.Join(cols, "\t")+"\t")
		if r.Description != "" {
			fmt.Fprintf(tw, "\t%s\t\n", r.Description)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(bw)

	tw = tabwriter.NewWriter(bw, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, l := range doc.Summary {
		label := l.Label
		if l.Strong {
			label = strings.ToUpper(label)
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", label, l.Format(doc.Currency))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if doc.Notes != "" {
		fmt.Fprintf(bw, "\nNotes:\n%s\n", doc.Notes)
	}
	fmt.Fprintf(bw, "\n%s\n", doc.Footer)

	return bw.Flush()
}

func writeBlock(w io.Writer, title string, lines ...string) {
	fmt.Fprintf(w, "%s:\n", title)
	for _, l := range lines {
		if l != "" {
			fmt.Fprintf(w, "  %s\n", l)
		}
	}
	fmt.Fprintln(w)
}
