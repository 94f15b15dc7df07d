package render

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// DefaultAuthor is the PDF author when the company has no name.
const DefaultAuthor = "invoicer"

// PDF renders doc as an A4 document. Long item lists continue on new pages.
func PDF(doc Document) ([]byte, error) {
	const op = "render.PDF"

	author := doc.Issuer.Name
	if author == "" {
		author = DefaultAuthor
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithPageNumber().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		WithTitle("Invoice "+doc.Number, true).
		WithAuthor(author, true).
		WithCreator(DefaultAuthor, true).
		WithCreationDate(doc.Date).
		Build()

	m := maroto.New(cfg)

	addHeader(m, doc)
	addParties(m, doc)
	addItems(m, doc)
	addSummary(m, doc)
	addFooter(m, doc)

	pdf, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("%s: generating %s: %w", op, doc.Number, err)
	}
	return pdf.GetBytes(), nil
}

func addHeader(m core.Maroto, doc Document) {
	issuer := []string{doc.Issuer.Address, doc.Issuer.Phone, doc.Issuer.Email}

	left := col.New(7).Add(
		text.New(doc.Issuer.Name, props.Text{Size: 14, Style: fontstyle.Bold, Align: align.Left}),
		text.New(joinNonEmpty(issuer, "\n"), props.Text{Size: 9, Top: 7, Align: align.Left}),
	)
	right := col.New(5).Add(
		text.New("INVOICE", props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Right}),
		text.New(doc.Number, props.Text{Size: 10, Top: 9, Align: align.Right}),
		text.New(doc.Date.Format(dateLayout), props.Text{Size: 9, Top: 14, Align: align.Right}),
	)
	m.AddRow(30, left, right)
	m.AddRow(5, line.NewCol(12))
}

func addParties(m core.Maroto, doc Document) {
	c := doc.Customer
	m.AddRow(25,
		col.New(12).Add(
			text.New("BILL TO", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left}),
			text.New(c.Name, props.Text{Size: 10, Top: 5, Align: align.Left}),
			text.New(joinNonEmpty([]string{c.Address, c.Phone, c.Email}, " | "), props.Text{Size: 9, Top: 10, Align: align.Left}),
		),
	)
}

// itemColumns returns the grid widths of the item table, which has one
// extra column when any line is discounted.
func itemColumns(discount bool) (name, qty, price, disc, amount int) {
	if discount {
		return 4, 1, 2, 2, 3
	}
	return 6, 1, 2, 0, 3
}

func addItems(m core.Maroto, doc Document) {
	nameW, qtyW, priceW, discW, amountW := itemColumns(doc.ShowDiscountColumn)
	head := props.Text{Size: 9, Style: fontstyle.Bold}

	cols := []core.Col{
		col.New(nameW).Add(text.New("Item", withAlign(head, align.Left))),
		col.New(qtyW).Add(text.New("Qty", withAlign(head, align.Center))),
		col.New(priceW).Add(text.New("Price", withAlign(head, align.Right))),
	}
	if doc.ShowDiscountColumn {
		cols = append(cols, col.New(discW).Add(text.New("Discount", withAlign(head, align.Right))))
	}
	cols = append(cols, col.New(amountW).Add(text.New("Amount", withAlign(head, align.Right))))
	m.AddRow(8, cols...)
	m.AddRow(2, line.NewCol(12))

	if len(doc.Rows) == 0 {
		m.AddRow(8, col.New(12).Add(text.New("No items", props.Text{Size: 9, Align: align.Left})))
	}

	cell := props.Text{Size: 9}
	for _, r := range doc.Rows {
		height := 7.0
		nameCol := col.New(nameW).Add(text.New(r.Name, withAlign(cell, align.Left)))
		if r.Description != "" {
			height = 11
			nameCol.Add(text.New(r.Description, props.Text{Size: 7, Top: 4, Align: align.Left}))
		}

		cols := []core.Col{
			nameCol,
			col.New(qtyW).Add(text.New(FormatQuantity(r.Quantity), withAlign(cell, align.Center))),
			col.New(priceW).Add(text.New(FormatCurrency(r.UnitPrice, doc.Currency), withAlign(cell, align.Right))),
		}
		if doc.ShowDiscountColumn {
			label := "-"
			if r.Discount > 0 {
				label = "- " + FormatCurrency(r.Discount, doc.Currency)
			}
			cols = append(cols, col.New(discW).Add(text.New(label, withAlign(cell, align.Right))))
		}
		cols = append(cols, col.New(amountW).Add(text.New(FormatCurrency(r.LineTotal, doc.Currency), withAlign(cell, align.Right))))
		m.AddRow(height, cols...)
	}
	m.AddRow(3, line.NewCol(12))
}

func addSummary(m core.Maroto, doc Document) {
	for _, l := range doc.Summary {
		style := props.Text{Size: 9, Align: align.Right}
		if l.Strong {
			style.Size = 11
			style.Style = fontstyle.Bold
		}
		m.AddRow(7,
			col.New(6),
			col.New(3).Add(text.New(l.Label, style)),
			col.New(3).Add(text.New(l.Format(doc.Currency), style)),
		)
	}
}

func addFooter(m core.Maroto, doc Document) {
	if doc.Notes != "" {
		m.AddRow(5, line.NewCol(12))
		m.AddRow(20, col.New(12).Add(
			text.New("Notes", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left}),
			text.New(doc.Notes, props.Text{Size: 9, Top: 5, Align: align.Left}),
		))
	}
	m.AddRow(15, col.New(12).Add(
		text.New(doc.Footer, props.Text{Size: 9, Top: 5, Style: fontstyle.Italic, Align: align.Center}),
	))
}

func withAlign(p props.Text, a align.Type) props.Text {
	p.Align = a
	return p
}

func joinNonEmpty(parts []string, sep string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
