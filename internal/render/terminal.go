package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/batching"
	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/planning"
)

var (
	groupStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	metaStyle   = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	wasteStyle  = cellStyle.Bold(true).Foreground(lipgloss.Color("3"))
	overStyle   = cellStyle.Bold(true).Foreground(lipgloss.Color("9"))
)

var terminalHeaders = []string{
	"Order ID", "Party", "Item Name", "BF", "GSM", "Deckle",
	"Reel Qty", "Stock Real", "Delivery Date", "Reels Needed", "Batch Waste",
}

const wasteColumn = 10

// Terminal writes one table per batch, grouped by grade key, to w.
func Terminal(w io.Writer, plan planning.Plan) error {
	p := message.NewPrinter(language.English)

	if _, err := fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("Plan %s · capacity %s", plan.ID, Number(p, plan.Capacity)))); err != nil {
		return err
	}
	if len(plan.Groups) == 0 {
		_, err := fmt.Fprintln(w, "No orders to batch.")
		return err
	}

	for _, g := range plan.Groups {
		s := g.Summary
		heading := groupStyle.Render("BF-GSM Group: " + g.Key)
		meta := metaStyle.Render(p.Sprintf("%d batches · %d orders · waste %s · utilisation %s%%",
			s.BatchCount, s.OrderCount, Number(p, s.TotalWaste), s.Utilisation.StringFixed(2)))
		if _, err := fmt.Fprintf(w, "\n%s  %s\n", heading, meta); err != nil {
			return err
		}

		if len(g.Batches) == 0 {
			if _, err := fmt.Fprintln(w, "Every order in this group is covered by stock."); err != nil {
				return err
			}
			continue
		}
		for i, b := range g.Batches {
			caption := metaStyle.Render(p.Sprintf("Batch %d · used %s · reels %s",
				i+1, Number(p, b.UsedWidth), Number(p, b.TotalReels)))
			if _, err := fmt.Fprintf(w, "%s\n%s\n", caption, batchTable(p, b).Render()); err != nil {
				return err
			}
		}
	}
	return nil
}

func batchTable(p *message.Printer, b batching.Batch) *table.Table {
	rows := make([][]string, 0, len(b.Orders))
	for i, o := range b.Orders {
		waste := ""
		if i == 0 {
			waste = Number(p, b.Waste)
		}
		rows = append(rows, []string{
			o.OrderID, o.Party, o.ItemName, o.BF, o.GSM,
			Number(p, o.Deckle), Number(p, o.ReelQty), Number(p, o.StockReal),
			o.DeliveryDate, Number(p, o.ReelsNeeded), waste,
		})
	}

	negative := b.Waste.IsNegative()
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(terminalHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == wasteColumn && negative:
				return overStyle
			case col == wasteColumn:
				return wasteStyle
			default:
				return cellStyle
			}
		})
}

// Number formats d with locale digit grouping on the integer part and the
// decimal's own fractional digits.
func Number(p *message.Printer, d decimal.Decimal) string {
	if d.IsInteger() {
		return p.Sprintf("%d", d.IntPart())
	}
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	text := d.String()
	frac := text[strings.IndexByte(text, '.'):]
	return sign + p.Sprintf("%d", d.IntPart()) + frac
}
