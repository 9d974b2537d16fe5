package ingest

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/batching"
)

// Column headers recognised in an order sheet. Matching ignores case and
// surrounding whitespace.
const (
	ColumnOrderNo   = "OrderNo"
	ColumnParty     = "party"
	ColumnItemName  = "ItemName"
	ColumnBF        = "BF"
	ColumnGSM       = "GSM"
	ColumnSize      = "size"
	ColumnReelQty   = "Reelqty"
	ColumnStockReal = "Stockreal"
	ColumnDelDate   = "DelDate"
)

var requiredColumns = []string{ColumnBF, ColumnGSM, ColumnSize, ColumnReelQty}

var knownColumns = []string{
	ColumnOrderNo, ColumnParty, ColumnItemName, ColumnBF, ColumnGSM,
	ColumnSize, ColumnReelQty, ColumnStockReal, ColumnDelDate,
}

// Parse reads an order sheet from r. name is only used to help detect the
// format when the content is ambiguous.
func Parse(name string, r io.Reader) ([]batching.Order, error) {
	if r == nil {
		return nil, ErrNoInput
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return ParseBytes(name, data)
}

// ParseBytes is Parse for data already held in memory.
func ParseBytes(name string, data []byte) ([]batching.Order, error) {
	rows, err := ReadRows(name, data)
	if err != nil {
		return nil, err
	}
	return MapOrders(rows)
}

// MapOrders converts raw rows into orders. The first non-blank row is the
// header; blank rows are skipped. Row numbers in errors are 1-based sheet
// rows.
func MapOrders(rows [][]string) ([]batching.Order, error) {
	headerAt := -1
	for i, row := range rows {
		if !isBlank(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, ErrEmptySheet
	}

	columns, err := indexHeader(rows[headerAt])
	if err != nil {
		return nil, err
	}

	var (
		orders  []batching.Order
		rowErrs []error
	)
	for i := headerAt + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		o, err := columns.order(i+1, row)
		if err != nil {
			if len(rowErrs) < maxRowErrors {
				rowErrs = append(rowErrs, err)
			}
			continue
		}
		orders = append(orders, o)
	}

	if len(rowErrs) > 0 {
		return nil, errors.Join(rowErrs...)
	}
	if len(orders) == 0 {
		return nil, ErrEmptySheet
	}
	return orders, nil
}

type columnIndex map[string]int

func indexHeader(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	idx := make(columnIndex, len(knownColumns))
	for _, name := range knownColumns {
		if pos, ok := positions[normalizeHeader(name)]; ok {
			idx[name] = pos
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrMalformed, strings.Join(missing, ", "))
	}
	return idx, nil
}

func (c columnIndex) text(row []string, column string) string {
	pos, ok := c[column]
	if !ok || pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

func (c columnIndex) number(rowNum int, row []string, column string, required bool) (decimal.Decimal, error) {
	raw := c.text(row, column)
	if raw == "" {
		if required {
			return decimal.Zero, &RowError{Row: rowNum, Column: column, Err: errMissingValue}
		}
		return decimal.Zero, nil
	}
	value, err := parseNumber(raw)
	if err != nil {
		return decimal.Zero, &RowError{Row: rowNum, Column: column, Err: fmt.Errorf("%q is not a number", raw)}
	}
	return value, nil
}

func (c columnIndex) order(rowNum int, row []string) (batching.Order, error) {
	deckle, err := c.number(rowNum, row, ColumnSize, true)
	if err != nil {
		return batching.Order{}, err
	}
	reelQty, err := c.number(rowNum, row, ColumnReelQty, true)
	if err != nil {
		return batching.Order{}, err
	}
	stock, err := c.number(rowNum, row, ColumnStockReal, false)
	if err != nil {
		return batching.Order{}, err
	}

	o := batching.Order{
		OrderID:      c.text(row, ColumnOrderNo),
		Party:        c.text(row, ColumnParty),
		ItemName:     c.text(row, ColumnItemName),
		BF:           c.text(row, ColumnBF),
		GSM:          c.text(row, ColumnGSM),
		Deckle:       deckle,
		ReelQty:      reelQty,
		StockReal:    stock,
		DeliveryDate: c.text(row, ColumnDelDate),
	}

	if err := batching.ValidateOrder(o); err != nil {
		column := ColumnReelQty
		switch {
		case errors.Is(err, batching.ErrInvalidDeckle):
			column = ColumnSize
		case o.StockReal.IsNegative():
			column = ColumnStockReal
		}
		return batching.Order{}, &RowError{Row: rowNum, Column: column, Err: err}
	}
	return o, nil
}

// thousandsPattern matches numbers whose commas sit only in digit-group
// positions, such as 1,200 or 12,345.5.
var thousandsPattern = regexp.MustCompile(`^[-+]?\d{1,3}(,\d{3})+(\.\d+)?$`)

func parseNumber(raw string) (decimal.Decimal, error) {
	if strings.Contains(raw, ",") {
		if !thousandsPattern.MatchString(raw) {
			return decimal.Zero, fmt.Errorf("misplaced comma in %q", raw)
		}
		raw = strings.ReplaceAll(raw, ",", "")
	}
	return decimal.NewFromString(raw)
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
