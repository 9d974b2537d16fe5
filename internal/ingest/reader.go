package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format identifies how an order sheet is encoded.
type Format int

const (
	FormatCSV Format = iota
	FormatXLSX
	FormatLegacyXLS
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatXLSX:
		return "xlsx"
	case FormatLegacyXLS:
		return "xls"
	default:
		return "unknown"
	}
}

var (
	zipSignature = []byte("PK\x03\x04")
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFormat picks a Format from the content signature, falling back to
// the file extension.
func DetectFormat(name string, data []byte) Format {
	switch {
	case bytes.HasPrefix(data, zipSignature):
		return FormatXLSX
	case bytes.HasPrefix(data, oleSignature):
		return FormatLegacyXLS
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx":
		return FormatXLSX
	case ".xls":
		return FormatLegacyXLS
	}
	return FormatCSV
}

// ReadRows decodes data into raw string rows.
func ReadRows(name string, data []byte) ([][]string, error) {
	if len(data) == 0 {
		return nil, ErrNoInput
	}

	switch DetectFormat(name, data) {
	case FormatXLSX:
		return readWorkbook(data)
	case FormatLegacyXLS:
		return nil, fmt.Errorf("%w: legacy .xls workbooks are not supported, save as .xlsx", ErrMalformed)
	default:
		return readCSV(data)
	}
}

func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", ErrMalformed, err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformed)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrMalformed, sheets[0], err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read CSV: %v", ErrMalformed, err)
		}
		// csv skips empty lines; pad so row indexes keep matching line numbers
		line, _ := reader.FieldPos(0)
		for len(rows) < line-1 {
			rows = append(rows, nil)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
