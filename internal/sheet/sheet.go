// Package sheet decodes uploaded spreadsheets into a header list and rows
// keyed by header name.
package sheet

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

// ErrUnsupportedFormat is returned for files that are neither OOXML
// workbooks nor CSV.
var ErrUnsupportedFormat = errors.New("sheet: unsupported format")

// Row is one data row, keyed by header.
type Row map[string]string

// Sheet is a decoded table. Every Row has an entry for every header.
type Sheet struct {
	Headers []string `json:"headers" msgpack:"headers"`
	Rows    []Row    `json:"rows" msgpack:"rows"`
}

type format int

const (
	formatUnknown format = iota
	formatXLSX
	formatCSV
)

const ooxmlSheet = "application/vnd.openxmlformats-officedocument.spreadsheetml"

func detect(filename, contentType string) format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xltx":
		return formatXLSX
	case ".csv":
		return formatCSV
	}

	ct := strings.ToLower(contentType)
	switch {
	case strings.HasPrefix(ct, ooxmlSheet):
		return formatXLSX
	case strings.HasPrefix(ct, "text/csv"):
		return formatCSV
	}
	return formatUnknown
}

// Decode picks a reader from the filename extension, falling back to the
// content type, and returns the first worksheet as a Sheet.
func Decode(filename, contentType string, data []byte) (*Sheet, error) {
	var (
		records [][]string
		err     error
	)
	switch detect(filename, contentType) {
	case formatXLSX:
		records, err = readXLSX(data)
	case formatCSV:
		records, err = readCSV(data)
	default:
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, filename, contentType)
	}
	if err != nil {
		return nil, err
	}
	return fromRecords(records), nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("sheet: opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	// Raw values keep number formats like "#,##0.00" out of the cells.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("sheet: reading %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sheet: reading csv: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// fromRecords turns the first record into headers and the rest into rows.
func fromRecords(records [][]string) *Sheet {
	s := &Sheet{Headers: []string{}, Rows: []Row{}}
	if len(records) == 0 {
		return s
	}

	for i, h := range records[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		s.Headers = append(s.Headers, h)
	}

	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make(Row, len(s.Headers))
		for i, h := range s.Headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
