package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"sms-ledger/internal/models"
	"sms-ledger/internal/parsererror"

	"github.com/gocarina/gocsv"
)

// MessageColumn is the header of the column holding notification text. It matches
// case-insensitively.
const MessageColumn = "sms"

// Row is one data row of an upload.
type Row struct {
	// Index is the zero-based data row number, header excluded.
	Index int
	Text  string
}

func newReader(r io.Reader, delimiter rune) *csv.Reader {
	reader, ok := gocsv.LazyCSVReader(r).(*csv.Reader)
	if !ok {
		reader = csv.NewReader(r)
		reader.LazyQuotes = true
	}
	if delimiter != 0 {
		reader.Comma = delimiter
	}
	reader.FieldsPerRecord = -1
	return reader
}

// ReadMessages reads the sms column of an upload. The header row is required; a file
// whose header has no sms column is rejected before any data row is read.
func ReadMessages(r io.Reader, delimiter rune) ([]Row, error) {
	reader := newReader(r, delimiter)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &parsererror.ValidationError{Field: MessageColumn, Reason: "file has no header row"}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	column := -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if strings.EqualFold(name, MessageColumn) {
			column = i
			break
		}
	}
	if column < 0 {
		return nil, &parsererror.ValidationError{Field: MessageColumn, Reason: "header must contain an \"sms\" column"}
	}

	var rows []Row
	for index := 0; ; index++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &parsererror.RowError{Row: index, Err: err}
		}
		text := ""
		if column < len(record) {
			text = record[column]
		}
		rows = append(rows, Row{Index: index, Text: text})
	}
	return rows, nil
}

type exportRow struct {
	Amount      string `csv:"amount"`
	Currency    string `csv:"currency"`
	DateTime    string `csv:"datetime"`
	Source      string `csv:"source"`
	Description string `csv:"description"`
	CategoryID  int64  `csv:"category_id"`
	Pattern     string `csv:"pattern"`
}

// ExportCSV writes drafts as CSV with a header row.
func ExportCSV(w io.Writer, drafts []models.Draft, delimiter rune) error {
	rows := make([]exportRow, len(drafts))
	for i, d := range drafts {
		rows[i] = exportRow{
			Amount:      d.Amount.StringFixed(2),
			Currency:    d.Currency,
			DateTime:    d.DateTime,
			Source:      d.Source,
			Description: d.Description,
			CategoryID:  d.CategoryID,
			Pattern:     d.Pattern,
		}
	}

	csvWriter := csv.NewWriter(w)
	if delimiter != 0 {
		csvWriter.Comma = delimiter
	}
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}
