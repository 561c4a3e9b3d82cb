package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoRows is returned by Parse when the input has no data rows.
var ErrNoRows = errors.New("csv has no data rows")

const utf8BOM = "\ufeff"

// Parse reads comma-delimited text whose first line is the header.
// Empty lines are skipped. Short records leave the missing columns absent
// from the row; fields beyond the header are dropped.
func Parse(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, ErrNoRows
	}
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	t := Table{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read record: %w", err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i >= len(rec) {
				break
			}
			row[col] = rec[i]
		}
		t.Rows = append(t.Rows, row)
	}
	if len(t.Rows) == 0 {
		return Table{}, ErrNoRows
	}
	return t, nil
}

// ParseBytes is Parse over an in-memory file.
func ParseBytes(data []byte) (Table, error) {
	return Parse(bytes.NewReader(data))
}

// Serialize writes the header followed by every row in order. Absent
// columns are written as empty fields.
func Serialize(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	rec := make([]string, len(t.Header))
	for _, row := range t.Rows {
		for i, col := range t.Header {
			rec[i] = row[col]
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SerializeBytes is Serialize into a new buffer.
func SerializeBytes(t Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := Serialize(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
