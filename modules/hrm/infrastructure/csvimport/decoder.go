package csvimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/errors"
)

var ErrMissingHeader = errors.New("required header column missing")

// DecodeError marks one malformed data row. Line is 1-based and counts the
// header row, matching what an operator sees in a spreadsheet.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Row is one decoded record: header column -> trimmed cell value.
type Row struct {
	Line   int
	Fields map[string]string
}

func (r Row) Get(column string) string {
	return r.Fields[column]
}

// Decoder reads delimited tabular text with a header row and yields one Row
// per data line, preserving input order. It is a forward-only, single-pass
// reader; it does not silently drop malformed rows.
type Decoder struct {
	reader  *csv.Reader
	headers []string
	line    int
}

func NewDecoder(r io.Reader, requiredHeaders ...string) (*Decoder, error) {
	reader := csv.NewReader(r)
	reader.Comma = ','
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: no header row found")
		}
		return nil, errors.Wrap(err, "failed to read header row")
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	for _, required := range requiredHeaders {
		found := false
		for _, h := range headers {
			if h == required {
				found = true
				break
			}
		}
		if !found {
			return nil, errors.Wrapf(ErrMissingHeader, "%q", required)
		}
	}

	// FieldsPerRecord is pinned to the header width so a short or long row
	// surfaces as a row-level decode error instead of a silent pad.
	reader.FieldsPerRecord = len(headers)

	return &Decoder{reader: reader, headers: headers, line: 1}, nil
}

func (d *Decoder) Headers() []string {
	return d.headers
}

// Next returns the next data row, io.EOF once the stream is exhausted, or a
// *DecodeError tied to the offending line.
func (d *Decoder) Next() (Row, error) {
	record, err := d.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}
		d.line++
		return Row{}, &DecodeError{Line: d.line, Err: err}
	}
	d.line++

	fields := make(map[string]string, len(d.headers))
	for i, h := range d.headers {
		fields[h] = strings.TrimSpace(record[i])
	}
	return Row{Line: d.line, Fields: fields}, nil
}

// DecodeAll drains the decoder. The first malformed row aborts with its
// decode error; a file that fails here produces no partial report.
func (d *Decoder) DecodeAll() ([]Row, error) {
	var rows []Row
	for {
		row, err := d.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}
