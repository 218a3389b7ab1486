// Package importer loads normalized 311 complaint rows into PostgreSQL,
// resolving dimension values to surrogate ids and bulk-inserting facts in
// bounded transactional batches.
package importer

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// Record is one raw input row keyed by lower-cased column name. Missing
// columns read as the empty string.
type Record map[string]string

// Get returns the raw value for a column, or "" if absent.
func (r Record) Get(name string) string {
	return r[strings.ToLower(name)]
}

// RowSource yields input rows in order. It is finite and not restartable;
// a fresh run always starts from row one.
type RowSource interface {
	// Next returns the next record and its input line number. It returns
	// io.EOF after the last row. A non-EOF error describes a single
	// unreadable row; the source stays usable for subsequent rows.
	Next() (Record, int, error)
}

// CSVSource reads records from a CSV stream with a header row. Line numbers
// are file line numbers, so the first data row is line 2.
type CSVSource struct {
	reader *csv.Reader
	header []string
	line   int
}

// NewCSVSource wraps r and consumes the header row.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // allow variable fields

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "importer: read CSV header")
	}
	for i, col := range header {
		header[i] = strings.ToLower(strings.TrimSpace(col))
	}

	return &CSVSource{reader: reader, header: header, line: 1}, nil
}

// Next implements RowSource.
func (s *CSVSource) Next() (Record, int, error) {
	s.line++

	fields, err := s.reader.Read()
	if err == io.EOF {
		return nil, s.line, io.EOF
	}
	if err != nil {
		return nil, s.line, eris.Wrapf(err, "importer: read CSV row %d", s.line)
	}

	rec := make(Record, len(s.header))
	for i, col := range s.header {
		if i < len(fields) {
			rec[col] = fields[i]
		}
	}
	return rec, s.line, nil
}
