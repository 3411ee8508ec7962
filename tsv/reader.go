// Package tsv reads tab-separated records of fixed arity. There is no
// quoting or escaping in the dump format; fields are split on tabs alone
// and stripped of leading and trailing spaces.
package tsv

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// maxLineSize bounds a single record; dump rows carry multi-megabyte
// monolingual text on occasion.
const maxLineSize = 16 * 1024 * 1024

// Reader yields one record per line. It implements wdmigrate.RowReader.
type Reader struct {
	scan   *bufio.Scanner
	fields int
	line   int
}

// NewReader returns a Reader expecting exactly fields columns per record.
func NewReader(r io.Reader, fields int) *Reader {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scan: scan, fields: fields}
}

// ReadRow returns the next record's fields, io.EOF at clean end of input,
// or an error for a record whose arity does not match. Blank lines are
// skipped. The returned slice is only valid until the next call.
func (r *Reader) ReadRow() ([]string, error) {
	for r.scan.Scan() {
		r.line++
		txt := r.scan.Text()
		if txt == "" {
			continue
		}
		row := strings.Split(txt, "\t")
		if len(row) != r.fields {
			return nil, errors.Errorf("line %d: got %d fields, expected %d", r.line, len(row), r.fields)
		}
		for i := range row {
			row[i] = strings.Trim(row[i], " ")
		}
		return row, nil
	}
	if err := r.scan.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning input")
	}
	return nil, io.EOF
}
