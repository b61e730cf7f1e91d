// Package csvimport reads and validates spreadsheet uploads
package csvimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Import error codes reported per row
const (
	CodeRequired          = "REQUIRED"
	CodeInvalidType       = "INVALID_TYPE"
	CodeInvalidLength     = "INVALID_LENGTH"
	CodeInvalidRange      = "INVALID_RANGE"
	CodeInvalidValue      = "INVALID_VALUE"
	CodeDuplicateInFile   = "DUPLICATE_IN_FILE"
	CodeDuplicateInDB     = "DUPLICATE_IN_DB"
	CodeReferenceNotFound = "REFERENCE_NOT_FOUND"
	CodeMalformedRow      = "MALFORMED_ROW"
	CodeMissingColumn     = "MISSING_COLUMN"
)

var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("CSV file is not valid UTF-8")
	ErrMissingHeader   = errors.New("CSV file missing header row")
)

// Parser reads a CSV file with a header row. A UTF-8 BOM is stripped and
// header names are trimmed and lower-cased.
type Parser struct {
	reader  *csv.Reader
	headers []string
	index   map[string]int
	line    int
}

// Row is one data row keyed by header name
type Row struct {
	Line int
	data map[string]string
}

// Get returns the trimmed value of column, or ""
func (r *Row) Get(column string) string {
	return r.data[column]
}

// IsEmpty reports whether every cell is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.data {
		if v != "" {
			return false
		}
	}
	return true
}

// NewParser reads the header row from r
func NewParser(r io.Reader) (*Parser, error) {
	br := bufio.NewReader(r)
	if bom, _ := br.Peek(3); len(bom) == 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(head))) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(trimPartialRune(head)) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	record, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	p := &Parser{reader: cr, index: make(map[string]int, len(record)), line: 1}
	for i, h := range record {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			continue
		}
		p.headers = append(p.headers, name)
		p.index[name] = i
	}
	if len(p.headers) == 0 {
		return nil, ErrMissingHeader
	}
	return p, nil
}

// trimPartialRune drops a multi-byte rune cut off by the peek window
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}

// Headers returns the normalized header names in file order
func (p *Parser) Headers() []string {
	return p.headers
}

// Missing returns the required columns absent from the header
func (p *Parser) Missing(required ...string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := p.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// Next returns the next row or io.EOF. Row.Line is the physical line of
// the record in the file; blank lines are skipped.
func (p *Parser) Next() (*Row, error) {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			p.line = perr.Line
		}
		return nil, fmt.Errorf("row %d: %w", p.line, err)
	}
	p.line, _ = p.reader.FieldPos(0)

	row := &Row{Line: p.line, data: make(map[string]string, len(p.index))}
	for name, i := range p.index {
		if i < len(record) {
			row.data[name] = strings.TrimSpace(record[i])
		}
	}
	return row, nil
}

// WriteTemplate writes a header-only CSV with the given columns and an
// optional example row
func WriteTemplate(w io.Writer, columns []string, example []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	if len(example) > 0 {
		if err := cw.Write(example); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
