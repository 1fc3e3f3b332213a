// Package csv parses delimited text into the typed dataset model and writes
// it back out. Parsing is strict: the header row fixes the field count, and
// any structurally malformed row aborts the load with the underlying
// csv.ParseError preserved for errors.As. Cleaning tools must not silently
// drop the rows they were asked to inspect.
//
// Column types are inferred in the same pass that reads the data: a column
// whose every non-missing cell parses as a float is tagged numeric and its
// cells are stored as float64; everything else stays text. Missing cells
// (empty or matching an NA token) become nil regardless of column type.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"nutriprep/internal/dataset"
)

// DefaultNATokens are the cell values (case-insensitive, compared after
// trimming) treated as missing in addition to the empty cell.
var DefaultNATokens = []string{"na", "n/a", "nan", "null"}

// Options configures the CSV parser behavior. All fields are optional;
// sensible defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each stored cell value.
	// Missing-value detection always works on the trimmed form either way.
	TrimSpace bool

	// NATokens overrides DefaultNATokens when non-nil.
	NATokens []string
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct {
	opt Options
	na  map[string]struct{}
}

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	tokens := opt.NATokens
	if tokens == nil {
		tokens = DefaultNATokens
	}
	na := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		na[strings.ToLower(strings.TrimSpace(tok))] = struct{}{}
	}
	return &Parser{opt: opt, na: na}
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "﻿"

// Parse consumes the full CSV stream from r and returns a typed Table. The
// first row is always the header. Ragged rows or broken quoting fail the
// whole parse; the returned error wraps the csv.ParseError from the standard
// library reader.
func (p *Parser) Parse(r io.Reader) (*dataset.Table, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	names := canonicalizeHeaders(header)

	// The header fixed cr.FieldsPerRecord, so every ragged body row surfaces
	// as a csv.ParseError below.
	type colState struct {
		numeric    bool
		nonMissing int
	}
	states := make([]colState, len(names))
	for i := range states {
		states[i].numeric = true
	}

	var rows [][]any
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv body: %w", err)
		}

		cells := make([]any, len(rec))
		for i, val := range rec {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			if p.isMissing(val) {
				cells[i] = nil
				continue
			}
			cells[i] = val
			states[i].nonMissing++
			if states[i].numeric {
				if _, err := strconv.ParseFloat(val, 64); err != nil {
					states[i].numeric = false
				}
			}
		}
		rows = append(rows, cells)
	}

	cols := make([]dataset.Column, len(names))
	for i, name := range names {
		typ := dataset.Text
		if states[i].numeric && states[i].nonMissing > 0 {
			typ = dataset.Numeric
		}
		cols[i] = dataset.Column{Name: name, Type: typ}
	}

	// Second pass: materialize numeric cells as float64. The inference pass
	// proved every one of these parses, so the error is ignored.
	for _, row := range rows {
		for i := range row {
			if cols[i].Type != dataset.Numeric || row[i] == nil {
				continue
			}
			f, _ := strconv.ParseFloat(row[i].(string), 64)
			row[i] = f
		}
	}

	return &dataset.Table{Columns: cols, Rows: rows}, nil
}

// isMissing reports whether a raw cell value denotes a missing entry: empty
// after trimming, or one of the configured NA tokens.
func (p *Parser) isMissing(val string) bool {
	v := strings.ToLower(strings.TrimSpace(val))
	if v == "" {
		return true
	}
	_, ok := p.na[v]
	return ok
}
