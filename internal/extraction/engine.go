// Package extraction turns the text of a POS sales receipt into a Record:
// the header metadata (date, time, totals) and per-category quantity and
// amount sums of the line items.
package extraction

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Engine extracts records using a fixed category table.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	table    *CategoryTable
	matchers []categoryMatcher
}

// categoryMatcher holds one compiled line pattern per alias, in alias order
type categoryMatcher struct {
	key      string
	patterns []*regexp.Regexp
}

// NewEngine compiles the line patterns of table. A nil table uses the
// built-in one.
func NewEngine(table *CategoryTable) *Engine {
	if table == nil {
		table = DefaultCategoryTable()
	}
	matchers := make([]categoryMatcher, 0, table.Len())
	for _, c := range table.categories {
		m := categoryMatcher{key: c.Key, patterns: make([]*regexp.Regexp, len(c.Aliases))}
		for i, alias := range c.Aliases {
			m.patterns[i] = linePattern(alias)
		}
		matchers = append(matchers, m)
	}
	return &Engine{table: table, matchers: matchers}
}

// Whitespace and word characters follow Unicode, so a no-break space
// separates fields and an accented letter glues to a quantity.
const (
	space        = `[\s\p{Z}\x{85}\x{1c}-\x{1f}]`
	wordBoundary = `(?:^|[^\p{L}\p{N}_])`
)

// linePattern matches "<qty> <alias> <amount>" anywhere in a line
func linePattern(alias string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + wordBoundary + `(\d+)` + space + `+` +
		regexp.QuoteMeta(alias) + space + `+([\d.,]+)`)
}

// Table returns the category table the engine was built with
func (e *Engine) Table() *CategoryTable {
	return e.table
}

// NewRecord returns an empty record for source with every category at zero
func (e *Engine) NewRecord(source string) Record {
	rec := Record{Source: source, Categories: make([]CategoryTotal, len(e.matchers))}
	for i, m := range e.matchers {
		rec.Categories[i].Key = m.key
	}
	return rec
}

// Process extracts a record from the text of one receipt. Missing markers
// and unreadable amounts are not errors. If extraction fails unexpectedly
// the partially filled record is returned with the error.
func (e *Engine) Process(text, source string) (rec Record, err error) {
	rec = e.NewRecord(source)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processing %s: %v", source, r)
		}
	}()

	extractMetadata(text, &rec)
	e.aggregate(text, &rec)
	return rec, nil
}

// ProcessReader reads the whole receipt from r and processes it. Invalid
// UTF-8 sequences are dropped.
func (e *Engine) ProcessReader(r io.Reader, source string) (Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return e.NewRecord(source), fmt.Errorf("reading %s: %w", source, err)
	}
	return e.Process(strings.ToValidUTF8(string(data), ""), source)
}

// aggregate tests every line against every alias of every category and
// adds each match to its category. There is no first-match-wins across
// categories: a line matching aliases of two categories counts in both.
func (e *Engine) aggregate(text string, rec *Record) {
	for _, line := range splitLines(text) {
		for i, m := range e.matchers {
			for _, p := range m.patterns {
				sm := p.FindStringSubmatch(line)
				if sm == nil {
					continue
				}
				rec.Categories[i].Count += Normalize(sm[1])
				rec.Categories[i].Value += Normalize(sm[2])
			}
		}
	}
}

// splitLines splits on the same boundaries as universal newlines. Empty
// lines are dropped since they can never match.
func splitLines(text string) []string {
	return strings.FieldsFunc(text, isLineBreak)
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}
