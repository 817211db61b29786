// Package parser turns raw proxy access-log lines into records, keeps them in
// a time-ordered store and tallies the HTTP status codes and file types it
// has seen.
package parser

import (
	"fmt"
	"iter"
	"maps"
	"strconv"
	"strings"

	"github.com/cyra/proxylog/internal/errcode"
	"github.com/cyra/proxylog/internal/record"
	"github.com/cyra/proxylog/internal/store"
)

// ErrUnknownParser is returned when no grammar exists for a format.
var ErrUnknownParser = fmt.Errorf("unknown parser")

// grammar matches one whitespace-collapsed line. ok is false on mismatch.
type grammar interface {
	parse(line string) (rec record.Record, ok bool)
}

// Parser is the sole writer of its store and unique tables. It is not safe
// for concurrent use.
type Parser struct {
	format  record.LogFormat
	grammar grammar
	store   *store.Store

	codes     map[int]int
	filetypes map[string]int

	last *record.Record
	err  error
}

// New returns a parser for format f.
func New(f record.LogFormat) (*Parser, error) {
	var g grammar
	switch f {
	case record.Squid:
		g = squidGrammar{}
	case record.Common:
		g = commonGrammar{}
	case record.Combined:
		g = combinedGrammar{}
	case record.Referrer:
		g = referrerGrammar{}
	case record.UserAgent:
		g = userAgentGrammar{}
	default:
		return nil, ErrUnknownParser
	}
	return &Parser{
		format:    f,
		grammar:   g,
		store:     store.New(),
		codes:     make(map[int]int),
		filetypes: make(map[string]int),
	}, nil
}

// Append parses line and stores the resulting record. A blank line is a
// no-op returning (nil, nil). A line the grammar rejects returns
// errcode.ParseFailed and leaves the store untouched.
func (p *Parser) Append(line string) (*record.Record, error) {
	line = strings.Trim(line, asciiSpace)
	if line == "" {
		p.err = nil
		return nil, nil
	}

	rec, ok := p.grammar.parse(collapseSpaces(line))
	if !ok {
		p.err = errcode.ParseFailed
		return nil, errcode.ParseFailed
	}
	rec.Format = p.format

	if p.format.HasStatus() {
		if code, ok := rec.StatusCode(); ok {
			if _, seen := p.codes[code]; !seen {
				p.codes[code] = 0
			}
		}
	}
	if p.format.HasURL() {
		if ext := Filetype(rec.ReqURL); ext != "" {
			if _, seen := p.filetypes[ext]; !seen {
				p.filetypes[ext] = 0
			}
		}
	}

	p.store.Insert(rec.Key(), rec)
	p.last = &rec
	p.err = nil
	return p.last, nil
}

// Format returns the grammar the parser was built for.
func (p *Parser) Format() record.LogFormat { return p.format }

// Err returns the status of the last Append.
func (p *Parser) Err() error { return p.err }

// Last returns the most recently stored record, or nil.
func (p *Parser) Last() *record.Record { return p.last }

// Store exposes the record store for reading.
func (p *Parser) Store() *store.Store { return p.store }

// Records iterates the stored records in key order.
func (p *Parser) Records() iter.Seq2[record.Key, *record.Record] { return p.store.All() }

// Size returns the number of stored records.
func (p *Parser) Size() int { return p.store.Size() }

// Clear drops every stored record. The unique tables are kept.
func (p *Parser) Clear() {
	p.store.Clear()
	p.last = nil
}

// Codes returns a copy of the unique HTTP code table.
func (p *Parser) Codes() map[int]int {
	return maps.Clone(p.codes)
}

// Filetypes returns a copy of the unique file type table.
func (p *Parser) Filetypes() map[string]int {
	return maps.Clone(p.filetypes)
}

// asciiSpace is the C locale whitespace set. Other bytes, including
// invalid UTF-8 and multi-byte spaces such as NBSP, pass through as is.
const asciiSpace = " \t\n\v\f\r"

func isASCIISpace(c byte) bool {
	return strings.IndexByte(asciiSpace, c) >= 0
}

// collapseSpaces replaces every run of ASCII whitespace with a single space.
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isASCIISpace(c) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteByte(c)
	}
	return b.String()
}

// atoi converts a grammar capture already constrained to digits. A lone
// "-" means zero.
func atoi(s string) (int, bool) {
	if s == "-" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// epoch converts the integral seconds of a squid timestamp.
func epoch(s string) (uint32, bool) {
	n, err := strconv.ParseUint(s, 10, 32)
	return uint32(n), err == nil
}
