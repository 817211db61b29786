// Package query filters the records held by a parser into a result subset
// and aggregates over that subset.
package query

import (
	"iter"
	"regexp"

	"github.com/cyra/proxylog/internal/errcode"
	"github.com/cyra/proxylog/internal/ipv4"
	"github.com/cyra/proxylog/internal/logdate"
	"github.com/cyra/proxylog/internal/parser"
	"github.com/cyra/proxylog/internal/record"
	"github.com/cyra/proxylog/internal/store"
)

// bounds is the inclusive (timestamp, address) box set by Select.
type bounds struct {
	from, to uint32
	addrs    ipv4.Range
	ok       bool
}

func (b bounds) contains(k record.Key) bool {
	return k.Timestamp >= b.from && k.Timestamp <= b.to && b.addrs.Contains(k.Addr)
}

// Query reads a parser's store and owns the result subset and the score
// tables. It is not safe for concurrent use.
type Query struct {
	format record.LogFormat
	src    *store.Store
	subset *store.Store

	codes     map[int]int
	filetypes map[string]int

	rng bounds
	err error
}

// New returns a query over the records p has stored so far. The unique
// tables are copied; later Appends to p add records to the source but no
// new table keys.
func New(p *parser.Parser) *Query {
	return &Query{
		format:    p.Format(),
		src:       p.Store(),
		subset:    store.New(),
		codes:     p.Codes(),
		filetypes: p.Filetypes(),
	}
}

// Err returns the status of the last Select or Field call.
func (q *Query) Err() error { return q.err }

// Select sets the range used by Field. With only the begin pair the range
// is that single point. With all four arguments each date and address must
// parse to a non-zero value. Any other shape is IncompleteArguments. On
// error Field is disabled until the next successful Select.
func (q *Query) Select(beginDate, beginAddr, endDate, endAddr string) error {
	q.rng = bounds{}

	switch {
	case beginDate != "" && beginAddr != "" && endDate == "" && endAddr == "":
		ts, ip := logdate.Parse(beginDate), ipv4.ToUint32(beginAddr)
		if ts == 0 || ip == 0 {
			q.err = errcode.InvalidTimestampOrAddress
			return q.err
		}
		q.SelectRange(ts, ts, ip, ip)
	case beginDate != "" && beginAddr != "" && endDate != "" && endAddr != "":
		ts0, ip0 := logdate.Parse(beginDate), ipv4.ToUint32(beginAddr)
		ts1, ip1 := logdate.Parse(endDate), ipv4.ToUint32(endAddr)
		if ts0 == 0 || ip0 == 0 || ts1 == 0 || ip1 == 0 {
			q.err = errcode.InvalidTimestampOrAddress
			return q.err
		}
		q.SelectRange(ts0, ts1, ip0, ip1)
	default:
		q.err = errcode.IncompleteArguments
		return q.err
	}
	return nil
}

// SelectRange sets the range from already converted bounds.
func (q *Query) SelectRange(fromTS, toTS, fromAddr, toAddr uint32) {
	q.rng = bounds{
		from:  fromTS,
		to:    toTS,
		addrs: ipv4.NewRange(fromAddr, toAddr),
		ok:    true,
	}
	q.err = nil
}

// Field scans the whole source store within the selected range and adds
// every record satisfying "field <c> v" to the subset. Repeated calls
// accumulate, so the subset is the union of their matches; use Clear to
// start over.
//
// REGEX requires a Text value and searches the field's string rendering.
// BTWAND and BTWOR need exactly one extra bound of the same type as v.
// When the range is not valid Field does nothing and returns the Select
// error.
func (q *Query) Field(f record.Field, c Compare, v Value, bound ...Value) error {
	if !q.rng.ok {
		if q.err == nil {
			q.err = errcode.IncompleteArguments
		}
		return q.err
	}

	match, err := predicate(f, c, v, bound)
	if err != nil {
		q.err = err
		return err
	}

	for k, rec := range q.src.Range(q.rng.from, q.rng.to) {
		if q.rng.contains(k) && match(rec) {
			q.subset.Insert(k, *rec)
		}
	}
	q.err = nil
	return nil
}

func predicate(f record.Field, c Compare, v Value, bound []Value) (func(*record.Record) bool, error) {
	if c == REGEX {
		pattern, ok := v.(Text)
		if !ok {
			return nil, errcode.Unknown
		}
		re, err := regexp.Compile(string(pattern))
		if err != nil {
			return nil, errcode.FromRegexp(err)
		}
		if !f.HasText() {
			return func(*record.Record) bool { return false }, nil
		}
		return func(r *record.Record) bool {
			return re.MatchString(r.StrField(f))
		}, nil
	}

	hi := v
	if c.IsRange() {
		if len(bound) != 1 {
			return nil, errcode.BoundMismatch
		}
		hi = bound[0]
	}

	switch want := v.(type) {
	case Int:
		upper, ok := hi.(Int)
		if !ok {
			return nil, errcode.BoundMismatch
		}
		return func(r *record.Record) bool {
			return decide(r.IntField(f), int(want), int(upper), c)
		}, nil
	case Uint:
		upper, ok := hi.(Uint)
		if !ok {
			return nil, errcode.BoundMismatch
		}
		return func(r *record.Record) bool {
			return decide(r.UintField(f), uint32(want), uint32(upper), c)
		}, nil
	case Text:
		upper, ok := hi.(Text)
		if !ok {
			return nil, errcode.BoundMismatch
		}
		return func(r *record.Record) bool {
			return decide(r.StrField(f), string(want), string(upper), c)
		}, nil
	}
	return nil, errcode.Unknown
}

// Size returns the number of records in the subset.
func (q *Query) Size() int { return q.subset.Size() }

// Clear empties the subset. The range and score tables are kept.
func (q *Query) Clear() { q.subset.Clear() }

// Results iterates the subset in key order.
func (q *Query) Results() iter.Seq2[record.Key, *record.Record] {
	return q.subset.All()
}

// Format returns the log format of the source records.
func (q *Query) Format() record.LogFormat { return q.format }

// lookup yields subset records whose key equals the one derived from date
// and addr.
func (q *Query) lookup(date, addr string) iter.Seq[*record.Record] {
	ts, ip := logdate.Parse(date), ipv4.ToUint32(addr)
	return func(yield func(*record.Record) bool) {
		for k, rec := range q.subset.Range(ts, ts) {
			if k.Addr != ip {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Int returns field f of every subset record keyed by (date, addr).
func (q *Query) Int(date, addr string, f record.Field) []int {
	var out []int
	for rec := range q.lookup(date, addr) {
		out = append(out, rec.IntField(f))
	}
	return out
}

// Uint is Int for unsigned fields.
func (q *Query) Uint(date, addr string, f record.Field) []uint32 {
	var out []uint32
	for rec := range q.lookup(date, addr) {
		out = append(out, rec.UintField(f))
	}
	return out
}

// Str is Int for string renderings.
func (q *Query) Str(date, addr string, f record.Field) []string {
	var out []string
	for rec := range q.lookup(date, addr) {
		out = append(out, rec.StrField(f))
	}
	return out
}
