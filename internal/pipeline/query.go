package pipeline

import (
	"math"

	"github.com/cyra/proxylog/internal/config"
	"github.com/cyra/proxylog/internal/parser"
	"github.com/cyra/proxylog/internal/query"
	"github.com/cyra/proxylog/internal/record"
)

// RunQuery builds the result subset described by qc over the records p
// holds. Without a configured range every record is selected. Without
// predicates every record in the range is selected; otherwise the subset
// is the union of the records matching each predicate.
func RunQuery(p *parser.Parser, qc config.QueryConfig) (*query.Query, error) {
	q := query.New(p)

	if !qc.Enabled() {
		q.SelectRange(0, math.MaxUint32, 0, math.MaxUint32)
	} else {
		var endDate, endAddr string
		if qc.End != nil {
			endDate, endAddr = qc.End.Date, qc.End.Addr
		}
		if err := q.Select(qc.Begin.Date, qc.Begin.Addr, endDate, endAddr); err != nil {
			return nil, err
		}
	}

	if len(qc.Predicates) == 0 {
		if err := q.Field(record.Timestamp, query.GE, query.Uint(0)); err != nil {
			return nil, err
		}
		return q, nil
	}

	for _, pr := range qc.Predicates {
		if err := q.Field(pr.FieldID, pr.Op, pr.Operand, pr.Bound...); err != nil {
			return nil, err
		}
	}
	return q, nil
}
