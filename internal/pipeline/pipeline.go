// Package pipeline feeds access log lines into a parser, in batch from a
// file or continuously from a tailer.
package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cyra/proxylog/internal/errcode"
	"github.com/cyra/proxylog/internal/logging"
	"github.com/cyra/proxylog/internal/metrics"
	"github.com/cyra/proxylog/internal/parser"
	"github.com/cyra/proxylog/internal/record"
	"github.com/cyra/proxylog/internal/report"
)

const maxLineSize = 1 << 20

// RecordSink receives every record as it is parsed.
type RecordSink interface {
	Insert(ctx context.Context, rec *record.Record) error
}

// Stats counts what a load saw.
type Stats struct {
	Lines  int
	Parsed int
	Failed int
}

// Pipeline owns the parser. The parser is not safe for concurrent use, so
// every method that touches it must run on one goroutine.
type Pipeline struct {
	parser       *parser.Parser
	logger       *logging.Logger
	metrics      *metrics.Metrics
	sink         RecordSink
	abortOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics updates m for every line.
func WithMetrics(m *metrics.Metrics) Option {
	return func(pl *Pipeline) { pl.metrics = m }
}

// WithSink hands every parsed record to s.
func WithSink(s RecordSink) Option {
	return func(pl *Pipeline) { pl.sink = s }
}

// AbortOnError stops a load at the first line the grammar rejects.
func AbortOnError(abort bool) Option {
	return func(pl *Pipeline) { pl.abortOnError = abort }
}

// New creates a Pipeline around p.
func New(p *parser.Parser, logger *logging.Logger, opts ...Option) *Pipeline {
	pl := &Pipeline{parser: p, logger: logger}
	for _, opt := range opts {
		opt(pl)
	}
	return pl
}

// Parser returns the parser being fed.
func (pl *Pipeline) Parser() *parser.Parser { return pl.parser }

// LoadFile reads the whole file at path. When progress is not nil a byte
// progress bar is drawn on it.
func (pl *Pipeline) LoadFile(ctx context.Context, path string, progress io.Writer) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if progress != nil {
		info, err := f.Stat()
		if err != nil {
			return Stats{}, fmt.Errorf("stat log: %w", err)
		}
		bar := report.NewProgress(progress, info.Size(), "loading "+pl.parser.Format().String())
		defer bar.Finish()
		r = io.TeeReader(f, bar)
	}

	return pl.Load(ctx, r)
}

// Load parses every line of r. Cancellation is checked between lines.
func (pl *Pipeline) Load(ctx context.Context, r io.Reader) (Stats, error) {
	var st Stats

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if err := pl.line(ctx, sc.Text(), &st); err != nil {
			return st, err
		}
	}
	if err := sc.Err(); err != nil {
		return st, fmt.Errorf("read log: %w", err)
	}

	pl.logger.Infof("loaded %d lines: %d parsed, %d failed", st.Lines, st.Parsed, st.Failed)
	return st, nil
}

func (pl *Pipeline) line(ctx context.Context, text string, st *Stats) error {
	st.Lines++
	if pl.metrics != nil {
		pl.metrics.LinesRead.Inc()
	}

	rec, err := pl.parser.Append(text)
	switch {
	case errors.Is(err, errcode.ParseFailed):
		st.Failed++
		if pl.metrics != nil {
			pl.metrics.ParseFailures.Inc()
		}
		if pl.abortOnError {
			return fmt.Errorf("line %d: %w", st.Lines, err)
		}
		pl.logger.Debugf("line %d: %v", st.Lines, err)
		return nil
	case err != nil:
		return fmt.Errorf("line %d: %w", st.Lines, err)
	case rec == nil:
		return nil
	}

	st.Parsed++
	if pl.metrics != nil {
		pl.metrics.RecordsParsed.Inc()
		pl.metrics.StoredRecords.Set(float64(pl.parser.Size()))
	}

	if pl.sink != nil {
		if err := pl.sink.Insert(ctx, rec); err != nil {
			return fmt.Errorf("sink: %w", err)
		}
		if pl.metrics != nil {
			pl.metrics.RowsInserted.Inc()
		}
	}
	return nil
}
