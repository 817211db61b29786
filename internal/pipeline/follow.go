package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/cyra/proxylog/internal/config"
	"github.com/cyra/proxylog/internal/logtail"
	"github.com/cyra/proxylog/internal/query"
)

// Reporter is called with a fresh query result.
type Reporter func(q *query.Query, qc config.QueryConfig)

// Follow tails t into the parser until ctx is done. On every config change
// in cfgs the query is rerun and handed to report. Lines, reloads and
// queries are all handled on one goroutine.
func (pl *Pipeline) Follow(ctx context.Context, t *logtail.Tailer, cfgs *config.Store, report Reporter) error {
	g, ctx := errgroup.WithContext(ctx)
	lines := make(chan string, 100)

	g.Go(func() error {
		return t.Tail(ctx, lines)
	})

	g.Go(func() error {
		var st Stats
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case line := <-lines:
				if err := pl.line(ctx, line, &st); err != nil {
					return err
				}
			case <-cfgs.Changed():
				if pl.metrics != nil {
					pl.metrics.Reloads.Inc()
				}
				qc := cfgs.Current().Query
				q, err := RunQuery(pl.parser, qc)
				if err != nil {
					pl.logger.Errorf("query: %v", err)
					continue
				}
				report(q, qc)
			}
		}
	})

	return g.Wait()
}
