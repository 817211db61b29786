// Package logtail follows a growing proxy access log.
package logtail

import (
	"context"
	"io"

	"github.com/hpcloud/tail"

	"github.com/cyra/proxylog/internal/logging"
)

// Tailer streams lines from a log file as they are written.
type Tailer struct {
	path   string
	poll   bool
	whence int
	logger *logging.Logger
}

// Option configures a Tailer.
type Option func(*Tailer)

// WithPoll makes the tailer poll the file instead of using inotify.
func WithPoll(poll bool) Option {
	return func(t *Tailer) { t.poll = poll }
}

// FromEnd skips the lines already in the file.
func FromEnd() Option {
	return func(t *Tailer) { t.whence = io.SeekEnd }
}

// New creates a new Tailer for the given file path.
func New(path string, logger *logging.Logger, opts ...Option) *Tailer {
	t := &Tailer{
		path:   path,
		whence: io.SeekStart,
		logger: logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tail follows the file and sends each line to out until ctx is done.
// Rotated files are reopened. out is not closed.
func (t *Tailer) Tail(ctx context.Context, out chan<- string) error {
	cfg := tail.Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Poll:      t.poll,
		Location:  &tail.SeekInfo{Offset: 0, Whence: t.whence},
		Logger:    tail.DiscardingLogger,
	}

	tf, err := tail.TailFile(t.path, cfg)
	if err != nil {
		return err
	}
	defer tf.Cleanup()

	t.logger.Infof("tailing log file %s", t.path)

	for {
		select {
		case <-ctx.Done():
			_ = tf.Stop()
			return ctx.Err()
		case line, ok := <-tf.Lines:
			if !ok {
				return tf.Err()
			}
			if line.Err != nil {
				t.logger.Errorf("tail error: %v", line.Err)
				continue
			}
			select {
			case out <- line.Text:
			case <-ctx.Done():
				_ = tf.Stop()
				return ctx.Err()
			}
		}
	}
}
