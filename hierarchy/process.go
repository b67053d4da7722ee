package hierarchy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/readahead"

	"github.com/ardnew/stencil/engine"
	"github.com/ardnew/stencil/log"
	"github.com/ardnew/stencil/pkg"
	"github.com/ardnew/stencil/scope"
)

// Processing errors.
var (
	ErrProcessFile = pkg.NewError("process file")
	ErrReadFile    = pkg.NewError("read file")
	ErrWriteFile   = pkg.NewError("write file")
)

// Host is a variable scope that can be handed down the tree by copy.
type Host[H any] interface {
	scope.Indexer
	scope.Declarer
	Derive() H
}

// ProcessorOption configures a [Processor].
type ProcessorOption func(*processorOptions)

type processorOptions struct {
	failFast bool
	dryRun   bool
	logger   log.Logger
}

// WithFailFast stops processing at the first file that fails.
func WithFailFast(enable bool) ProcessorOption {
	return func(o *processorOptions) { o.failFast = enable }
}

// WithDryRun expands files without writing targets.
func WithDryRun(enable bool) ProcessorOption {
	return func(o *processorOptions) { o.dryRun = enable }
}

// WithLogger sets the logger used to report progress and failures.
func WithLogger(logger log.Logger) ProcessorOption {
	return func(o *processorOptions) { o.logger = logger }
}

// Processor expands every file of a tree with one engine.
type Processor[H Host[H]] struct {
	engine *engine.Engine
	opts   processorOptions
}

// NewProcessor returns a processor that expands files with e.
func NewProcessor[H Host[H]](e *engine.Engine, opts ...ProcessorOption) *Processor[H] {
	p := &Processor[H]{engine: e}
	for _, opt := range opts {
		opt(&p.opts)
	}

	return p
}

// Process expands the tree rooted at node, starting from a copy of root, and
// returns the scope as it stands after node's last file. Failures of
// individual files are joined into the returned error.
func (p *Processor[H]) Process(ctx context.Context, node *Node, root H) (H, error) {
	work := root.Derive()

	if node == nil {
		return work, nil
	}

	var errs []error

	for _, f := range node.Files {
		if err := ctx.Err(); err != nil {
			return work, errors.Join(append(errs, err)...)
		}

		trial := work.Derive()

		if err := p.ProcessFile(ctx, f, trial); err != nil {
			p.opts.logger.ErrorContext(ctx, "file failed",
				slog.String("file", f.Source),
				slog.Any("error", err),
			)

			errs = append(errs, err)
			if p.opts.failFast {
				return work, errors.Join(errs...)
			}

			continue
		}

		work = trial
	}

	for _, child := range node.Children {
		_, err := p.Process(ctx, child, work)
		if err != nil {
			errs = append(errs, err)
			if p.opts.failFast {
				break
			}
		}
	}

	return work, errors.Join(errs...)
}

// ProcessFile expands f against host and writes the result to f.Target.
func (p *Processor[H]) ProcessFile(ctx context.Context, f File, host H) error {
	src := slog.String("file", f.Source)

	data, err := readFile(f.Source)
	if err != nil {
		return ErrProcessFile.Wrap(err).With(src)
	}

	out, err := p.engine.Expand(ctx, string(data), host)
	if err != nil {
		return ErrProcessFile.Wrap(err).With(src)
	}

	p.opts.logger.DebugContext(ctx, "expanded",
		src,
		slog.String("target", f.Target),
		slog.Int("bytes", len(out)),
	)

	if p.opts.dryRun {
		return nil
	}

	if err := pkg.WriteFile(f.Target, []byte(out)); err != nil {
		return ErrProcessFile.Wrap(ErrWriteFile.Wrap(err)).With(src)
	}

	return nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrReadFile.Wrap(err)
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadFile.Wrap(err)
	}

	return data, nil
}
