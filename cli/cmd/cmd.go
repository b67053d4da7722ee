package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/klauspost/readahead"

	"github.com/ardnew/stencil/declare"
	"github.com/ardnew/stencil/engine"
	"github.com/ardnew/stencil/log"
	"github.com/ardnew/stencil/scope"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer kong was configured with, or [os.Stdout].
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// readSource reads the named file, or stdin for [stdinSource].
func readSource(path string) ([]byte, error) {
	var r io.Reader = os.Stdin

	if path != stdinSource {
		f, err := os.Open(path)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("file", path))
		}
		defer f.Close()

		r = f
	}

	ra := readahead.NewReader(r)
	defer ra.Close()

	b, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadSource.Wrap(err).With(slog.String("file", path))
	}

	return b, nil
}

// Declare holds flags that seed the root scope.
type Declare struct {
	Vars []string `help:"Declaration file (.yaml, .yml, .json, .hcl)" placeholder:"FILE"       short:"f" type:"existingfile"`
	Set  []string `help:"Declare a variable"                           placeholder:"NAME=VALUE" short:"D" sep:"none"`
}

// newScope returns a new scope holding every declaration file in order,
// followed by the --set pairs.
func (d Declare) newScope(ctx context.Context) (*scope.Scope, error) {
	s := scope.New()

	for _, path := range d.Vars {
		vars, err := declare.Load(path)
		if err != nil {
			return nil, ErrDeclare.Wrap(err)
		}

		log.DebugContext(ctx, "declarations loaded",
			slog.String("file", path),
			slog.Int("count", len(vars)),
		)

		declare.Apply(s, vars)
	}

	vars, err := declare.Pairs(d.Set)
	if err != nil {
		return nil, ErrDeclare.Wrap(err)
	}

	declare.Apply(s, vars)

	return s, nil
}

// Expansion holds flags that configure the engine.
type Expansion struct {
	MaxPasses int `default:"${maxPasses}" help:"Maximum number of expansion passes"`
}

// newEngine returns an engine configured from the flags.
func (x Expansion) newEngine() *engine.Engine {
	return engine.New(
		engine.WithMaxPasses(x.MaxPasses),
		engine.WithLogger(log.Default()),
	)
}

// Vars returns the kong variables referenced by the shared flag groups.
func Vars() kong.Vars {
	return kong.Vars{
		"maxPasses": strconv.Itoa(engine.DefaultMaxPasses),
	}
}
