package hierarchy

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/stencil/pkg"
)

// Hierarchy errors.
var (
	ErrDirectoryNotFound = pkg.NewError("directory not found")
	ErrFileNotFound      = pkg.NewError("file not found")
	ErrTargetDir         = pkg.NewError("target directory must differ from source when no suffix is set")
	ErrReadDir           = pkg.NewError("read directory")
)

// DefaultSuffix selects template files. The target file name is the source
// name without it.
const DefaultSuffix = ".tmpl"

// File is a template source and the path its expansion is written to.
type File struct {
	Source string
	Target string
}

// Node is one directory of the tree.
type Node struct {
	Dir      string
	Files    []File
	Children []*Node
}

// Option configures [FromDirectory].
type Option func(*options)

type options struct {
	suffix string
	target string
	hidden bool
}

// WithSuffix selects files ending in suffix. An empty suffix selects every
// regular file and requires [WithTargetDir].
func WithSuffix(suffix string) Option {
	return func(o *options) { o.suffix = suffix }
}

// WithTargetDir writes output into a mirror of the tree rooted at dir
// instead of next to each source file.
func WithTargetDir(dir string) Option {
	return func(o *options) { o.target = dir }
}

// WithHidden includes files and directories whose names begin with a dot.
func WithHidden(include bool) Option {
	return func(o *options) { o.hidden = include }
}

// FromDirectory builds the tree rooted at root.
func FromDirectory(root string, opts ...Option) (*Node, error) {
	o := options{suffix: DefaultSuffix}
	for _, opt := range opts {
		opt(&o)
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		if err == nil {
			err = fs.ErrInvalid
		}

		return nil, ErrDirectoryNotFound.Wrap(err).With(slog.String("path", root))
	}

	target := o.target
	if target == "" {
		target = root
	}

	if o.suffix == "" && samePath(root, target) {
		return nil, ErrTargetDir.With(slog.String("path", root))
	}

	return o.build(root, target)
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)

	return err1 == nil && err2 == nil && aa == bb
}

func (o options) build(dir, target string) (*Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ErrReadDir.Wrap(err).With(slog.String("path", dir))
	}

	n := &Node{Dir: dir}

	for _, e := range entries {
		name := e.Name()
		if !o.hidden && strings.HasPrefix(name, ".") {
			continue
		}

		src := filepath.Join(dir, name)

		if e.IsDir() {
			if o.target != "" && samePath(src, o.target) {
				continue
			}

			child, err := o.build(src, filepath.Join(target, name))
			if err != nil {
				return nil, err
			}

			n.Children = append(n.Children, child)

			continue
		}

		if !e.Type().IsRegular() || len(name) <= len(o.suffix) || !strings.HasSuffix(name, o.suffix) {
			continue
		}

		n.Files = append(n.Files, File{
			Source: src,
			Target: filepath.Join(target, strings.TrimSuffix(name, o.suffix)),
		})
	}

	return n, nil
}

// FileFromPath describes a single template. An empty target is source
// without [DefaultSuffix].
func FileFromPath(source, target string) (File, error) {
	info, err := os.Stat(source)
	if err != nil || info.IsDir() {
		if err == nil {
			err = fs.ErrInvalid
		}

		return File{}, ErrFileNotFound.Wrap(err).With(slog.String("path", source))
	}

	if target == "" {
		target = strings.TrimSuffix(source, DefaultSuffix)
		if target == source {
			return File{}, ErrTargetDir.With(slog.String("path", source))
		}
	}

	return File{Source: source, Target: target}, nil
}

// Len returns the number of files in the tree rooted at n.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}

	count := len(n.Files)
	for _, c := range n.Children {
		count += c.Len()
	}

	return count
}

// Walk calls fn for n and every descendant in processing order.
func (n *Node) Walk(fn func(n *Node, depth int) error) error {
	return n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) error, depth int) error {
	if n == nil {
		return nil
	}

	if err := fn(n, depth); err != nil {
		return err
	}

	for _, c := range n.Children {
		if err := c.walk(fn, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// IsNotFound reports whether err is a missing file or directory error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDirectoryNotFound) || errors.Is(err, ErrFileNotFound)
}
