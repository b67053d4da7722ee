package engine

import (
	"log/slog"
	"slices"
	"strings"
	"unicode"
)

// Delim opens and closes every template region.
const Delim = "$$"

// SegmentKind identifies the kind of a [Segment].
type SegmentKind int

// Segment kinds.
const (
	SegmentText SegmentKind = iota
	SegmentExpr
	SegmentDirective
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentText:
		return "text"
	case SegmentExpr:
		return "expr"
	case SegmentDirective:
		return "directive"
	default:
		return "unknown"
	}
}

// Segment is one piece of a parsed template.
type Segment struct {
	Kind SegmentKind
	// Text holds the literal text of a text segment or the trimmed source of
	// an expression segment.
	Text string
	// Name and Args are set for directives.
	Name string
	Args string
	// Body is the raw text between a directive's opener and closer.
	Body    string
	HasBody bool
	// Children is the parsed body. It is nil for self-closing directives and
	// for directives whose body is kept raw.
	Children []Segment
	Pos      Pos
}

// Unit is a parsed template.
type Unit struct {
	Source   string
	Segments []Segment
}

// ParseOption configures [Parse].
type ParseOption func(*parser)

// WithRawBodies keeps the bodies of the named directives as unparsed text.
func WithRawBodies(names ...string) ParseOption {
	return func(p *parser) {
		for _, n := range names {
			p.raw[n] = true
		}
	}
}

type parser struct {
	src string
	raw map[string]bool
}

// region is one delimited span: src[start:end] includes both delimiters.
type region struct {
	start, end int
	inner      string
}

// opener describes a region whose content begins with '#'.
type opener struct {
	name, args string
	selfClose  bool
}

// Parse splits source into segments. Directive names are not checked here.
func Parse(source string, opts ...ParseOption) (*Unit, error) {
	p := &parser{src: source, raw: map[string]bool{}}
	for _, opt := range opts {
		opt(p)
	}

	segs, err := p.parse(0, len(source))
	if err != nil {
		return nil, err
	}

	return &Unit{Source: source, Segments: segs}, nil
}

func (p *parser) rawNames() []string {
	names := make([]string, 0, len(p.raw))
	for n := range p.raw {
		names = append(names, n)
	}

	slices.Sort(names)

	return names
}

func (p *parser) syntax(offset int, msg string) error {
	return ErrSyntax.With(slog.String("reason", msg)).With(posAt(p.src, offset).Attrs()...)
}

// next finds the next region starting at or after from and before limit.
func (p *parser) next(from, limit int) (region, bool, error) {
	i := strings.Index(p.src[from:limit], Delim)
	if i < 0 {
		return region{}, false, nil
	}

	start := from + i
	j := strings.Index(p.src[start+len(Delim):limit], Delim)

	if j < 0 {
		return region{}, false, p.syntax(start, "unmatched "+Delim)
	}

	end := start + len(Delim) + j + len(Delim)

	return region{
		start: start,
		end:   end,
		inner: p.src[start+len(Delim) : end-len(Delim)],
	}, true, nil
}

func isNameByte(c byte, first bool) bool {
	switch {
	case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		return true
	case '0' <= c && c <= '9':
		return !first
	default:
		return false
	}
}

// scanName returns the leading identifier of s.
func scanName(s string) (string, string) {
	i := 0
	for i < len(s) && isNameByte(s[i], i == 0) {
		i++
	}

	return s[:i], s[i:]
}

func parseOpener(inner string) (opener, bool) {
	s := strings.TrimLeftFunc(inner, unicode.IsSpace)
	if !strings.HasPrefix(s, "#") {
		return opener{}, false
	}

	name, rest := scanName(s[1:])
	rest = strings.TrimRightFunc(rest, unicode.IsSpace)
	o := opener{name: name}

	if strings.HasSuffix(rest, "/") {
		o.selfClose = true
		rest = strings.TrimSuffix(rest, "/")
	}

	o.args = strings.TrimSpace(rest)

	return o, true
}

func parseCloser(inner string) (string, bool) {
	s := strings.TrimSpace(inner)
	if !strings.HasPrefix(s, "/") {
		return "", false
	}

	return strings.TrimSpace(s[1:]), true
}

// closer finds the region closing a body directive named name whose opener
// ends at from.
func (p *parser) closer(name string, from, limit int) (region, bool, error) {
	depth := 1

	for pos := from; ; {
		r, ok, err := p.next(pos, limit)
		if err != nil || !ok {
			return region{}, false, err
		}

		pos = r.end

		if o, ok := parseOpener(r.inner); ok && o.name == name && !o.selfClose {
			depth++

			continue
		}

		if n, ok := parseCloser(r.inner); ok && n == name {
			depth--
			if depth == 0 {
				return r, true, nil
			}
		}
	}
}

func (p *parser) parse(from, limit int) ([]Segment, error) {
	var segs []Segment

	pos := from

	for pos < limit {
		r, ok, err := p.next(pos, limit)
		if err != nil {
			return nil, err
		}

		if !ok {
			break
		}

		if r.start > pos {
			segs = append(segs, Segment{
				Kind: SegmentText,
				Text: p.src[pos:r.start],
				Pos:  posAt(p.src, pos),
			})
		}

		seg, end, err := p.segment(r, limit)
		if err != nil {
			return nil, err
		}

		segs = append(segs, seg)
		pos = end
	}

	if pos < limit {
		segs = append(segs, Segment{
			Kind: SegmentText,
			Text: p.src[pos:limit],
			Pos:  posAt(p.src, pos),
		})
	}

	return segs, nil
}

// segment converts region r into a segment and returns the offset where
// parsing resumes.
func (p *parser) segment(r region, limit int) (Segment, int, error) {
	start := posAt(p.src, r.start)

	if strings.TrimSpace(r.inner) == "" {
		return Segment{}, 0, p.syntax(r.start, "empty expression")
	}

	if name, ok := parseCloser(r.inner); ok {
		return Segment{}, 0, p.syntax(r.start, "closing "+name+" without opening directive")
	}

	o, ok := parseOpener(r.inner)
	if !ok {
		return Segment{
			Kind: SegmentExpr,
			Text: strings.TrimSpace(r.inner),
			Pos:  start,
		}, r.end, nil
	}

	if o.name == "" {
		return Segment{}, 0, p.syntax(r.start, "missing directive name")
	}

	seg := Segment{
		Kind: SegmentDirective,
		Name: o.name,
		Args: o.args,
		Pos:  start,
	}

	if o.selfClose {
		return seg, r.end, nil
	}

	c, ok, err := p.closer(o.name, r.end, limit)
	if err != nil {
		return Segment{}, 0, err
	}

	if !ok {
		return Segment{}, 0, p.syntax(r.start, "directive "+o.name+" is not closed")
	}

	seg.HasBody = true
	seg.Body = p.src[r.end:c.start]

	if !p.raw[o.name] {
		seg.Children, err = p.parse(r.end, c.start)
		if err != nil {
			return Segment{}, 0, err
		}
	}

	return seg, c.end, nil
}

// dontProcess reports whether the first directive of source is
// "pragma dontprocess". Malformed source is never verbatim.
func dontProcess(source string) bool {
	p := &parser{src: source}

	for pos := 0; ; {
		r, ok, err := p.next(pos, len(source))
		if err != nil || !ok {
			return false
		}

		pos = r.end

		o, ok := parseOpener(r.inner)
		if !ok {
			continue
		}

		return o.name == pragmaName && o.selfClose && o.args == pragmaDontProcess
	}
}
