package engine

// BodyMode declares whether a directive takes a body.
type BodyMode int

// Body modes.
const (
	BodyNone BodyMode = iota
	BodyOptional
	BodyRequired
)

// ArgsMode declares whether a directive takes arguments.
type ArgsMode int

// Argument modes.
const (
	ArgsNone ArgsMode = iota
	ArgsOptional
	ArgsRequired
)

// Spec describes the shape of a directive invocation.
type Spec struct {
	Name string
	Body BodyMode
	Args ArgsMode
	// Raw keeps the body as unparsed text; Segment.Children is nil.
	Raw bool
	// Reserved lists self-closing markers that only have meaning inside
	// this directive's body, like "else" for "if".
	Reserved []string
}

// Directive compiles one kind of directive invocation.
//
// The [Compiler] checks arguments and body against Spec before calling
// Compile.
type Directive interface {
	Spec() Spec
	Compile(c *Compiler, seg *Segment) (Node, error)
}

func defaultDirectives() []Directive {
	return []Directive{
		literal{},
		define{},
		undef{},
		pragma{},
		cond{},
		each{},
		comment{},
	}
}
