package engine

const literalName = "literal"

// literal writes its body verbatim and defers it to the next pass.
type literal struct{}

func (literal) Spec() Spec {
	return Spec{
		Name: literalName,
		Body: BodyRequired,
		Args: ArgsNone,
		Raw:  true,
	}
}

func (literal) Compile(c *Compiler, seg *Segment) (Node, error) {
	body := seg.Body

	remaining := c.generation()
	if remaining == 0 {
		return Text(body), nil
	}

	return func(f *Frame) error {
		return f.deferText(body, remaining)
	}, nil
}

// comment discards its body.
type comment struct{}

func (comment) Spec() Spec {
	return Spec{
		Name: "comment",
		Body: BodyOptional,
		Args: ArgsOptional,
		Raw:  true,
	}
}

func (comment) Compile(*Compiler, *Segment) (Node, error) {
	return Nop, nil
}
