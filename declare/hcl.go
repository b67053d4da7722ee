package declare

import (
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// decodeHCL evaluates the top-level attributes of an HCL file. Attribute
// expressions may reference the process environment as env.NAME.
func decodeHCL(name string, data []byte) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, ErrDecode.Wrap(diags).With(slog.String("format", "hcl"))
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, ErrDecode.Wrap(diags).With(slog.String("format", "hcl"))
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": environ()},
	}

	vars := make(map[string]any, len(attrs))

	for n, attr := range attrs {
		val, diags := attr.Expr.Value(ctx)
		if diags.HasErrors() {
			return nil, ErrDecode.Wrap(diags).With(slog.String("attribute", n))
		}

		v, err := ctyToNative(val)
		if err != nil {
			return nil, ErrDecode.Wrap(err).With(slog.String("attribute", n))
		}

		vars[n] = v
	}

	return vars, nil
}

func environ() cty.Value {
	m := map[string]cty.Value{}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			m[k] = cty.StringVal(v)
		}
	}

	if len(m) == 0 {
		return cty.EmptyObjectVal
	}

	return cty.ObjectVal(m)
}

// ctyToNative converts v to its most natural Go counterpart. Whole numbers
// become int.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()

	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		if bf := v.AsBigFloat(); bf.IsInt() {
			var i int
			if err := gocty.FromCtyValue(v, &i); err == nil {
				return i, nil
			}
		}

		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}

		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())

		for it := v.ElementIterator(); it.Next(); {
			_, e := it.Element()

			n, err := ctyToNative(e)
			if err != nil {
				return nil, err
			}

			out = append(out, n)
		}

		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, v.LengthInt())

		for it := v.ElementIterator(); it.Next(); {
			k, e := it.Element()

			n, err := ctyToNative(e)
			if err != nil {
				return nil, err
			}

			out[k.AsString()] = n
		}

		return out, nil

	default:
		return nil, ErrDecode.With(slog.String("type", ty.FriendlyName()))
	}
}
