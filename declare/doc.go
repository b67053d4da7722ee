// Package declare reads variable declarations from external files and
// command-line pairs.
//
// Every reader produces a flat name → value map. [Apply] stores the values
// into a [Setter] such as [scope.Scope], which records each value's dynamic
// type so that templates can reference the variables with static types.
//
// Supported formats are YAML, JSON, and HCL attribute files. Values are
// normalized to int, float64, bool, string, []any, and map[string]any.
package declare
