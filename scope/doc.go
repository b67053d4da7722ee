// Package scope holds the variable state that templates read and write.
//
// A [Scope] pairs a keyed slot store (name to loosely typed value) with a
// [Declarations] table (name to static Go type). Slots are written at
// execution time; declarations are written at compile time by the binder
// that owns the name, so a template compiled later sees the types recorded
// by templates compiled before it.
//
// Scopes have value semantics across hand-offs. [Scope.Derive] copies both
// maps, and nothing done to the copy is visible to the original.
//
// Host types used as template contexts usually embed *Scope, which gives
// them the [Indexer] and [Declarer] capabilities:
//
//	type Context struct {
//		*scope.Scope
//		Project string
//	}
package scope
