// Package hierarchy processes a directory tree of templates.
//
// [FromDirectory] builds a read-only tree of [Node] values, one per
// directory, holding the directory's template files in name order and its
// subdirectories in name order. A [Processor] walks the tree depth-first and
// expands every file against a variable scope that is handed down the tree
// by copy:
//
//   - each directory works on a scope derived from the one its parent handed
//     down;
//   - files in a directory run in order, and each sees the definitions made
//     by the files before it;
//   - each subdirectory starts from the directory's scope as it stands after
//     the last file, so sibling subdirectories never see each other's
//     definitions.
//
// A file that fails to expand is reported and skipped; its definitions are
// discarded. Processing continues with the next file unless the processor
// was created with [WithFailFast].
package hierarchy
