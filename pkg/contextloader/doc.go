// Package contextloader samples a source tree under a hard token ceiling. It
// walks a directory in stable lexical order under include/exclude patterns,
// reads files up to a global token budget (truncating the file that crosses
// it), classifies binary files by extension, and derives a best-effort
// project analysis from well-known marker files. Results are memoized per
// base path and variable map.
package contextloader
