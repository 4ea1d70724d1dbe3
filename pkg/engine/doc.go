// Package engine is the template processor: it compiles and renders
// Handlebars-style templates against a render context, exposes syntax
// validation and static variable extraction, and ships the fixed standard
// helper set (case conversion, date formatting, comparison and array helpers,
// Harness expression emitters, and the skip-file control-flow helper).
package engine
