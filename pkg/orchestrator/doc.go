// Package orchestrator drives template generation end to end: it detects a
// template's format, dispatches to the registered loader, merges declared
// variable defaults with caller values, renders a companion summary, and
// optionally synthesizes a Harness pipeline document for the generated
// project. Failures are converted into a structured result, never thrown.
package orchestrator
