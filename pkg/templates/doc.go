// Package templates declares the contracts shared between the orchestrator
// and format-specific template loaders: how a template is located, what
// metadata it declares, and what a loader emits. Implementations live under
// internal/ and are wired through the orchestrator's registry.
package templates
