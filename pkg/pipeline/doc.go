// Package pipeline synthesizes Harness pipeline definitions for generated
// projects and serializes them with a purpose-built YAML emitter. The
// emitter, not yaml.v3, writes the final document: it preserves key order
// exactly as constructed and quotes scalars only on a fixed trigger set so
// Harness <+...> runtime expressions survive unmangled.
package pipeline
