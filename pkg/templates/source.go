package templates

import "path/filepath"

// SourceKind enumerates the supported template source locations.
type SourceKind string

const (
	// SourceKindDir identifies an on-disk template directory.
	SourceKindDir SourceKind = "dir"
	// SourceKindFS identifies a path within an fs.FS supplied by the caller.
	SourceKindFS SourceKind = "fs"
)

// Source identifies where a template lives. Loaders switch on Kind to pick a
// read strategy; Location is the path within that strategy.
type Source interface {
	Location() string
	Kind() SourceKind
}

type dirSource struct {
	path string
}

func (s dirSource) Location() string {
	return s.path
}

func (s dirSource) Kind() SourceKind {
	return SourceKindDir
}

// SourceFromDir returns a Source pointing at a template directory on disk.
func SourceFromDir(path string) Source {
	return dirSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a template rooted inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}
