// Package assets maps repository paths to host-asset identifiers. Game
// engines that track assets by GUID keep the mapping in sidecar .meta files
// next to each asset; lock records carry the GUID so the UI can show which
// asset a lock covers even after the file moves.
package assets

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Resolver looks up the asset identifier for a repo-relative path. An empty
// result means the path has no resolvable identifier; resolution is
// best-effort and never returns an error.
type Resolver interface {
	Resolve(relPath string) string
}

// MetaFileResolver resolves GUIDs from Unity-style sidecar files: for
// "Assets/x.png" it reads "Assets/x.png.meta" and returns its top-level
// guid key.
type MetaFileResolver struct {
	root string
}

// NewMetaFileResolver creates a resolver rooted at the repository root.
func NewMetaFileResolver(root string) *MetaFileResolver {
	return &MetaFileResolver{root: root}
}

// metaFile is the subset of a sidecar file Locksmith reads.
type metaFile struct {
	GUID string `yaml:"guid"`
}

// Resolve reads <root>/<relPath>.meta and returns its guid, or "" when the
// sidecar is missing, unreadable, or has no guid key.
func (r *MetaFileResolver) Resolve(relPath string) string {
	if relPath == "" {
		return ""
	}

	data, err := os.ReadFile(filepath.Join(r.root, relPath+".meta"))
	if err != nil {
		return ""
	}

	var meta metaFile
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return ""
	}
	return meta.GUID
}

// NopResolver resolves nothing; used for repositories without sidecar files.
type NopResolver struct{}

// Resolve always returns "".
func (NopResolver) Resolve(string) string { return "" }
