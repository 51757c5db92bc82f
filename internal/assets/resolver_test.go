package assets

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMeta(t *testing.T, root, relPath, content string) {
	t.Helper()
	full := filepath.Join(root, relPath+".meta")
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatalf("write meta: %v", err)
	}
}

func TestMetaFileResolver_Resolve(t *testing.T) {
	root := t.TempDir()
	writeMeta(t, root, "Assets/Textures/wall.png", `fileFormatVersion: 2
guid: 8a1b2c3d4e5f67890123456789abcdef
TextureImporter:
  internalIDToNameTable: []
`)

	r := NewMetaFileResolver(root)

	got := r.Resolve("Assets/Textures/wall.png")
	want := "8a1b2c3d4e5f67890123456789abcdef"
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestMetaFileResolver_MissingSidecar(t *testing.T) {
	r := NewMetaFileResolver(t.TempDir())

	if got := r.Resolve("Assets/absent.png"); got != "" {
		t.Errorf("Resolve() = %q, want empty for missing sidecar", got)
	}
}

func TestMetaFileResolver_NoGuidKey(t *testing.T) {
	root := t.TempDir()
	writeMeta(t, root, "Assets/odd.png", "fileFormatVersion: 2\n")

	r := NewMetaFileResolver(root)
	if got := r.Resolve("Assets/odd.png"); got != "" {
		t.Errorf("Resolve() = %q, want empty when guid key is absent", got)
	}
}

func TestMetaFileResolver_MalformedYAML(t *testing.T) {
	root := t.TempDir()
	writeMeta(t, root, "Assets/bad.png", "guid: [unclosed\n")

	r := NewMetaFileResolver(root)
	if got := r.Resolve("Assets/bad.png"); got != "" {
		t.Errorf("Resolve() = %q, want empty on malformed yaml", got)
	}
}

func TestMetaFileResolver_EmptyPath(t *testing.T) {
	r := NewMetaFileResolver(t.TempDir())
	if got := r.Resolve(""); got != "" {
		t.Errorf("Resolve(\"\") = %q, want empty", got)
	}
}

func TestNopResolver(t *testing.T) {
	var r Resolver = NopResolver{}
	if got := r.Resolve("Assets/anything.png"); got != "" {
		t.Errorf("NopResolver.Resolve() = %q, want empty", got)
	}
}
