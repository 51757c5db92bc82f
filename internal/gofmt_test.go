package internal

import (
	"bytes"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestGofmtCompliance verifies that every Go source file in the project is
// gofmt-clean. If this test fails, run: gofmt -w .
func TestGofmtCompliance(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	// Tests run from internal/; the module root is one level up.
	projectRoot := wd
	if filepath.Base(wd) == "internal" {
		projectRoot = filepath.Dir(wd)
	}

	var unformattedFiles []string

	err = filepath.Walk(projectRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			// Skip vendored code and anything the Go toolchain ignores.
			name := info.Name()
			if path != projectRoot && (name == "vendor" ||
				strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(path, ".go") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		formatted, err := format.Source(content)
		if err != nil {
			// Skip files that don't parse (might be generated or have build tags)
			return nil
		}

		if !bytes.Equal(content, formatted) {
			relPath, _ := filepath.Rel(projectRoot, path)
			unformattedFiles = append(unformattedFiles, relPath)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk project root %s: %v", projectRoot, err)
	}

	if len(unformattedFiles) > 0 {
		t.Errorf("The following files are not properly formatted:\n")
		for _, f := range unformattedFiles {
			t.Errorf("  - %s\n", f)
		}
		t.Errorf("\nRun 'gofmt -w .' to fix formatting issues.")
	}
}
