package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func names(t *testing.T, root string, paths []string) []string {
	t.Helper()
	var out []string
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestWalker_Walk(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"notes.md":                  "# notes",
		"docs/guide.txt":            "guide",
		"docs/page.html":            "<p>page</p>",
		"docs/image.png":            "png",
		".git/HEAD":                 "ref",
		"node_modules/pkg/README.md": "dep",
	})

	w := NewWalker(nil, nil)
	files, err := w.Walk(root)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"notes.md", "docs/guide.txt", "docs/page.html"}, names(t, root, paths))
}

func TestWalker_CustomPatterns(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.txt":      "a",
		"skip/b.txt": "b",
		"keep/c.txt": "c",
		"keep/d.md":  "d",
	})

	files, err := NewWalker([]string{"**/*.txt"}, []string{"skip/"}).Walk(root)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"a.txt", "keep/c.txt"}, names(t, root, paths))
}

func TestWalker_Collect(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"one.txt":       "1",
		"two.txt":       "2",
		"sub/three.md":  "3",
		"sub/four.html": "4",
		"other/x.yaml":  "x",
	})

	w := NewWalker(nil, nil)
	files, err := w.Collect([]string{
		filepath.Join(root, "*.txt"),
		filepath.Join(root, "sub"),
		filepath.Join(root, "one.txt"),
		filepath.Join(root, "other", "x.yaml"),
	})
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"one.txt", "other/x.yaml", "sub/four.html", "sub/three.md", "two.txt"}, names(t, root, paths))
}

func TestWalker_CollectNoMatches(t *testing.T) {
	files, err := NewWalker(nil, nil).Collect([]string{filepath.Join(t.TempDir(), "**/*.txt")})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestWalker_ReadFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "hello"})

	got, err := NewWalker(nil, nil).ReadFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}
