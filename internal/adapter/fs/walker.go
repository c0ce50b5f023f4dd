package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"webrag/internal/port"
)

var (
	_ port.FileWalker = (*Walker)(nil)
	_ port.FileReader = (*Walker)(nil)
)

// DefaultIncludes selects the text documents that can be indexed as a source.
var DefaultIncludes = []string{"**/*.{txt,md,markdown,html,htm}"}

// DefaultExcludes skips VCS metadata and dependency trees.
var DefaultExcludes = []string{".git/", "**/.git/", "node_modules/", "**/node_modules/", "vendor/", "**/vendor/"}

type Walker struct {
	includes []string
	excludes []string
}

func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = DefaultIncludes
	}
	if excludes == nil {
		excludes = DefaultExcludes
	}
	return &Walker{
		includes: includes,
		excludes: excludes,
	}
}

// Walk lists the files under root that match the include patterns and none
// of the exclude patterns. Paths are relative to root when matched.
func (w *Walker) Walk(root string) ([]port.FileInfo, error) {
	var files []port.FileInfo

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && w.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			info, err := d.Info()
			if err != nil {
				return err
			}
			files = append(files, port.FileInfo{
				Path:    path,
				ModTime: info.ModTime().Unix(),
				Size:    info.Size(),
			})
		}

		return nil
	})

	return files, err
}

// Collect resolves a mix of directories, files and doublestar globs into a
// sorted, de-duplicated file list. Directories are walked with the walker's
// include and exclude patterns; globs and plain files are taken as given.
func (w *Walker) Collect(patterns []string) ([]port.FileInfo, error) {
	seen := make(map[string]bool)
	var files []port.FileInfo

	add := func(f port.FileInfo) {
		if !seen[f.Path] {
			seen[f.Path] = true
			files = append(files, f)
		}
	}

	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil {
			if info.IsDir() {
				found, err := w.Walk(pattern)
				if err != nil {
					return nil, err
				}
				for _, f := range found {
					add(f)
				}
				continue
			}
			abs, err := filepath.Abs(pattern)
			if err != nil {
				return nil, err
			}
			add(port.FileInfo{Path: abs, ModTime: info.ModTime().Unix(), Size: info.Size()})
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			abs, err := filepath.Abs(m)
			if err != nil {
				return nil, err
			}
			add(port.FileInfo{Path: abs, ModTime: info.ModTime().Unix(), Size: info.Size()})
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
