package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"webrag/internal/adapter/fs"
	"webrag/internal/domain"
)

var ErrNoExamples = errors.New("dataset has no examples")

// Load reads a YAML dataset file. A dataset without a name is named after
// its file.
func Load(path string) (domain.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("failed to read dataset: %w", err)
	}

	var ds domain.Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return domain.Dataset{}, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}

	if ds.Name == "" {
		ds.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if len(ds.Examples) == 0 {
		return domain.Dataset{}, fmt.Errorf("%s: %w", path, ErrNoExamples)
	}
	for i, ex := range ds.Examples {
		if strings.TrimSpace(ex.URL) == "" || strings.TrimSpace(ex.Question) == "" {
			return domain.Dataset{}, fmt.Errorf("%s: example %d needs both url and question", path, i+1)
		}
	}
	return ds, nil
}

// Discover expands the given patterns and returns the matching dataset
// files in path order.
func Discover(patterns []string) ([]string, error) {
	files, err := fs.NewWalker([]string{"**/*.{yaml,yml}"}, nil).Collect(patterns)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths, nil
}

// Find returns the discovered dataset whose name or file stem equals name.
func Find(patterns []string, name string) (domain.Dataset, error) {
	paths, err := Discover(patterns)
	if err != nil {
		return domain.Dataset{}, err
	}
	for _, p := range paths {
		ds, err := Load(p)
		if err != nil {
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		if ds.Name == name || stem == name {
			return ds, nil
		}
	}
	return domain.Dataset{}, fmt.Errorf("dataset %q not found", name)
}

func Save(path string, ds domain.Dataset) error {
	data, err := yaml.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
