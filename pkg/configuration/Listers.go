package configuration

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// PathLister yields the bundle source paths of one --bundles or
// --bundle-store occurrence.
type PathLister interface {
	Paths() ([]string, error)
}

// BundleSource is a single source directory, or a deployment properties file
// whose parent directory is the source.
type BundleSource struct {
	Path string
}

func (s BundleSource) String() string {
	return s.Path
}

func (s BundleSource) Paths() ([]string, error) {
	return []string{filepath.Clean(s.Path)}, nil
}

// BundleStore treats every child directory of a root as a separate source,
// in a sorted, deterministic order.
type BundleStore struct {
	Root string
}

func (s BundleStore) String() string {
	return filepath.Join(s.Root, "*")
}

func (s BundleStore) Paths() ([]string, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, errors.Wrapf(err, "could not list bundle store: %s", s.Root)
	}

	var result []string
	for _, entry := range entries {
		if entry.IsDir() {
			result = append(result, filepath.Join(s.Root, entry.Name()))
		}
	}

	sort.Strings(result)
	return result, nil
}
