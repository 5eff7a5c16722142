package helpers

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// AbsolutePath resolves symlinks when possible and falls back to the plain
// absolute form.
func AbsolutePath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		if abs, err := filepath.Abs(resolved); err == nil {
			return abs
		}
	}

	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}

	return filepath.Clean(path)
}

// CopyInto copies a source into the target directory: a file lands in the
// directory under its own name, a directory has its content overlaid.
// Existing files are replaced.
func CopyInto(target string, source string) error {
	info, err := os.Stat(source)
	if err != nil {
		return errors.Wrapf(err, "could not copy: %s", source)
	}

	if info.IsDir() {
		return copyDirectoryContent(source, target)
	}

	if err = os.MkdirAll(target, 0755); err != nil {
		return err
	}

	return copyFile(source, filepath.Join(target, filepath.Base(source)))
}

func copyDirectoryContent(source string, target string) error {
	if err := os.MkdirAll(target, 0755); err != nil {
		return err
	}

	return filepath.Walk(source, func(entry string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relative, err := filepath.Rel(source, entry)
		if err != nil {
			return err
		}

		destination := filepath.Join(target, relative)

		if info.IsDir() {
			return os.MkdirAll(destination, 0755)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		return copyFile(entry, destination)
	})
}

func copyFile(source string, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}

	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

// DeleteTree removes a directory tree except the entries the keep predicate
// retains. Directories that still hold a kept entry survive. It reports
// whether the target is gone entirely.
func DeleteTree(target string, keep func(string) bool) (bool, error) {
	if keep == nil {
		keep = func(string) bool { return false }
	}

	info, err := os.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}

		return false, err
	}

	if !info.IsDir() {
		if keep(target) {
			return false, nil
		}

		return true, os.Remove(target)
	}

	if keep(target) {
		return false, nil
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return false, err
	}

	empty := true
	for _, entry := range entries {
		removed, err := DeleteTree(filepath.Join(target, entry.Name()), keep)
		if err != nil {
			return false, err
		}

		if !removed {
			empty = false
		}
	}

	if !empty {
		return false, nil
	}

	return true, os.Remove(target)
}

// DeleteAll removes a directory tree and fails when something survives.
func DeleteAll(target string) error {
	removed, err := DeleteTree(target, nil)
	if err != nil {
		return err
	}

	if !removed {
		return errors.Errorf("could not delete: %s", target)
	}

	return nil
}
