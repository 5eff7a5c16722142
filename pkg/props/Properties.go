package props

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/magiconair/properties"
	"github.com/pkg/errors"
)

// Load reads a key=value properties file with the usual escape and
// line-continuation semantics. A missing optional file yields an empty map.
func Load(path string, required bool) (map[string]string, error) {
	result := make(map[string]string)

	if err := MergeTo(result, path, required); err != nil {
		return nil, err
	}

	return result, nil
}

// MergeTo loads a properties file into an existing map, overwriting entries
// that are present in both.
func MergeTo(result map[string]string, path string, required bool) error {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}

	loaded, err := loader.LoadFile(path)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) && !required {
			return nil
		}

		return errors.Wrapf(err, "could not load properties: %s", path)
	}

	for _, key := range loaded.Keys() {
		result[key], _ = loaded.Get(key)
	}

	return nil
}

// Restore merges a persisted properties file into the map without overriding
// entries that are already present, so command-line overrides keep dominating
// the persisted defaults.
func Restore(result map[string]string, path string) error {
	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}

	loaded, err := loader.LoadFile(path)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil
		}

		return errors.Wrapf(err, "could not restore properties: %s", path)
	}

	for _, key := range loaded.Keys() {
		if _, exists := result[key]; !exists {
			result[key], _ = loaded.Get(key)
		}
	}

	return nil
}

// Save writes the map with sorted keys and no timestamp comment, so that the
// output is stable and diff-friendly.
func Save(data map[string]string, path string) error {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	out := properties.NewProperties()
	out.DisableExpansion = true
	for _, key := range keys {
		if _, _, err := out.Set(key, data[key]); err != nil {
			return errors.Wrapf(err, "could not set property: %s", key)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "could not save properties: %s", path)
	}

	defer file.Close()

	if _, err = out.Write(file, properties.UTF8); err != nil {
		return errors.Wrapf(err, "could not save properties: %s", path)
	}

	return file.Sync()
}

// Exists tells whether the file is present without opening it.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Normalize returns a cleaned absolute representation of a path for messages.
func Normalize(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}

	return filepath.Clean(path)
}
