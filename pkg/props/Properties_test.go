package props

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.properties")

	data := map[string]string{
		"org.osgi.framework.startlevel.beginning": "100",
		"shutdown.timeout":                        "5s",
		"path.with.escapes":                       "C:\\temp\\data",
		"value.with.spaces":                       "hello world",
		"empty.value":                             "",
	}

	require.NoError(t, Save(data, file))

	loaded, err := Load(file, true)
	require.NoError(t, err)
	assert.Equal(t, data, loaded)
}

func TestSaveSortsKeys(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sorted.properties")

	require.NoError(t, Save(map[string]string{"b": "2", "a": "1", "c": "3"}, file))

	content, err := os.ReadFile(file)
	require.NoError(t, err)

	text := string(content)
	assert.Less(t, indexOf(text, "a"), indexOf(text, "b"))
	assert.Less(t, indexOf(text, "b"), indexOf(text, "c"))
	assert.NotContains(t, text, "#")
}

func TestLoadMissingOptional(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "missing.properties"), false)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoadMissingRequired(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.properties"), true)
	assert.Error(t, err)
}

func TestLoadDisablesExpansion(t *testing.T) {
	file := filepath.Join(t.TempDir(), "raw.properties")
	require.NoError(t, os.WriteFile(file, []byte("key=${placeholder}\n"), 0644))

	loaded, err := Load(file, true)
	require.NoError(t, err)
	assert.Equal(t, "${placeholder}", loaded["key"])
}

func TestLoadContinuationLines(t *testing.T) {
	file := filepath.Join(t.TempDir(), "continued.properties")
	require.NoError(t, os.WriteFile(file, []byte("key=first \\\n    second\n"), 0644))

	loaded, err := Load(file, true)
	require.NoError(t, err)
	assert.Equal(t, "first second", loaded["key"])
}

func TestMergeOverwrites(t *testing.T) {
	file := filepath.Join(t.TempDir(), "merge.properties")
	require.NoError(t, Save(map[string]string{"key": "disk", "extra": "yes"}, file))

	target := map[string]string{"key": "memory"}
	require.NoError(t, MergeTo(target, file, true))

	assert.Equal(t, "disk", target["key"])
	assert.Equal(t, "yes", target["extra"])
}

func TestRestoreKeepsOverrides(t *testing.T) {
	file := filepath.Join(t.TempDir(), "restore.properties")
	require.NoError(t, Save(map[string]string{"key": "disk", "extra": "yes"}, file))

	target := map[string]string{"key": "memory"}
	require.NoError(t, Restore(target, file))

	assert.Equal(t, "memory", target["key"])
	assert.Equal(t, "yes", target["extra"])
}

func TestRestoreMissingFile(t *testing.T) {
	target := map[string]string{"key": "memory"}
	require.NoError(t, Restore(target, filepath.Join(t.TempDir(), "missing.properties")))
	assert.Equal(t, map[string]string{"key": "memory"}, target)
}

func indexOf(haystack string, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}

	return -1
}
