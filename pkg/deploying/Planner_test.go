package deploying

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/simplelauncher/sml/pkg/static"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeBundle(t *testing.T, dir string, relative string) {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(relative))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("archive"), 0644))
}

func plan(t *testing.T, dir string, properties map[string]string) map[string]*Deployment {
	t.Helper()

	planner := NewPlanner(zap.NewNop())
	require.NoError(t, planner.ConfigureLocationProperties(dir, properties))

	result := make(map[string]*Deployment)
	for _, bundle := range planner.Deployment().Bundles() {
		result[bundle.Location] = bundle
	}

	return result
}

func TestPlannerEmptySource(t *testing.T) {
	planner := NewPlanner(zap.NewNop())
	require.NoError(t, planner.ConfigureLocationProperties(t.TempDir(), nil))
	assert.Empty(t, planner.Deployment().Bundles())
}

func TestPlannerDiscovery(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "testing/testing-1.0.0.jar")
	writeBundle(t, dir, "top.jar")
	writeBundle(t, dir, "notes.txt")

	bundles := plan(t, dir, nil)

	root := LocationURI(dir)
	assert.Len(t, bundles, 2)
	assert.Contains(t, bundles, root+"testing/testing-1.0.0.jar")
	assert.Contains(t, bundles, root+"top.jar")

	entry := bundles[root+"top.jar"]
	require.NotNil(t, entry.Source)
	assert.Equal(t, filepath.Join(dir, "top.jar"), entry.Source.Name)
}

func TestPlannerDeterministicOrder(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "deep/nested/c.jar")
	writeBundle(t, dir, "z.jar")
	writeBundle(t, dir, "a.jar")
	writeBundle(t, dir, "deep/b.jar")

	planner := NewPlanner(zap.NewNop())
	require.NoError(t, planner.ConfigureLocationProperties(dir, nil))

	locations := make([]string, 0, 4)
	for _, bundle := range planner.Deployment().Bundles() {
		locations = append(locations, bundle.Location)
	}

	root := LocationURI(dir)
	assert.Equal(t, []string{
		root + "a.jar",
		root + "deep/b.jar",
		root + "deep/nested/c.jar",
		root + "z.jar",
	}, locations)
}

func TestPlannerLocationRoot(t *testing.T) {
	testCases := []struct {
		name   string
		root   string
		wanted string
	}{
		{"verbatim with trailing slash", "store/", "store/x.jar"},
		{"verbatim with trailing colon", "custom:", "custom:x.jar"},
		{"uri gets a slash appended", "https://example.com/bundles", "https://example.com/bundles/x.jar"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeBundle(t, dir, "x.jar")

			bundles := plan(t, dir, map[string]string{static.PROPERTY_BUNDLE_LOCATION_ROOT: tc.root})
			assert.Contains(t, bundles, tc.wanted)
		})
	}
}

func TestPlannerSearchFilter(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "module.bundle")
	writeBundle(t, dir, "module.jar")

	bundles := plan(t, dir, map[string]string{static.PROPERTY_DEPLOYMENT_SEARCH: "*.bundle"})

	root := LocationURI(dir)
	assert.Len(t, bundles, 1)
	assert.Contains(t, bundles, root+"module.bundle")
}

func TestPlannerScopedOverrides(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "org.osgi.util.tracker.jar")
	writeBundle(t, dir, "foo.jar")
	writeBundle(t, dir, "subdir/bar.jar")

	bundles := plan(t, dir, map[string]string{
		static.PROPERTY_START_LEVEL:                           "10",
		static.SCOPED_START_LEVEL + "*.jar":                   "20",
		static.SCOPED_START_LEVEL + "org.osgi.util.*.jar":     "1",
	})

	root := LocationURI(dir)

	// More literals wins
	assert.Equal(t, 1, bundles[root+"org.osgi.util.tracker.jar"].StartLevel)
	// The generic pattern catches the rest of the top level
	assert.Equal(t, 20, bundles[root+"foo.jar"].StartLevel)
	// No matcher crosses the path separator, the inherited default applies
	assert.Equal(t, 10, bundles[root+"subdir/bar.jar"].StartLevel)
}

func TestPlannerAmbiguousOverride(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "a-b.jar")

	bundles := plan(t, dir, map[string]string{
		static.PROPERTY_START_LEVEL:          "10",
		static.SCOPED_START_LEVEL + "a-?.jar":  "5",
		static.SCOPED_START_LEVEL + "a-b.?ar":  "7",
	})

	// Equal literal counts: the ambiguity applies neither override
	assert.Equal(t, 10, bundles[LocationURI(dir)+"a-b.jar"].StartLevel)
}

func TestPlannerScopedAction(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "keep.jar")
	writeBundle(t, dir, "drop.jar")

	bundles := plan(t, dir, map[string]string{
		static.PROPERTY_DEPLOYMENT_ACTION:          "install,update",
		static.SCOPED_DEPLOYMENT_ACTION + "drop.jar": "uninstall",
	})

	root := LocationURI(dir)
	assert.Equal(t, Install|Update, bundles[root+"keep.jar"].Actions)
	assert.Equal(t, Uninstall, bundles[root+"drop.jar"].Actions)
}

func TestPlannerBundleRedefinition(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "present.jar")

	bundles := plan(t, dir, map[string]string{
		static.SCOPED_BUNDLE_LOCATION + "present.jar": "custom:present",
		static.SCOPED_BUNDLE_LOCATION + "ghost.jar":   "",
	})

	// The discovered bundle moves to the overridden location
	entry, found := bundles["custom:present"]
	require.True(t, found)
	require.NotNil(t, entry.Source)

	// The phantom entry exists without a source, as an uninstall target
	ghost, found := bundles[LocationURI(dir)+"ghost.jar"]
	require.True(t, found)
	assert.Nil(t, ghost.Source)
}

func TestPlannerStartLevelDefault(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "x.jar")

	bundles := plan(t, dir, map[string]string{static.PROPERTY_START_LEVEL: "100"})

	entry := bundles[LocationURI(dir)+"x.jar"]
	assert.Equal(t, 100, entry.StartLevel)
	assert.Equal(t, AutostartStarted, entry.Autostart)
}

func TestPlannerMissingPropertiesFile(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "x.jar")

	planner := NewPlanner(zap.NewNop())
	require.NoError(t, planner.ConfigureLocation(dir))
	assert.Len(t, planner.Deployment().Bundles(), 1)
}

func TestPlannerPropertiesFileAsSource(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "x.jar")

	file := filepath.Join(dir, static.DEPLOYMENT_PROPERTIES)
	require.NoError(t, os.WriteFile(file, []byte("start.level=3\n"), 0644))

	planner := NewPlanner(zap.NewNop())
	require.NoError(t, planner.ConfigureLocation(file))

	bundles := planner.Deployment().Bundles()
	require.Len(t, bundles, 1)
	assert.Equal(t, 3, bundles[0].StartLevel)
	assert.Equal(t, AutostartStarted, bundles[0].Autostart)
}

func TestPlannerNotADirectory(t *testing.T) {
	planner := NewPlanner(zap.NewNop())
	assert.Error(t, planner.ConfigureLocationProperties(filepath.Join(t.TempDir(), "missing"), nil))
}
