package deploying

import (
	"io/fs"
	"math"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/simplelauncher/sml/pkg/pattern"
	"github.com/simplelauncher/sml/pkg/props"
	"github.com/simplelauncher/sml/pkg/static"
	"go.uber.org/zap"
)

// Planner builds a deployment from bundle source directories and their
// deployment properties. It only reads, the instance is not touched until
// the finished plan is executed.
type Planner struct {
	deployment *Umbrella
	log        *zap.Logger
}

func NewPlanner(log *zap.Logger) *Planner {
	return &Planner{
		deployment: NewUmbrella(),
		log:        log,
	}
}

// Deployment returns the accumulated plan.
func (p *Planner) Deployment() *Umbrella {
	return p.deployment
}

// ConfigureDefaults applies the global defaults, usually taken from the
// launching properties.
func (p *Planner) ConfigureDefaults(defaults map[string]string) {
	p.configureSettings(p.deployment.Defaults(), defaults)
}

// ConfigureLocation processes one bundle source: either a directory with an
// optional deployment.properties file, or a properties file whose parent
// directory is the source.
func (p *Planner) ConfigureLocation(path string) error {
	location := filepath.Clean(path)
	file := filepath.Join(location, static.DEPLOYMENT_PROPERTIES)

	if info, err := os.Stat(location); err != nil || !info.IsDir() {
		file = location
		location = filepath.Dir(location)
	}

	if props.Exists(file) {
		p.log.Debug("loading deployment options", zap.String("file", file))
	} else {
		p.log.Debug("deployment options not found, using defaults instead", zap.String("file", file))
	}

	properties, err := props.Load(file, false)
	if err != nil {
		return err
	}

	return p.ConfigureLocationProperties(location, properties)
}

// ConfigureLocationProperties processes a bundle source directory with the
// given deployment properties.
func (p *Planner) ConfigureLocationProperties(location string, properties map[string]string) error {
	p.log.Info("processing deployment location", zap.String("location", location))

	if info, err := os.Stat(location); err != nil || !info.IsDir() {
		return errors.Errorf("location is not a directory: %s", location)
	}

	deploymentLocation := p.defineLocation(location, properties)
	p.configureSettings(&deploymentLocation.Settings, properties)

	bundles := make(map[string]*Deployment)

	if err := p.discoverBundles(location, deploymentLocation.Root, properties, bundles); err != nil {
		return err
	}

	p.redefineBundles(location, deploymentLocation.Root, properties, bundles)
	p.applyScopedSettings(bundles, properties)
	return nil
}

func (p *Planner) defineLocation(location string, properties map[string]string) *Location {
	root := properties[static.PROPERTY_BUNDLE_LOCATION_ROOT]
	if root == "" {
		return p.deployment.LocationForPath(location)
	}

	// Normalize so that appending uniform bundle paths makes a location
	if strings.HasSuffix(root, "/") || strings.HasSuffix(root, ":") {
		return p.deployment.Location(root)
	}

	return p.deployment.Location(root + "/")
}

func (p *Planner) configureSettings(settings *Settings, properties map[string]string) {
	if value, present := properties[static.PROPERTY_DEPLOYMENT_ACTION]; present {
		settings.Actions = ParseActions(value, func(unknown string) {
			p.log.Warn("could not parse deployment action", zap.String("value", unknown))
		})
	}

	if value, present := properties[static.PROPERTY_START_LEVEL]; present {
		p.configureStartLevel(settings, value)
	}
}

func (p *Planner) configureStartLevel(settings *Settings, value string) {
	startLevel, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		p.log.Warn("could not parse start level", zap.String("value", value))
		startLevel = 0
	}

	applyStartLevel(settings, startLevel)
}

// applyStartLevel maps the signed start level convention: zero means "no
// change" and resets the settings to level zero with unspecified autostart,
// so the bundle is left as it is; a positive level starts the bundle, a negative level
// sets the absolute level and keeps the bundle stopped. The most negative
// integer collapses to zero to avoid the negation underflow.
func applyStartLevel(settings *Settings, startLevel int) {
	if startLevel == 0 || startLevel == math.MinInt32 {
		settings.Autostart = AutostartUnspecified
		settings.StartLevel = 0
		return
	}

	if startLevel < 0 {
		settings.Autostart = AutostartStopped
		settings.StartLevel = -startLevel
		return
	}

	settings.Autostart = AutostartStarted
	settings.StartLevel = startLevel
}

// discoverBundles walks the source directory and registers a deployment for
// every file passing the search filter.
func (p *Planner) discoverBundles(location string, locationRoot string, properties map[string]string, bundles map[string]*Deployment) error {
	filter := searchFilter(properties[static.PROPERTY_DEPLOYMENT_SEARCH])

	paths, err := findBundles(location, filter)
	if err != nil {
		return errors.Wrapf(err, "could not scan bundle source: %s", location)
	}

	for _, uniformPath := range paths {
		bundleLocation := bundleLocation(uniformPath, locationRoot, properties)
		bundle := p.deployment.Bundle(bundleLocation)
		bundle.Source = FileSource(filepath.Join(location, filepath.FromSlash(uniformPath)))
		bundles[uniformPath] = bundle
	}

	return nil
}

// redefineBundles handles the bundle.location@<path> properties, which may
// reassign the location of a discovered bundle or define a bundle with no
// data on disk, which serves as an explicit uninstall target.
func (p *Planner) redefineBundles(location string, locationRoot string, properties map[string]string, bundles map[string]*Deployment) {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if !strings.HasPrefix(name, static.SCOPED_BUNDLE_LOCATION) {
			continue
		}

		bundlePath := name[len(static.SCOPED_BUNDLE_LOCATION):]
		if bundlePath == "" {
			p.log.Warn("invalid property", zap.String("name", name))
			continue
		}

		uniformPath := path.Clean(filepath.ToSlash(bundlePath))
		filePath := filepath.Join(location, filepath.FromSlash(uniformPath))

		bundleLocation := properties[name]
		if bundleLocation == "" {
			bundleLocation = locationRoot + uniformPath
		}

		bundle := p.deployment.Bundle(bundleLocation)
		if info, err := os.Stat(filePath); err == nil && info.Mode().IsRegular() {
			bundle.Source = FileSource(filePath)
		} else {
			bundle.Source = nil
		}

		bundles[uniformPath] = bundle
	}
}

// applyScopedSettings resolves the start.level@<glob> and
// deployment.action@<glob> properties against the discovered bundle paths.
// Only an unambiguous best-ranking match applies, a tie is a user error that
// is reported and skipped.
func (p *Planner) applyScopedSettings(bundles map[string]*Deployment, properties map[string]string) {
	matchers := bundleMatchers(properties)
	if len(matchers) == 0 {
		return
	}

	paths := make([]string, 0, len(bundles))
	for bundlePath := range bundles {
		paths = append(paths, bundlePath)
	}

	sort.Strings(paths)

	for _, bundlePath := range paths {
		matches := pattern.BestMatches(matchers, bundlePath)
		if len(matches) == 0 {
			continue
		}

		if len(matches) > 1 {
			p.log.Warn("bundle path matching with multiple expressions",
				zap.String("path", bundlePath),
				zap.Any("expressions", matcherGlobs(matches)))
			continue
		}

		bundle := bundles[bundlePath]
		specifier := matches[0].String()

		if value, present := properties[static.SCOPED_START_LEVEL+specifier]; present {
			p.configureStartLevel(&bundle.Settings, value)
		}

		if value, present := properties[static.SCOPED_DEPLOYMENT_ACTION+specifier]; present {
			bundle.Actions = ParseActions(value, func(unknown string) {
				p.log.Warn("could not parse deployment action", zap.String("value", unknown))
			})
		}
	}
}

func bundleMatchers(properties map[string]string) []*pattern.Matcher {
	globs := make(map[string]struct{})

	for name := range properties {
		if scope := scopeOf(name); scope != "" {
			globs[scope] = struct{}{}
		}
	}

	matchers := make([]*pattern.Matcher, 0, len(globs))
	for glob := range globs {
		matchers = append(matchers, pattern.Compile(glob))
	}

	pattern.Sort(matchers)
	return matchers
}

func scopeOf(name string) string {
	// Keep the branches ordered by the probability
	if strings.HasPrefix(name, static.SCOPED_START_LEVEL) {
		return name[len(static.SCOPED_START_LEVEL):]
	}
	if strings.HasPrefix(name, static.SCOPED_DEPLOYMENT_ACTION) {
		return name[len(static.SCOPED_DEPLOYMENT_ACTION):]
	}

	return ""
}

func matcherGlobs(matchers []*pattern.Matcher) []string {
	result := make([]string, 0, len(matchers))
	for _, matcher := range matchers {
		result = append(result, matcher.String())
	}

	return result
}

func bundleLocation(bundlePath string, locationRoot string, properties map[string]string) string {
	if result := properties[static.SCOPED_BUNDLE_LOCATION+bundlePath]; result != "" {
		return result
	}

	return locationRoot + bundlePath
}

// findBundles collects the relative uniform paths of the regular files that
// pass the filter, ordered by component count and then per component, which
// keeps the result independent of the filesystem iteration order.
func findBundles(location string, filter func(string) bool) ([]string, error) {
	var result []string

	err := filepath.WalkDir(location, func(entry string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		relative, err := filepath.Rel(location, entry)
		if err != nil {
			return err
		}

		uniformPath := filepath.ToSlash(relative)
		if filter(uniformPath) {
			result = append(result, uniformPath)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return comparePaths(result[i], result[j]) < 0
	})

	return result, nil
}

func comparePaths(a string, b string) int {
	aParts := strings.Split(a, "/")
	bParts := strings.Split(b, "/")

	if result := len(aParts) - len(bParts); result != 0 {
		return result
	}

	for i := range aParts {
		if result := strings.Compare(aParts[i], bParts[i]); result != 0 {
			return result
		}
	}

	return 0
}

func searchFilter(filter string) func(string) bool {
	if filter == "" {
		return defaultSearchFilter
	}

	matcher := pattern.Compile(filter)
	return matcher.Match
}

// defaultSearchFilter accepts files with a non-empty name carrying the .jar
// suffix.
func defaultSearchFilter(uniformPath string) bool {
	name := uniformPath
	if index := strings.LastIndexByte(uniformPath, '/'); index != -1 {
		name = uniformPath[index+1:]
	}

	const suffix = ".jar"
	return len(name) > len(suffix) && strings.HasSuffix(name, suffix)
}
