package deploying

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Deployment binds a bundle location to its deployment settings and the
// optional data source.
type Deployment struct {
	Location string
	Settings
	Source *Source
}

func (d *Deployment) String() string {
	source := "<none>"
	if d.Source != nil {
		source = d.Source.Name
	}

	return fmt.Sprintf("Deployment[location=%s, startLevel=%d, autostart=%s, actions=%s, source=%s]",
		d.Location, d.StartLevel, d.Autostart, d.Actions, source)
}

// Location carries the settings shared by all bundles under a location root.
type Location struct {
	Root string
	Settings
}

// Umbrella accumulates a deployment incrementally: default settings,
// per-root location settings and bundle bindings. At the end it captures an
// ordered deployment list that can be applied to a container.
//
// A bundle created later inherits the current settings of the longest
// location root that is a proper prefix of its location, or the defaults.
type Umbrella struct {
	defaults  Settings
	roots     []string
	locations map[string]*Location
	bundles   map[string]*Deployment
}

// NewUmbrella creates an empty deployment whose default settings allow all
// actions; a deployment.action property narrows them.
func NewUmbrella() *Umbrella {
	return &Umbrella{
		defaults:  Settings{Actions: Install | Update | Uninstall},
		locations: make(map[string]*Location),
		bundles:   make(map[string]*Deployment),
	}
}

func (u *Umbrella) String() string {
	return fmt.Sprintf("Umbrella[locations=%v]", u.roots)
}

// Defaults returns the mutable default settings for locations and for
// bundles that bind to no location.
func (u *Umbrella) Defaults() *Settings {
	return &u.defaults
}

// Location returns the settings of a location root, creating it with a copy
// of the current defaults when seen for the first time.
func (u *Umbrella) Location(root string) *Location {
	if existing, found := u.locations[root]; found {
		return existing
	}

	created := &Location{Root: root, Settings: u.defaults}
	u.locations[root] = created

	index := sort.SearchStrings(u.roots, root)
	u.roots = append(u.roots, "")
	copy(u.roots[index+1:], u.roots[index:])
	u.roots[index] = root

	return created
}

// LocationForPath registers a location for a directory using its file URI.
func (u *Umbrella) LocationForPath(dir string) *Location {
	return u.Location(LocationURI(dir))
}

// Bundle returns the deployment of a bundle location, creating it with the
// settings inherited from the best matching location when seen first.
func (u *Umbrella) Bundle(location string) *Deployment {
	if existing, found := u.bundles[location]; found {
		return existing
	}

	created := &Deployment{Location: location, Settings: u.settings(location)}
	u.bundles[location] = created
	return created
}

// Bundles materializes the deployment list in the deterministic execution
// order.
func (u *Umbrella) Bundles() []*Deployment {
	result := make([]*Deployment, 0, len(u.bundles))
	for _, bundle := range u.bundles {
		result = append(result, bundle)
	}

	sort.Slice(result, func(i, j int) bool {
		return Compare(result[i], result[j]) < 0
	})

	return result
}

// settings finds the longest registered root that is a prefix of the
// location, falling back to the defaults. The sorted root vector puts every
// prefix candidate before the location, the scan takes the longest one.
func (u *Umbrella) settings(location string) Settings {
	index := sort.SearchStrings(u.roots, location)

	for i := index - 1; i >= 0; i-- {
		if root := u.roots[i]; strings.HasPrefix(location, root) {
			return u.locations[root].Settings
		}
	}

	return u.defaults
}

// LocationURI converts a directory path to the normalized file URI form that
// ends with a slash, so that uniform bundle paths can be appended directly.
func LocationURI(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = filepath.Clean(dir)
	}

	uniform := filepath.ToSlash(abs)
	if !strings.HasPrefix(uniform, "/") {
		uniform = "/" + uniform
	}
	if !strings.HasSuffix(uniform, "/") {
		uniform += "/"
	}

	return "file:" + uniform
}
