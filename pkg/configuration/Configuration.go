package configuration

import (
	"path/filepath"
	"time"

	"github.com/simplelauncher/sml/pkg/faults"
	"github.com/simplelauncher/sml/pkg/static"
)

// Address is the optional command channel endpoint requested on the command
// line. Port zero asks for auto-assignment.
type Address struct {
	Host string
	Port int
}

// Configuration aggregates everything a deploy, start or launch command may
// need. The three property maps are the effective maps that get persisted
// under etc/ at deploy time.
type Configuration struct {
	Instance string

	SystemProperties    map[string]string
	FrameworkProperties map[string]string
	LaunchingProperties map[string]string

	CommandAddress *Address
	CommandSecret  string

	Bundles             []PathLister
	CreateConfiguration []string
	UpdateConfiguration []string
	UninstallBundles    []string
	Parameters          []string

	CleanInstance      bool
	CleanConfiguration bool
	DumpStatus         bool
	SkipDeploy         bool
	SkipStart          bool

	StatusFormat string
	LockTimeout  time.Duration
}

func NewConfig() *Configuration {
	return &Configuration{
		SystemProperties:    make(map[string]string),
		FrameworkProperties: make(map[string]string),
		LaunchingProperties: make(map[string]string),
	}
}

// Validate normalizes the configuration and rejects inconsistencies before
// any instance state is touched.
func (c *Configuration) Validate() error {
	if c.Instance == "" {
		return faults.New(faults.Syntax, "missing instance path")
	}

	c.Instance = filepath.Clean(c.Instance)

	// The storage location is owned by the runtime injection
	delete(c.FrameworkProperties, static.PROPERTY_CONTAINER_STORAGE)

	if _, err := c.ShutdownTimeout(); err != nil {
		return err
	}

	return nil
}

// ShutdownTimeout parses the shutdown.timeout launching property. A zero
// duration means waiting indefinitely.
func (c *Configuration) ShutdownTimeout() (time.Duration, error) {
	return ParseShutdownTimeout(c.LaunchingProperties[static.PROPERTY_SHUTDOWN_TIMEOUT])
}
