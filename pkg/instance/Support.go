package instance

import (
	"os"
	"path/filepath"

	"github.com/simplelauncher/sml/internal/helpers"
	"github.com/simplelauncher/sml/pkg/configuration"
	"github.com/simplelauncher/sml/pkg/deploying"
	"github.com/simplelauncher/sml/pkg/faults"
	"github.com/simplelauncher/sml/pkg/props"
	"github.com/simplelauncher/sml/pkg/static"
	"go.uber.org/zap"
)

// Support implements the instance-level parts of the deploy phase that need
// both the configuration and the acquired control.
type Support struct {
	configuration *configuration.Configuration
	control       *Control
	log           *zap.Logger
}

func NewSupport(control *Control, config *configuration.Configuration, log *zap.Logger) *Support {
	return &Support{
		configuration: config,
		control:       control,
		log:           log,
	}
}

// Restore merges the persisted etc/ properties into the configuration maps
// without overriding entries that are set already, so the command line keeps
// dominating the persisted defaults.
func Restore(config *configuration.Configuration, location string) error {
	path := filepath.Join(location, static.ETCDIR)

	if err := props.Restore(config.SystemProperties, filepath.Join(path, static.SYSTEM_PROPERTIES)); err != nil {
		return faults.Wrap(faults.InstanceIO, err, "could not restore instance properties")
	}

	if err := props.Restore(config.LaunchingProperties, filepath.Join(path, static.LAUNCHING_PROPERTIES)); err != nil {
		return faults.Wrap(faults.InstanceIO, err, "could not restore instance properties")
	}

	if err := props.Restore(config.FrameworkProperties, filepath.Join(path, static.FRAMEWORK_PROPERTIES)); err != nil {
		return faults.Wrap(faults.InstanceIO, err, "could not restore instance properties")
	}

	return nil
}

// Clean performs the requested cleaning. The total clean wins over the
// configuration-only clean.
func (s *Support) Clean() error {
	if s.configuration.CleanInstance {
		s.log.Info("cleaning the instance")
		return s.control.Clean()
	}

	if s.configuration.CleanConfiguration {
		s.log.Info("cleaning the configuration")

		return s.control.Execute(func(control *Control) error {
			if err := helpers.DeleteAll(control.Path(static.CONFDIR)); err != nil {
				return faults.Wrap(faults.InstanceIO, err, "could not clean the configuration")
			}

			return nil
		})
	}

	return nil
}

// Deployment computes the deployment plan. This only reads the sources and
// does not touch the instance yet.
func (s *Support) Deployment() (*deploying.Umbrella, error) {
	planner := deploying.NewPlanner(s.log)
	planner.ConfigureDefaults(s.configuration.LaunchingProperties)

	for _, lister := range s.configuration.Bundles {
		paths, err := lister.Paths()
		if err != nil {
			return nil, err
		}

		for _, path := range paths {
			if err := planner.ConfigureLocation(path); err != nil {
				return nil, err
			}
		}
	}

	return planner.Deployment(), nil
}

// Configure populates conf/ from the create-configuration sources when the
// tree did not exist yet, then overlays the update-configuration sources.
func (s *Support) Configure() error {
	s.log.Debug("setting up the configuration")

	return s.control.Execute(func(control *Control) error {
		target := control.Path(static.CONFDIR)

		if _, err := os.Stat(target); os.IsNotExist(err) {
			if err := os.MkdirAll(target, 0755); err != nil {
				return faults.Wrap(faults.InstanceIO, err, "failed to setup the configuration")
			}

			for _, source := range s.configuration.CreateConfiguration {
				if err := helpers.CopyInto(target, source); err != nil {
					return faults.Wrap(faults.InstanceIO, err, "failed to setup the configuration")
				}
			}
		}

		for _, source := range s.configuration.UpdateConfiguration {
			if err := helpers.CopyInto(target, source); err != nil {
				return faults.Wrap(faults.InstanceIO, err, "failed to setup the configuration")
			}
		}

		return nil
	})
}

// StoreProperties persists the three effective property maps under etc/ for
// the later restoration by the start command.
func (s *Support) StoreProperties() error {
	s.log.Debug("storing current properties")

	return s.control.Execute(func(control *Control) error {
		path := control.Path(static.ETCDIR)

		if err := os.MkdirAll(path, 0755); err != nil {
			return faults.Wrap(faults.InstanceIO, err, "failed to store current properties")
		}

		if err := props.Save(s.configuration.FrameworkProperties, filepath.Join(path, static.FRAMEWORK_PROPERTIES)); err != nil {
			return faults.Wrap(faults.InstanceIO, err, "failed to store current properties")
		}

		if err := props.Save(s.configuration.LaunchingProperties, filepath.Join(path, static.LAUNCHING_PROPERTIES)); err != nil {
			return faults.Wrap(faults.InstanceIO, err, "failed to store current properties")
		}

		if err := props.Save(s.configuration.SystemProperties, filepath.Join(path, static.SYSTEM_PROPERTIES)); err != nil {
			return faults.Wrap(faults.InstanceIO, err, "failed to store current properties")
		}

		return nil
	})
}

// UninstallPatterns returns the configured uninstall globs.
func (s *Support) UninstallPatterns() []string {
	return s.configuration.UninstallBundles
}
