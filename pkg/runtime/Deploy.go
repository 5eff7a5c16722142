package runtime

import (
	"github.com/pkg/errors"
	"github.com/simplelauncher/sml/pkg/contracts/iframework"
	"github.com/simplelauncher/sml/pkg/deploying"
	"github.com/simplelauncher/sml/pkg/faults"
	"github.com/simplelauncher/sml/pkg/pattern"
	"go.uber.org/zap"
)

// Deploy executes a deployment plan. Bundles that are installed already but
// missing in the plan get registered with the plan defaults first, so that
// location-scoped settings reach them too. A failing bundle is logged and
// the rest of the plan continues, a single bad bundle must not block the
// fleet.
func (r *Runtime) Deploy(deployment *deploying.Umbrella) {
	for _, bundle := range r.framework.Bundles() {
		if bundle.ID() != iframework.SystemBundleID {
			// Update with defaults for the location
			deployment.Bundle(bundle.Location())
		}
	}

	for _, entry := range deployment.Bundles() {
		r.DeployBundle(entry)
	}
}

// DeployBundle executes the actions of a single plan entry, logging failures
// instead of propagating them.
func (r *Runtime) DeployBundle(entry *deploying.Deployment) {
	r.log.Debug("executing operation", zap.String("deployment", entry.String()))

	if err := r.execute(entry); err != nil {
		r.log.Error("failed to execute deployment actions",
			zap.String("location", entry.Location),
			zap.Error(err))
	}
}

func (r *Runtime) execute(entry *deploying.Deployment) error {
	bundle, installed := r.framework.Bundle(entry.Location)

	if !installed {
		// All other possible scenarios depend on the bundle being present
		if entry.Actions.Has(deploying.Install) && entry.Source != nil {
			return r.install(entry)
		}

		return nil
	}

	if entry.Actions.Has(deploying.Uninstall) && entry.Source == nil {
		return uninstallBundle(bundle)
	}

	if entry.Actions.Has(deploying.Update) && entry.Source != nil {
		if err := r.update(bundle, entry.Source); err != nil {
			return err
		}

		return applySettings(bundle, entry.Settings)
	}

	return nil
}

func (r *Runtime) install(entry *deploying.Deployment) error {
	source, err := entry.Source.Open()
	if err != nil {
		return errors.Wrapf(err, "could not open bundle source: %s", entry.Source)
	}

	defer source.Close()

	bundle, err := r.framework.InstallBundle(entry.Location, source)
	if err != nil {
		return faults.Wrap(faults.Container, err, "could not install bundle")
	}

	return applySettings(bundle, entry.Settings)
}

func (r *Runtime) update(bundle iframework.Bundle, source *deploying.Source) error {
	data, err := source.Open()
	if err != nil {
		return errors.Wrapf(err, "could not open bundle source: %s", source)
	}

	defer data.Close()

	if err = bundle.Update(data); err != nil {
		return faults.Wrap(faults.Container, err, "could not update bundle")
	}

	return nil
}

// uninstallBundle uninstalls unconditionally. The bundle may reach the
// terminal state concurrently, which counts as success.
func uninstallBundle(bundle iframework.Bundle) error {
	if err := bundle.Uninstall(); err != nil {
		if bundle.State() == iframework.Uninstalled {
			return nil
		}

		return faults.Wrap(faults.Container, err, "could not uninstall bundle")
	}

	return nil
}

func applySettings(bundle iframework.Bundle, settings deploying.Settings) error {
	if err := updateStartLevel(bundle, settings.StartLevel); err != nil {
		return err
	}

	return updateAutostart(bundle, settings.Autostart)
}

func updateStartLevel(bundle iframework.Bundle, startLevel int) error {
	if startLevel == 0 {
		return nil
	}

	if err := bundle.SetStartLevel(startLevel); err != nil {
		return faults.Wrap(faults.Container, err, "could not set bundle start level")
	}

	return nil
}

func updateAutostart(bundle iframework.Bundle, setting deploying.Autostart) error {
	if setting == deploying.AutostartUnspecified || bundle.Fragment() {
		return nil
	}

	if setting == deploying.AutostartStarted {
		if err := bundle.Start(); err != nil {
			return faults.Wrap(faults.Container, err, "could not start bundle")
		}

		return nil
	}

	if err := bundle.Stop(); err != nil {
		if bundle.State() == iframework.Uninstalled {
			return faults.Wrap(faults.Container, err, "could not stop bundle")
		}

		return nil
	}

	return nil
}

// Undeploy uninstalls the installed bundles whose location matches any of
// the restricted-glob patterns. The system bundle is excluded.
func (r *Runtime) Undeploy(globs []string) {
	if len(globs) == 0 {
		return
	}

	filter := pattern.Filter(globs)

	for _, bundle := range r.framework.Bundles() {
		if bundle.ID() == iframework.SystemBundleID || !filter(bundle.Location()) {
			continue
		}

		r.log.Debug("uninstalling bundle", zap.String("location", bundle.Location()))

		if err := uninstallBundle(bundle); err != nil {
			r.log.Error("failed to uninstall bundle",
				zap.String("location", bundle.Location()),
				zap.Error(err))
		}
	}
}
