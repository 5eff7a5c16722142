package runtime

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/simplelauncher/sml/internal/helpers"
	"github.com/simplelauncher/sml/pkg/contracts/iframework"
	"github.com/simplelauncher/sml/pkg/deploying"
	"github.com/simplelauncher/sml/pkg/faults"
	"github.com/simplelauncher/sml/pkg/instance"
	"github.com/simplelauncher/sml/pkg/props"
	"github.com/simplelauncher/sml/pkg/remoting"
	"github.com/simplelauncher/sml/pkg/static"
	"go.uber.org/zap"
)

// Instance combines a container runtime with the on-disk instance it runs
// in. The instance control outlives the runtime, the runtime only borrows
// its path for the command link file.
type Instance struct {
	runtime  *Runtime
	control  *instance.Control
	onLaunch func(*Instance)
	log      *zap.Logger
}

// NewInstance prepares the effective framework properties for the instance
// and creates the container in it.
func NewInstance(control *instance.Control, factory iframework.Factory, frameworkProperties map[string]string, log *zap.Logger) (*Instance, error) {
	prepared := prepareProperties(control, frameworkProperties)

	created, err := NewRuntime(prepared, factory, log)
	if err != nil {
		return nil, err
	}

	return &Instance{runtime: created, control: control, log: log}, nil
}

// prepareProperties injects the instance paths, interpolates the remaining
// values with them and defaults the container storage into the data area.
// User-supplied values of the injected keys are deliberately overridden.
func prepareProperties(control *instance.Control, frameworkProperties map[string]string) map[string]string {
	result := make(map[string]string, len(frameworkProperties)+3)
	for name, value := range frameworkProperties {
		result[name] = value
	}

	root := helpers.AbsolutePath(control.Location())

	updates := map[string]string{
		static.PROPERTY_INSTANCE_ROOT: root,
		static.PROPERTY_INSTANCE_CONF: filepath.Join(root, static.CONFDIR),
	}

	props.InterpolateAll(result, props.LookupMap(updates))

	for name, value := range updates {
		result[name] = value
	}

	if _, present := result[static.PROPERTY_CONTAINER_STORAGE]; !present {
		result[static.PROPERTY_CONTAINER_STORAGE] = filepath.Join(root, static.DATADIR)
	}

	return result
}

func (i *Instance) Runtime() *Runtime {
	return i.runtime
}

func (i *Instance) Properties() map[string]string {
	return i.runtime.Properties()
}

// ShutdownTimeout bounds the waiting for the container to terminate.
func (i *Instance) ShutdownTimeout(value time.Duration) {
	i.runtime.ShutdownTimeout(value)
}

// OnLaunch registers a callback invoked after every successful start of the
// container, including the restarts after an update.
func (i *Instance) OnLaunch(callback func(*Instance)) {
	i.onLaunch = callback
}

// Launch runs the container without a command channel.
func (i *Instance) Launch() (bool, error) {
	if err := i.deleteLinkFile(); err != nil {
		return false, err
	}

	return i.launchRuntime()
}

// LaunchWithLink runs the container with a bound command channel. The link
// file appears only after the socket is bound, so a visible file always
// carries the resolved port, and it disappears with the channel.
func (i *Instance) LaunchWithLink(link *remoting.Link) (bool, error) {
	// Delete first to avoid misleading data if the next part fails
	if err := i.deleteLinkFile(); err != nil {
		return false, err
	}

	protection, err := remoting.NewProtection(link.Secret)
	if err != nil {
		return false, err
	}

	server, err := remoting.ServerConfig{
		Decoder:   protection.Decrypt,
		OnCommand: i.Command,
		OnError: func(err error) {
			i.log.Error("command link dropped unexpectedly", zap.Error(err))
		},
		OnClose: func() {
			i.log.Debug("command link closed")
		},
	}.Open(link.Address())
	if err != nil {
		return false, err
	}

	defer func() {
		server.Close()
		_ = i.deleteLinkFile()
	}()

	i.log.Info("using command link", zap.String("address", link.Address()))

	if err = i.storeLinkFile(link.WithPort(server.Addr().Port)); err != nil {
		return false, err
	}

	return i.launchRuntime()
}

// Command dispatches the newline-separated verbs of a received payload.
// Comment lines starting with '#' are skipped.
func (i *Instance) Command(command string, origin net.Addr) {
	i.log.Debug("received command", zap.Any("origin", origin))

	for _, verb := range strings.Split(command, "\n") {
		if verb == "" || strings.HasPrefix(verb, "#") {
			continue
		}

		if verb == static.COMMAND_STOP {
			i.log.Info("received the stop command", zap.Any("origin", origin))
			i.Kill()
			continue
		}

		i.log.Warn("unknown command", zap.String("verb", verb))
	}
}

func (i *Instance) Kill() bool {
	return i.runtime.Kill()
}

func (i *Instance) Stop() (bool, error) {
	return i.runtime.Stop()
}

func (i *Instance) Running() bool {
	return i.runtime.Running()
}

// Deploy executes a deployment plan against the container.
func (i *Instance) Deploy(deployment *deploying.Umbrella) {
	i.runtime.Deploy(deployment)
}

// Undeploy uninstalls the bundles matching the restricted-glob patterns.
func (i *Instance) Undeploy(globs []string) {
	i.runtime.Undeploy(globs)
}

func (i *Instance) launchRuntime() (bool, error) {
	return i.runtime.Launch(func() {
		if callback := i.onLaunch; callback != nil {
			callback(i)
		}
	})
}

func (i *Instance) deleteLinkFile() error {
	return i.control.Execute(func(control *instance.Control) error {
		if err := os.Remove(control.Path(static.LINKFILE)); err != nil && !os.IsNotExist(err) {
			return faults.Wrap(faults.InstanceIO, err, "could not delete the command link file")
		}

		return nil
	})
}

func (i *Instance) storeLinkFile(link *remoting.Link) error {
	return i.control.Execute(func(control *instance.Control) error {
		if err := link.Save(control.Path(static.LINKFILE)); err != nil {
			return faults.Wrap(faults.InstanceIO, err, "could not store the command link file")
		}

		return nil
	})
}
