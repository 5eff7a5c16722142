package commands

import (
	"github.com/simplelauncher/sml/pkg/command"
	"github.com/simplelauncher/sml/pkg/configuration"
	"github.com/simplelauncher/sml/pkg/instance"
	"github.com/simplelauncher/sml/pkg/runtime"
	"github.com/simplelauncher/sml/pkg/status"
	"github.com/simplelauncher/sml/pkg/sysfx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func Deploy() {
	Commands = append(Commands, command.Launcher{
		Name:  "deploy",
		Short: "Materialize an instance and install, update or uninstall its bundles",
		Args:  cobra.MinimumNArgs(1),
		Flags: func(cmd *cobra.Command) {
			deploymentFlags(cmd)
			propertiesFlags(cmd)
			commonFlags(cmd)
		},
		Function: runDeploy,
	})
}

func runDeploy(ctx *command.Context, cmd *cobra.Command, args []string) error {
	conf, err := buildConfiguration(cmd, args)
	if err != nil {
		return err
	}

	if err = sysfx.Apply(ctx.Effects, conf.SystemProperties); err != nil {
		return err
	}

	ctx.Log.Info("deploying instance", zap.String("instance", conf.Instance))

	control, err := instance.NewControlWithRetry(conf.Instance, conf.LockTimeout)
	if err != nil {
		return err
	}

	defer control.Close()

	support := instance.NewSupport(control, conf, ctx.Log)

	// Prepare the deployment plan first as this only reads and does not
	// touch the instance yet
	deployment, err := support.Deployment()
	if err != nil {
		return err
	}

	// Now we can really touch something and update it
	if err = support.Clean(); err != nil {
		return err
	}

	if err = support.Configure(); err != nil {
		return err
	}

	if err = support.StoreProperties(); err != nil {
		return err
	}

	rt, err := createRuntime(ctx, control, conf)
	if err != nil {
		return err
	}

	rt.Undeploy(conf.UninstallBundles)
	rt.Deploy(deployment)

	status.Dump(ctx.Log, rt, conf)

	// Make the framework terminate!
	rt.Kill()
	return nil
}

// createRuntime prepares the container runtime of the instance with the
// shutdown timeout applied and the launcher parameters published.
func createRuntime(ctx *command.Context, control *instance.Control, conf *configuration.Configuration) (*runtime.Instance, error) {
	factory, err := ctx.Factory()
	if err != nil {
		return nil, err
	}

	frameworkProperties := make(map[string]string, len(conf.FrameworkProperties)+1)
	for name, value := range conf.FrameworkProperties {
		frameworkProperties[name] = value
	}

	runtime.PublishArguments(frameworkProperties, conf.LaunchingProperties, conf.Parameters)

	rt, err := runtime.NewInstance(control, factory, frameworkProperties, ctx.Log)
	if err != nil {
		return nil, err
	}

	timeout, err := conf.ShutdownTimeout()
	if err != nil {
		return nil, err
	}

	rt.ShutdownTimeout(timeout)
	return rt, nil
}
