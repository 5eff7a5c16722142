package commands

import (
	"github.com/simplelauncher/sml/pkg/command"
	"github.com/simplelauncher/sml/pkg/configuration"
	"github.com/simplelauncher/sml/pkg/instance"
	"github.com/simplelauncher/sml/pkg/remoting"
	"github.com/simplelauncher/sml/pkg/runtime"
	"github.com/simplelauncher/sml/pkg/static"
	"github.com/simplelauncher/sml/pkg/status"
	"github.com/simplelauncher/sml/pkg/sysfx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func Start() {
	Commands = append(Commands, command.Launcher{
		Name:  "start",
		Short: "Load an existing instance and run the container in it",
		Args:  cobra.MinimumNArgs(1),
		Flags: func(cmd *cobra.Command) {
			propertiesFlags(cmd)
			commandLinkFlags(cmd)
			commonFlags(cmd)
		},
		Function: runStart,
	})
}

func runStart(ctx *command.Context, cmd *cobra.Command, args []string) error {
	conf, err := buildConfiguration(cmd, args)
	if err != nil {
		return err
	}

	// The persisted properties fill the gaps, the command line dominates
	if err = instance.Restore(conf, conf.Instance); err != nil {
		return err
	}

	ctx.Log.Info("restored instance properties")

	// Prevent cleaning the storage area!
	delete(conf.FrameworkProperties, static.PROPERTY_CONTAINER_STORAGE_CLEAN)

	if err = sysfx.Apply(ctx.Effects, conf.SystemProperties); err != nil {
		return err
	}

	ctx.Log.Info("starting instance", zap.String("instance", conf.Instance))

	control, err := instance.NewControlWithRetry(conf.Instance, conf.LockTimeout)
	if err != nil {
		return err
	}

	defer control.Close()

	rt, err := createRuntime(ctx, control, conf)
	if err != nil {
		return err
	}

	return launchRuntime(ctx, rt, conf)
}

// launchRuntime wires the cancel gate, the launch callback and the optional
// command channel, then runs the container until it terminates.
func launchRuntime(ctx *command.Context, rt *runtime.Instance, conf *configuration.Configuration) error {
	if ctx.Cancel.OnCancel(func() { rt.Kill() }) {
		ctx.Log.Info("start aborted")
		return nil
	}

	ctx.Log.Info("starting the framework")

	rt.OnLaunch(func(context *runtime.Instance) {
		ctx.Log.Debug("framework started")
		context.OnLaunch(nil)
		status.Dump(ctx.Log, rt, conf)
	})

	if conf.CommandAddress == nil {
		_, err := rt.Launch()
		return err
	}

	link, err := remoting.NewLink(conf.CommandAddress.Host, conf.CommandAddress.Port, conf.CommandSecret)
	if err != nil {
		return err
	}

	_, err = rt.LaunchWithLink(link)
	return err
}
