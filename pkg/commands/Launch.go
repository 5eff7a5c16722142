package commands

import (
	"github.com/simplelauncher/sml/pkg/command"
	"github.com/simplelauncher/sml/pkg/deploying"
	"github.com/simplelauncher/sml/pkg/instance"
	"github.com/simplelauncher/sml/pkg/status"
	"github.com/simplelauncher/sml/pkg/sysfx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func Launch() {
	Commands = append(Commands, command.Launcher{
		Name:  "launch",
		Short: "Deploy and start in one go",
		Args:  cobra.MinimumNArgs(1),
		Flags: func(cmd *cobra.Command) {
			deploymentFlags(cmd)
			propertiesFlags(cmd)
			commandLinkFlags(cmd)
			commonFlags(cmd)

			cmd.Flags().Bool("skip-deploy", false, "Only start, keep the instance as it is")
			cmd.Flags().Bool("skip-start", false, "Only deploy, do not start the container")
		},
		Function: runLaunch,
	})
}

func runLaunch(ctx *command.Context, cmd *cobra.Command, args []string) error {
	conf, err := buildConfiguration(cmd, args)
	if err != nil {
		return err
	}

	if err = sysfx.Apply(ctx.Effects, conf.SystemProperties); err != nil {
		return err
	}

	ctx.Log.Info("launching instance", zap.String("instance", conf.Instance))

	control, err := instance.NewControlWithRetry(conf.Instance, conf.LockTimeout)
	if err != nil {
		return err
	}

	defer control.Close()

	var deployment *deploying.Umbrella
	var support *instance.Support

	if conf.SkipDeploy {
		ctx.Log.Info("skipping deployment as requested")
	} else {
		ctx.Log.Info("preparing deployment")
		support = instance.NewSupport(control, conf, ctx.Log)

		// Prepare the deployment plan first as this only reads and does
		// not touch the instance yet
		if deployment, err = support.Deployment(); err != nil {
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
	}

	rt, err := createRuntime(ctx, control, conf)
	if err != nil {
		return err
	}

	if support != nil {
		rt.Undeploy(conf.UninstallBundles)
	}

	if deployment != nil {
		rt.Deploy(deployment)
	}

	if conf.SkipStart {
		status.Dump(ctx.Log, rt, conf)
		ctx.Log.Info("skipping start as requested")
		rt.Kill()
		return nil
	}

	return launchRuntime(ctx, rt, conf)
}
