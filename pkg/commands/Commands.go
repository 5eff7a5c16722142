package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/simplelauncher/sml/pkg/command"
	"github.com/simplelauncher/sml/pkg/faults"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Commands []command.Launcher

func PreloadCommands() {
	Deploy()
	Start()
	Launch()
	Delete()
	Stop()
}

// Run builds the cobra tree from the registered verbs, wires the shutdown
// signals to the cancel gate and maps the outcome to the exit code contract.
func Run(ctx *command.Context, root *cobra.Command) {
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Printf("error: %s\n\n", err)
		_ = c.Usage()
		return faults.Wrap(faults.Syntax, err, "invalid arguments")
	})

	root.SetArgs(os.Args[1:])

	root.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			fmt.Printf("unknown command: %s\n", strings.Join(args, " "))
			_ = cmd.Usage()
			return faults.New(faults.Syntax, "unknown command")
		}

		return cmd.Usage()
	}

	for _, entry := range Commands {
		entry := entry

		cobraCmd := &cobra.Command{
			Use:   entry.Name,
			Short: entry.Short,
			Args:  entry.Args,
			RunE: func(c *cobra.Command, args []string) error {
				return entry.Function(ctx, c, args)
			},
		}

		if entry.Flags != nil {
			entry.Flags(cobraCmd)
		}

		root.AddCommand(cobraCmd)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signals
		ctx.Log.Info("shutdown signal received")
		ctx.Cancel.Cancel()
	}()

	exit := ctx.Exit
	if exit == nil {
		exit = os.Exit
	}

	if err := root.Execute(); err != nil {
		code := faults.ExitCode(err)

		if code == 0 {
			ctx.Log.Info("command cancelled", zap.Error(err))
		} else {
			ctx.Log.Error(faults.Of(err).String(), zap.Error(err))
		}

		exit(code)
		return
	}

	exit(0)
}
