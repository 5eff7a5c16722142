package commands

import (
	"github.com/simplelauncher/sml/pkg/command"
	"github.com/simplelauncher/sml/pkg/instance"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func Delete() {
	Commands = append(Commands, command.Launcher{
		Name:     "delete",
		Short:    "Remove an instance from the disk",
		Args:     cobra.ExactArgs(1),
		Function: runDelete,
	})
}

func runDelete(ctx *command.Context, cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx.Log.Info("deleting instance", zap.String("instance", path))

	deleted, err := instance.Delete(path)
	if err != nil {
		return err
	}

	if !deleted {
		ctx.Log.Info("the instance was missing already")
	}

	return nil
}
