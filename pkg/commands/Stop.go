package commands

import (
	"github.com/google/uuid"
	"github.com/simplelauncher/sml/pkg/command"
	"github.com/simplelauncher/sml/pkg/faults"
	"github.com/simplelauncher/sml/pkg/instance"
	"github.com/simplelauncher/sml/pkg/remoting"
	"github.com/simplelauncher/sml/pkg/static"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func Stop() {
	Commands = append(Commands, command.Launcher{
		Name:     "stop",
		Short:    "Ask a running instance to shut down over its command channel",
		Args:     cobra.RangeArgs(1, 3),
		Function: runStop,
	})
}

func runStop(ctx *command.Context, cmd *cobra.Command, args []string) error {
	link, err := stopLink(args)
	if err != nil {
		return err
	}

	protection, err := remoting.NewProtection(link.Secret)
	if err != nil {
		return err
	}

	commandId := uuid.NewString()
	payload := "#id: " + commandId + "\n" + static.COMMAND_STOP

	ctx.Log.Info("sending the stop command",
		zap.String("id", commandId),
		zap.String("address", link.Address()))

	sender := remoting.NewSender(link.Address(), protection.Encrypt)

	if err = sender.Send(payload); err != nil {
		return faults.Wrap(faults.Transport, err, "could not send the stop command")
	}

	return nil
}

// stopLink resolves the command link either from the instance directory or
// from an explicit host, port and secret triple.
func stopLink(args []string) (*remoting.Link, error) {
	switch len(args) {
	case 1:
		link, err := instance.NewInquiry(args[0]).CommandLink()
		if err != nil {
			return nil, faults.Wrap(faults.Config, err, "could not retrieve parameters for the instance to stop")
		}

		if link == nil {
			return nil, faults.New(faults.Config, "no command link exposed")
		}

		return link, nil

	case 3:
		return remoting.FromArgs(args)

	default:
		return nil, faults.New(faults.Syntax, "invalid number of arguments passed")
	}
}
