package command

import (
	"github.com/simplelauncher/sml/pkg/contracts/iframework"
	"github.com/simplelauncher/sml/pkg/sysfx"
	"github.com/simplelauncher/sml/pkg/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Launcher describes one verb of the launcher CLI.
type Launcher struct {
	Name     string
	Short    string
	Args     cobra.PositionalArgs
	Flags    func(cmd *cobra.Command)
	Function func(ctx *Context, cmd *cobra.Command, args []string) error
}

// Context carries the collaborators shared by all verbs: the container
// factory supplied by the host environment, the external-effects sink, the
// logger and the one-shot cancel gate.
type Context struct {
	Factory func() (iframework.Factory, error)
	Effects sysfx.Effects
	Log     *zap.Logger
	Cancel  *Canceller
	Version *version.Version
	Exit    func(code int)
}

func NewContext(factory func() (iframework.Factory, error), effects sysfx.Effects, log *zap.Logger) *Context {
	return &Context{
		Factory: factory,
		Effects: effects,
		Log:     log,
		Cancel:  &Canceller{},
	}
}
