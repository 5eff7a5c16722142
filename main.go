package main

import (
	"github.com/simplelauncher/sml/pkg/command"
	"github.com/simplelauncher/sml/pkg/commands"
	"github.com/simplelauncher/sml/pkg/logger"
	"github.com/simplelauncher/sml/pkg/runtime"
	"github.com/simplelauncher/sml/pkg/startup"
	"github.com/simplelauncher/sml/pkg/sysfx"
	"github.com/simplelauncher/sml/pkg/version"
)

// Overridden at build time.
var SML_VERSION = "dev"

func main() {
	startup.Environment()

	level, outputs, errOutputs := startup.Logging()
	logger.Log = logger.NewLogger(level, outputs, errOutputs)

	ctx := command.NewContext(runtime.ResolveFactory, sysfx.OS{}, logger.Log)
	ctx.Version = version.New(SML_VERSION)

	cmd := command.New()
	commands.PreloadCommands()
	commands.Run(ctx, cmd)
}
