package runtime

import (
	"strings"

	"github.com/simplelauncher/sml/pkg/static"
)

// PublishArguments exposes the positional launcher parameters to the
// container through a framework property, newline-joined. Setting the
// arguments.service.pid launching property to an empty value disables the
// publication.
func PublishArguments(frameworkProperties map[string]string, launchingProperties map[string]string, parameters []string) {
	if len(parameters) == 0 {
		return
	}

	if pid, present := launchingProperties[static.PROPERTY_ARGUMENTS_PID]; present && pid == "" {
		return
	}

	frameworkProperties[static.PROPERTY_LAUNCH_ARGUMENTS] = strings.Join(parameters, "\n")
}
