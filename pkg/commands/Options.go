package commands

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/simplelauncher/sml/pkg/configuration"
	"github.com/simplelauncher/sml/pkg/faults"
	"github.com/simplelauncher/sml/pkg/props"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flag groups shared by the deploy, start and launch verbs. Multi-valued
// options are repeatable, single properties use the NAME=VALUE form and the
// command address uses HOST:PORT with port 0 asking for auto-assignment.

func deploymentFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringArrayP("bundle-store", "B", nil, "Root whose child directories are separate bundle sources")
	flags.StringArrayP("bundles", "b", nil, "Bundle source directory, or its deployment properties file")
	flags.StringArrayP("create-configuration", "c", nil, "Configuration source applied only when conf/ does not exist yet")
	flags.StringArrayP("update-configuration", "u", nil, "Configuration source overlaid onto conf/ on every deploy")
	flags.StringArrayP("uninstall-bundles", "U", nil, "Restricted glob of bundle locations to uninstall")
	flags.Bool("clean-instance", false, "Remove the whole instance content before deploying")
	flags.Bool("clean-configuration", false, "Remove conf/ before deploying")
}

func propertiesFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringArrayP("framework-properties", "f", nil, "Properties file merged into the framework properties")
	flags.StringArrayP("framework-property", "F", nil, "Single framework property as NAME=VALUE")
	flags.StringArrayP("launching-properties", "l", nil, "Properties file merged into the launching properties")
	flags.StringArrayP("launching-property", "L", nil, "Single launching property as NAME=VALUE")
	flags.StringArrayP("system-properties", "s", nil, "Properties file merged into the system properties")
	flags.StringArrayP("system-property", "S", nil, "Single system property as NAME=VALUE")
}

func commonFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.Bool("dump-status", false, "Dump the instance status after the container settles")
	flags.String("status-format", "", "Status dump format: text (default) or yaml")
	flags.String("lock-timeout", "", "Keep retrying a busy instance acquisition up to this duration")
}

func commandLinkFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("command-address", "a", "", "Command channel address as HOST:PORT, port 0 auto-assigns")
	flags.StringP("command-secret", "t", "", "Command channel secret, generated when empty")
}

// buildConfiguration assembles the configuration from the parsed flags and
// the positional arguments: the instance path first, everything after it
// becomes the application parameters.
func buildConfiguration(cmd *cobra.Command, args []string) (*configuration.Configuration, error) {
	if len(args) < 1 {
		return nil, faults.New(faults.Syntax, "missing instance path")
	}

	result := configuration.NewConfig()
	result.Instance = args[0]
	result.Parameters = append(result.Parameters, args[1:]...)

	flags := cmd.Flags()

	for _, root := range stringArray(flags, "bundle-store") {
		result.Bundles = append(result.Bundles, configuration.BundleStore{Root: root})
	}

	for _, path := range stringArray(flags, "bundles") {
		result.Bundles = append(result.Bundles, configuration.BundleSource{Path: path})
	}

	result.CreateConfiguration = stringArray(flags, "create-configuration")
	result.UpdateConfiguration = stringArray(flags, "update-configuration")
	result.UninstallBundles = stringArray(flags, "uninstall-bundles")

	result.CleanInstance = boolFlag(flags, "clean-instance")
	result.CleanConfiguration = boolFlag(flags, "clean-configuration")
	result.DumpStatus = boolFlag(flags, "dump-status")
	result.SkipDeploy = boolFlag(flags, "skip-deploy")
	result.SkipStart = boolFlag(flags, "skip-start")
	result.StatusFormat = stringFlag(flags, "status-format")

	if err := mergeProperties(result.FrameworkProperties, flags, "framework-properties", "framework-property"); err != nil {
		return nil, err
	}

	if err := mergeProperties(result.LaunchingProperties, flags, "launching-properties", "launching-property"); err != nil {
		return nil, err
	}

	if err := mergeProperties(result.SystemProperties, flags, "system-properties", "system-property"); err != nil {
		return nil, err
	}

	if err := parseCommandLink(result, flags); err != nil {
		return nil, err
	}

	if err := parseLockTimeout(result, flags); err != nil {
		return nil, err
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}

func mergeProperties(target map[string]string, flags *pflag.FlagSet, filesFlag string, pairFlag string) error {
	for _, file := range stringArray(flags, filesFlag) {
		if err := props.MergeTo(target, file, true); err != nil {
			return faults.Wrap(faults.Config, err, "could not read properties file")
		}
	}

	for _, pair := range stringArray(flags, pairFlag) {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return faults.Newf(faults.Syntax, "property requires the NAME=VALUE form: %s", pair)
		}

		target[name] = value
	}

	return nil
}

func parseCommandLink(result *configuration.Configuration, flags *pflag.FlagSet) error {
	address := stringFlag(flags, "command-address")
	result.CommandSecret = stringFlag(flags, "command-secret")

	if address == "" {
		return nil
	}

	host, portText, err := net.SplitHostPort(address)
	if err != nil {
		return faults.Wrap(faults.Config, err, "invalid command address")
	}

	port, err := strconv.ParseUint(portText, 10, 16)
	if err != nil {
		return faults.Wrap(faults.Config, err, "invalid command address port")
	}

	result.CommandAddress = &configuration.Address{Host: host, Port: int(port)}
	return nil
}

func parseLockTimeout(result *configuration.Configuration, flags *pflag.FlagSet) error {
	value := stringFlag(flags, "lock-timeout")
	if value == "" {
		return nil
	}

	timeout, err := time.ParseDuration(value)
	if err != nil || timeout < 0 {
		return faults.Newf(faults.Config, "invalid lock timeout: %s", value)
	}

	result.LockTimeout = timeout
	return nil
}

func stringArray(flags *pflag.FlagSet, name string) []string {
	if flags.Lookup(name) == nil {
		return nil
	}

	result, _ := flags.GetStringArray(name)
	return result
}

func stringFlag(flags *pflag.FlagSet, name string) string {
	if flags.Lookup(name) == nil {
		return ""
	}

	result, _ := flags.GetString(name)
	return result
}

func boolFlag(flags *pflag.FlagSet, name string) bool {
	if flags.Lookup(name) == nil {
		return false
	}

	result, _ := flags.GetBool(name)
	return result
}
