package status

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/simplelauncher/sml/pkg/configuration"
	"github.com/simplelauncher/sml/pkg/logger"
	"github.com/simplelauncher/sml/pkg/runtime"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Report is the machine-readable shape of a status dump.
type Report struct {
	Instance   string            `yaml:"instance"`
	StartLevel int               `yaml:"startLevel"`
	System     map[string]string `yaml:"systemProperties"`
	Launching  map[string]string `yaml:"launchingProperties"`
	Framework  map[string]string `yaml:"frameworkProperties"`
	Bundles    []BundleReport    `yaml:"bundles"`
}

type BundleReport struct {
	ID           int64  `yaml:"id"`
	State        string `yaml:"state"`
	SymbolicName string `yaml:"symbolicName"`
	Version      string `yaml:"version"`
	Location     string `yaml:"location"`
}

// Dump renders the instance status. With DumpStatus set it goes to the
// standard output in the requested format, otherwise only a debug listing
// and the one-line summary are logged.
func Dump(log *zap.Logger, rt *runtime.Instance, config *configuration.Configuration) {
	report := collect(rt, config)

	if config.DumpStatus {
		if strings.EqualFold(config.StatusFormat, "yaml") {
			if encoded, err := yaml.Marshal(report); err == nil {
				fmt.Fprint(os.Stdout, string(encoded))
			}
		} else {
			render(report)
		}
	} else {
		log.Debug("bundle status overview", zap.Int("bundles", len(report.Bundles)))
	}

	// Print at the end, so there is a quick visual check of the status
	logger.Force(log, summary(report))
}

func collect(rt *runtime.Instance, config *configuration.Configuration) Report {
	framework := rt.Runtime().Framework()

	bundles := framework.Bundles()
	sort.Slice(bundles, func(i, j int) bool {
		return bundles[i].ID() < bundles[j].ID()
	})

	reports := make([]BundleReport, 0, len(bundles))
	for _, bundle := range bundles {
		reports = append(reports, BundleReport{
			ID:           bundle.ID(),
			State:        bundle.State().String(),
			SymbolicName: bundle.SymbolicName(),
			Version:      bundle.Version(),
			Location:     bundle.Location(),
		})
	}

	return Report{
		Instance:   config.Instance,
		StartLevel: framework.StartLevel(),
		System:     config.SystemProperties,
		Launching:  config.LaunchingProperties,
		Framework:  rt.Properties(),
		Bundles:    reports,
	}
}

func render(report Report) {
	headline := color.New(color.FgCyan, color.Bold).SprintfFunc()

	fmt.Printf("%s\n\n", headline("Configuration for instance: %s", report.Instance))
	renderProperties("System properties", report.System)
	renderProperties("Launching properties", report.Launching)
	renderProperties("Framework properties", report.Framework)

	fmt.Println("Bundle listing:")

	if len(report.Bundles) == 0 {
		fmt.Println("(no bundles available)")
		return
	}

	listing := table.New("ID", "STATE", "SYMBOLIC NAME", "VERSION", "LOCATION")
	listing.WithHeaderFormatter(color.New(color.FgGreen, color.Underline).SprintfFunc())

	for _, bundle := range report.Bundles {
		listing.AddRow(bundle.ID, bundle.State, bundle.SymbolicName, bundle.Version, bundle.Location)
	}

	listing.Print()
}

func renderProperties(headline string, properties map[string]string) {
	fmt.Printf("%s:\n", headline)

	if len(properties) == 0 {
		fmt.Println("(no properties available)")
		fmt.Println()
		return
	}

	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%s=%s\n", name, properties[name])
	}

	fmt.Println()
}

func summary(report Report) string {
	if len(report.Bundles) == 0 {
		return fmt.Sprintf("Framework at start level %d, not active.", report.StartLevel)
	}

	counts := make(map[string]int)
	for _, bundle := range report.Bundles {
		counts[bundle.State]++
	}

	states := make([]string, 0, len(counts))
	for state := range counts {
		states = append(states, state)
	}

	sort.Strings(states)

	parts := make([]string, 0, len(states))
	for _, state := range states {
		parts = append(parts, fmt.Sprintf("%d %s", counts[state], state))
	}

	return fmt.Sprintf("Framework at start level %d with total %d bundle(s): %s.",
		report.StartLevel, len(report.Bundles), strings.Join(parts, ", "))
}
