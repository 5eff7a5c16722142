package command

import (
	"github.com/spf13/cobra"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "sml",
		Short: "Vendor-neutral module container launcher",
		Long: "Supervises the lifecycle of a pluggable module container: deploys " +
			"a bundle fleet into an on-disk instance, starts the container in it " +
			"and mediates exclusive instance ownership.",
	}
}
