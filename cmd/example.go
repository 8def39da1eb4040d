package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finsim/retirement-simulator/internal/config"
)

// initCmd writes a starter scenario a user can edit and run.
var initCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write an example scenario file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "scenario.yaml"
		if len(args) == 1 {
			name = args[0]
		}
		if err := config.WriteExampleScenario(name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
