package main

import (
	"github.com/spf13/cobra"

	"github.com/olusolaa/infra-reconciler/internal/app"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Converge every resource in the manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApplication(cmd, app.RunOptions{})
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what apply would change, without changing anything",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApplication(cmd, app.RunOptions{ForceDryRun: true})
	},
}

var runParams []string

var runCmd = &cobra.Command{
	Use:   "run <kind>",
	Short: "Converge or look up a single resource given on the command line",
	Example: `  reconciler run placement_group --param name=web --param strategy=cluster
  reconciler run secret --param 'terms=[db/password]' --param on_missing=warn
  reconciler run elastic_ip --param in_vpc=true --param tags.Name=nat --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApplication(cmd, app.RunOptions{Kind: args[0], Params: runParams})
	},
}

func init() {
	runCmd.Flags().StringArrayVarP(&runParams, "param", "p", nil, "Parameter as key=value (key:=value keeps a literal string), repeatable")
}
