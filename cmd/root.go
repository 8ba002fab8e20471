package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/olusolaa/infra-reconciler/internal/app"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Converges AWS resources to a declared state.",
	Long: `Reconciler reads desired AWS resources from a manifest (YAML, HCL, or the
JSON form of a Terraform state or plan), compares each one with what AWS
reports, and creates, updates or deletes only what differs. Read-only kinds
are looked up and reported.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig()
	},
}

// Execute runs the CLI and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default is .reconciler.yaml in . or $HOME)")
	flags.String("log-level", "", "Override log level (debug, info, warn, error)")
	flags.String("log-format", "", "Override log format (text, json)")
	flags.String("region", "", "AWS region")
	flags.String("profile", "", "AWS shared config profile")
	flags.String("reporter", "", "Report format (text, json)")
	flags.StringP("manifest", "m", "", "Manifest file, or directory of .hcl files")
	flags.String("format", "", "Manifest format (yaml, hcl, tfjson); inferred from the path when empty")
	flags.StringToString("var", nil, "HCL manifest variable (name=value), repeatable")
	flags.StringArray("var-file", nil, "HCL variables file, repeatable")
	flags.Bool("dry-run", false, "Report what would change without changing anything")
	flags.Bool("fail-fast", false, "Stop at the first failed resource")
	flags.String("on-missing", "", "Default policy when a looked-up resource is missing (error, skip, warn)")
	flags.String("on-denied", "", "Default policy when access is denied (error, skip, warn)")
	flags.Int("fact-concurrency", 0, "Parallel lookups per resource for multi-call queries")

	bindings := map[string]string{
		"settings.log_level":        "log-level",
		"settings.log_format":       "log-format",
		"platform.aws.region":       "region",
		"platform.aws.profile":      "profile",
		"settings.reporter":         "reporter",
		"manifest.path":             "manifest",
		"manifest.format":           "format",
		"manifest.vars":             "var",
		"manifest.var_files":        "var-file",
		"settings.dry_run":          "dry-run",
		"settings.fail_fast":        "fail-fast",
		"settings.on_missing":       "on-missing",
		"settings.on_denied":        "on-denied",
		"settings.fact_concurrency": "fact-concurrency",
	}
	for key, flag := range bindings {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(flag)))
	}

	viper.SetEnvPrefix("RECONCILER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(applyCmd, planCmd, runCmd)
}

func initializeConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".reconciler")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return apperrors.WrapUserFacing(err, apperrors.CodeConfigReadError, "failed to read config file", "Check the --config path and YAML syntax.")
	}
	return nil
}

func runApplication(cmd *cobra.Command, opts app.RunOptions) error {
	application, err := app.BuildApplication(cmd.Context(), viper.GetViper(), opts)
	if err != nil {
		return err
	}
	_, err = application.Run(cmd.Context())
	return err
}

func printError(err error) {
	userMsg, suggestion, _ := apperrors.GetUserFacingMessage(err)
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", userMsg)
	if suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
	}
}
