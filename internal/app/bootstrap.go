package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/olusolaa/infra-reconciler/internal/adapters/platform/aws"
	"github.com/olusolaa/infra-reconciler/internal/adapters/state/tfhcl"
	"github.com/olusolaa/infra-reconciler/internal/adapters/state/tfstate"
	"github.com/olusolaa/infra-reconciler/internal/adapters/state/yamlfile"
	"github.com/olusolaa/infra-reconciler/internal/config"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	"github.com/olusolaa/infra-reconciler/internal/core/service"
	"github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/internal/log"
	jsonreporter "github.com/olusolaa/infra-reconciler/internal/reporting/json"
	"github.com/olusolaa/infra-reconciler/internal/reporting/text"
)

// RunOptions selects what a run acts on. With Kind set the manifest is
// ignored and a single request is built from Params (key=value pairs).
type RunOptions struct {
	Kind        string
	Params      []string
	ForceDryRun bool
}

// LoadConfig merges viper's sources over the defaults.
func LoadConfig(v *viper.Viper) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeConfigParseError, "failed to unmarshal configuration", "Check the configuration file syntax.")
	}
	return cfg, nil
}

func BuildApplication(ctx context.Context, v *viper.Viper, opts RunOptions) (*Application, error) {
	cfg, err := LoadConfig(v)
	if err != nil {
		return nil, err
	}
	if opts.ForceDryRun {
		cfg.Settings.DryRun = true
	}

	logger, err := log.NewLogger(log.Config{Level: cfg.Settings.LogLevel, Format: cfg.Settings.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		return nil, errors.Wrap(err, errors.CodeInternal, "logger initialization failed")
	}
	if v.ConfigFileUsed() != "" {
		logger.Debugf(ctx, "Using configuration file: %s", v.ConfigFileUsed())
	}

	if err := cfg.Validate(); err != nil {
		logger.Errorf(ctx, err, "Configuration validation failed")
		return nil, err
	}

	provider, err := aws.NewProvider(ctx, aws.Options{
		Region:            cfg.Platform.AWS.Region,
		Profile:           cfg.Platform.AWS.Profile,
		RequestsPerSecond: cfg.Platform.AWS.APIRequestsPerSecond,
		MaxAttempts:       cfg.Platform.AWS.MaxAttempts,
		MaxBackoff:        cfg.Platform.AWS.MaxBackoff,
		FactConcurrency:   cfg.Settings.FactConcurrency,
	}, logger.WithFields(map[string]any{"provider": aws.ProviderTypeAWS}))
	if err != nil {
		return nil, err
	}

	registry := service.NewComponentRegistry()
	if err := provider.Register(registry, cfg.Settings.FactConcurrency); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to register AWS adapters")
	}
	logger.Debugf(ctx, "Registered kinds: %v", registry.Kinds())

	source, err := newManifestSource(cfg, opts, logger)
	if err != nil {
		return nil, err
	}
	reporter, err := newReporter(cfg, logger)
	if err != nil {
		return nil, err
	}

	engine, err := service.NewReconcileEngine(
		registry,
		service.NewReconciler(logger.WithFields(map[string]any{"component": "reconciler"}), cfg.Settings.FailurePolicies),
		source,
		reporter,
		logger.WithFields(map[string]any{"component": "engine"}),
		service.EngineOptions{DryRun: cfg.Settings.DryRun, FailFast: cfg.Settings.FailFast},
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to initialize reconcile engine")
	}

	logger.Debugf(ctx, "Application bootstrap complete (source: %s, dry run: %t)", source.Type(), cfg.Settings.DryRun)
	return NewApplication(engine, provider, logger, cfg), nil
}

func newManifestSource(cfg *config.Config, opts RunOptions, logger ports.Logger) (ports.ManifestSource, error) {
	if opts.Kind != "" {
		params, err := ParseParams(opts.Params)
		if err != nil {
			return nil, err
		}
		return newCLISource(opts.Kind, params), nil
	}
	if len(opts.Params) > 0 {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "parameters given without a kind", "Use `run <kind> --param key=value`.")
	}
	if cfg.Manifest.Path == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "no manifest configured",
			"Pass --manifest <path>, set manifest.path, or use `run <kind>`.")
	}

	switch format := cfg.ManifestFormat(); format {
	case yamlfile.SourceTypeYAML:
		return yamlfile.NewSource(yamlfile.Config{FilePath: cfg.Manifest.Path}, logger)
	case tfhcl.SourceTypeHCL:
		return tfhcl.NewSource(tfhcl.Config{
			Path:     cfg.Manifest.Path,
			VarFiles: cfg.Manifest.VarFiles,
			Vars:     cfg.Manifest.Vars,
		}, logger)
	case tfstate.SourceTypeTFJSON:
		return tfstate.NewSource(tfstate.Config{FilePath: cfg.Manifest.Path}, logger)
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, fmt.Sprintf("unsupported manifest format: %s", format), "Supported: yaml, hcl, tfjson")
	}
}

func newReporter(cfg *config.Config, logger ports.Logger) (ports.Reporter, error) {
	reportLog := logger.WithFields(map[string]any{"component": "reporter", "type": cfg.Settings.ReporterType})
	switch cfg.Settings.ReporterType {
	case text.ReporterTypeText:
		textCfg := text.Config{}
		if cfg.Settings.Reporter.Text != nil {
			textCfg = *cfg.Settings.Reporter.Text
		}
		return text.NewReporter(textCfg, reportLog)
	case jsonreporter.ReporterTypeJSON:
		jsonCfg := jsonreporter.Config{}
		if cfg.Settings.Reporter.JSON != nil {
			jsonCfg = *cfg.Settings.Reporter.JSON
		}
		return jsonreporter.NewReporter(jsonCfg, reportLog)
	default:
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, fmt.Sprintf("unsupported reporter type: %s", cfg.Settings.ReporterType), "Supported: text, json")
	}
}
