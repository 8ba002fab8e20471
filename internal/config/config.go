package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
	"github.com/olusolaa/infra-reconciler/internal/log"
	jsonreporter "github.com/olusolaa/infra-reconciler/internal/reporting/json"
	"github.com/olusolaa/infra-reconciler/internal/reporting/text"
)

type Config struct {
	Settings SettingsConfig `mapstructure:"settings"`
	Manifest ManifestConfig `mapstructure:"manifest"`
	Platform PlatformConfig `mapstructure:"platform"`
}

type SettingsConfig struct {
	LogLevel        log.Level       `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat       log.Format      `mapstructure:"log_format" validate:"omitempty,oneof=text json"`
	DryRun          bool            `mapstructure:"dry_run"`
	FailFast        bool            `mapstructure:"fail_fast"`
	FactConcurrency int             `mapstructure:"fact_concurrency" validate:"gte=1,lte=32"`
	ReporterType    string          `mapstructure:"reporter" validate:"oneof=text json"`
	Reporter        ReporterConfigs `mapstructure:"reporter_config"`

	domain.FailurePolicies `mapstructure:",squash"`
}

type ReporterConfigs struct {
	Text *text.Config         `mapstructure:"text"`
	JSON *jsonreporter.Config `mapstructure:"json"`
}

// ManifestConfig points at the desired-state document. An empty Format is
// inferred from the file extension. VarFiles and Vars feed HCL variables.
type ManifestConfig struct {
	Path     string            `mapstructure:"path"`
	Format   string            `mapstructure:"format" validate:"omitempty,oneof=yaml hcl tfjson"`
	VarFiles []string          `mapstructure:"var_files"`
	Vars     map[string]string `mapstructure:"vars"`
}

type PlatformConfig struct {
	AWS AWSPlatformConfig `mapstructure:"aws"`
}

type AWSPlatformConfig struct {
	Region               string        `mapstructure:"region"`
	Profile              string        `mapstructure:"profile"`
	APIRequestsPerSecond int           `mapstructure:"api_requests_per_second" validate:"gte=0,lte=100"`
	MaxAttempts          int           `mapstructure:"max_attempts" validate:"gte=1,lte=20"`
	MaxBackoff           time.Duration `mapstructure:"max_backoff" validate:"gte=0"`
}

func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			LogLevel:        log.LevelInfo,
			LogFormat:       log.FormatText,
			FactConcurrency: 1,
			ReporterType:    text.ReporterTypeText,
			Reporter: ReporterConfigs{
				Text: &text.Config{NoColor: false},
				JSON: &jsonreporter.Config{},
			},
			FailurePolicies: domain.DefaultFailurePolicies(),
		},
		Platform: PlatformConfig{
			AWS: AWSPlatformConfig{
				MaxAttempts: 5,
				MaxBackoff:  20 * time.Second,
			},
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and returns a user-facing error listing
// every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Wrap(err, apperrors.CodeConfigValidation, "configuration validation failed")
	}
	var details strings.Builder
	details.WriteString("Configuration validation failed:")
	for _, fe := range validationErrors {
		details.WriteString(fmt.Sprintf("\n - Field '%s': Failed on '%s' validation (value: '%v')", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return apperrors.NewUserFacing(apperrors.CodeConfigValidation, details.String(), "Please check your configuration file or flags.")
}

// ManifestFormat resolves the manifest format, inferring it from the path
// when not set explicitly.
func (c *Config) ManifestFormat() string {
	if c.Manifest.Format != "" {
		return c.Manifest.Format
	}
	path := strings.ToLower(c.Manifest.Path)
	switch {
	case isDir(c.Manifest.Path), strings.HasSuffix(path, ".hcl"):
		return "hcl"
	case strings.HasSuffix(path, ".json"):
		return "tfjson"
	default:
		return "yaml"
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
