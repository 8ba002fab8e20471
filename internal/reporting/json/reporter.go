package json

import (
	"context"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/olusolaa/infra-reconciler/internal/core/domain"
	"github.com/olusolaa/infra-reconciler/internal/core/ports"
	apperrors "github.com/olusolaa/infra-reconciler/internal/errors"
)

const ReporterTypeJSON = "json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	Compact bool `mapstructure:"compact"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	return NewReporterWithWriter(cfg, os.Stdout, logger), nil
}

func NewReporterWithWriter(cfg Config, w io.Writer, logger ports.Logger) *Reporter {
	return &Reporter{config: cfg, writer: w, logger: logger}
}

type jsonReport struct {
	Summary jsonSummary      `json:"summary"`
	Results []jsonResultItem `json:"results"`
}

type jsonSummary struct {
	Total     int  `json:"total"`
	Changed   int  `json:"changed"`
	Unchanged int  `json:"unchanged"`
	Errors    int  `json:"errors"`
	DryRun    bool `json:"dry_run"`
}

type jsonResultItem struct {
	Kind         domain.ResourceKind `json:"kind"`
	Source       string              `json:"source,omitempty"`
	Identity     string              `json:"identity,omitempty"`
	Action       domain.DiffAction   `json:"action,omitempty"`
	Differences  []jsonAttributeDiff `json:"differences,omitempty"`
	Output       map[string]any      `json:"output"`
	ErrorCode    string              `json:"error_code,omitempty"`
	ErrorMessage string              `json:"error_message,omitempty"`
}

type jsonAttributeDiff struct {
	AttributeName string `json:"attribute_name"`
	Desired       any    `json:"desired"`
	Observed      any    `json:"observed"`
	Immutable     bool   `json:"immutable,omitempty"`
	Details       string `json:"details,omitempty"`
}

// Report writes one document holding every result's caller-facing output.
func (r *Reporter) Report(ctx context.Context, results []domain.Result) error {
	report := jsonReport{
		Summary: jsonSummary{Total: len(results)},
		Results: make([]jsonResultItem, 0, len(results)),
	}

	for _, res := range results {
		if ctx.Err() != nil {
			r.logger.Warnf(ctx, "JSON report generation cancelled.")
			return ctx.Err()
		}

		switch {
		case res.Error != nil:
			report.Summary.Errors++
		case res.Changed:
			report.Summary.Changed++
		default:
			report.Summary.Unchanged++
		}
		if res.DryRun {
			report.Summary.DryRun = true
		}

		item := jsonResultItem{
			Kind:     res.Kind,
			Source:   res.Source,
			Identity: res.Identity,
			Action:   res.Action,
			Output:   res.Output(),
		}
		if res.Error != nil {
			item.ErrorCode = string(apperrors.GetCode(res.Error))
			item.ErrorMessage = res.Error.Error()
		}
		for _, diff := range res.Differences {
			item.Differences = append(item.Differences, jsonAttributeDiff{
				AttributeName: diff.AttributeName,
				Desired:       diff.Desired,
				Observed:      diff.Observed,
				Immutable:     diff.Immutable,
				Details:       diff.Details,
			})
		}
		report.Results = append(report.Results, item)
	}

	encoder := json.NewEncoder(r.writer)
	if !r.config.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(report); err != nil {
		r.logger.Errorf(ctx, err, "Failed to encode JSON report")
		return fmt.Errorf("failed to encode JSON report: %w", err)
	}

	r.logger.Debugf(ctx, "JSON report successfully generated.")
	return nil
}
